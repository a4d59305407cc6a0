package pricing

import (
	"context"
	"testing"

	"tourbackend/internal/domain"
)

type stubLookup struct {
	res  DistanceResult
	err  error
	last [2]string
}

func (s *stubLookup) Lookup(_ context.Context, origin, destination, _ string, _ int) (DistanceResult, error) {
	s.last = [2]string{origin, destination}
	if s.err != nil {
		return DistanceResult{}, s.err
	}
	return s.res, nil
}

func TestHourlyPriceTiers(t *testing.T) {
	cases := []struct {
		vehicle string
		hours   int
		want    float64
	}{
		{"vito", 2, 487.5},  // 187.5 * 2 * 1.30
		{"vito", 4, 900},    // 187.5 * 4 * 1.20
		{"vito", 6, 1125},   // 187.5 * 6, no surcharge
		{"v-class", 1, 325}, // 250 * 1 * 1.30
		{"sprinter", 3, 990}, // 275 * 3 * 1.20
		{"sprinter", 5, 1375},
	}

	e := Engine{}
	for _, tc := range cases {
		q, err := e.Price(context.Background(), QuoteRequest{
			ServiceType: "hourly",
			VehicleType: tc.vehicle,
			Passengers:  3,
			Hours:       tc.hours,
		})
		if err != nil {
			t.Fatalf("hourly %s %dh: unexpected error %v", tc.vehicle, tc.hours, err)
		}
		if q.Price != tc.want {
			t.Fatalf("hourly %s %dh: got %v want %v", tc.vehicle, tc.hours, q.Price, tc.want)
		}
	}
}

func TestHourlyRejectsBadInput(t *testing.T) {
	e := Engine{}

	if _, err := e.Price(context.Background(), QuoteRequest{ServiceType: "hourly", VehicleType: "vito", Passengers: 2, Hours: 0}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for zero hours, got %v", err)
	}
	if _, err := e.Price(context.Background(), QuoteRequest{ServiceType: "hourly", VehicleType: "limousine", Passengers: 2, Hours: 2}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for unknown vehicle, got %v", err)
	}
	if _, err := e.Price(context.Background(), QuoteRequest{ServiceType: "hourly", VehicleType: "vito", Passengers: -3, Hours: 2}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for negative passengers, got %v", err)
	}
	if _, err := e.Price(context.Background(), QuoteRequest{ServiceType: "hourly", VehicleType: "vito", Passengers: 0, Hours: 2}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for zero passengers, got %v", err)
	}
}

func TestAirportFlatFareSameCity(t *testing.T) {
	// Same-city transfers never hit the distance lookup.
	e := Engine{Lookup: &stubLookup{err: domain.ProviderUnavailableError{Provider: "distance lookup"}}}

	for _, dest := range []string{"Rome", "roma", " ROMA "} {
		q, err := e.Price(context.Background(), QuoteRequest{
			ServiceType: "airport",
			Origin:      "Fiumicino Airport",
			Destination: dest,
			VehicleType: "vito",
			Passengers:  3,
		})
		if err != nil {
			t.Fatalf("airport to %q: unexpected error %v", dest, err)
		}
		if q.Price != AirportFlatFare {
			t.Fatalf("airport to %q: got %v want %v", dest, q.Price, float64(AirportFlatFare))
		}
	}
}

func TestAirportOutOfCityAddsSupplement(t *testing.T) {
	stub := &stubLookup{res: DistanceResult{DistanceKm: 230, BasePrice: 410}}
	e := Engine{Lookup: stub}

	q, err := e.Price(context.Background(), QuoteRequest{
		ServiceType: "airport",
		Origin:      "Fiumicino",
		Destination: "Naples",
		VehicleType: "sprinter",
		Passengers:  6,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Price != 464 { // 410 + 54
		t.Fatalf("got %v want 464", q.Price)
	}
	if stub.last[0] != "rome" {
		t.Fatalf("lookup should start from the airport's city, got %q", stub.last[0])
	}
}

func TestIntercityAirportEndpointSupplement(t *testing.T) {
	e := Engine{Lookup: &stubLookup{res: DistanceResult{DistanceKm: 120, BasePrice: 200}}}

	q, err := e.Price(context.Background(), QuoteRequest{
		ServiceType: "intercity",
		Origin:      "Florence",
		Destination: "Malpensa Airport",
		VehicleType: "v-class",
		Passengers:  2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Price != 254 { // 200 + 54
		t.Fatalf("got %v want 254", q.Price)
	}
}

func TestIntercityNoAirportNoSupplement(t *testing.T) {
	e := Engine{Lookup: &stubLookup{res: DistanceResult{DistanceKm: 120, BasePrice: 200}}}

	q, err := e.Price(context.Background(), QuoteRequest{
		ServiceType: "intercity",
		Origin:      "Florence",
		Destination: "Venice",
		VehicleType: "v-class",
		Passengers:  2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Price != 200 {
		t.Fatalf("got %v want 200", q.Price)
	}
}

func TestIntercityLookupFailurePropagates(t *testing.T) {
	e := Engine{Lookup: &stubLookup{err: domain.ProviderUnavailableError{Provider: "distance lookup"}}}

	_, err := e.Price(context.Background(), QuoteRequest{
		ServiceType: "intercity",
		Origin:      "Florence",
		Destination: "Venice",
		VehicleType: "vito",
		Passengers:  2,
	})
	if !domain.IsProviderUnavailable(err) {
		t.Fatalf("expected provider unavailable, got %v", err)
	}
}

func TestRouteValidation(t *testing.T) {
	e := Engine{Lookup: &stubLookup{res: DistanceResult{BasePrice: 100}}}

	if _, err := e.Price(context.Background(), QuoteRequest{ServiceType: "intercity", Origin: "A", Destination: "B", Passengers: 0}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for zero passengers, got %v", err)
	}
	if _, err := e.Price(context.Background(), QuoteRequest{ServiceType: "intercity", Origin: "", Destination: "B", Passengers: 2}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for empty origin, got %v", err)
	}
	if _, err := e.Price(context.Background(), QuoteRequest{ServiceType: "boat"}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for unknown service, got %v", err)
	}
}

func TestCustomServiceNeedsQuote(t *testing.T) {
	e := Engine{}

	q, err := e.Price(context.Background(), QuoteRequest{ServiceType: "custom"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.QuoteRequired || q.Price != 0 {
		t.Fatalf("custom service should require a quote, got %+v", q)
	}
}
