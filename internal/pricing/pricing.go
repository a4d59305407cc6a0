package pricing

import (
	"context"
	"strings"

	"tourbackend/internal/domain"
	"tourbackend/internal/domain/models"
	"tourbackend/internal/utils"
)

// Fixed pricing constants. These are contractual numbers, do not tune.
const (
	HourlyRateVito     = 187.5
	HourlyRateVClass   = 250
	HourlyRateSprinter = 275

	AirportFlatFare   = 435
	AirportSupplement = 54
)

// HourlyRate returns the per-hour rate for a vehicle type.
func HourlyRate(vehicleType string) (float64, bool) {
	switch strings.ToLower(utils.TrimOrEmpty(vehicleType)) {
	case "vito":
		return HourlyRateVito, true
	case "v-class", "vclass", "v class":
		return HourlyRateVClass, true
	case "sprinter":
		return HourlyRateSprinter, true
	}
	return 0, false
}

// SurchargeMultiplier returns the hour-tier markup applied to hourly hires:
// 1-2h +30%, 3-4h +20%, 5h and up none.
func SurchargeMultiplier(hours int) float64 {
	switch {
	case hours <= 2:
		return 1.30
	case hours <= 4:
		return 1.20
	default:
		return 1.00
	}
}

// QuoteRequest carries the service parameters a price is computed from.
type QuoteRequest struct {
	ServiceType string `json:"service_type" binding:"required"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	VehicleType string `json:"vehicle_type"`
	Passengers  int    `json:"passengers"`
	Hours       int    `json:"hours"`
}

// Quote is the engine's output. QuoteRequired marks custom services whose
// price is negotiated out of band.
type Quote struct {
	ServiceType   string  `json:"service_type"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	DistanceKm    float64 `json:"distance_km,omitempty"`
	QuoteRequired bool    `json:"quote_required,omitempty"`
}

// Engine computes prices. It is deterministic given the lookup results and
// has no side effects.
type Engine struct {
	Lookup DistanceLookup
}

// Price dispatches on the requested service type.
func (e Engine) Price(ctx context.Context, req QuoteRequest) (Quote, error) {
	if !models.ValidServiceType(req.ServiceType) {
		return Quote{}, domain.ValidationError{Field: "service_type", Msg: "unknown service type"}
	}

	switch req.ServiceType {
	case models.ServiceHourly:
		return e.hourly(req)
	case models.ServiceIntercity:
		return e.intercity(ctx, req)
	case models.ServiceAirport:
		return e.airport(ctx, req)
	default: // custom
		return Quote{ServiceType: models.ServiceCustom, Currency: "EUR", QuoteRequired: true}, nil
	}
}

func (e Engine) hourly(req QuoteRequest) (Quote, error) {
	if req.Hours <= 0 {
		return Quote{}, domain.ValidationError{Field: "hours", Msg: "must be at least 1"}
	}
	if req.Passengers <= 0 {
		return Quote{}, domain.ValidationError{Field: "passengers", Msg: "must be positive"}
	}
	rate, ok := HourlyRate(req.VehicleType)
	if !ok {
		return Quote{}, domain.ValidationError{Field: "vehicle_type", Msg: "unknown vehicle type"}
	}

	price := utils.Round2(rate * float64(req.Hours) * SurchargeMultiplier(req.Hours))
	return Quote{ServiceType: models.ServiceHourly, Price: price, Currency: "EUR"}, nil
}

func (e Engine) intercity(ctx context.Context, req QuoteRequest) (Quote, error) {
	if err := validateRoute(req); err != nil {
		return Quote{}, err
	}

	res, err := e.Lookup.Lookup(ctx, req.Origin, req.Destination, req.VehicleType, req.Passengers)
	if err != nil {
		return Quote{}, err
	}

	price := res.BasePrice
	if IsAirport(req.Origin) || IsAirport(req.Destination) {
		price += AirportSupplement
	}

	return Quote{
		ServiceType: models.ServiceIntercity,
		Price:       utils.Round2(price),
		Currency:    "EUR",
		DistanceKm:  res.DistanceKm,
	}, nil
}

func (e Engine) airport(ctx context.Context, req QuoteRequest) (Quote, error) {
	if err := validateRoute(req); err != nil {
		return Quote{}, err
	}

	airport, other := req.Origin, req.Destination
	if !IsAirport(airport) {
		airport, other = other, airport
	}
	if !IsAirport(airport) {
		return Quote{}, domain.ValidationError{Field: "origin", Msg: "neither endpoint is a known airport"}
	}

	city := AirportCity(airport)
	if SameCity(city, other) {
		return Quote{ServiceType: models.ServiceAirport, Price: AirportFlatFare, Currency: "EUR"}, nil
	}

	// Out-of-city transfer prices like an intercity leg from the airport's
	// city, plus the airport supplement.
	res, err := e.Lookup.Lookup(ctx, city, other, req.VehicleType, req.Passengers)
	if err != nil {
		return Quote{}, err
	}

	return Quote{
		ServiceType: models.ServiceAirport,
		Price:       utils.Round2(res.BasePrice + AirportSupplement),
		Currency:    "EUR",
		DistanceKm:  res.DistanceKm,
	}, nil
}

func validateRoute(req QuoteRequest) error {
	if utils.TrimOrEmpty(req.Origin) == "" {
		return domain.ValidationError{Field: "origin", Msg: "required"}
	}
	if utils.TrimOrEmpty(req.Destination) == "" {
		return domain.ValidationError{Field: "destination", Msg: "required"}
	}
	if req.Passengers <= 0 {
		return domain.ValidationError{Field: "passengers", Msg: "must be positive"}
	}
	return nil
}
