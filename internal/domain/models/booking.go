package models

// Service types a booking may request.
const (
	ServiceAirport   = "airport"
	ServiceIntercity = "intercity"
	ServiceHourly    = "hourly"
	ServiceCustom    = "custom"
)

// Booking statuses.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// Booking is a customer's request for a transport service, independent of
// payment. It holds a weak reference to its payment for lookup only.
type Booking struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id"`
	CustomerName   string  `json:"customer_name"`
	CustomerPhone  string  `json:"customer_phone"`
	CustomerEmail  string  `json:"customer_email"`
	ServiceType    string  `json:"service_type"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	VehicleType    string  `json:"vehicle_type"`
	PassengerCount int     `json:"passenger_count"`
	Hours          int     `json:"hours,omitempty"`
	TripDate       string  `json:"trip_date"`
	Status         string  `json:"status"`
	Total          float64 `json:"total"`
	PaymentID      string  `json:"payment_id,omitempty"`
	CreatedAt      string  `json:"created_at,omitempty"`
}

// ValidBookingStatus reports whether s is one of the four defined statuses.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// ValidServiceType reports whether s is a known service type.
func ValidServiceType(s string) bool {
	switch s {
	case ServiceAirport, ServiceIntercity, ServiceHourly, ServiceCustom:
		return true
	}
	return false
}
