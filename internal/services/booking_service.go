package services

import (
	"context"
	"fmt"

	"tourbackend/internal/domain"
	"tourbackend/internal/domain/models"
	"tourbackend/internal/pricing"
	"tourbackend/internal/repositories"
	"tourbackend/internal/utils"
)

// BookingService creates bookings with server-side computed prices and
// applies the admin status transitions. Payment-driven confirmation lives in
// PaymentService.
type BookingService struct {
	BookingRepo repositories.BookingRepository
	Pricer      pricing.Engine
	RequestID   string
}

// CreateBookingInput is the customer-facing booking submission.
type CreateBookingInput struct {
	UserID        int64  `json:"user_id"`
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone" binding:"required"`
	CustomerEmail string `json:"customer_email"`
	ServiceType   string `json:"service_type" binding:"required"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	VehicleType   string `json:"vehicle_type"`
	Passengers    int    `json:"passengers"`
	Hours         int    `json:"hours"`
	TripDate      string `json:"trip_date"`
}

// Create prices the request and stores the booking in pending. The client
// never supplies the total. Custom services store a zero total pending an
// out-of-band quote.
func (s BookingService) Create(ctx context.Context, in CreateBookingInput) (models.Booking, error) {
	if utils.TrimOrEmpty(in.CustomerName) == "" {
		return models.Booking{}, domain.ValidationError{Field: "customer_name", Msg: "required"}
	}
	if utils.TrimOrEmpty(in.CustomerPhone) == "" {
		return models.Booking{}, domain.ValidationError{Field: "customer_phone", Msg: "required"}
	}
	if in.TripDate != "" {
		if _, err := utils.ParseDate(in.TripDate); err != nil {
			return models.Booking{}, domain.ValidationError{Field: "trip_date", Msg: "expected YYYY-MM-DD"}
		}
	}

	quote, err := s.Pricer.Price(ctx, pricing.QuoteRequest{
		ServiceType: in.ServiceType,
		Origin:      in.Origin,
		Destination: in.Destination,
		VehicleType: in.VehicleType,
		Passengers:  in.Passengers,
		Hours:       in.Hours,
	})
	if err != nil {
		return models.Booking{}, err
	}

	b := models.Booking{
		UserID:         in.UserID,
		CustomerName:   utils.TrimOrEmpty(in.CustomerName),
		CustomerPhone:  utils.TrimOrEmpty(in.CustomerPhone),
		CustomerEmail:  utils.TrimOrEmpty(in.CustomerEmail),
		ServiceType:    in.ServiceType,
		Origin:         utils.TrimOrEmpty(in.Origin),
		Destination:    utils.TrimOrEmpty(in.Destination),
		VehicleType:    utils.TrimOrEmpty(in.VehicleType),
		PassengerCount: in.Passengers,
		Hours:          in.Hours,
		TripDate:       utils.TrimOrEmpty(in.TripDate),
		Status:         models.BookingPending,
		Total:          quote.Price,
	}

	id, err := s.BookingRepo.Create(b)
	if err != nil {
		return models.Booking{}, err
	}
	b.ID = id

	utils.LogEvent(s.RequestID, "booking", "create",
		fmt.Sprintf("booking_id=%d service=%s total=%s", id, b.ServiceType, utils.FormatMoney(b.Total)))
	return b, nil
}

// Get fetches a booking.
func (s BookingService) Get(id int64) (models.Booking, error) {
	return s.BookingRepo.GetByID(id)
}

// Complete marks a confirmed booking as completed (service delivered).
func (s BookingService) Complete(id int64) error {
	moved, err := s.BookingRepo.UpdateStatus(id, models.BookingConfirmed, models.BookingCompleted)
	if err != nil {
		return err
	}
	if !moved {
		b, err := s.BookingRepo.GetByID(id)
		if err != nil {
			return err
		}
		if b.Status == models.BookingCompleted {
			return nil
		}
		return domain.StateTransitionError{Entity: "booking", From: b.Status, To: models.BookingCompleted}
	}
	return nil
}

// Cancel cancels a booking that has not been confirmed or delivered yet.
func (s BookingService) Cancel(id int64) error {
	moved, err := s.BookingRepo.UpdateStatus(id, models.BookingPending, models.BookingCancelled)
	if err != nil {
		return err
	}
	if !moved {
		b, err := s.BookingRepo.GetByID(id)
		if err != nil {
			return err
		}
		if b.Status == models.BookingCancelled {
			return nil
		}
		return domain.StateTransitionError{Entity: "booking", From: b.Status, To: models.BookingCancelled}
	}
	return nil
}
