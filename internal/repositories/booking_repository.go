package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	intconfig "tourbackend/internal/config"
	"tourbackend/internal/domain"
	"tourbackend/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingColumns = `id,
       COALESCE(user_id,0),
       COALESCE(customer_name,''),
       COALESCE(customer_phone,''),
       COALESCE(customer_email,''),
       COALESCE(service_type,''),
       COALESCE(origin,''),
       COALESCE(destination,''),
       COALESCE(vehicle_type,''),
       COALESCE(passenger_count,0),
       COALESCE(hours,0),
       COALESCE(trip_date,''),
       COALESCE(status,''),
       COALESCE(total,0),
       COALESCE(payment_id,''),
       COALESCE(DATE_FORMAT(created_at,'%Y-%m-%d %H:%i:%s'),'')`

func scanBooking(row *sql.Row) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.CustomerName,
		&b.CustomerPhone,
		&b.CustomerEmail,
		&b.ServiceType,
		&b.Origin,
		&b.Destination,
		&b.VehicleType,
		&b.PassengerCount,
		&b.Hours,
		&b.TripDate,
		&b.Status,
		&b.Total,
		&b.PaymentID,
		&b.CreatedAt,
	)
	return b, err
}

// Create inserts a new booking in pending status and returns its id.
func (r BookingRepository) Create(b models.Booking) (int64, error) {
	db := r.db()
	if db == nil {
		return 0, domain.InternalError{Msg: "db not available"}
	}

	res, err := db.Exec(`
		INSERT INTO bookings
			(user_id, customer_name, customer_phone, customer_email,
			 service_type, origin, destination, vehicle_type,
			 passenger_count, hours, trip_date, status, total)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.UserID, b.CustomerName, b.CustomerPhone, b.CustomerEmail,
		b.ServiceType, b.Origin, b.Destination, b.VehicleType,
		b.PassengerCount, b.Hours, b.TripDate, models.BookingPending, b.Total,
	)
	if err != nil {
		return 0, domain.InternalError{Msg: "insert booking", Err: err}
	}
	return res.LastInsertId()
}

// GetByID fetches a booking by primary key.
func (r BookingRepository) GetByID(id int64) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "booking_id", Msg: "invalid id"}
	}
	db := r.db()
	if db == nil {
		return models.Booking{}, domain.InternalError{Msg: "db not available"}
	}

	b, err := scanBooking(db.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id=? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking"}
		}
		return models.Booking{}, domain.InternalError{Msg: "get booking", Err: err}
	}
	return b, nil
}

// ConfirmIfPending flips a pending booking to confirmed in a single
// conditional update. Returns false when the booking was not pending, which
// callers treat as an idempotent no-op.
func (r BookingRepository) ConfirmIfPending(id int64) (bool, error) {
	db := r.db()
	if db == nil {
		return false, domain.InternalError{Msg: "db not available"}
	}

	res, err := db.Exec(`UPDATE bookings SET status=? WHERE id=? AND status=?`,
		models.BookingConfirmed, id, models.BookingPending)
	if err != nil {
		return false, domain.InternalError{Msg: "confirm booking", Err: err}
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// UpdateStatus performs an admin status transition, guarded by the current
// status to keep concurrent updates from clobbering each other.
func (r BookingRepository) UpdateStatus(id int64, from, to string) (bool, error) {
	if !models.ValidBookingStatus(to) {
		return false, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", to)}
	}
	db := r.db()
	if db == nil {
		return false, domain.InternalError{Msg: "db not available"}
	}

	res, err := db.Exec(`UPDATE bookings SET status=? WHERE id=? AND status=?`, to, id, from)
	if err != nil {
		return false, domain.InternalError{Msg: "update booking status", Err: err}
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// SetPaymentRef stores the weak reference to the booking's latest payment.
func (r BookingRepository) SetPaymentRef(id int64, paymentID string) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "db not available"}
	}

	if _, err := db.Exec(`UPDATE bookings SET payment_id=? WHERE id=?`, paymentID, id); err != nil {
		return domain.InternalError{Msg: "set booking payment ref", Err: err}
	}
	return nil
}
