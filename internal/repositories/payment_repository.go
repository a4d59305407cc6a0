package repositories

import (
	"database/sql"
	"errors"

	intconfig "tourbackend/internal/config"
	"tourbackend/internal/domain"
	"tourbackend/internal/domain/models"
)

type PaymentRepository struct {
	DB *sql.DB
}

func (r PaymentRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const paymentColumns = `id,
       COALESCE(booking_id,0),
       COALESCE(method,''),
       COALESCE(amount,0),
       COALESCE(currency,''),
       COALESCE(status,''),
       COALESCE(provider_ref,''),
       COALESCE(provider_tx,''),
       COALESCE(details,''),
       COALESCE(failure_reason,''),
       COALESCE(DATE_FORMAT(completed_at,'%Y-%m-%d %H:%i:%s'),''),
       COALESCE(DATE_FORMAT(created_at,'%Y-%m-%d %H:%i:%s'),'')`

func scanPayment(scan func(dest ...any) error) (models.Payment, error) {
	var p models.Payment
	var rawDetails []byte
	err := scan(
		&p.ID,
		&p.BookingID,
		&p.Method,
		&p.Amount,
		&p.Currency,
		&p.Status,
		&p.ProviderRef,
		&p.ProviderTx,
		&rawDetails,
		&p.FailureReason,
		&p.CompletedAt,
		&p.CreatedAt,
	)
	if err != nil {
		return models.Payment{}, err
	}
	if details, derr := models.DecodeDetails(p.Method, rawDetails); derr == nil {
		p.Details = details
	}
	return p, nil
}

// Create inserts a payment in pending status.
func (r PaymentRepository) Create(p models.Payment) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "db not available"}
	}

	rawDetails, err := models.EncodeDetails(p.Details)
	if err != nil {
		return domain.InternalError{Msg: "encode payment details", Err: err}
	}

	_, err = db.Exec(`
		INSERT INTO payments
			(id, booking_id, method, amount, currency, status, provider_ref, details)
		VALUES (?,?,?,?,?,?,NULLIF(?,''),?)`,
		p.ID, p.BookingID, p.Method, p.Amount, p.Currency,
		models.PaymentPending, p.ProviderRef, rawDetails,
	)
	if err != nil {
		return domain.InternalError{Msg: "insert payment", Err: err}
	}
	return nil
}

// GetByID fetches a payment by its id.
func (r PaymentRepository) GetByID(id string) (models.Payment, error) {
	if id == "" {
		return models.Payment{}, domain.ValidationError{Field: "payment_id", Msg: "invalid id"}
	}
	db := r.db()
	if db == nil {
		return models.Payment{}, domain.InternalError{Msg: "db not available"}
	}

	row := db.QueryRow(`SELECT `+paymentColumns+` FROM payments WHERE id=? LIMIT 1`, id)
	p, err := scanPayment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, domain.NotFoundError{Resource: "payment"}
		}
		return models.Payment{}, domain.InternalError{Msg: "get payment", Err: err}
	}
	return p, nil
}

// GetByProviderRef fetches a payment by the provider-side order reference.
// This is the only lookup path for webhooks, which never know our ids.
func (r PaymentRepository) GetByProviderRef(ref string) (models.Payment, error) {
	if ref == "" {
		return models.Payment{}, domain.ValidationError{Field: "provider_ref", Msg: "invalid reference"}
	}
	db := r.db()
	if db == nil {
		return models.Payment{}, domain.InternalError{Msg: "db not available"}
	}

	row := db.QueryRow(`SELECT `+paymentColumns+` FROM payments WHERE provider_ref=? LIMIT 1`, ref)
	p, err := scanPayment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, domain.NotFoundError{Resource: "payment"}
		}
		return models.Payment{}, domain.InternalError{Msg: "get payment by ref", Err: err}
	}
	return p, nil
}

// HasCompletedForBooking reports whether the booking already carries a
// completed payment.
func (r PaymentRepository) HasCompletedForBooking(bookingID int64) (bool, error) {
	db := r.db()
	if db == nil {
		return false, domain.InternalError{Msg: "db not available"}
	}

	var id string
	err := db.QueryRow(`SELECT id FROM payments WHERE booking_id=? AND status=? LIMIT 1`,
		bookingID, models.PaymentCompleted).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, domain.InternalError{Msg: "check completed payment", Err: err}
	}
	return true, nil
}

// ListByBooking returns all payments for a booking, newest first.
func (r PaymentRepository) ListByBooking(bookingID int64) ([]models.Payment, error) {
	db := r.db()
	if db == nil {
		return nil, domain.InternalError{Msg: "db not available"}
	}

	rows, err := db.Query(`SELECT `+paymentColumns+` FROM payments WHERE booking_id=? ORDER BY created_at DESC`, bookingID)
	if err != nil {
		return nil, domain.InternalError{Msg: "list payments", Err: err}
	}
	defer rows.Close()

	out := []models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows.Scan)
		if err != nil {
			return nil, domain.InternalError{Msg: "scan payment", Err: err}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkCompleted transitions a payment into completed. The WHERE clause is the
// state machine guard: only pending or pending_review payments move, and only
// while no other payment for the same booking has completed, all in one atomic
// statement. Returns false when no row changed (already terminal, or a sibling
// settled the booking first), which callers use to suppress duplicate side
// effects.
func (r PaymentRepository) MarkCompleted(id, providerTx string) (bool, error) {
	db := r.db()
	if db == nil {
		return false, domain.InternalError{Msg: "db not available"}
	}

	res, err := db.Exec(`
		UPDATE payments p
		LEFT JOIN payments done
		  ON done.booking_id = p.booking_id
		 AND done.status = ?
		 AND done.id <> p.id
		SET p.status=?, p.provider_tx=COALESCE(NULLIF(?,''), p.provider_tx), p.completed_at=NOW()
		WHERE p.id=? AND p.status IN (?,?) AND done.id IS NULL`,
		models.PaymentCompleted, models.PaymentCompleted, providerTx, id,
		models.PaymentPending, models.PaymentPendingReview,
	)
	if err != nil {
		return false, domain.InternalError{Msg: "complete payment", Err: err}
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// MarkPendingReview transitions pending -> pending_review, storing the
// customer's proof blob alongside the existing details.
func (r PaymentRepository) MarkPendingReview(id string, proofURL string) (bool, error) {
	db := r.db()
	if db == nil {
		return false, domain.InternalError{Msg: "db not available"}
	}

	res, err := db.Exec(`
		UPDATE payments
		SET status=?, details=JSON_SET(COALESCE(details,'{}'), '$.proof_url', ?)
		WHERE id=? AND status=?`,
		models.PaymentPendingReview, proofURL, id, models.PaymentPending,
	)
	if err != nil {
		return false, domain.InternalError{Msg: "mark pending review", Err: err}
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// MarkFailed transitions any non-terminal payment to failed.
func (r PaymentRepository) MarkFailed(id, reason string) (bool, error) {
	db := r.db()
	if db == nil {
		return false, domain.InternalError{Msg: "db not available"}
	}

	res, err := db.Exec(`
		UPDATE payments
		SET status=?, failure_reason=?
		WHERE id=? AND status IN (?,?)`,
		models.PaymentFailed, reason, id,
		models.PaymentPending, models.PaymentPendingReview,
	)
	if err != nil {
		return false, domain.InternalError{Msg: "fail payment", Err: err}
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}
