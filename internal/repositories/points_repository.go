package repositories

import (
	"database/sql"

	intconfig "tourbackend/internal/config"
	intdb "tourbackend/internal/db"
	"tourbackend/internal/domain"
	"tourbackend/internal/domain/models"
)

type PointsRepository struct {
	DB *sql.DB
}

func (r PointsRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// AppendOnce inserts a ledger entry keyed by payment id. The unique key on
// payment_id makes re-running completion after a crash safe: the second
// insert is ignored and the caller skips the balance update too. Returns
// whether the entry was actually inserted.
func (r PointsRepository) AppendOnce(e models.PointsEntry) (bool, error) {
	db := r.db()
	if db == nil {
		return false, domain.InternalError{Msg: "db not available"}
	}

	res, err := db.Exec(`
		INSERT IGNORE INTO points_history
			(user_id, booking_id, payment_id, delta, balance_after, description)
		VALUES (?,?,?,?,?,?)`,
		e.UserID, e.BookingID, intdb.NullIfEmpty(e.PaymentID), e.Delta, e.BalanceAfter, e.Description,
	)
	if err != nil {
		return false, domain.InternalError{Msg: "append points history", Err: err}
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// Append inserts a ledger entry without an idempotency key (redemptions).
func (r PointsRepository) Append(e models.PointsEntry) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "db not available"}
	}

	_, err := db.Exec(`
		INSERT INTO points_history
			(user_id, booking_id, payment_id, delta, balance_after, description)
		VALUES (?,?,?,?,?,?)`,
		e.UserID, e.BookingID, intdb.NullIfEmpty(e.PaymentID), e.Delta, e.BalanceAfter, e.Description,
	)
	if err != nil {
		return domain.InternalError{Msg: "append points history", Err: err}
	}
	return nil
}

// ListByUser returns the newest ledger entries for the user-facing history view.
func (r PointsRepository) ListByUser(userID int64, limit int) ([]models.PointsEntry, error) {
	db := r.db()
	if db == nil {
		return nil, domain.InternalError{Msg: "db not available"}
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := db.Query(`
		SELECT id,
		       COALESCE(user_id,0),
		       COALESCE(booking_id,0),
		       COALESCE(payment_id,''),
		       COALESCE(delta,0),
		       COALESCE(balance_after,0),
		       COALESCE(description,''),
		       COALESCE(DATE_FORMAT(created_at,'%Y-%m-%d %H:%i:%s'),'')
		FROM points_history
		WHERE user_id=?
		ORDER BY id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, domain.InternalError{Msg: "list points history", Err: err}
	}
	defer rows.Close()

	out := []models.PointsEntry{}
	for rows.Next() {
		var e models.PointsEntry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.BookingID,
			&e.PaymentID,
			&e.Delta,
			&e.BalanceAfter,
			&e.Description,
			&e.CreatedAt,
		); err != nil {
			return nil, domain.InternalError{Msg: "scan points history", Err: err}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
