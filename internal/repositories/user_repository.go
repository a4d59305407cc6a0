package repositories

import (
	"database/sql"
	"errors"

	intconfig "tourbackend/internal/config"
	"tourbackend/internal/domain"
	"tourbackend/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// GetLoyalty returns the loyalty slice of a user. The stored membership level
// is only a cache; callers re-derive it from points.
func (r UserRepository) GetLoyalty(userID int64) (models.UserLoyalty, error) {
	if userID <= 0 {
		return models.UserLoyalty{}, domain.ValidationError{Field: "user_id", Msg: "invalid id"}
	}
	db := r.db()
	if db == nil {
		return models.UserLoyalty{}, domain.InternalError{Msg: "db not available"}
	}

	var u models.UserLoyalty
	err := db.QueryRow(`
		SELECT id,
		       COALESCE(points,0),
		       COALESCE(total_spent,0),
		       COALESCE(total_bookings,0),
		       COALESCE(membership_level,'')
		FROM users
		WHERE id=? LIMIT 1`, userID).Scan(
		&u.UserID,
		&u.Points,
		&u.TotalSpent,
		&u.TotalBookings,
		&u.MembershipLevel,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.UserLoyalty{}, domain.NotFoundError{Resource: "user"}
		}
		return models.UserLoyalty{}, domain.InternalError{Msg: "get user loyalty", Err: err}
	}
	return u, nil
}

// Accrue adds points and spend counters in one statement. The membership
// level cache is refreshed from the new balance inside the same update.
func (r UserRepository) Accrue(userID, points int64, amount float64) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "db not available"}
	}

	res, err := db.Exec(`
		UPDATE users
		SET points = points + ?,
		    total_spent = total_spent + ?,
		    total_bookings = total_bookings + 1,
		    membership_level = CASE
		        WHEN points >= 1000000 THEN 'diamante'
		        WHEN points >= 100000 THEN 'platinum'
		        WHEN points >= 10000 THEN 'gold'
		        WHEN points >= 3500 THEN 'silver'
		        ELSE 'bronze'
		    END
		WHERE id=?`,
		points, amount, userID,
	)
	if err != nil {
		return domain.InternalError{Msg: "accrue points", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "user"}
	}
	return nil
}

// DebitPoints removes points only when the balance covers the cost, in a
// single conditional update. Returns false when the balance was short.
func (r UserRepository) DebitPoints(userID, points int64) (bool, error) {
	db := r.db()
	if db == nil {
		return false, domain.InternalError{Msg: "db not available"}
	}

	res, err := db.Exec(`UPDATE users SET points = points - ? WHERE id=? AND points >= ?`,
		points, userID, points)
	if err != nil {
		return false, domain.InternalError{Msg: "debit points", Err: err}
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// CreditPoints returns points to a user (redemption rollback path).
func (r UserRepository) CreditPoints(userID, points int64) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "db not available"}
	}

	if _, err := db.Exec(`UPDATE users SET points = points + ? WHERE id=?`, points, userID); err != nil {
		return domain.InternalError{Msg: "credit points", Err: err}
	}
	return nil
}

// UpdateTierCache opportunistically persists the derived membership level.
// Failures are ignored by callers; the cache is never authoritative.
func (r UserRepository) UpdateTierCache(userID int64, tier string) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "db not available"}
	}

	_, err := db.Exec(`UPDATE users SET membership_level=? WHERE id=? AND membership_level<>?`,
		tier, userID, tier)
	if err != nil {
		return domain.InternalError{Msg: "update tier cache", Err: err}
	}
	return nil
}
