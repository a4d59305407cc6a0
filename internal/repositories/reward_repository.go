package repositories

import (
	"database/sql"
	"errors"

	intconfig "tourbackend/internal/config"
	intdb "tourbackend/internal/db"
	"tourbackend/internal/domain"
	"tourbackend/internal/domain/models"
)

type RewardRepository struct {
	DB *sql.DB
}

func (r RewardRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const rewardColumns = `id,
       COALESCE(name,''),
       COALESCE(description,''),
       COALESCE(type,''),
       COALESCE(points_required,0),
       COALESCE(active,0),
       COALESCE(DATE_FORMAT(valid_until,'%Y-%m-%d %H:%i:%s'),''),
       COALESCE(max_redemptions,0),
       COALESCE(current_redemptions,0)`

func scanReward(scan func(dest ...any) error) (models.Reward, error) {
	var rw models.Reward
	err := scan(
		&rw.ID,
		&rw.Name,
		&rw.Description,
		&rw.Type,
		&rw.PointsRequired,
		&rw.Active,
		&rw.ValidUntil,
		&rw.MaxRedemptions,
		&rw.CurrentRedemptions,
	)
	return rw, err
}

// GetByID fetches a reward by primary key.
func (r RewardRepository) GetByID(id int64) (models.Reward, error) {
	if id <= 0 {
		return models.Reward{}, domain.ValidationError{Field: "reward_id", Msg: "invalid id"}
	}
	db := r.db()
	if db == nil {
		return models.Reward{}, domain.InternalError{Msg: "db not available"}
	}

	row := db.QueryRow(`SELECT `+rewardColumns+` FROM rewards WHERE id=? LIMIT 1`, id)
	rw, err := scanReward(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Reward{}, domain.NotFoundError{Resource: "reward"}
		}
		return models.Reward{}, domain.InternalError{Msg: "get reward", Err: err}
	}
	return rw, nil
}

// ListAvailable returns rewards that are active, unexpired and under their
// redemption cap. All three conditions are conjoined.
func (r RewardRepository) ListAvailable() ([]models.Reward, error) {
	db := r.db()
	if db == nil {
		return nil, domain.InternalError{Msg: "db not available"}
	}

	rows, err := db.Query(`
		SELECT ` + rewardColumns + `
		FROM rewards
		WHERE active=1
		  AND (valid_until IS NULL OR valid_until >= NOW())
		  AND (max_redemptions=0 OR current_redemptions < max_redemptions)
		ORDER BY points_required ASC`)
	if err != nil {
		return nil, domain.InternalError{Msg: "list rewards", Err: err}
	}
	defer rows.Close()

	out := []models.Reward{}
	for rows.Next() {
		rw, err := scanReward(rows.Scan)
		if err != nil {
			return nil, domain.InternalError{Msg: "scan reward", Err: err}
		}
		out = append(out, rw)
	}
	return out, rows.Err()
}

// ClaimSlot increments the redemption counter only while a slot remains.
// Two concurrent claims of the last slot resolve to one winner because the
// guard and the increment are one statement.
func (r RewardRepository) ClaimSlot(id int64) (bool, error) {
	db := r.db()
	if db == nil {
		return false, domain.InternalError{Msg: "db not available"}
	}

	res, err := db.Exec(`
		UPDATE rewards
		SET current_redemptions = current_redemptions + 1
		WHERE id=? AND active=1
		  AND (max_redemptions=0 OR current_redemptions < max_redemptions)`,
		id)
	if err != nil {
		return false, domain.InternalError{Msg: "claim reward slot", Err: err}
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// ReleaseSlot undoes a claim when the points debit fails afterwards.
func (r RewardRepository) ReleaseSlot(id int64) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "db not available"}
	}

	_, err := db.Exec(`
		UPDATE rewards
		SET current_redemptions = current_redemptions - 1
		WHERE id=? AND current_redemptions > 0`, id)
	if err != nil {
		return domain.InternalError{Msg: "release reward slot", Err: err}
	}
	return nil
}

// InsertUserReward appends a redemption record to the user's reward list.
func (r RewardRepository) InsertUserReward(userID, rewardID int64) error {
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "db not available"}
	}

	_, err := db.Exec(`
		INSERT INTO user_rewards (user_id, reward_id, redeemed_at, used)
		VALUES (?,?,NOW(),0)`, userID, rewardID)
	if err != nil {
		return domain.InternalError{Msg: "insert user reward", Err: err}
	}
	return nil
}

// ListUserRewards returns a user's redemption records, newest first.
func (r RewardRepository) ListUserRewards(userID int64) ([]models.UserReward, error) {
	db := r.db()
	if db == nil {
		return nil, domain.InternalError{Msg: "db not available"}
	}

	rows, err := db.Query(`
		SELECT id,
		       COALESCE(user_id,0),
		       COALESCE(reward_id,0),
		       COALESCE(DATE_FORMAT(redeemed_at,'%Y-%m-%d %H:%i:%s'),''),
		       COALESCE(used,0)
		FROM user_rewards
		WHERE user_id=?
		ORDER BY id DESC`, userID)
	if err != nil {
		return nil, domain.InternalError{Msg: "list user rewards", Err: err}
	}
	defer rows.Close()

	out := []models.UserReward{}
	for rows.Next() {
		var ur models.UserReward
		if err := rows.Scan(&ur.ID, &ur.UserID, &ur.RewardID, &ur.RedeemedAt, &ur.Used); err != nil {
			return nil, domain.InternalError{Msg: "scan user reward", Err: err}
		}
		out = append(out, ur)
	}
	return out, rows.Err()
}

// SeedIfMissing inserts a catalog reward when no reward with the same name
// exists. Returns whether a row was inserted.
func (r RewardRepository) SeedIfMissing(rw models.Reward) (bool, error) {
	if !models.ValidRewardType(rw.Type) {
		return false, domain.ValidationError{Field: "type", Msg: "unknown reward type"}
	}
	db := r.db()
	if db == nil {
		return false, domain.InternalError{Msg: "db not available"}
	}

	var existing int64
	err := db.QueryRow(`SELECT id FROM rewards WHERE name=? LIMIT 1`, rw.Name).Scan(&existing)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, domain.InternalError{Msg: "check reward seed", Err: err}
	}

	_, err = db.Exec(`
		INSERT INTO rewards
			(name, description, type, points_required, active, valid_until, max_redemptions, current_redemptions)
		VALUES (?,?,?,?,?,?,?,0)`,
		rw.Name, rw.Description, rw.Type, rw.PointsRequired, rw.Active,
		intdb.NullTime(rw.ValidUntil), rw.MaxRedemptions,
	)
	if err != nil {
		return false, domain.InternalError{Msg: "seed reward", Err: err}
	}
	return true, nil
}
