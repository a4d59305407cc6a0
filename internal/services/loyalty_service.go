package services

import (
	"fmt"
	"time"

	"tourbackend/internal/domain"
	"tourbackend/internal/domain/models"
	"tourbackend/internal/repositories"
	"tourbackend/internal/utils"
)

// LoyaltyService owns point accrual, tier derivation and reward redemption.
type LoyaltyService struct {
	UserRepo   repositories.UserRepository
	PointsRepo repositories.PointsRepository
	RewardRepo repositories.RewardRepository
	Seed       []models.Reward
	RequestID  string
}

// LoyaltyProfile is the user-facing view: balance, derived tier and history.
type LoyaltyProfile struct {
	models.UserLoyalty
	History []models.PointsEntry `json:"history"`
	Rewards []models.UserReward  `json:"rewards"`
}

// AccrueForPayment converts a completed payment into points and updates the
// user's counters. Safe to re-run: the ledger's unique payment key absorbs
// duplicates, so a crash between payment completion and accrual is repaired
// by re-driving completion.
func (s LoyaltyService) AccrueForPayment(userID int64, p models.Payment) error {
	if userID <= 0 {
		// Guest checkout: nothing to accrue.
		utils.LogEvent(s.RequestID, "loyalty", "accrue", "skipped, no user on payment "+p.ID)
		return nil
	}

	points := utils.PointsFromAmount(p.Amount)
	if points <= 0 {
		return nil
	}

	u, err := s.UserRepo.GetLoyalty(userID)
	if err != nil {
		return err
	}

	inserted, err := s.PointsRepo.AppendOnce(models.PointsEntry{
		UserID:       userID,
		BookingID:    p.BookingID,
		PaymentID:    p.ID,
		Delta:        points,
		BalanceAfter: u.Points + points,
		Description:  fmt.Sprintf("payment %s for booking %d", p.ID, p.BookingID),
	})
	if err != nil {
		return err
	}
	if !inserted {
		utils.LogEvent(s.RequestID, "loyalty", "accrue", "already accrued for payment "+p.ID)
		return nil
	}

	if err := s.UserRepo.Accrue(userID, points, p.Amount); err != nil {
		return err
	}

	utils.LogEvent(s.RequestID, "loyalty", "accrue",
		fmt.Sprintf("user_id=%d points=%d payment_id=%s", userID, points, p.ID))
	return nil
}

// Profile returns the loyalty view with the tier re-derived from points. The
// stored level is refreshed opportunistically and never trusted.
func (s LoyaltyService) Profile(userID int64) (LoyaltyProfile, error) {
	u, err := s.UserRepo.GetLoyalty(userID)
	if err != nil {
		return LoyaltyProfile{}, err
	}

	derived := models.TierForPoints(u.Points)
	if u.MembershipLevel != derived {
		if err := s.UserRepo.UpdateTierCache(userID, derived); err != nil {
			utils.LogEvent(s.RequestID, "loyalty", "tier_cache", "refresh failed: "+err.Error())
		}
	}
	u.MembershipLevel = derived

	history, err := s.PointsRepo.ListByUser(userID, 50)
	if err != nil {
		return LoyaltyProfile{}, err
	}
	rewards, err := s.RewardRepo.ListUserRewards(userID)
	if err != nil {
		return LoyaltyProfile{}, err
	}

	return LoyaltyProfile{UserLoyalty: u, History: history, Rewards: rewards}, nil
}

// AvailableRewards lists catalog entries a user could redeem right now.
func (s LoyaltyService) AvailableRewards() ([]models.Reward, error) {
	return s.RewardRepo.ListAvailable()
}

// Redeem exchanges points for a reward. The redemption-counter claim and the
// points debit are both conditional updates, so concurrent redemptions of a
// last slot or of a near-empty balance admit exactly one winner.
func (s LoyaltyService) Redeem(userID, rewardID int64) error {
	rw, err := s.RewardRepo.GetByID(rewardID)
	if err != nil {
		return err
	}
	if !rw.Active {
		return domain.NotFoundError{Resource: "reward"}
	}
	if rw.ValidUntil != "" {
		until, perr := utils.ParseDateTime(rw.ValidUntil)
		if perr == nil && until.Before(time.Now()) {
			return domain.RewardExpiredError{RewardID: rewardID}
		}
	}

	u, err := s.UserRepo.GetLoyalty(userID)
	if err != nil {
		return err
	}
	if u.Points < rw.PointsRequired {
		return domain.InsufficientPointsError{Have: u.Points, Need: rw.PointsRequired}
	}

	claimed, err := s.RewardRepo.ClaimSlot(rewardID)
	if err != nil {
		return err
	}
	if !claimed {
		return domain.RedemptionLimitError{RewardID: rewardID}
	}

	debited, err := s.UserRepo.DebitPoints(userID, rw.PointsRequired)
	if err != nil {
		if rerr := s.RewardRepo.ReleaseSlot(rewardID); rerr != nil {
			utils.LogEvent(s.RequestID, "loyalty", "redeem", "slot release failed: "+rerr.Error())
		}
		return err
	}
	if !debited {
		// Balance changed between the read and the debit; give the slot back.
		if rerr := s.RewardRepo.ReleaseSlot(rewardID); rerr != nil {
			utils.LogEvent(s.RequestID, "loyalty", "redeem", "slot release failed: "+rerr.Error())
		}
		return domain.InsufficientPointsError{Have: u.Points, Need: rw.PointsRequired}
	}

	if err := s.RewardRepo.InsertUserReward(userID, rewardID); err != nil {
		if cerr := s.UserRepo.CreditPoints(userID, rw.PointsRequired); cerr != nil {
			utils.LogEvent(s.RequestID, "loyalty", "redeem", "points refund failed: "+cerr.Error())
		}
		if rerr := s.RewardRepo.ReleaseSlot(rewardID); rerr != nil {
			utils.LogEvent(s.RequestID, "loyalty", "redeem", "slot release failed: "+rerr.Error())
		}
		return err
	}
	if err := s.PointsRepo.Append(models.PointsEntry{
		UserID:       userID,
		Delta:        -rw.PointsRequired,
		BalanceAfter: u.Points - rw.PointsRequired,
		Description:  fmt.Sprintf("redeemed reward %q", rw.Name),
	}); err != nil {
		utils.LogEvent(s.RequestID, "loyalty", "redeem", "history append failed: "+err.Error())
	}

	utils.LogEvent(s.RequestID, "loyalty", "redeem",
		fmt.Sprintf("user_id=%d reward_id=%d points=%d", userID, rewardID, rw.PointsRequired))
	return nil
}

// EnsureSeed inserts the configured reward catalog entries that are missing.
// Keyed by name, so repeated calls are no-ops.
func (s LoyaltyService) EnsureSeed() (int, error) {
	created := 0
	for _, rw := range s.Seed {
		inserted, err := s.RewardRepo.SeedIfMissing(rw)
		if err != nil {
			return created, err
		}
		if inserted {
			created++
		}
	}
	utils.LogEvent(s.RequestID, "loyalty", "seed", fmt.Sprintf("created=%d", created))
	return created, nil
}
