package models

// Membership tiers, ordered. The tier is a pure projection of points and is
// persisted only as a cache.
const (
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
	TierDiamante = "diamante"
)

// Tier thresholds in points.
const (
	SilverThreshold   = 3_500
	GoldThreshold     = 10_000
	PlatinumThreshold = 100_000
	DiamanteThreshold = 1_000_000
)

// TierForPoints derives the membership tier from a points balance.
func TierForPoints(points int64) string {
	switch {
	case points >= DiamanteThreshold:
		return TierDiamante
	case points >= PlatinumThreshold:
		return TierPlatinum
	case points >= GoldThreshold:
		return TierGold
	case points >= SilverThreshold:
		return TierSilver
	default:
		return TierBronze
	}
}

// TierRank orders tiers for comparisons (bronze < silver < ... < diamante).
func TierRank(tier string) int {
	switch tier {
	case TierDiamante:
		return 4
	case TierPlatinum:
		return 3
	case TierGold:
		return 2
	case TierSilver:
		return 1
	default:
		return 0
	}
}

// UserLoyalty is the loyalty slice of a user record.
type UserLoyalty struct {
	UserID          int64   `json:"user_id"`
	Points          int64   `json:"points"`
	TotalSpent      float64 `json:"total_spent"`
	TotalBookings   int64   `json:"total_bookings"`
	MembershipLevel string  `json:"membership_level"`
}

// PointsEntry is an append-only ledger record of a points delta.
type PointsEntry struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	BookingID    int64  `json:"booking_id,omitempty"`
	PaymentID    string `json:"payment_id,omitempty"`
	Delta        int64  `json:"delta"`
	BalanceAfter int64  `json:"balance_after"`
	Description  string `json:"description,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// UserReward is a redemption record attached to a user.
type UserReward struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	RewardID   int64  `json:"reward_id"`
	RedeemedAt string `json:"redeemed_at"`
	Used       bool   `json:"used"`
}
