package models

// Reward types.
const (
	RewardDiscount = "discount"
	RewardService  = "service"
	RewardUpgrade  = "upgrade"
)

// Reward is a catalog entry redeemable for points. MaxRedemptions of zero
// means unlimited; ValidUntil empty means no expiry.
type Reward struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	Type               string `json:"type"`
	PointsRequired     int64  `json:"points_required"`
	Active             bool   `json:"active"`
	ValidUntil         string `json:"valid_until,omitempty"`
	MaxRedemptions     int64  `json:"max_redemptions,omitempty"`
	CurrentRedemptions int64  `json:"current_redemptions"`
}

// ValidRewardType reports whether t is a known reward type.
func ValidRewardType(t string) bool {
	switch t {
	case RewardDiscount, RewardService, RewardUpgrade:
		return true
	}
	return false
}
