package config

import "tourbackend/internal/domain/models"

// RewardSeed returns the default reward catalog. The slice is rebuilt on each
// call so callers cannot mutate the seed.
func RewardSeed() []models.Reward {
	return []models.Reward{
		{Name: "5% Discount Voucher", Type: models.RewardDiscount, PointsRequired: 200, Active: true},
		{Name: "10% Discount Voucher", Type: models.RewardDiscount, PointsRequired: 500, Active: true},
		{Name: "Free Airport Pickup", Type: models.RewardService, PointsRequired: 1000, Active: true},
		{Name: "Free Hourly Hire (1h)", Type: models.RewardService, PointsRequired: 2000, Active: true},
		{Name: "Vehicle Class Upgrade", Type: models.RewardUpgrade, PointsRequired: 2500, Active: true},
		{Name: "25% Discount Voucher", Type: models.RewardDiscount, PointsRequired: 3000, Active: true},
		{Name: "Free Intercity Transfer", Type: models.RewardService, PointsRequired: 5000, Active: true, MaxRedemptions: 50},
	}
}
