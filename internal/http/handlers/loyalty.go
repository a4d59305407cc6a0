package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LoyaltyProfile returns points, the derived tier and the points history.
func (h Handler) LoyaltyProfile(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	profile, err := h.loyaltyService(c).Profile(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListRewards returns the currently redeemable catalog.
func (h Handler) ListRewards(c *gin.Context) {
	rewards, err := h.loyaltyService(c).AvailableRewards()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards": rewards})
}

// RedeemReward exchanges points for a reward.
func (h Handler) RedeemReward(c *gin.Context) {
	userID, ok := PathID(c, "id")
	if !ok {
		return
	}
	rewardID, ok := PathID(c, "rewardId")
	if !ok {
		return
	}

	if err := h.loyaltyService(c).Redeem(userID, rewardID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "redeemed"})
}

// SeedRewards inserts missing catalog entries (admin).
func (h Handler) SeedRewards(c *gin.Context) {
	created, err := h.loyaltyService(c).EnsureSeed()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}
