package handlers

import (
	"io"
	"net/http"

	"tourbackend/internal/domain"
	"tourbackend/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// BinanceWebhook receives Binance Pay order notifications.
func (h Handler) BinanceWebhook(c *gin.Context) {
	h.handleWebhook(c, models.MethodBinance)
}

// RedotpayWebhook receives Redotpay order notifications.
func (h Handler) RedotpayWebhook(c *gin.Context) {
	h.handleWebhook(c, models.MethodRedotpay)
}

// handleWebhook maps reconciliation outcomes onto the contract providers
// expect: 200 for anything processed (duplicates and late events included),
// 404 when the reference matches nothing, 400 for malformed payloads, and
// 5xx when we want a redelivery.
func (h Handler) handleWebhook(c *gin.Context, provider string) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable body", err)
		return
	}

	if err := h.webhookService(c).Handle(provider, raw); err != nil {
		switch {
		case domain.IsValidation(err):
			RespondDomainError(c, err)
		case domain.IsNotFound(err):
			RespondDomainError(c, err)
		default:
			// Internal failure: answer 500 so the provider retries later.
			respondError(c, http.StatusInternalServerError, "processing_failed", "temporary failure, retry later", nil)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
