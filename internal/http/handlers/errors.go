package handlers

import (
	"net/http"

	"tourbackend/internal/domain"
	"tourbackend/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := gin.H{"error": message, "code": code}
	if details != nil {
		resp["details"] = details
	}
	if reqID := middleware.GetRequestID(c); reqID != "" {
		resp["request_id"] = reqID
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case domain.IsStateTransition(err):
		respondError(c, http.StatusConflict, "invalid_state_transition", err.Error(), nil)
	case domain.IsInsufficientPoints(err):
		respondError(c, http.StatusUnprocessableEntity, "insufficient_points", err.Error(), nil)
	case domain.IsRewardExpired(err):
		respondError(c, http.StatusGone, "reward_expired", err.Error(), nil)
	case domain.IsRedemptionLimit(err):
		respondError(c, http.StatusConflict, "redemption_limit_reached", err.Error(), nil)
	case domain.IsProviderUnavailable(err):
		respondError(c, http.StatusServiceUnavailable, "provider_unavailable", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}
