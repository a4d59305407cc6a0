package handlers

import (
	"net/http"

	"tourbackend/internal/pricing"

	"github.com/gin-gonic/gin"
)

// Quote prices a service request without creating anything.
func (h Handler) Quote(c *gin.Context) {
	var req pricing.QuoteRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	quote, err := h.Pricer.Price(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}
