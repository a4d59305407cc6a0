package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h Handler) GetPayment(c *gin.Context) {
	id := c.Param("id")

	p, err := h.paymentService(c).Get(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ReviewPayment stores the customer's self-reported transfer proof and moves
// the payment to pending_review.
func (h Handler) ReviewPayment(c *gin.Context) {
	id := c.Param("id")

	var in struct {
		ProofURL string `json:"proof_url"`
	}
	if !BindJSONOrError(c, &in) {
		return
	}

	if err := h.paymentService(c).MarkPendingReview(id, in.ProofURL); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "pending_review"})
}

// ConfirmPayment is the administrative completion for cash/bank transfers.
// Retried clicks are no-ops.
func (h Handler) ConfirmPayment(c *gin.Context) {
	id := c.Param("id")

	if err := h.paymentService(c).Confirm(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

// FailPayment moves a non-terminal payment to failed (admin).
func (h Handler) FailPayment(c *gin.Context) {
	id := c.Param("id")

	var in struct {
		Reason string `json:"reason"`
	}
	if !BindJSONOrError(c, &in) {
		return
	}

	if err := h.paymentService(c).MarkFailed(id, in.Reason); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "failed"})
}

// VerifyPayment checks the order with the payment's provider synchronously.
func (h Handler) VerifyPayment(c *gin.Context) {
	id := c.Param("id")

	p, err := h.paymentService(c).Verify(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
