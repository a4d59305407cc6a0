package handlers

import (
	"net/http"

	"tourbackend/internal/services"

	"github.com/gin-gonic/gin"
)

// CreateBooking submits a booking; the price is computed server-side.
func (h Handler) CreateBooking(c *gin.Context) {
	var in services.CreateBookingInput
	if !BindJSONOrError(c, &in) {
		return
	}

	b, err := h.bookingService(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h Handler) GetBooking(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	b, err := h.bookingService(c).Get(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CompleteBooking marks the service as delivered (admin).
func (h Handler) CompleteBooking(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	if err := h.bookingService(c).Complete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

// CancelBooking cancels a pending booking (admin).
func (h Handler) CancelBooking(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	if err := h.bookingService(c).Cancel(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// CreateBookingPayment initiates a payment for the booking.
func (h Handler) CreateBookingPayment(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	var in services.CreatePaymentInput
	if !BindJSONOrError(c, &in) {
		return
	}

	p, err := h.paymentService(c).CreatePayment(id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ListBookingPayments lists payment attempts for reconciliation review.
func (h Handler) ListBookingPayments(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}

	payments, err := h.paymentService(c).ListForBooking(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
