package services

import (
	"fmt"

	"tourbackend/internal/domain/models"
	"tourbackend/internal/utils"
)

// Notifier is the port to the notification dispatcher, an external
// collaborator. Implementations must never block payment completion; a
// failed dispatch is logged and retried out of band, the payment stands.
type Notifier interface {
	PaymentCompleted(p models.Payment, b models.Booking)
	PaymentFailed(p models.Payment, reason string)
}

// LogNotifier is the default dispatcher: it records the event in the log
// stream the real dispatcher consumes.
type LogNotifier struct {
	RequestID string
}

func (n LogNotifier) PaymentCompleted(p models.Payment, b models.Booking) {
	utils.LogEvent(n.RequestID, "notify", "payment_completed",
		fmt.Sprintf("payment_id=%s booking_id=%d amount=%s", p.ID, b.ID, utils.FormatMoney(p.Amount)))
}

func (n LogNotifier) PaymentFailed(p models.Payment, reason string) {
	utils.LogEvent(n.RequestID, "notify", "payment_failed",
		fmt.Sprintf("payment_id=%s booking_id=%d reason=%s", p.ID, p.BookingID, reason))
}
