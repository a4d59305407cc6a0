package services

import (
	"fmt"

	"tourbackend/internal/domain"
	"tourbackend/internal/repositories"
	"tourbackend/internal/utils"
)

// WebhookService reconciles inbound provider notifications against payments.
// Providers deliver at least once and may redeliver or arrive late; every
// such event must resolve to 200 without firing side effects twice.
type WebhookService struct {
	PaymentRepo repositories.PaymentRepository
	Payments    PaymentService
	Providers   map[string]PaymentProvider
	RequestID   string
}

// Handle parses the raw body with the named provider's strategy, matches the
// payment by the provider-side order reference and drives the state machine.
//
// Error contract for the HTTP layer: ValidationError means a malformed
// payload (400), NotFoundError means no matching payment (404, provider will
// retry); everything else is processed (200), including events for payments
// already settled by another path.
func (s WebhookService) Handle(providerName string, raw []byte) error {
	provider, ok := s.Providers[providerName]
	if !ok {
		return domain.NotFoundError{Resource: "provider"}
	}

	ev, err := provider.ParseWebhook(raw)
	if err != nil {
		return err
	}

	p, err := s.PaymentRepo.GetByProviderRef(ev.Reference)
	if err != nil {
		// Unknown reference: tell the provider, let it retry. No internal retry.
		return err
	}

	utils.LogEvent(s.RequestID, "webhook", providerName,
		fmt.Sprintf("ref=%s status=%s payment_id=%s", ev.Reference, ev.Status, p.ID))

	switch {
	case provider.Succeeded(ev.Status):
		if err := s.Payments.Complete(p.ID, ev.TransactionID); err != nil {
			if domain.IsStateTransition(err) || domain.IsConflict(err) {
				// Late success for a payment already failed, or for a booking
				// settled by a sibling payment. Permanent either way; absorb.
				utils.LogEvent(s.RequestID, "webhook", providerName, "late event discarded: "+err.Error())
				return nil
			}
			return err
		}
		return nil

	case provider.Failed(ev.Status):
		if err := s.Payments.MarkFailed(p.ID, "provider reported "+ev.Status); err != nil {
			if domain.IsStateTransition(err) {
				utils.LogEvent(s.RequestID, "webhook", providerName, "late event discarded: "+err.Error())
				return nil
			}
			return err
		}
		return nil

	default:
		return domain.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown provider status %q", ev.Status)}
	}
}
