package services

import (
	"context"
	"fmt"

	intconfig "tourbackend/internal/config"
	"tourbackend/internal/domain"
	"tourbackend/internal/domain/models"
	"tourbackend/internal/repositories"
	"tourbackend/internal/utils"

	"github.com/google/uuid"
)

// PaymentService drives the payment state machine:
//
//	pending -> pending_review | completed | failed
//	pending_review -> completed | failed
//
// completed and failed are terminal. Every transition is one conditional
// UPDATE; side effects run only for the caller that actually moved the row.
type PaymentService struct {
	PaymentRepo repositories.PaymentRepository
	BookingRepo repositories.BookingRepository
	Loyalty     LoyaltyService
	Notifier    Notifier
	Providers   map[string]PaymentProvider
	Accounts    intconfig.ProviderAccounts
	RequestID   string
}

// CreatePaymentInput is the caller-supplied part of a new payment. Detail
// fields apply to cash and bank_transfer only; provider methods get their
// details from static configured account info.
type CreatePaymentInput struct {
	Method        string `json:"method" binding:"required"`
	ReceivedBy    string `json:"received_by"`
	ReceiptNumber string `json:"receipt_number"`
	Reference     string `json:"reference"`
	BankName      string `json:"bank_name"`
	Notes         string `json:"notes"`
}

func (s PaymentService) notify() Notifier {
	if s.Notifier != nil {
		return s.Notifier
	}
	return LogNotifier{RequestID: s.RequestID}
}

// CreatePayment opens a payment in pending for a booking. Rejected when the
// booking already has a completed payment or the method is unknown.
func (s PaymentService) CreatePayment(bookingID int64, in CreatePaymentInput) (models.Payment, error) {
	if !models.ValidMethod(in.Method) {
		return models.Payment{}, domain.ValidationError{Field: "method", Msg: fmt.Sprintf("unknown payment method %q", in.Method)}
	}

	booking, err := s.BookingRepo.GetByID(bookingID)
	if err != nil {
		return models.Payment{}, err
	}
	if booking.Total <= 0 {
		return models.Payment{}, domain.ValidationError{Field: "booking", Msg: "booking has no priced total"}
	}

	done, err := s.PaymentRepo.HasCompletedForBooking(bookingID)
	if err != nil {
		return models.Payment{}, err
	}
	if done {
		return models.Payment{}, domain.ConflictError{Resource: "payment", Msg: "booking already has a completed payment"}
	}

	p := models.Payment{
		ID:        uuid.NewString(),
		BookingID: bookingID,
		Method:    in.Method,
		Amount:    booking.Total,
		Currency:  "EUR",
		Status:    models.PaymentPending,
	}

	switch in.Method {
	case models.MethodCash:
		p.Details = &models.CashDetails{
			ReceivedBy:    utils.TrimOrEmpty(in.ReceivedBy),
			ReceiptNumber: utils.TrimOrEmpty(in.ReceiptNumber),
			Notes:         utils.TrimOrEmpty(in.Notes),
		}
	case models.MethodBankTransfer:
		p.Details = &models.BankTransferDetails{
			Reference: utils.TrimOrEmpty(in.Reference),
			BankName:  utils.TrimOrEmpty(in.BankName),
		}
	case models.MethodBinance:
		p.ProviderRef = "BIN-" + uuid.NewString()
		p.Details = &models.BinanceDetails{
			WalletAddress:   s.Accounts.BinanceWallet,
			Network:         s.Accounts.BinanceNetwork,
			MerchantTradeNo: p.ProviderRef,
		}
	case models.MethodRedotpay:
		p.ProviderRef = "RDP-" + uuid.NewString()
		p.Details = &models.RedotpayDetails{
			MerchantID: s.Accounts.RedotpayMerchantID,
			OrderID:    p.ProviderRef,
		}
	case models.MethodMoneyGram:
		p.Details = &models.MoneyGramDetails{
			ReceiverName: s.Accounts.MoneyGramReceiver,
			City:         s.Accounts.MoneyGramCity,
			Country:      s.Accounts.MoneyGramCountry,
			Reference:    "MG-" + uuid.NewString(),
		}
	}

	if err := s.PaymentRepo.Create(p); err != nil {
		return models.Payment{}, err
	}
	if err := s.BookingRepo.SetPaymentRef(bookingID, p.ID); err != nil {
		utils.LogEvent(s.RequestID, "payment", "create", "booking payment ref warning: "+err.Error())
	}

	utils.LogEvent(s.RequestID, "payment", "create",
		fmt.Sprintf("payment_id=%s booking_id=%d method=%s", p.ID, bookingID, p.Method))
	return p, nil
}

// Get returns a payment by id.
func (s PaymentService) Get(paymentID string) (models.Payment, error) {
	return s.PaymentRepo.GetByID(paymentID)
}

// ListForBooking returns all payment attempts for a booking.
func (s PaymentService) ListForBooking(bookingID int64) ([]models.Payment, error) {
	return s.PaymentRepo.ListByBooking(bookingID)
}

// Confirm is the administrative completion for cash and bank transfers.
// Re-invoking on an already completed payment is a no-op.
func (s PaymentService) Confirm(paymentID string) error {
	p, err := s.PaymentRepo.GetByID(paymentID)
	if err != nil {
		return err
	}
	if p.Method != models.MethodCash && p.Method != models.MethodBankTransfer && p.Method != models.MethodMoneyGram {
		return domain.ValidationError{Field: "method", Msg: "use provider verification for " + p.Method}
	}
	return s.Complete(paymentID, "")
}

// Complete transitions a payment into completed and fires the side effects
// exactly once. The conditional UPDATE is the idempotency guard: it refuses
// terminal payments and payments whose booking was already settled by a
// sibling payment. A retry of an already completed payment re-derives the
// booking and loyalty effects (each is idempotent), repairing a crash that
// landed between the payment update and its side effects.
func (s PaymentService) Complete(paymentID, providerTx string) error {
	moved, err := s.PaymentRepo.MarkCompleted(paymentID, providerTx)
	if err != nil {
		return err
	}

	p, err := s.PaymentRepo.GetByID(paymentID)
	if err != nil {
		return err
	}

	if !moved {
		switch p.Status {
		case models.PaymentCompleted:
			utils.LogEvent(s.RequestID, "payment", "complete", "already completed, re-deriving side effects: "+paymentID)
			return s.settle(p, false)
		case models.PaymentFailed:
			return domain.StateTransitionError{Entity: "payment", From: p.Status, To: models.PaymentCompleted}
		default:
			// Still pending: the guard refused because a sibling payment
			// settled the booking first.
			done, derr := s.PaymentRepo.HasCompletedForBooking(p.BookingID)
			if derr == nil && done {
				return domain.ConflictError{Resource: "payment", Msg: "booking already has a completed payment"}
			}
			return domain.StateTransitionError{Entity: "payment", From: p.Status, To: models.PaymentCompleted}
		}
	}

	return s.settle(p, true)
}

// settle runs the completion side effects in a fixed order: booking, loyalty,
// notification. Booking confirm and accrual are idempotent re-derivations from
// the completed payment; the notification fires only for the caller that
// actually moved the row.
func (s PaymentService) settle(p models.Payment, notify bool) error {
	booking, err := s.BookingRepo.GetByID(p.BookingID)
	if err != nil {
		utils.LogEvent(s.RequestID, "payment", "complete", "booking load failed: "+err.Error())
		return nil
	}

	if _, err := s.BookingRepo.ConfirmIfPending(booking.ID); err != nil {
		utils.LogEvent(s.RequestID, "payment", "complete", "booking confirm failed: "+err.Error())
	}

	if err := s.Loyalty.AccrueForPayment(booking.UserID, p); err != nil {
		utils.LogEvent(s.RequestID, "payment", "complete", "loyalty accrue failed: "+err.Error())
	}

	if notify {
		// Dispatch failure never rolls the completion back.
		s.notify().PaymentCompleted(p, booking)
	}

	utils.LogEvent(s.RequestID, "payment", "complete",
		fmt.Sprintf("payment_id=%s booking_id=%d", p.ID, booking.ID))
	return nil
}

// MarkPendingReview records a customer's self-reported transfer proof.
// Allowed only from pending.
func (s PaymentService) MarkPendingReview(paymentID, proofURL string) error {
	p, err := s.PaymentRepo.GetByID(paymentID)
	if err != nil {
		return err
	}
	if p.Method != models.MethodBankTransfer && p.Method != models.MethodBinance {
		return domain.ValidationError{Field: "method", Msg: "review is for bank transfers and binance payments"}
	}

	moved, err := s.PaymentRepo.MarkPendingReview(paymentID, utils.TrimOrEmpty(proofURL))
	if err != nil {
		return err
	}
	if !moved {
		p, err := s.PaymentRepo.GetByID(paymentID)
		if err != nil {
			return err
		}
		return domain.StateTransitionError{Entity: "payment", From: p.Status, To: models.PaymentPendingReview}
	}
	return nil
}

// Verify queries the payment's provider synchronously and completes on a
// confirmed order. No state changes on a negative or failed check.
func (s PaymentService) Verify(ctx context.Context, paymentID string) (models.Payment, error) {
	p, err := s.PaymentRepo.GetByID(paymentID)
	if err != nil {
		return models.Payment{}, err
	}
	if p.Status == models.PaymentCompleted {
		return p, nil
	}
	if p.Status == models.PaymentFailed {
		return models.Payment{}, domain.StateTransitionError{Entity: "payment", From: p.Status, To: models.PaymentCompleted}
	}

	provider, ok := s.Providers[p.Method]
	if !ok {
		return models.Payment{}, domain.ValidationError{Field: "method", Msg: "no provider verification for " + p.Method}
	}

	verified, txID, err := provider.Verify(ctx, p)
	if err != nil {
		return models.Payment{}, err
	}
	if !verified {
		return models.Payment{}, domain.ValidationError{Field: "payment", Msg: "provider has not confirmed this payment"}
	}

	if err := s.Complete(paymentID, txID); err != nil {
		return models.Payment{}, err
	}
	return s.PaymentRepo.GetByID(paymentID)
}

// MarkFailed moves any non-terminal payment to failed. Re-failing a failed
// payment is a no-op; failing a completed payment is rejected.
func (s PaymentService) MarkFailed(paymentID, reason string) error {
	moved, err := s.PaymentRepo.MarkFailed(paymentID, reason)
	if err != nil {
		return err
	}
	if !moved {
		p, err := s.PaymentRepo.GetByID(paymentID)
		if err != nil {
			return err
		}
		if p.Status == models.PaymentFailed {
			return nil
		}
		return domain.StateTransitionError{Entity: "payment", From: p.Status, To: models.PaymentFailed}
	}

	p, err := s.PaymentRepo.GetByID(paymentID)
	if err == nil {
		s.notify().PaymentFailed(p, reason)
	}
	utils.LogEvent(s.RequestID, "payment", "fail",
		fmt.Sprintf("payment_id=%s reason=%s", paymentID, reason))
	return nil
}
