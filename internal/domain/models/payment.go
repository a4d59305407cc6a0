package models

import (
	"encoding/json"
	"fmt"
)

// Payment methods.
const (
	MethodCash         = "cash"
	MethodBankTransfer = "bank_transfer"
	MethodBinance      = "binance"
	MethodRedotpay     = "redotpay"
	MethodMoneyGram    = "moneygram"
)

// Payment statuses. pending may move to pending_review, completed or failed;
// pending_review may move to completed or failed; completed and failed are
// terminal.
const (
	PaymentPending       = "pending"
	PaymentPendingReview = "pending_review"
	PaymentCompleted     = "completed"
	PaymentFailed        = "failed"
)

// Payment is evidence of a funds transfer for a booking. It never represents
// actual money movement.
type Payment struct {
	ID            string         `json:"id"`
	BookingID     int64          `json:"booking_id"`
	Method        string         `json:"method"`
	Amount        float64        `json:"amount"`
	Currency      string         `json:"currency"`
	Status        string         `json:"status"`
	ProviderRef   string         `json:"provider_ref,omitempty"`
	ProviderTx    string         `json:"provider_tx,omitempty"`
	Details       PaymentDetails `json:"details,omitempty"`
	FailureReason string         `json:"failure_reason,omitempty"`
	CompletedAt   string         `json:"completed_at,omitempty"`
	CreatedAt     string         `json:"created_at,omitempty"`
}

// Terminal reports whether the payment can no longer change status.
func (p Payment) Terminal() bool {
	return p.Status == PaymentCompleted || p.Status == PaymentFailed
}

// ValidMethod reports whether m is one of the supported payment methods.
func ValidMethod(m string) bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodBinance, MethodRedotpay, MethodMoneyGram:
		return true
	}
	return false
}

// PaymentDetails is the per-method detail variant. Exactly one concrete type
// exists per method; DecodeDetails selects it by the method tag.
type PaymentDetails interface {
	PaymentMethod() string
}

// CashDetails records the receipt info for an in-person cash payment.
type CashDetails struct {
	ReceivedBy    string `json:"received_by,omitempty"`
	ReceiptNumber string `json:"receipt_number,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

func (CashDetails) PaymentMethod() string { return MethodCash }

// BankTransferDetails records the customer's transfer reference and proof.
type BankTransferDetails struct {
	Reference string `json:"reference,omitempty"`
	BankName  string `json:"bank_name,omitempty"`
	ProofURL  string `json:"proof_url,omitempty"`
}

func (BankTransferDetails) PaymentMethod() string { return MethodBankTransfer }

// BinanceDetails carries the configured receiving wallet plus the provider's
// order reference and, once reconciled, the transaction hash.
type BinanceDetails struct {
	WalletAddress   string `json:"wallet_address"`
	Network         string `json:"network,omitempty"`
	MerchantTradeNo string `json:"merchant_trade_no"`
}

func (BinanceDetails) PaymentMethod() string { return MethodBinance }

// RedotpayDetails carries the configured merchant id and the order id the
// provider reports back in webhooks.
type RedotpayDetails struct {
	MerchantID string `json:"merchant_id"`
	OrderID    string `json:"order_id"`
}

func (RedotpayDetails) PaymentMethod() string { return MethodRedotpay }

// MoneyGramDetails is the static receiver info shown to the customer plus a
// per-payment reference used to match the incoming transfer by hand.
type MoneyGramDetails struct {
	ReceiverName string `json:"receiver_name"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Reference    string `json:"reference"`
}

func (MoneyGramDetails) PaymentMethod() string { return MethodMoneyGram }

// DecodeDetails unmarshals a stored detail blob into the variant selected by
// the payment method. Empty blobs yield a zero-valued variant.
func DecodeDetails(method string, raw []byte) (PaymentDetails, error) {
	decode := func(dst PaymentDetails) (PaymentDetails, error) {
		if len(raw) == 0 {
			return dst, nil
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, fmt.Errorf("decode %s details: %w", method, err)
		}
		return dst, nil
	}

	switch method {
	case MethodCash:
		return decode(&CashDetails{})
	case MethodBankTransfer:
		return decode(&BankTransferDetails{})
	case MethodBinance:
		return decode(&BinanceDetails{})
	case MethodRedotpay:
		return decode(&RedotpayDetails{})
	case MethodMoneyGram:
		return decode(&MoneyGramDetails{})
	default:
		return nil, fmt.Errorf("unknown payment method %q", method)
	}
}

// EncodeDetails marshals a detail variant for storage. Nil encodes as empty.
func EncodeDetails(d PaymentDetails) ([]byte, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}
