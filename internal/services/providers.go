package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tourbackend/internal/domain"
	"tourbackend/internal/domain/models"
)

// ProviderEvent is the normalized form of an inbound provider notification.
type ProviderEvent struct {
	Reference     string
	Status        string
	TransactionID string
}

// PaymentProvider abstracts one external payment provider. Webhook payload
// parsing and synchronous verification are provider-specific; everything
// downstream works on the normalized event.
type PaymentProvider interface {
	Name() string
	ParseWebhook(raw []byte) (ProviderEvent, error)
	Succeeded(status string) bool
	Failed(status string) bool
	// Verify queries the provider for the payment's order status. It must
	// return within the client timeout; transport errors surface as
	// ProviderUnavailableError.
	Verify(ctx context.Context, p models.Payment) (verified bool, txID string, err error)
}

const providerVerifyTimeout = 8 * time.Second

// BinanceProvider handles Binance Pay order notifications and queries.
type BinanceProvider struct {
	VerifyURL string
	Client    *http.Client
}

func NewBinanceProvider(verifyURL string) BinanceProvider {
	return BinanceProvider{
		VerifyURL: verifyURL,
		Client:    &http.Client{Timeout: providerVerifyTimeout},
	}
}

func (BinanceProvider) Name() string { return models.MethodBinance }

func (p BinanceProvider) ParseWebhook(raw []byte) (ProviderEvent, error) {
	var payload struct {
		MerchantTradeNo string `json:"merchantTradeNo"`
		Status          string `json:"status"`
		TransactionID   string `json:"transactionId"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ProviderEvent{}, domain.ValidationError{Field: "payload", Msg: "malformed webhook body", Err: err}
	}
	if strings.TrimSpace(payload.MerchantTradeNo) == "" {
		return ProviderEvent{}, domain.ValidationError{Field: "merchantTradeNo", Msg: "required"}
	}
	if strings.TrimSpace(payload.Status) == "" {
		return ProviderEvent{}, domain.ValidationError{Field: "status", Msg: "required"}
	}
	return ProviderEvent{
		Reference:     strings.TrimSpace(payload.MerchantTradeNo),
		Status:        strings.ToUpper(strings.TrimSpace(payload.Status)),
		TransactionID: strings.TrimSpace(payload.TransactionID),
	}, nil
}

func (BinanceProvider) Succeeded(status string) bool {
	return status == "SUCCESS" || status == "PAID"
}

func (BinanceProvider) Failed(status string) bool {
	return status == "FAILED" || status == "CANCELLED"
}

func (p BinanceProvider) Verify(ctx context.Context, pay models.Payment) (bool, string, error) {
	var out struct {
		Status        string `json:"status"`
		TransactionID string `json:"transactionId"`
	}
	if err := p.query(ctx, url.Values{"merchantTradeNo": {pay.ProviderRef}}, &out); err != nil {
		return false, "", err
	}
	return p.Succeeded(strings.ToUpper(out.Status)), out.TransactionID, nil
}

func (p BinanceProvider) query(ctx context.Context, params url.Values, dst any) error {
	return providerQuery(ctx, p.Client, p.Name(), p.VerifyURL, params, dst)
}

// RedotpayProvider handles Redotpay order notifications and queries.
type RedotpayProvider struct {
	MerchantID string
	VerifyURL  string
	Client     *http.Client
}

func NewRedotpayProvider(merchantID, verifyURL string) RedotpayProvider {
	return RedotpayProvider{
		MerchantID: merchantID,
		VerifyURL:  verifyURL,
		Client:     &http.Client{Timeout: providerVerifyTimeout},
	}
}

func (RedotpayProvider) Name() string { return models.MethodRedotpay }

func (p RedotpayProvider) ParseWebhook(raw []byte) (ProviderEvent, error) {
	var payload struct {
		OrderID       string `json:"orderId"`
		Status        string `json:"status"`
		TransactionID string `json:"transactionId"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ProviderEvent{}, domain.ValidationError{Field: "payload", Msg: "malformed webhook body", Err: err}
	}
	if strings.TrimSpace(payload.OrderID) == "" {
		return ProviderEvent{}, domain.ValidationError{Field: "orderId", Msg: "required"}
	}
	if strings.TrimSpace(payload.Status) == "" {
		return ProviderEvent{}, domain.ValidationError{Field: "status", Msg: "required"}
	}
	return ProviderEvent{
		Reference:     strings.TrimSpace(payload.OrderID),
		Status:        strings.ToLower(strings.TrimSpace(payload.Status)),
		TransactionID: strings.TrimSpace(payload.TransactionID),
	}, nil
}

func (RedotpayProvider) Succeeded(status string) bool {
	return status == "paid" || status == "completed"
}

func (RedotpayProvider) Failed(status string) bool {
	return status == "failed" || status == "cancelled"
}

func (p RedotpayProvider) Verify(ctx context.Context, pay models.Payment) (bool, string, error) {
	var out struct {
		Status        string `json:"status"`
		TransactionID string `json:"transactionId"`
	}
	params := url.Values{"merchantId": {p.MerchantID}, "orderId": {pay.ProviderRef}}
	if err := providerQuery(ctx, p.Client, p.Name(), p.VerifyURL, params, &out); err != nil {
		return false, "", err
	}
	return p.Succeeded(strings.ToLower(out.Status)), out.TransactionID, nil
}

func providerQuery(ctx context.Context, client *http.Client, name, baseURL string, params url.Values, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, providerVerifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.InternalError{Msg: "build verify request", Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return domain.ProviderUnavailableError{Provider: name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ProviderUnavailableError{Provider: name, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return domain.ProviderUnavailableError{Provider: name, Err: err}
	}
	return nil
}
