package services

import (
	"context"
	"testing"

	intconfig "tourbackend/internal/config"
	"tourbackend/internal/domain"
	"tourbackend/internal/domain/models"
	"tourbackend/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

var paymentCols = []string{
	"id", "booking_id", "method", "amount", "currency", "status",
	"provider_ref", "provider_tx", "details", "failure_reason", "completed_at", "created_at",
}

var bookingCols = []string{
	"id", "user_id", "customer_name", "customer_phone", "customer_email",
	"service_type", "origin", "destination", "vehicle_type", "passenger_count",
	"hours", "trip_date", "status", "total", "payment_id", "created_at",
}

var userCols = []string{"id", "points", "total_spent", "total_bookings", "membership_level"}

func paymentRow(id string, bookingID int64, method, status string, amount float64) *sqlmock.Rows {
	return sqlmock.NewRows(paymentCols).
		AddRow(id, bookingID, method, amount, "EUR", status, "", "", "", "", "", "")
}

func bookingRow(id, userID int64, status string, total float64) *sqlmock.Rows {
	return sqlmock.NewRows(bookingCols).
		AddRow(id, userID, "Tester", "0800", "", "hourly", "", "", "vito", 2, 2, "", status, total, "", "")
}

type recordingNotifier struct {
	completed int
	failed    int
}

func (n *recordingNotifier) PaymentCompleted(models.Payment, models.Booking) { n.completed++ }
func (n *recordingNotifier) PaymentFailed(models.Payment, string)           { n.failed++ }

func newPaymentService(db sqlmockDB, notifier Notifier) PaymentService {
	return PaymentService{
		PaymentRepo: repositories.PaymentRepository{DB: db.conn},
		BookingRepo: repositories.BookingRepository{DB: db.conn},
		Loyalty: LoyaltyService{
			UserRepo:   repositories.UserRepository{DB: db.conn},
			PointsRepo: repositories.PointsRepository{DB: db.conn},
			RewardRepo: repositories.RewardRepository{DB: db.conn},
		},
		Notifier: notifier,
		Accounts: intconfig.ProviderAccounts{
			BinanceWallet:      "0xwallet",
			BinanceNetwork:     "BEP20",
			RedotpayMerchantID: "RDP-TEST",
			MoneyGramReceiver:  "Receiver",
		},
	}
}

func TestConfirmSideEffectsFireExactlyOnce(t *testing.T) {
	db := newMockDB(t)
	defer db.Close()

	notifier := &recordingNotifier{}
	svc := newPaymentService(db, notifier)

	// First confirm: transition wins, side effects run.
	db.mock.ExpectQuery("FROM payments WHERE id=").
		WillReturnRows(paymentRow("pay-1", 7, "cash", "pending", 12345))
	db.mock.ExpectExec("UPDATE payments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	db.mock.ExpectQuery("FROM payments WHERE id=").
		WillReturnRows(paymentRow("pay-1", 7, "cash", "completed", 12345))
	db.mock.ExpectQuery("FROM bookings WHERE id=").
		WillReturnRows(bookingRow(7, 3, "pending", 12345))
	db.mock.ExpectExec("UPDATE bookings SET status=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	db.mock.ExpectQuery("FROM users").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(3, 0, 0, 0, "bronze"))
	db.mock.ExpectExec("INSERT IGNORE INTO points_history").
		WillReturnResult(sqlmock.NewResult(1, 1))
	db.mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.Confirm("pay-1"); err != nil {
		t.Fatalf("first confirm error: %v", err)
	}

	// Second confirm: the conditional update finds the row already terminal,
	// the booking and loyalty effects are re-derived (all no-ops here) and the
	// notification does not fire again.
	db.mock.ExpectQuery("FROM payments WHERE id=").
		WillReturnRows(paymentRow("pay-1", 7, "cash", "completed", 12345))
	db.mock.ExpectExec("UPDATE payments").
		WillReturnResult(sqlmock.NewResult(0, 0))
	db.mock.ExpectQuery("FROM payments WHERE id=").
		WillReturnRows(paymentRow("pay-1", 7, "cash", "completed", 12345))
	db.mock.ExpectQuery("FROM bookings WHERE id=").
		WillReturnRows(bookingRow(7, 3, "confirmed", 12345))
	db.mock.ExpectExec("UPDATE bookings SET status=").
		WillReturnResult(sqlmock.NewResult(0, 0))
	db.mock.ExpectQuery("FROM users").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(3, 1234, 12345, 1, "bronze"))
	db.mock.ExpectExec("INSERT IGNORE INTO points_history").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := svc.Confirm("pay-1"); err != nil {
		t.Fatalf("second confirm should be a no-op, got %v", err)
	}

	if notifier.completed != 1 {
		t.Fatalf("completion notification fired %d times, want 1", notifier.completed)
	}
	if err := db.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompleteRefusedWhenSiblingSettledBooking(t *testing.T) {
	db := newMockDB(t)
	defer db.Close()

	notifier := &recordingNotifier{}
	svc := newPaymentService(db, notifier)

	// pay-b is still pending, but pay-a already completed for the same
	// booking: the booking-level guard refuses the update.
	db.mock.ExpectExec("UPDATE payments").
		WillReturnResult(sqlmock.NewResult(0, 0))
	db.mock.ExpectQuery("FROM payments WHERE id=").
		WillReturnRows(paymentRow("pay-b", 7, "binance", "pending", 500))
	db.mock.ExpectQuery("SELECT id FROM payments WHERE booking_id=").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("pay-a"))

	if err := svc.Complete("pay-b", "tx-dup"); !domain.IsConflict(err) {
		t.Fatalf("expected conflict for sibling-settled booking, got %v", err)
	}
	if notifier.completed != 0 {
		t.Fatalf("no notification may fire for the losing payment, got %d", notifier.completed)
	}
	if err := db.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDuplicateCompletionRepairsMissedAccrual(t *testing.T) {
	db := newMockDB(t)
	defer db.Close()

	notifier := &recordingNotifier{}
	svc := newPaymentService(db, notifier)

	// The payment row is completed but the booking is still pending and the
	// accrual never landed, as after a crash mid side effects. A retried
	// completion must repair both without re-notifying.
	db.mock.ExpectExec("UPDATE payments").
		WillReturnResult(sqlmock.NewResult(0, 0))
	db.mock.ExpectQuery("FROM payments WHERE id=").
		WillReturnRows(paymentRow("pay-1", 7, "binance", "completed", 250))
	db.mock.ExpectQuery("FROM bookings WHERE id=").
		WillReturnRows(bookingRow(7, 3, "pending", 250))
	db.mock.ExpectExec("UPDATE bookings SET status=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	db.mock.ExpectQuery("FROM users").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(3, 0, 0, 0, "bronze"))
	db.mock.ExpectExec("INSERT IGNORE INTO points_history").
		WillReturnResult(sqlmock.NewResult(1, 1))
	db.mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.Complete("pay-1", ""); err != nil {
		t.Fatalf("retried completion must succeed, got %v", err)
	}
	if notifier.completed != 0 {
		t.Fatalf("repair must not re-notify, got %d notifications", notifier.completed)
	}
	if err := db.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreatePaymentRejectsDuplicateCompleted(t *testing.T) {
	db := newMockDB(t)
	defer db.Close()

	svc := newPaymentService(db, &recordingNotifier{})

	db.mock.ExpectQuery("FROM bookings WHERE id=").
		WillReturnRows(bookingRow(7, 3, "pending", 500))
	db.mock.ExpectQuery("SELECT id FROM payments WHERE booking_id=").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("pay-0"))

	_, err := svc.CreatePayment(7, CreatePaymentInput{Method: "cash"})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict for duplicate completed payment, got %v", err)
	}
	if err := db.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreatePaymentUnknownMethod(t *testing.T) {
	db := newMockDB(t)
	defer db.Close()

	svc := newPaymentService(db, &recordingNotifier{})

	_, err := svc.CreatePayment(7, CreatePaymentInput{Method: "paypal"})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreatePaymentBinanceUsesStaticAccount(t *testing.T) {
	db := newMockDB(t)
	defer db.Close()

	svc := newPaymentService(db, &recordingNotifier{})

	db.mock.ExpectQuery("FROM bookings WHERE id=").
		WillReturnRows(bookingRow(7, 3, "pending", 500))
	db.mock.ExpectQuery("SELECT id FROM payments WHERE booking_id=").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	db.mock.ExpectExec("INSERT INTO payments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	db.mock.ExpectExec("UPDATE bookings SET payment_id=").
		WillReturnResult(sqlmock.NewResult(0, 1))

	p, err := svc.CreatePayment(7, CreatePaymentInput{Method: "binance"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ProviderRef == "" {
		t.Fatal("binance payment must carry a provider reference")
	}
	details, ok := p.Details.(*models.BinanceDetails)
	if !ok {
		t.Fatalf("expected binance details, got %T", p.Details)
	}
	if details.WalletAddress != "0xwallet" {
		t.Fatalf("wallet must come from static config, got %q", details.WalletAddress)
	}
	if details.MerchantTradeNo != p.ProviderRef {
		t.Fatal("details must echo the provider reference")
	}
	if err := db.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreatePaymentMoneyGramReference(t *testing.T) {
	db := newMockDB(t)
	defer db.Close()

	svc := newPaymentService(db, &recordingNotifier{})

	db.mock.ExpectQuery("FROM bookings WHERE id=").
		WillReturnRows(bookingRow(7, 3, "pending", 500))
	db.mock.ExpectQuery("SELECT id FROM payments WHERE booking_id=").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	db.mock.ExpectExec("INSERT INTO payments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	db.mock.ExpectExec("UPDATE bookings SET payment_id=").
		WillReturnResult(sqlmock.NewResult(0, 1))

	p, err := svc.CreatePayment(7, CreatePaymentInput{Method: "moneygram"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	details, ok := p.Details.(*models.MoneyGramDetails)
	if !ok {
		t.Fatalf("expected moneygram details, got %T", p.Details)
	}
	if details.ReceiverName != "Receiver" {
		t.Fatalf("receiver must come from static config, got %q", details.ReceiverName)
	}
	if details.Reference == "" {
		t.Fatal("moneygram payment must carry a matching reference")
	}
	if err := db.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkFailedTerminalRules(t *testing.T) {
	db := newMockDB(t)
	defer db.Close()

	svc := newPaymentService(db, &recordingNotifier{})

	// Re-failing a failed payment is a no-op.
	db.mock.ExpectExec("UPDATE payments").
		WillReturnResult(sqlmock.NewResult(0, 0))
	db.mock.ExpectQuery("FROM payments WHERE id=").
		WillReturnRows(paymentRow("pay-1", 7, "binance", "failed", 500))

	if err := svc.MarkFailed("pay-1", "provider reported FAILED"); err != nil {
		t.Fatalf("re-failing should be a no-op, got %v", err)
	}

	// Failing a completed payment is rejected.
	db.mock.ExpectExec("UPDATE payments").
		WillReturnResult(sqlmock.NewResult(0, 0))
	db.mock.ExpectQuery("FROM payments WHERE id=").
		WillReturnRows(paymentRow("pay-2", 7, "binance", "completed", 500))

	if err := svc.MarkFailed("pay-2", "late cancel"); !domain.IsStateTransition(err) {
		t.Fatalf("expected state transition error, got %v", err)
	}
	if err := db.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

type stubProvider struct {
	name     string
	verified bool
	txID     string
	err      error
}

func (p stubProvider) Name() string { return p.name }
func (p stubProvider) ParseWebhook(raw []byte) (ProviderEvent, error) {
	return ProviderEvent{}, nil
}
func (p stubProvider) Succeeded(status string) bool { return status == "ok" }
func (p stubProvider) Failed(status string) bool    { return status == "bad" }
func (p stubProvider) Verify(context.Context, models.Payment) (bool, string, error) {
	return p.verified, p.txID, p.err
}

func TestVerifyCompletesOnProviderSuccess(t *testing.T) {
	db := newMockDB(t)
	defer db.Close()

	svc := newPaymentService(db, &recordingNotifier{})
	svc.Providers = map[string]PaymentProvider{"binance": stubProvider{name: "binance", verified: true, txID: "tx-99"}}

	db.mock.ExpectQuery("FROM payments WHERE id=").
		WillReturnRows(paymentRow("pay-1", 7, "binance", "pending", 500))
	db.mock.ExpectExec("UPDATE payments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	db.mock.ExpectQuery("FROM payments WHERE id=").
		WillReturnRows(paymentRow("pay-1", 7, "binance", "completed", 500))
	// Guest booking: no loyalty side effects.
	db.mock.ExpectQuery("FROM bookings WHERE id=").
		WillReturnRows(bookingRow(7, 0, "pending", 500))
	db.mock.ExpectExec("UPDATE bookings SET status=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	db.mock.ExpectQuery("FROM payments WHERE id=").
		WillReturnRows(paymentRow("pay-1", 7, "binance", "completed", 500))

	p, err := svc.Verify(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != models.PaymentCompleted {
		t.Fatalf("expected completed, got %s", p.Status)
	}
	if err := db.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestVerifyNegativeCheckChangesNothing(t *testing.T) {
	db := newMockDB(t)
	defer db.Close()

	svc := newPaymentService(db, &recordingNotifier{})
	svc.Providers = map[string]PaymentProvider{"binance": stubProvider{name: "binance", verified: false}}

	db.mock.ExpectQuery("FROM payments WHERE id=").
		WillReturnRows(paymentRow("pay-1", 7, "binance", "pending", 500))

	_, err := svc.Verify(context.Background(), "pay-1")
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := db.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestVerifyProviderOutageIsRetryable(t *testing.T) {
	db := newMockDB(t)
	defer db.Close()

	svc := newPaymentService(db, &recordingNotifier{})
	svc.Providers = map[string]PaymentProvider{
		"binance": stubProvider{name: "binance", err: domain.ProviderUnavailableError{Provider: "binance"}},
	}

	db.mock.ExpectQuery("FROM payments WHERE id=").
		WillReturnRows(paymentRow("pay-1", 7, "binance", "pending", 500))

	_, err := svc.Verify(context.Background(), "pay-1")
	if !domain.IsProviderUnavailable(err) {
		t.Fatalf("expected provider unavailable, got %v", err)
	}
}
