package api

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	intconfig "tourbackend/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func setupRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	prev := intconfig.DB
	intconfig.DB = conn
	t.Cleanup(func() {
		intconfig.DB = prev
		conn.Close()
	})

	env := intconfig.Env{AppAddr: ":0", AdminJWTSecret: "test-secret"}
	return NewRouter(env, nil), mock
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookContractMalformedPayload(t *testing.T) {
	r, mock := setupRouter(t)

	w := postJSON(r, "/api/webhooks/binance", `{"status":"SUCCESS"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed payload: got %d want 400, body %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no queries expected: %v", err)
	}
}

func TestWebhookContractUnknownReference(t *testing.T) {
	r, mock := setupRouter(t)

	mock.ExpectQuery("FROM payments WHERE provider_ref=").
		WillReturnError(sql.ErrNoRows)

	w := postJSON(r, "/api/webhooks/binance", `{"merchantTradeNo":"BIN-unknown","status":"SUCCESS"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown reference: got %d want 404, body %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWebhookContractDuplicateDelivery(t *testing.T) {
	r, mock := setupRouter(t)

	paymentCols := []string{
		"id", "booking_id", "method", "amount", "currency", "status",
		"provider_ref", "provider_tx", "details", "failure_reason", "completed_at", "created_at",
	}
	completed := func() *sqlmock.Rows {
		return sqlmock.NewRows(paymentCols).
			AddRow("pay-1", 7, "redotpay", 500.0, "EUR", "completed", "RDP-1", "tx-9", "", "", "", "")
	}

	bookingCols := []string{
		"id", "user_id", "customer_name", "customer_phone", "customer_email",
		"service_type", "origin", "destination", "vehicle_type", "passenger_count",
		"hours", "trip_date", "status", "total", "payment_id", "created_at",
	}

	mock.ExpectQuery("FROM payments WHERE provider_ref=").WillReturnRows(completed())
	mock.ExpectExec("UPDATE payments").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM payments WHERE id=").WillReturnRows(completed())
	// The redelivered event re-derives the booking state; guest, no loyalty.
	mock.ExpectQuery("FROM bookings WHERE id=").
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(7, 0, "Tester", "0800", "", "intercity", "Rome", "Naples", "vito", 2, 0, "", "confirmed", 500.0, "pay-1", ""))
	mock.ExpectExec("UPDATE bookings SET status=").WillReturnResult(sqlmock.NewResult(0, 0))

	w := postJSON(r, "/api/webhooks/redotpay", `{"orderId":"RDP-1","status":"paid","transactionId":"tx-9"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("duplicate delivery: got %d want 200, body %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r, _ := setupRouter(t)

	w := postJSON(r, "/api/payments/pay-1/confirm", `{}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: got %d want 401, body %s", w.Code, w.Body.String())
	}
}

func TestAdminTokenAcceptedForSeeding(t *testing.T) {
	r, mock := setupRouter(t)

	// All seven catalog entries already exist; seeding creates nothing.
	for range intconfig.RewardSeed() {
		mock.ExpectQuery("SELECT id FROM rewards WHERE name=").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"}).
		SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/rewards/seed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d want 200, body %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUnknownRoute(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("got %d want 404", w.Code)
	}
}
