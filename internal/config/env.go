package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Env struct {
	AppAddr string
	GinMode string

	AdminJWTSecret string

	DistanceAPIURL     string
	DistanceAPITimeout time.Duration

	RedisAddr string

	Providers ProviderAccounts
}

// ProviderAccounts is the static receiving-account info shown to customers
// for methods that are not collected in person. Loaded once at startup and
// injected; never mutated.
type ProviderAccounts struct {
	BinanceWallet  string
	BinanceNetwork string

	RedotpayMerchantID string
	RedotpayVerifyURL  string
	BinanceVerifyURL   string

	MoneyGramReceiver string
	MoneyGramCity     string
	MoneyGramCountry  string
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))

	secret := strings.TrimSpace(os.Getenv("ADMIN_JWT_SECRET"))
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	distURL := strings.TrimSpace(os.Getenv("DISTANCE_API_URL"))
	if distURL == "" {
		distURL = "http://127.0.0.1:9090/distance"
	}

	distTimeout := 5 * time.Second
	if raw := strings.TrimSpace(os.Getenv("DISTANCE_API_TIMEOUT_MS")); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			distTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	return Env{
		AppAddr:            appAddr,
		GinMode:            ginMode,
		AdminJWTSecret:     secret,
		DistanceAPIURL:     distURL,
		DistanceAPITimeout: distTimeout,
		RedisAddr:          strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		Providers:          loadProviderAccounts(),
	}
}

func loadProviderAccounts() ProviderAccounts {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	return ProviderAccounts{
		BinanceWallet:      get("BINANCE_WALLET", "0x9f1c3aB7e21d44f0c8a6d02e51b7a9c33e58f410"),
		BinanceNetwork:     get("BINANCE_NETWORK", "BEP20"),
		BinanceVerifyURL:   get("BINANCE_VERIFY_URL", "https://bpay.binanceapi.com/binancepay/openapi/v2/order/query"),
		RedotpayMerchantID: get("REDOTPAY_MERCHANT_ID", "RDP-88431207"),
		RedotpayVerifyURL:  get("REDOTPAY_VERIFY_URL", "https://api.redotpay.com/v1/orders"),
		MoneyGramReceiver:  get("MONEYGRAM_RECEIVER", "Viaggio Tours S.R.L."),
		MoneyGramCity:      get("MONEYGRAM_CITY", "Rome"),
		MoneyGramCountry:   get("MONEYGRAM_COUNTRY", "Italy"),
	}
}
