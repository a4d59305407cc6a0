package handlers

import (
	intconfig "tourbackend/internal/config"
	"tourbackend/internal/domain/models"
	"tourbackend/internal/http/middleware"
	"tourbackend/internal/pricing"
	"tourbackend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handler wires the long-lived pieces (config, pricer, provider strategies)
// into per-request service values.
type Handler struct {
	Env       intconfig.Env
	Pricer    pricing.Engine
	Providers map[string]services.PaymentProvider
}

func New(env intconfig.Env, cache *redis.Client) Handler {
	lookup := pricing.NewHTTPDistanceClient(env.DistanceAPIURL, env.DistanceAPITimeout, cache)
	return Handler{
		Env:    env,
		Pricer: pricing.Engine{Lookup: lookup},
		Providers: map[string]services.PaymentProvider{
			models.MethodBinance:  services.NewBinanceProvider(env.Providers.BinanceVerifyURL),
			models.MethodRedotpay: services.NewRedotpayProvider(env.Providers.RedotpayMerchantID, env.Providers.RedotpayVerifyURL),
		},
	}
}

func (h Handler) bookingService(c *gin.Context) services.BookingService {
	return services.BookingService{
		Pricer:    h.Pricer,
		RequestID: middleware.GetRequestID(c),
	}
}

func (h Handler) loyaltyService(c *gin.Context) services.LoyaltyService {
	return services.LoyaltyService{
		Seed:      intconfig.RewardSeed(),
		RequestID: middleware.GetRequestID(c),
	}
}

func (h Handler) paymentService(c *gin.Context) services.PaymentService {
	reqID := middleware.GetRequestID(c)
	return services.PaymentService{
		Loyalty:   h.loyaltyService(c),
		Notifier:  services.LogNotifier{RequestID: reqID},
		Providers: h.Providers,
		Accounts:  h.Env.Providers,
		RequestID: reqID,
	}
}

func (h Handler) webhookService(c *gin.Context) services.WebhookService {
	return services.WebhookService{
		Payments:  h.paymentService(c),
		Providers: h.Providers,
		RequestID: middleware.GetRequestID(c),
	}
}
