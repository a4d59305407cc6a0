package api

import (
	"log"
	stdhttp "net/http"

	intconfig "tourbackend/internal/config"
	h "tourbackend/internal/http/handlers"
	"tourbackend/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func NewRouter(env intconfig.Env, cache *redis.Client) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	hd := h.New(env, cache)
	admin := middleware.AdminOnly(env.AdminJWTSecret)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		api.POST("/quote", hd.Quote)

		bookings := api.Group("/bookings")
		bookings.POST("", hd.CreateBooking)
		bookings.GET("/:id", hd.GetBooking)
		bookings.POST("/:id/complete", admin, hd.CompleteBooking)
		bookings.POST("/:id/cancel", admin, hd.CancelBooking)
		bookings.POST("/:id/payments", hd.CreateBookingPayment)
		bookings.GET("/:id/payments", admin, hd.ListBookingPayments)

		payments := api.Group("/payments")
		payments.GET("/:id", hd.GetPayment)
		payments.POST("/:id/review", hd.ReviewPayment)
		payments.POST("/:id/verify", hd.VerifyPayment)
		payments.POST("/:id/confirm", admin, hd.ConfirmPayment)
		payments.POST("/:id/fail", admin, hd.FailPayment)

		webhooks := api.Group("/webhooks")
		webhooks.Use(middleware.WebhookRateLimit(rate.Limit(20), 40))
		webhooks.POST("/binance", hd.BinanceWebhook)
		webhooks.POST("/redotpay", hd.RedotpayWebhook)

		users := api.Group("/users")
		users.GET("/:id/loyalty", hd.LoyaltyProfile)
		users.POST("/:id/rewards/:rewardId", hd.RedeemReward)

		api.GET("/rewards", hd.ListRewards)
		api.POST("/admin/rewards/seed", admin, hd.SeedRewards)
	}

	return r
}
