package api

import (
	v1 "github.com/flexprice/marketplace/internal/api/v1"
	"github.com/flexprice/marketplace/internal/auth"
	"github.com/flexprice/marketplace/internal/config"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/flexprice/marketplace/internal/metrics"
	"github.com/flexprice/marketplace/internal/rest/middleware"
	"github.com/flexprice/marketplace/internal/types"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Health   *v1.HealthHandler
	Payment  *v1.PaymentHandler
	Provider *v1.ProviderHandler
	Payout   *v1.PayoutHandler
	Webhook  *v1.WebhookHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, authProvider auth.Provider) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		metrics.Middleware,
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.PyroscopeMiddleware(cfg),
		middleware.ErrorHandler(logger),
	)

	router.GET("/health", handlers.Health.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1Group := router.Group("/v1")

	// Webhooks are authenticated by their signature
	webhooks := v1Group.Group("/webhooks")
	{
		webhooks.POST("/stripe", handlers.Webhook.HandleStripeWebhook)
	}

	private := v1Group.Group("/")
	private.Use(
		middleware.AuthenticateMiddleware(authProvider, logger),
		middleware.NewRateLimiter(cfg, logger).Handler,
	)
	registerV1Routes(private, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	payments := router.Group("/payments", middleware.RequireUser)
	{
		payments.POST("/sheet", handlers.Payment.CreatePaymentSheet)
	}

	customers := router.Group("/customers", middleware.RequireUser)
	{
		customers.POST("/ensure", handlers.Payment.EnsureCustomer)
	}

	providers := router.Group("/providers")
	{
		providers.POST("/onboarding", middleware.RequireUser, handlers.Provider.StartOnboarding)
		providers.GET("/:id/routing", handlers.Provider.GetRouting)
	}

	payouts := router.Group("/payouts", middleware.RequireServiceRole)
	{
		payouts.POST("", handlers.Payout.CreateManualPayout)
	}
}
