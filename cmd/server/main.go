package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	_ "github.com/flexprice/marketplace/docs/swagger"
	"github.com/flexprice/marketplace/internal/api"
	v1 "github.com/flexprice/marketplace/internal/api/v1"
	"github.com/flexprice/marketplace/internal/auth"
	"github.com/flexprice/marketplace/internal/cache"
	"github.com/flexprice/marketplace/internal/config"
	"github.com/flexprice/marketplace/internal/httpclient"
	"github.com/flexprice/marketplace/internal/integration"
	"github.com/flexprice/marketplace/internal/integration/stripe"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/flexprice/marketplace/internal/pyroscope"
	"github.com/flexprice/marketplace/internal/repository"
	"github.com/flexprice/marketplace/internal/sentry"
	"github.com/flexprice/marketplace/internal/service"
	"github.com/flexprice/marketplace/internal/supabase"
	"github.com/flexprice/marketplace/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// @title Marketplace Payments API
// @version 1.0
// @description Payment routing, provider onboarding and Stripe webhooks for the marketplace
// @BasePath /v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// Request DTOs validate through the package-level validator
	validator.NewValidator()

	// Initialize Fx application
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewCache,

			// HTTP Client
			httpclient.NewDefaultClient,

			// Data service
			supabase.NewClient,

			// Auth
			auth.NewProvider,

			// Repositories
			repository.NewProviderRepository,
			repository.NewBookingRepository,
			repository.NewUserRepository,
			repository.NewWebhookLogRepository,
			repository.NewCheckoutReconciler,

			// Payments processor
			stripe.NewClient,
			integration.NewFactory,
		),
	)

	// Monitoring
	opts = append(opts, sentry.Module(), pyroscope.Module())

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewCheckoutService,
			service.NewOnboardingService,
			service.NewPayoutService,
			service.NewWebhookService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			startAPIServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	checkoutService service.CheckoutService,
	onboardingService service.OnboardingService,
	payoutService service.PayoutService,
	webhookService service.WebhookService,
) api.Handlers {
	return api.Handlers{
		Health:   v1.NewHealthHandler(logger),
		Payment:  v1.NewPaymentHandler(checkoutService, logger),
		Provider: v1.NewProviderHandler(onboardingService, logger),
		Payout:   v1.NewPayoutHandler(payoutService, logger),
		Webhook:  v1.NewWebhookHandler(webhookService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger, authProvider auth.Provider) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger, authProvider)
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}
