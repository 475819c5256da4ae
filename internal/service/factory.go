package service

import (
	"context"

	"github.com/flexprice/marketplace/internal/cache"
	"github.com/flexprice/marketplace/internal/config"
	"github.com/flexprice/marketplace/internal/domain/booking"
	"github.com/flexprice/marketplace/internal/domain/provider"
	"github.com/flexprice/marketplace/internal/domain/user"
	"github.com/flexprice/marketplace/internal/domain/webhooklog"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/integration"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/flexprice/marketplace/internal/sentry"
	"github.com/flexprice/marketplace/internal/types"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Cache  cache.Cache
	Sentry *sentry.Service

	// Repositories
	ProviderRepo   provider.Repository
	BookingRepo    booking.Repository
	UserRepo       user.Repository
	WebhookLogRepo webhooklog.Repository

	// Integrations
	IntegrationFactory *integration.Factory
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	cache cache.Cache,
	sentry *sentry.Service,
	providerRepo provider.Repository,
	bookingRepo booking.Repository,
	userRepo user.Repository,
	webhookLogRepo webhooklog.Repository,
	integrationFactory *integration.Factory,
) ServiceParams {
	return ServiceParams{
		Logger:             logger,
		Config:             config,
		Cache:              cache,
		Sentry:             sentry,
		ProviderRepo:       providerRepo,
		BookingRepo:        bookingRepo,
		UserRepo:           userRepo,
		WebhookLogRepo:     webhookLogRepo,
		IntegrationFactory: integrationFactory,
	}
}

// requireUserID returns the authenticated end user or an authentication error
func requireUserID(ctx context.Context) (string, error) {
	userID := types.GetUserID(ctx)
	if userID == "" {
		return "", ierr.NewError("no authenticated user").
			WithHint("Sign in to continue").
			Mark(ierr.ErrUnauthorized)
	}
	return userID, nil
}
