package repository

import (
	"github.com/flexprice/marketplace/internal/domain/booking"
	"github.com/flexprice/marketplace/internal/domain/provider"
	"github.com/flexprice/marketplace/internal/domain/user"
	"github.com/flexprice/marketplace/internal/domain/webhooklog"
	"github.com/flexprice/marketplace/internal/logger"
	sb "github.com/flexprice/marketplace/internal/supabase"
	supabaseRepo "github.com/flexprice/marketplace/internal/repository/supabase"
)

func NewProviderRepository(client *sb.Client, logger *logger.Logger) provider.Repository {
	return supabaseRepo.NewProviderRepository(client, logger)
}

func NewBookingRepository(client *sb.Client, logger *logger.Logger) booking.Repository {
	return supabaseRepo.NewBookingRepository(client, logger)
}

func NewUserRepository(client *sb.Client, logger *logger.Logger) user.Repository {
	return supabaseRepo.NewUserRepository(client, logger)
}

func NewWebhookLogRepository(client *sb.Client, logger *logger.Logger) webhooklog.Repository {
	return supabaseRepo.NewWebhookLogRepository(client, logger)
}

func NewCheckoutReconciler(client *sb.Client, logger *logger.Logger) booking.Reconciler {
	return supabaseRepo.NewCheckoutReconciler(client, logger)
}
