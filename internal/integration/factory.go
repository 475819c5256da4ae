package integration

import (
	"context"
	"sync"

	"github.com/flexprice/marketplace/internal/config"
	"github.com/flexprice/marketplace/internal/domain/booking"
	"github.com/flexprice/marketplace/internal/domain/provider"
	"github.com/flexprice/marketplace/internal/domain/user"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/integration/stripe"
	"github.com/flexprice/marketplace/internal/integration/stripe/webhook"
	"github.com/flexprice/marketplace/internal/logger"
)

// Factory assembles the payment processor integration
type Factory struct {
	config       *config.Configuration
	logger       *logger.Logger
	gateway      stripe.Gateway
	providerRepo provider.Repository
	userRepo     user.Repository
	reconciler   booking.Reconciler

	once   sync.Once
	stripe *StripeIntegration
}

// NewFactory creates a new integration factory
func NewFactory(
	config *config.Configuration,
	logger *logger.Logger,
	gateway stripe.Gateway,
	providerRepo provider.Repository,
	userRepo user.Repository,
	reconciler booking.Reconciler,
) *Factory {
	return &Factory{
		config:       config,
		logger:       logger,
		gateway:      gateway,
		providerRepo: providerRepo,
		userRepo:     userRepo,
		reconciler:   reconciler,
	}
}

// GetStripeIntegration returns the Stripe integration, building it on first use
func (f *Factory) GetStripeIntegration(ctx context.Context) (*StripeIntegration, error) {
	if f.gateway == nil {
		return nil, ierr.NewError("stripe gateway not configured").
			WithHint("Payments are not configured").
			Mark(ierr.ErrSystem)
	}

	f.once.Do(func() {
		f.stripe = &StripeIntegration{
			Gateway:        f.gateway,
			RoutingSvc:     stripe.NewRoutingService(f.gateway, f.providerRepo, f.config, f.logger),
			CustomerSvc:    stripe.NewCustomerService(f.gateway, f.userRepo, f.logger),
			ConnectSvc:     stripe.NewConnectService(f.gateway, f.providerRepo, f.config, f.logger),
			PaymentSvc:     stripe.NewPaymentService(f.gateway, f.config, f.logger),
			PayoutSvc:      stripe.NewPayoutService(f.gateway, f.logger),
			WebhookHandler: webhook.NewHandler(f.reconciler, f.logger),
		}
	})
	return f.stripe, nil
}

// StripeIntegration contains all Stripe integration services
type StripeIntegration struct {
	Gateway        stripe.Gateway
	RoutingSvc     *stripe.RoutingService
	CustomerSvc    *stripe.CustomerService
	ConnectSvc     *stripe.ConnectService
	PaymentSvc     *stripe.PaymentService
	PayoutSvc      *stripe.PayoutService
	WebhookHandler *webhook.Handler
}
