package stripe

import (
	"context"

	"github.com/flexprice/marketplace/internal/config"
	"github.com/flexprice/marketplace/internal/domain/provider"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/flexprice/marketplace/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

const basisPointsDenominator = 10000

// RoutingService decides between destination charges and manual payouts
type RoutingService struct {
	gateway      Gateway
	providerRepo provider.Repository
	feeBPS       int64
	rule         types.CapabilityRule
	logger       *logger.Logger
}

func NewRoutingService(
	gateway Gateway,
	providerRepo provider.Repository,
	cfg *config.Configuration,
	logger *logger.Logger,
) *RoutingService {
	return &RoutingService{
		gateway:      gateway,
		providerRepo: providerRepo,
		feeBPS:       cfg.Stripe.PlatformFeeBPS,
		rule:         cfg.Stripe.CapabilityRule,
		logger:       logger,
	}
}

// ApplicationFee returns round(amount * bps / 10000), rounding half away from zero
func ApplicationFee(amount int64, bps int64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(bps)).
		Div(decimal.NewFromInt(basisPointsDenominator)).
		Round(0).
		IntPart()
}

// ResolveRouting decides how a payment of amount minor units to providerID is routed.
// Processor errors while checking the destination downgrade to a manual payout and are never
// returned.
func (s *RoutingService) ResolveRouting(ctx context.Context, providerID string, amount int64) (*Routing, error) {
	if amount < 0 {
		return nil, ierr.NewError("amount must not be negative").
			WithHint("Amount must be zero or greater").
			WithReportableDetails(map[string]any{"amount": amount}).
			Mark(ierr.ErrValidation)
	}

	p, err := s.providerRepo.Get(ctx, providerID)
	if err != nil {
		return nil, err
	}

	routing := &Routing{
		Strategy:   types.RoutingStrategyManualPayout,
		ProviderID: providerID,
		Amount:     amount,
	}

	if s.IsValidDestination(ctx, p) {
		routing.Strategy = types.RoutingStrategyDestination
		routing.Destination = p.ConnectedAccountID()
		routing.ApplicationFee = ApplicationFee(amount, s.feeBPS)
	}

	s.logger.Debugw("resolved payment routing",
		"provider_id", providerID,
		"amount", amount,
		"strategy", routing.Strategy,
		"application_fee", routing.ApplicationFee)

	return routing, nil
}

// IsValidDestination reports whether the provider's connected account can receive destination
// charges under the configured capability rule
func (s *RoutingService) IsValidDestination(ctx context.Context, p *provider.Provider) bool {
	if !p.HasConnectedAccount() {
		return false
	}

	acct, err := s.gateway.GetAccount(ctx, p.ConnectedAccountID())
	if err != nil {
		s.logger.Warnw("connected account not retrievable, falling back to manual payout",
			"provider_id", p.ID,
			"account_id", p.ConnectedAccountID(),
			"error", err)
		return false
	}

	return capabilitiesSatisfy(acct, s.rule)
}

func capabilitiesSatisfy(acct *stripe.Account, rule types.CapabilityRule) bool {
	if acct == nil {
		return false
	}

	switch rule {
	case types.CapabilityRuleRetrievable:
		return true
	default:
		if acct.Capabilities == nil {
			return false
		}
		return acct.Capabilities.CardPayments == stripe.AccountCapabilityStatusActive ||
			acct.Capabilities.Transfers == stripe.AccountCapabilityStatusActive
	}
}

// IntentParams builds payment-intent parameters carrying the routing decision. The caller adds
// customer, metadata and idempotency key.
func (r *Routing) IntentParams(currency string) *stripe.PaymentIntentCreateParams {
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(r.Amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			types.MetadataKeyProviderID: r.ProviderID,
		},
	}

	if r.IsDestination() {
		params.ApplicationFeeAmount = stripe.Int64(r.ApplicationFee)
		params.TransferData = &stripe.PaymentIntentCreateTransferDataParams{
			Destination: stripe.String(r.Destination),
		}
	} else {
		params.Metadata[types.MetadataKeyManualPayout] = "true"
	}

	return params
}
