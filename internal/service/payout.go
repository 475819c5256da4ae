package service

import (
	"context"
	"time"

	"github.com/flexprice/marketplace/internal/api/dto"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/integration/stripe"
	"github.com/flexprice/marketplace/internal/metrics"
	"github.com/flexprice/marketplace/internal/types"
)

// PayoutService settles manual payouts. Batch payouts are not supported; an operator triggers
// each transfer.
type PayoutService interface {
	CreateManualPayout(ctx context.Context, req dto.CreateManualPayoutRequest) (*dto.PayoutResponse, error)
}

type payoutService struct {
	ServiceParams
}

// NewPayoutService creates a new payout service
func NewPayoutService(params ServiceParams) PayoutService {
	return &payoutService{
		ServiceParams: params,
	}
}

func (s *payoutService) CreateManualPayout(ctx context.Context, req dto.CreateManualPayoutRequest) (*dto.PayoutResponse, error) {
	if types.GetRole(ctx) != types.RoleServiceRole {
		return nil, ierr.NewError("service role required").
			WithHint("Payouts can only be triggered by trusted backends").
			Mark(ierr.ErrPermissionDenied)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	stripeIntegration, err := s.IntegrationFactory.GetStripeIntegration(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.ProviderRepo.Get(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}

	if !stripeIntegration.RoutingSvc.IsValidDestination(ctx, p) {
		return nil, ierr.NewError("provider cannot receive transfers").
			WithHint("The provider has not finished onboarding").
			WithReportableDetails(map[string]any{"provider_id": p.ID}).
			Mark(ierr.ErrInvalidOperation)
	}

	currency := req.Currency
	if currency == "" {
		currency = s.Config.Stripe.Currency
	}

	tr, err := stripeIntegration.PayoutSvc.CreateTransfer(ctx, &stripe.TransferRequest{
		Destination:     p.ConnectedAccountID(),
		Amount:          req.Amount,
		Currency:        currency,
		PaymentIntentID: req.PaymentIntentID,
		ProviderID:      p.ID,
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransfer()

	createdAt := time.Now().UTC()
	if tr.Created > 0 {
		createdAt = time.Unix(tr.Created, 0).UTC()
	}

	return &dto.PayoutResponse{
		TransferID:      tr.ID,
		ProviderID:      p.ID,
		Destination:     p.ConnectedAccountID(),
		Amount:          tr.Amount,
		Currency:        currency,
		PaymentIntentID: req.PaymentIntentID,
		CreatedAt:       createdAt,
	}, nil
}
