package service

import (
	"context"

	"github.com/flexprice/marketplace/internal/api/dto"
	"github.com/flexprice/marketplace/internal/integration/stripe"
	"github.com/samber/lo"
)

// OnboardingService connects providers to the processor
type OnboardingService interface {
	StartOnboarding(ctx context.Context, req dto.StartOnboardingRequest) (*dto.OnboardingResponse, error)
	GetRouting(ctx context.Context, providerID string, amount int64) (*dto.RoutingResponse, error)
}

type onboardingService struct {
	ServiceParams
}

// NewOnboardingService creates a new onboarding service
func NewOnboardingService(params ServiceParams) OnboardingService {
	return &onboardingService{
		ServiceParams: params,
	}
}

// StartOnboarding returns a fresh onboarding link for the calling provider. The provider id is
// the caller's user id.
func (s *onboardingService) StartOnboarding(ctx context.Context, req dto.StartOnboardingRequest) (*dto.OnboardingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	providerID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	stripeIntegration, err := s.IntegrationFactory.GetStripeIntegration(ctx)
	if err != nil {
		return nil, err
	}

	email := ""
	if u, err := s.UserRepo.Get(ctx, providerID); err == nil {
		email = u.Email
	} else {
		s.Logger.Debugw("could not load provider profile, onboarding without email",
			"provider_id", providerID,
			"error", err)
	}

	link, err := stripeIntegration.ConnectSvc.EnsureConnectedAccount(ctx, &stripe.AccountLinkRequest{
		ProviderID: providerID,
		Email:      email,
		ReturnURL:  lo.Ternary(req.ReturnURL != "", req.ReturnURL, s.Config.Stripe.Onboarding.ReturnURL),
		RefreshURL: lo.Ternary(req.RefreshURL != "", req.RefreshURL, s.Config.Stripe.Onboarding.RefreshURL),
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("issued onboarding link",
		"provider_id", providerID,
		"account_id", link.AccountID,
		"account_created", link.Created)

	return link, nil
}

func (s *onboardingService) GetRouting(ctx context.Context, providerID string, amount int64) (*dto.RoutingResponse, error) {
	stripeIntegration, err := s.IntegrationFactory.GetStripeIntegration(ctx)
	if err != nil {
		return nil, err
	}
	return stripeIntegration.RoutingSvc.ResolveRouting(ctx, providerID, amount)
}
