package dto

import (
	"github.com/flexprice/marketplace/internal/integration/stripe"
	"github.com/flexprice/marketplace/internal/validator"
)

// StartOnboardingRequest overrides the configured onboarding urls
type StartOnboardingRequest struct {
	ReturnURL  string `json:"return_url,omitempty" validate:"omitempty,url"`
	RefreshURL string `json:"refresh_url,omitempty" validate:"omitempty,url"`
}

func (r *StartOnboardingRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// OnboardingResponse carries the hosted onboarding link
type OnboardingResponse = stripe.AccountLink

// RoutingResponse is the fee quote for a payment to a provider
type RoutingResponse = stripe.Routing
