package stripe

import (
	"time"

	"github.com/flexprice/marketplace/internal/types"
)

// Routing is the decision of how a payment's funds reach the provider
type Routing struct {
	Strategy   types.RoutingStrategy `json:"strategy"`
	ProviderID string                `json:"provider_id"`
	// Destination is the connected account id, empty for manual payouts
	Destination string `json:"destination,omitempty"`
	// ApplicationFee is the platform's share in minor units, zero for manual payouts
	ApplicationFee int64 `json:"application_fee"`
	Amount         int64 `json:"amount"`
}

// IsDestination reports whether funds are routed straight to the connected account
func (r *Routing) IsDestination() bool {
	return r != nil && r.Strategy == types.RoutingStrategyDestination
}

// ProviderPayout is what the provider receives once the platform fee is deducted
func (r *Routing) ProviderPayout() int64 {
	return r.Amount - r.ApplicationFee
}

// AccountLinkRequest asks for a hosted onboarding link for a provider
type AccountLinkRequest struct {
	ProviderID string
	Email      string
	ReturnURL  string
	RefreshURL string
}

// AccountLink is a fresh single-use onboarding link and the account it belongs to
type AccountLink struct {
	AccountID string    `json:"account_id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	// Created is true when this call created the connected account
	Created bool `json:"created"`
}

// TransferRequest moves platform balance to a provider's connected account
type TransferRequest struct {
	Destination     string
	Amount          int64
	Currency        string
	PaymentIntentID string
	ProviderID      string
}
