package types

import (
	ierr "github.com/flexprice/marketplace/internal/errors"
)

// WebhookEventType represents the type of a Stripe webhook event
type WebhookEventType string

const (
	WebhookEventTypeCheckoutSessionCompleted WebhookEventType = "checkout.session.completed"
	WebhookEventTypeAccountUpdated           WebhookEventType = "account.updated"
)

// String returns the string representation of the webhook event type
func (w WebhookEventType) String() string {
	return string(w)
}

// RoutingStrategy is how the funds of a payment reach the provider
type RoutingStrategy string

const (
	// RoutingStrategyDestination settles as a destination charge to the provider's connected account
	RoutingStrategyDestination RoutingStrategy = "destination"
	// RoutingStrategyManualPayout keeps the funds on the platform balance for a later transfer
	RoutingStrategyManualPayout RoutingStrategy = "manual_payout"
)

// CapabilityRule decides which connected accounts count as valid destinations
type CapabilityRule string

const (
	// CapabilityRuleAnyActive requires card_payments or transfers to be active
	CapabilityRuleAnyActive CapabilityRule = "any_active"
	// CapabilityRuleRetrievable only requires the account to be retrievable
	CapabilityRuleRetrievable CapabilityRule = "retrievable"
)

func (r CapabilityRule) Validate() error {
	switch r {
	case CapabilityRuleAnyActive, CapabilityRuleRetrievable:
		return nil
	default:
		return ierr.NewError("invalid capability rule").
			WithHint("Please provide a valid capability rule").
			WithReportableDetails(map[string]any{
				"allowed": []CapabilityRule{
					CapabilityRuleAnyActive,
					CapabilityRuleRetrievable,
				},
			}).
			Mark(ierr.ErrValidation)
	}
}

// Metadata keys written onto processor objects
const (
	MetadataKeyManualPayout     = "manual_payout"
	MetadataKeyUserID           = "user_id"
	MetadataKeyProviderID       = "provider_id"
	MetadataKeyBookingID        = "booking_id"
	MetadataKeyBookingKind      = "booking_kind"
	MetadataKeyStripeCustomerID = "stripe_customer_id"
	MetadataKeyPaymentIntentID  = "payment_intent_id"
)
