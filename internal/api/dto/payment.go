package dto

import (
	"github.com/flexprice/marketplace/internal/integration/stripe"
	"github.com/flexprice/marketplace/internal/types"
	"github.com/flexprice/marketplace/internal/validator"
)

// CreatePaymentSheetRequest asks for everything the mobile payment sheet needs to pay a booking
type CreatePaymentSheetRequest struct {
	BookingID   string            `json:"booking_id" validate:"required"`
	BookingKind types.BookingKind `json:"booking_kind" validate:"required,booking_kind"`
	// AttemptNonce identifies one checkout attempt; retries of the same attempt reuse the intent
	AttemptNonce string `json:"attempt_nonce,omitempty" validate:"omitempty,max=64"`
}

func (r *CreatePaymentSheetRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// PaymentSheetResponse is returned to the client to present the payment sheet
type PaymentSheetResponse struct {
	PaymentIntentID string          `json:"payment_intent_id"`
	ClientSecret    string          `json:"client_secret"`
	EphemeralKey    string          `json:"ephemeral_key"`
	CustomerID      string          `json:"customer_id"`
	PublishableKey  string          `json:"publishable_key"`
	AttemptNonce    string          `json:"attempt_nonce"`
	Routing         *stripe.Routing `json:"routing"`
}

// EnsureCustomerResponse carries the caller's processor customer id
type EnsureCustomerResponse struct {
	CustomerID string `json:"customer_id"`
}
