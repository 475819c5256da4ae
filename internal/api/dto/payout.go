package dto

import (
	"time"

	"github.com/flexprice/marketplace/internal/validator"
)

// CreateManualPayoutRequest transfers funds kept on the platform to a provider
type CreateManualPayoutRequest struct {
	ProviderID      string `json:"provider_id" validate:"required"`
	Amount          int64  `json:"amount" validate:"required,gt=0"`
	Currency        string `json:"currency,omitempty" validate:"omitempty,len=3"`
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

func (r *CreateManualPayoutRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// PayoutResponse describes the transfer created for a manual payout
type PayoutResponse struct {
	TransferID      string    `json:"transfer_id"`
	ProviderID      string    `json:"provider_id"`
	Destination     string    `json:"destination"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	PaymentIntentID string    `json:"payment_intent_id"`
	CreatedAt       time.Time `json:"created_at"`
}
