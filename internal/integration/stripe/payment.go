package stripe

import (
	"context"

	"github.com/flexprice/marketplace/internal/config"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// PaymentService wraps the payment-sheet processor calls and webhook verification
type PaymentService struct {
	gateway       Gateway
	webhookSecret string
	logger        *logger.Logger
}

func NewPaymentService(gateway Gateway, cfg *config.Configuration, logger *logger.Logger) *PaymentService {
	return &PaymentService{
		gateway:       gateway,
		webhookSecret: cfg.Stripe.WebhookSecret,
		logger:        logger,
	}
}

// CreateEphemeralKey issues a short-lived key that lets the mobile sheet act on the customer
func (s *PaymentService) CreateEphemeralKey(ctx context.Context, customerID string) (string, error) {
	key, err := s.gateway.CreateEphemeralKey(ctx, &stripe.EphemeralKeyCreateParams{
		Customer:      stripe.String(customerID),
		StripeVersion: stripe.String(stripe.APIVersion),
	})
	if err != nil {
		return "", err
	}
	return key.Secret, nil
}

// CreatePaymentIntent creates the intent described by params under idempotencyKey
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentCreateParams, idempotencyKey string) (*stripe.PaymentIntent, error) {
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	pi, err := s.gateway.CreatePaymentIntent(ctx, params)
	if err != nil {
		s.logger.Errorw("failed to create payment intent",
			"error", err,
			"amount", stripe.Int64Value(params.Amount),
			"customer_id", stripe.StringValue(params.Customer))
		return nil, err
	}

	s.logger.Infow("created payment intent",
		"payment_intent_id", pi.ID,
		"amount", pi.Amount,
		"destination_charge", params.TransferData != nil)

	return pi, nil
}

// ParseWebhookEvent parses a Stripe webhook event with signature verification
func (s *PaymentService) ParseWebhookEvent(payload []byte, signature string) (*stripe.Event, error) {
	if signature == "" {
		return nil, ierr.NewError("missing stripe signature").
			WithHint("Missing Stripe-Signature header").
			Mark(ierr.ErrValidation)
	}

	// Verify the webhook signature, ignoring API version mismatch
	options := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, options)
	if err != nil {
		s.logger.Warnw("Stripe webhook verification failed", "error", err)
		return nil, ierr.WithError(err).
			WithHint("Invalid webhook signature or payload").
			Mark(ierr.ErrValidation)
	}
	return &event, nil
}
