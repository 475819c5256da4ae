package webhook

import (
	"context"
	"encoding/json"

	"github.com/flexprice/marketplace/internal/domain/booking"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/flexprice/marketplace/internal/types"
	stripeapi "github.com/stripe/stripe-go/v82"
)

// Handler dispatches verified Stripe webhook events
type Handler struct {
	reconciler booking.Reconciler
	logger     *logger.Logger
}

// NewHandler creates a new Stripe webhook handler
func NewHandler(reconciler booking.Reconciler, logger *logger.Logger) *Handler {
	return &Handler{
		reconciler: reconciler,
		logger:     logger,
	}
}

// HandleWebhookEvent processes a verified Stripe webhook event. Unknown event types are
// acknowledged without action.
func (h *Handler) HandleWebhookEvent(ctx context.Context, event *stripeapi.Event) error {
	h.logger.Infow("processing Stripe webhook event",
		"event_id", event.ID,
		"event_type", event.Type,
	)

	switch types.WebhookEventType(event.Type) {
	case types.WebhookEventTypeCheckoutSessionCompleted:
		return h.handleCheckoutSessionCompleted(ctx, event)
	case types.WebhookEventTypeAccountUpdated:
		return h.handleAccountUpdated(ctx, event)
	default:
		h.logger.Infow("unhandled Stripe webhook event type", "type", event.Type)
		return nil
	}
}

// handleCheckoutSessionCompleted hands the completed session to the booking reconciler
func (h *Handler) handleCheckoutSessionCompleted(ctx context.Context, event *stripeapi.Event) error {
	session, err := decodeObject[stripeapi.CheckoutSession](event)
	if err != nil {
		return err
	}

	completed := &booking.CheckoutSessionCompleted{
		SessionID:   session.ID,
		AmountTotal: session.AmountTotal,
		Metadata:    session.Metadata,
	}
	if session.PaymentIntent != nil {
		completed.PaymentIntent = session.PaymentIntent.ID
	}
	if session.Customer != nil {
		completed.CustomerID = session.Customer.ID
	}
	if completed.Metadata == nil {
		completed.Metadata = map[string]string{}
	}

	if err := h.reconciler.HandleCheckoutSessionCompleted(ctx, completed); err != nil {
		h.logger.Errorw("failed to reconcile checkout session",
			"error", err,
			"session_id", session.ID,
			"event_id", event.ID)
		return err
	}

	h.logger.Infow("reconciled checkout session from webhook",
		"session_id", session.ID,
		"payment_intent", completed.PaymentIntent,
		"event_id", event.ID)
	return nil
}

// handleAccountUpdated records capability changes; routing reads capabilities live so nothing is stored
func (h *Handler) handleAccountUpdated(_ context.Context, event *stripeapi.Event) error {
	acct, err := decodeObject[stripeapi.Account](event)
	if err != nil {
		return err
	}

	fields := []interface{}{
		"account_id", acct.ID,
		"charges_enabled", acct.ChargesEnabled,
		"payouts_enabled", acct.PayoutsEnabled,
		"details_submitted", acct.DetailsSubmitted,
		"event_id", event.ID,
	}
	if acct.Capabilities != nil {
		fields = append(fields,
			"card_payments", acct.Capabilities.CardPayments,
			"transfers", acct.Capabilities.Transfers)
	}
	h.logger.Infow("connected account updated", fields...)
	return nil
}

func decodeObject[T any](event *stripeapi.Event) (*T, error) {
	var obj T
	if event.Data == nil {
		return nil, ierr.NewError("webhook event has no data").
			WithHint("Invalid webhook payload").
			WithReportableDetails(map[string]any{"event_id": event.ID}).
			Mark(ierr.ErrValidation)
	}
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid webhook payload").
			WithReportableDetails(map[string]any{"event_id": event.ID, "event_type": event.Type}).
			Mark(ierr.ErrValidation)
	}
	return &obj, nil
}
