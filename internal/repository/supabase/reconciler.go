package supabase

import (
	"context"

	"github.com/flexprice/marketplace/internal/domain/booking"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/logger"
	sb "github.com/flexprice/marketplace/internal/supabase"
)

const rpcHandleCheckoutSessionCompleted = "handle_checkout_session_completed"

type checkoutReconciler struct {
	client *sb.Client
	logger *logger.Logger
}

// NewCheckoutReconciler returns the reconciler backed by the data service's stored procedure,
// which is idempotent on session id.
func NewCheckoutReconciler(client *sb.Client, logger *logger.Logger) booking.Reconciler {
	return &checkoutReconciler{client: client, logger: logger}
}

func (r *checkoutReconciler) HandleCheckoutSessionCompleted(ctx context.Context, session *booking.CheckoutSessionCompleted) error {
	params := map[string]interface{}{
		"session_id":     session.SessionID,
		"payment_intent": session.PaymentIntent,
		"amount_total":   session.AmountTotal,
		"metadata":       session.Metadata,
		"customer_id":    session.CustomerID,
	}

	if err := r.client.RPC(ctx, rpcHandleCheckoutSessionCompleted, params, nil); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to reconcile checkout session").
			WithReportableDetails(map[string]any{
				"session_id":     session.SessionID,
				"payment_intent": session.PaymentIntent,
			}).
			Mark(ierr.ErrSystem)
	}

	r.logger.Infow("reconciled checkout session",
		"session_id", session.SessionID,
		"payment_intent", session.PaymentIntent,
		"amount_total", session.AmountTotal)
	return nil
}
