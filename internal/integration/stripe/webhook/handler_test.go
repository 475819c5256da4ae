package webhook

import (
	"context"
	"encoding/json"
	"testing"

	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/flexprice/marketplace/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripeapi "github.com/stripe/stripe-go/v82"
)

func newEvent(t *testing.T, eventType string, object map[string]interface{}) *stripeapi.Event {
	raw, err := json.Marshal(object)
	require.NoError(t, err)
	return &stripeapi.Event{
		ID:   "evt_1",
		Type: stripeapi.EventType(eventType),
		Data: &stripeapi.EventData{Raw: raw},
	}
}

func TestHandleCheckoutSessionCompleted(t *testing.T) {
	reconciler := testutil.NewFakeReconciler()
	h := NewHandler(reconciler, logger.NewNoopLogger())

	event := newEvent(t, "checkout.session.completed", map[string]interface{}{
		"id":             "cs_1",
		"object":         "checkout.session",
		"payment_intent": "pi_1",
		"amount_total":   10000,
		"customer":       "cus_1",
		"metadata":       map[string]string{"booking_id": "bk_1"},
	})

	require.NoError(t, h.HandleWebhookEvent(context.Background(), event))

	sessions := reconciler.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "cs_1", sessions[0].SessionID)
	assert.Equal(t, "pi_1", sessions[0].PaymentIntent)
	assert.Equal(t, int64(10000), sessions[0].AmountTotal)
	assert.Equal(t, "cus_1", sessions[0].CustomerID)
	assert.Equal(t, "bk_1", sessions[0].Metadata["booking_id"])
}

func TestHandleCheckoutSessionCompletedFailure(t *testing.T) {
	reconciler := testutil.NewFakeReconciler()
	reconciler.Err = ierr.NewError("rpc failed").Mark(ierr.ErrSystem)
	h := NewHandler(reconciler, logger.NewNoopLogger())

	event := newEvent(t, "checkout.session.completed", map[string]interface{}{"id": "cs_1"})
	err := h.HandleWebhookEvent(context.Background(), event)
	require.Error(t, err)
	assert.True(t, ierr.IsSystem(err))
}

func TestHandleOtherEvents(t *testing.T) {
	reconciler := testutil.NewFakeReconciler()
	h := NewHandler(reconciler, logger.NewNoopLogger())

	updated := newEvent(t, "account.updated", map[string]interface{}{
		"id":           "acct_1",
		"object":       "account",
		"capabilities": map[string]string{"card_payments": "active", "transfers": "active"},
	})
	require.NoError(t, h.HandleWebhookEvent(context.Background(), updated))

	ignored := newEvent(t, "invoice.paid", map[string]interface{}{"id": "in_1"})
	require.NoError(t, h.HandleWebhookEvent(context.Background(), ignored))

	assert.Empty(t, reconciler.Sessions())
}

func TestHandleMalformedObject(t *testing.T) {
	h := NewHandler(testutil.NewFakeReconciler(), logger.NewNoopLogger())
	event := &stripeapi.Event{
		ID:   "evt_bad",
		Type: "checkout.session.completed",
		Data: &stripeapi.EventData{Raw: json.RawMessage(`[1,2]`)},
	}
	err := h.HandleWebhookEvent(context.Background(), event)
	assert.True(t, ierr.IsValidation(err))
}
