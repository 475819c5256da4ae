package booking

import "context"

// CheckoutSessionCompleted carries the fields of a completed checkout session that the data
// service needs to settle the booking
type CheckoutSessionCompleted struct {
	SessionID     string            `json:"session_id"`
	PaymentIntent string            `json:"payment_intent"`
	AmountTotal   int64             `json:"amount_total"`
	Metadata      map[string]string `json:"metadata"`
	CustomerID    string            `json:"customer_id"`
}

// Reconciler settles bookings after a payment completes. Implementations must be idempotent on
// the session id: the processor delivers events at least once.
type Reconciler interface {
	HandleCheckoutSessionCompleted(ctx context.Context, session *CheckoutSessionCompleted) error
}
