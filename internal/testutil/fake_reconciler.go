package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/marketplace/internal/domain/booking"
)

// FakeReconciler records checkout sessions handed to it
type FakeReconciler struct {
	mu       sync.Mutex
	sessions []*booking.CheckoutSessionCompleted

	// Err, when set, is returned for every call
	Err error
}

func NewFakeReconciler() *FakeReconciler {
	return &FakeReconciler{}
}

func (r *FakeReconciler) HandleCheckoutSessionCompleted(ctx context.Context, session *booking.CheckoutSessionCompleted) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	r.sessions = append(r.sessions, session)
	return nil
}

// Sessions returns the reconciled sessions in call order
func (r *FakeReconciler) Sessions() []*booking.CheckoutSessionCompleted {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*booking.CheckoutSessionCompleted(nil), r.sessions...)
}
