package testutil

import (
	"context"
	"fmt"

	"github.com/flexprice/marketplace/internal/domain/booking"
	"github.com/flexprice/marketplace/internal/types"
)

// InMemoryBookingStore implements booking.Repository
type InMemoryBookingStore struct {
	*InMemoryStore[*booking.Booking]
}

func NewInMemoryBookingStore() *InMemoryBookingStore {
	return &InMemoryBookingStore{
		InMemoryStore: NewInMemoryStore[*booking.Booking](),
	}
}

func bookingKey(kind types.BookingKind, id string) string {
	return fmt.Sprintf("%s:%s", kind, id)
}

// Add seeds a booking
func (s *InMemoryBookingStore) Add(b *booking.Booking) {
	_ = s.InMemoryStore.Create(context.Background(), bookingKey(b.Kind, b.ID), b)
}

func (s *InMemoryBookingStore) Get(ctx context.Context, kind types.BookingKind, id string) (*booking.Booking, error) {
	b, err := s.InMemoryStore.Get(ctx, bookingKey(kind, id))
	if err != nil {
		return nil, err
	}
	c := *b
	return &c, nil
}
