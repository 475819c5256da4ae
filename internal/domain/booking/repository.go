package booking

import (
	"context"

	"github.com/flexprice/marketplace/internal/types"
)

// Repository reads bookings from the data service
type Repository interface {
	Get(ctx context.Context, kind types.BookingKind, id string) (*Booking, error)
}
