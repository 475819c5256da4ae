package supabase

import (
	"context"

	"github.com/flexprice/marketplace/internal/domain/booking"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/logger"
	sb "github.com/flexprice/marketplace/internal/supabase"
	"github.com/flexprice/marketplace/internal/types"
	"github.com/shopspring/decimal"
)

// bookingSource describes where each booking variant lives and how it reaches its provider
type bookingSource struct {
	table   string
	columns string
}

var bookingSources = map[types.BookingKind]bookingSource{
	types.BookingKindService: {
		table:   "booking",
		columns: "id,user_id,total,status,item_id:service_id,item:service(provider_id)",
	},
	types.BookingKindEvent: {
		table:   "event_booking",
		columns: "id,user_id,total,status,item_id:event_id,item:event(provider_id)",
	},
}

type bookingRow struct {
	ID     string              `json:"id"`
	UserID string              `json:"user_id"`
	Total  decimal.Decimal     `json:"total"`
	Status types.BookingStatus `json:"status"`
	ItemID string              `json:"item_id"`
	Item   *struct {
		ProviderID string `json:"provider_id"`
	} `json:"item"`
}

type bookingRepository struct {
	client *sb.Client
	logger *logger.Logger
}

func NewBookingRepository(client *sb.Client, logger *logger.Logger) booking.Repository {
	return &bookingRepository{client: client, logger: logger}
}

func (r *bookingRepository) Get(ctx context.Context, kind types.BookingKind, id string) (*booking.Booking, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	source := bookingSources[kind]

	var rows []bookingRow
	err := r.client.DB.From(source.table).
		Select(source.columns).
		Eq("id", id).
		ExecuteWithContext(ctx, &rows)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load booking").
			WithReportableDetails(map[string]any{"booking_id": id, "booking_kind": kind}).
			Mark(ierr.ErrDatabase)
	}

	if len(rows) == 0 {
		return nil, ierr.NewError("booking not found").
			WithHintf("Booking %s was not found", id).
			WithReportableDetails(map[string]any{"booking_id": id, "booking_kind": kind}).
			Mark(ierr.ErrNotFound)
	}

	row := rows[0]
	if row.Item == nil || row.Item.ProviderID == "" {
		return nil, ierr.NewError("booking has no provider").
			WithHint("The booked item is not linked to a provider").
			WithReportableDetails(map[string]any{"booking_id": id, "item_id": row.ItemID}).
			Mark(ierr.ErrInvalidOperation)
	}

	return &booking.Booking{
		ID:         row.ID,
		Kind:       kind,
		UserID:     row.UserID,
		ItemID:     row.ItemID,
		ProviderID: row.Item.ProviderID,
		Total:      row.Total,
		Status:     row.Status,
	}, nil
}
