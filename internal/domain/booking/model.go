package booking

import (
	"github.com/flexprice/marketplace/internal/types"
	"github.com/shopspring/decimal"
)

// Booking is a service or event booking as seen by the payment flow
type Booking struct {
	ID         string              `json:"id"`
	Kind       types.BookingKind   `json:"kind"`
	UserID     string              `json:"user_id"`
	ItemID     string              `json:"item_id"`
	ProviderID string              `json:"provider_id"`
	Total      decimal.Decimal     `json:"total"`
	Status     types.BookingStatus `json:"status"`
}

// AmountMinorUnits converts the major-unit total to the smallest currency unit
func (b *Booking) AmountMinorUnits() int64 {
	return b.Total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
