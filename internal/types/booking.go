package types

import (
	ierr "github.com/flexprice/marketplace/internal/errors"
)

// BookingKind distinguishes service bookings from event bookings
type BookingKind string

const (
	BookingKindService BookingKind = "service"
	BookingKindEvent   BookingKind = "event"
)

func (k BookingKind) Validate() error {
	switch k {
	case BookingKindService, BookingKindEvent:
		return nil
	default:
		return ierr.NewError("invalid booking kind").
			WithHint("Booking kind must be service or event").
			WithReportableDetails(map[string]any{
				"booking_kind": k,
			}).
			Mark(ierr.ErrValidation)
	}
}

// BookingStatus is owned by the data service; only the values the payment flow reads are listed
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusPaid      BookingStatus = "paid"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsPayable reports whether a payment may still be started for the booking
func (s BookingStatus) IsPayable() bool {
	return s != BookingStatusPaid && s != BookingStatusCancelled
}
