package webhooklog

import (
	"context"

	"github.com/flexprice/marketplace/internal/types"
)

// Repository persists webhook log entries
type Repository interface {
	// Create inserts a pending entry. A duplicate event id fails with ierr.ErrAlreadyExists.
	Create(ctx context.Context, entry *Entry) error
	GetByEventID(ctx context.Context, eventID string) (*Entry, error)
	// Complete moves the entry to its terminal status; errMsg is stored for failures
	Complete(ctx context.Context, eventID string, status types.WebhookLogStatus, errMsg *string) error
}
