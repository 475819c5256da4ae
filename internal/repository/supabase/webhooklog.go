package supabase

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/flexprice/marketplace/internal/domain/webhooklog"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/httpclient"
	"github.com/flexprice/marketplace/internal/logger"
	sb "github.com/flexprice/marketplace/internal/supabase"
	"github.com/flexprice/marketplace/internal/types"
)

const tableStripeWebhooks = "stripe_webhooks"

type webhookLogRepository struct {
	client *sb.Client
	logger *logger.Logger
}

func NewWebhookLogRepository(client *sb.Client, logger *logger.Logger) webhooklog.Repository {
	return &webhookLogRepository{client: client, logger: logger}
}

// Create relies on the unique constraint on stripe_webhooks.event_id; PostgREST answers a
// violation with 409.
func (r *webhookLogRepository) Create(ctx context.Context, entry *webhooklog.Entry) error {
	if entry.ID == "" {
		entry.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WEBHOOK_LOG)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	err := r.client.REST(ctx, &sb.RESTRequest{
		Method: http.MethodPost,
		Table:  tableStripeWebhooks,
		Body:   entry,
		Prefer: sb.PreferReturnMinimal,
	}, nil)
	if err != nil {
		if httpclient.IsConflict(err) {
			return ierr.WithError(err).
				WithHint("Webhook event already received").
				WithReportableDetails(map[string]any{"event_id": entry.EventID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to record webhook event").
			WithReportableDetails(map[string]any{"event_id": entry.EventID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *webhookLogRepository) GetByEventID(ctx context.Context, eventID string) (*webhooklog.Entry, error) {
	var rows []*webhooklog.Entry
	err := r.client.DB.From(tableStripeWebhooks).
		Select("*").
		Eq("event_id", eventID).
		ExecuteWithContext(ctx, &rows)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load webhook event").
			WithReportableDetails(map[string]any{"event_id": eventID}).
			Mark(ierr.ErrDatabase)
	}
	if len(rows) == 0 {
		return nil, ierr.NewError("webhook event not found").
			WithHint("Webhook event was not recorded").
			WithReportableDetails(map[string]any{"event_id": eventID}).
			Mark(ierr.ErrNotFound)
	}
	return rows[0], nil
}

func (r *webhookLogRepository) Complete(ctx context.Context, eventID string, status types.WebhookLogStatus, errMsg *string) error {
	update := map[string]interface{}{
		"status":        status,
		"error_message": errMsg,
		"processed_at":  time.Now().UTC(),
	}

	err := r.client.REST(ctx, &sb.RESTRequest{
		Method: http.MethodPatch,
		Table:  tableStripeWebhooks,
		Query:  url.Values{"event_id": {"eq." + eventID}},
		Body:   update,
		Prefer: sb.PreferReturnMinimal,
	}, nil)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update webhook event status").
			WithReportableDetails(map[string]any{"event_id": eventID, "status": status}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}
