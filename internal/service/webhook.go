package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/flexprice/marketplace/internal/api/dto"
	"github.com/flexprice/marketplace/internal/cache"
	"github.com/flexprice/marketplace/internal/domain/webhooklog"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/metrics"
	"github.com/flexprice/marketplace/internal/types"
	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v82"
)

// processedEventTTL bounds how long a processed event id is remembered in memory. The log
// table stays authoritative after expiry.
const processedEventTTL = 24 * time.Hour

// WebhookService receives processor events
type WebhookService interface {
	// HandleStripeWebhook verifies, logs and dispatches one delivery. Verification failures are
	// validation errors and leave no log row.
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookResult, error)
}

type webhookService struct {
	ServiceParams
}

// NewWebhookService creates a new webhook service
func NewWebhookService(params ServiceParams) WebhookService {
	return &webhookService{
		ServiceParams: params,
	}
}

func (s *webhookService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookResult, error) {
	stripeIntegration, err := s.IntegrationFactory.GetStripeIntegration(ctx)
	if err != nil {
		return nil, err
	}

	event, err := stripeIntegration.PaymentSvc.ParseWebhookEvent(payload, signature)
	if err != nil {
		s.Logger.Warnw("rejected webhook delivery", "error", err)
		metrics.RecordWebhookEvent("", metrics.OutcomeRejected)
		return nil, err
	}

	result := &dto.WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
	}

	if s.isProcessed(ctx, event.ID) {
		s.Logger.Infow("skipping already processed webhook event",
			"event_id", event.ID,
			"event_type", event.Type)
		metrics.RecordWebhookEvent(result.EventType, metrics.OutcomeDuplicate)
		result.Duplicate = true
		return result, nil
	}

	duplicate, err := s.recordEvent(ctx, event, payload)
	if err != nil {
		return nil, err
	}
	if duplicate {
		s.markProcessed(ctx, event.ID)
		metrics.RecordWebhookEvent(result.EventType, metrics.OutcomeDuplicate)
		result.Duplicate = true
		return result, nil
	}

	s.Sentry.AddBreadcrumb("webhook", "dispatching stripe event", map[string]interface{}{
		"event_id":   event.ID,
		"event_type": string(event.Type),
	})

	handleErr := stripeIntegration.WebhookHandler.HandleWebhookEvent(ctx, event)

	status := types.WebhookLogStatusSuccess
	var errMsg *string
	if handleErr != nil {
		status = types.WebhookLogStatusFailed
		errMsg = lo.ToPtr(handleErr.Error())
	}

	if err := s.WebhookLogRepo.Complete(ctx, event.ID, status, errMsg); err != nil {
		s.Logger.Errorw("failed to update webhook log",
			"event_id", event.ID,
			"status", status,
			"error", err)
	}

	if handleErr != nil {
		s.Logger.Errorw("failed to process webhook event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", handleErr)
		s.Sentry.CaptureException(ctx, handleErr, map[string]string{
			"event_id":   event.ID,
			"event_type": string(event.Type),
		})
		metrics.RecordWebhookEvent(result.EventType, metrics.OutcomeFailed)
		return nil, handleErr
	}

	s.markProcessed(ctx, event.ID)
	metrics.RecordWebhookEvent(result.EventType, metrics.OutcomeProcessed)

	s.Logger.Infow("processed webhook event",
		"event_id", event.ID,
		"event_type", event.Type)

	return result, nil
}

// recordEvent inserts the pending log row. It reports true when the event was already
// processed successfully. Insert failures other than duplicates do not stop processing.
func (s *webhookService) recordEvent(ctx context.Context, event *stripe.Event, payload []byte) (bool, error) {
	entry := &webhooklog.Entry{
		EventID:   event.ID,
		EventType: string(event.Type),
		Payload:   json.RawMessage(payload),
		Status:    types.WebhookLogStatusPending,
	}

	err := s.WebhookLogRepo.Create(ctx, entry)
	if err == nil {
		return false, nil
	}

	if !ierr.IsAlreadyExists(err) {
		s.Logger.Errorw("failed to log webhook event, continuing",
			"event_id", event.ID,
			"error", err)
		return false, nil
	}

	existing, err := s.WebhookLogRepo.GetByEventID(ctx, event.ID)
	if err != nil {
		s.Logger.Errorw("failed to read existing webhook log, continuing",
			"event_id", event.ID,
			"error", err)
		return false, nil
	}

	if existing.IsProcessed() {
		s.Logger.Infow("webhook event already processed",
			"event_id", event.ID,
			"event_type", event.Type)
		return true, nil
	}

	// pending or failed deliveries are retried; reconciliation is idempotent per session
	s.Logger.Infow("retrying webhook event",
		"event_id", event.ID,
		"previous_status", existing.Status)
	return false, nil
}

func (s *webhookService) isProcessed(ctx context.Context, eventID string) bool {
	if s.Cache == nil {
		return false
	}
	_, found := s.Cache.Get(ctx, cache.GenerateKey(cache.PrefixWebhookEvent, eventID))
	return found
}

func (s *webhookService) markProcessed(ctx context.Context, eventID string) {
	if s.Cache == nil {
		return
	}
	s.Cache.Set(ctx, cache.GenerateKey(cache.PrefixWebhookEvent, eventID), true, processedEventTTL)
}
