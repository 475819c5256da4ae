package testutil

import (
	"context"
	"time"

	"github.com/flexprice/marketplace/internal/domain/webhooklog"
	"github.com/flexprice/marketplace/internal/types"
)

// InMemoryWebhookLogStore implements webhooklog.Repository keyed by event id
type InMemoryWebhookLogStore struct {
	*InMemoryStore[*webhooklog.Entry]

	// CreateErr, when set, is returned by Create instead of storing the entry
	CreateErr error
}

func NewInMemoryWebhookLogStore() *InMemoryWebhookLogStore {
	return &InMemoryWebhookLogStore{
		InMemoryStore: NewInMemoryStore[*webhooklog.Entry](),
	}
}

func (s *InMemoryWebhookLogStore) Create(ctx context.Context, entry *webhooklog.Entry) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if entry.ID == "" {
		entry.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WEBHOOK_LOG)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	c := *entry
	return s.InMemoryStore.Create(ctx, entry.EventID, &c)
}

func (s *InMemoryWebhookLogStore) GetByEventID(ctx context.Context, eventID string) (*webhooklog.Entry, error) {
	e, err := s.InMemoryStore.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	c := *e
	return &c, nil
}

func (s *InMemoryWebhookLogStore) Complete(ctx context.Context, eventID string, status types.WebhookLogStatus, errMsg *string) error {
	_, _, err := s.InMemoryStore.Mutate(ctx, eventID, func(e *webhooklog.Entry) (*webhooklog.Entry, bool) {
		c := *e
		now := time.Now().UTC()
		c.Status = status
		c.ErrorMessage = errMsg
		c.ProcessedAt = &now
		return &c, true
	})
	return err
}
