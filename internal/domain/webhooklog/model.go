package webhooklog

import (
	"encoding/json"
	"time"

	"github.com/flexprice/marketplace/internal/types"
)

// Entry is one received processor event. EventID is unique.
type Entry struct {
	ID           string                 `json:"id,omitempty"`
	EventID      string                 `json:"event_id"`
	EventType    string                 `json:"event_type"`
	Payload      json.RawMessage        `json:"payload"`
	Status       types.WebhookLogStatus `json:"status"`
	ErrorMessage *string                `json:"error_message,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	ProcessedAt  *time.Time             `json:"processed_at,omitempty"`
}

// IsProcessed reports whether the event already reached a successful terminal state
func (e *Entry) IsProcessed() bool {
	return e != nil && e.Status == types.WebhookLogStatusSuccess
}
