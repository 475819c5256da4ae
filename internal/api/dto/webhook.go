package dto

// WebhookAckResponse acknowledges a processed or ignored webhook delivery
type WebhookAckResponse struct {
	Received bool `json:"received"`
}

// WebhookResult is the outcome of handling one delivery
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	// Duplicate is true when the event had already been processed successfully
	Duplicate bool `json:"duplicate"`
}
