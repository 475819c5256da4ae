package types

// WebhookLogStatus is the processing status of a received processor event
type WebhookLogStatus string

const (
	WebhookLogStatusPending WebhookLogStatus = "pending"
	WebhookLogStatusSuccess WebhookLogStatus = "success"
	WebhookLogStatusFailed  WebhookLogStatus = "failed"
)
