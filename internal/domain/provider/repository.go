package provider

import "context"

// Repository defines the interface for provider persistence
type Repository interface {
	Get(ctx context.Context, id string) (*Provider, error)
	// SetConnectedAccountIfAbsent stores accountID only when the provider has none yet.
	// It returns the provider as stored after the call and whether this call wrote the id.
	SetConnectedAccountIfAbsent(ctx context.Context, id string, accountID string) (*Provider, bool, error)
}
