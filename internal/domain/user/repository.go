package user

import "context"

// Repository reads and updates auth users held by the data service
type Repository interface {
	Get(ctx context.Context, id string) (*User, error)
	// MergeMetadata writes the given keys into the user's metadata, keeping the others
	MergeMetadata(ctx context.Context, id string, metadata map[string]interface{}) error
}
