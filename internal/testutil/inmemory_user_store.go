package testutil

import (
	"context"

	"github.com/flexprice/marketplace/internal/domain/user"
)

// InMemoryUserStore implements user.Repository
type InMemoryUserStore struct {
	*InMemoryStore[*user.User]
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		InMemoryStore: NewInMemoryStore[*user.User](),
	}
}

func copyUser(u *user.User) *user.User {
	c := *u
	c.Metadata = make(map[string]interface{}, len(u.Metadata))
	for k, v := range u.Metadata {
		c.Metadata[k] = v
	}
	return &c
}

// Add seeds a user
func (s *InMemoryUserStore) Add(u *user.User) {
	_ = s.InMemoryStore.Create(context.Background(), u.ID, copyUser(u))
}

func (s *InMemoryUserStore) Get(ctx context.Context, id string) (*user.User, error) {
	u, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyUser(u), nil
}

func (s *InMemoryUserStore) MergeMetadata(ctx context.Context, id string, metadata map[string]interface{}) error {
	_, _, err := s.InMemoryStore.Mutate(ctx, id, func(u *user.User) (*user.User, bool) {
		updated := copyUser(u)
		for k, v := range metadata {
			updated.Metadata[k] = v
		}
		return updated, true
	})
	return err
}
