package testutil

import (
	"context"

	"github.com/flexprice/marketplace/internal/domain/provider"
	"github.com/samber/lo"
)

// InMemoryProviderStore implements provider.Repository
type InMemoryProviderStore struct {
	*InMemoryStore[*provider.Provider]

	// FailSetAccount, when set, is returned by SetConnectedAccountIfAbsent
	FailSetAccount error
}

func NewInMemoryProviderStore() *InMemoryProviderStore {
	return &InMemoryProviderStore{
		InMemoryStore: NewInMemoryStore[*provider.Provider](),
	}
}

func copyProvider(p *provider.Provider) *provider.Provider {
	if p == nil {
		return nil
	}
	c := *p
	if p.StripeAccountID != nil {
		c.StripeAccountID = lo.ToPtr(*p.StripeAccountID)
	}
	return &c
}

// Add seeds a provider, optionally with a connected account id
func (s *InMemoryProviderStore) Add(id string, accountID string) *provider.Provider {
	p := &provider.Provider{ID: id}
	if accountID != "" {
		p.StripeAccountID = lo.ToPtr(accountID)
	}
	_ = s.InMemoryStore.Create(context.Background(), id, p)
	return copyProvider(p)
}

func (s *InMemoryProviderStore) Get(ctx context.Context, id string) (*provider.Provider, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyProvider(p), nil
}

func (s *InMemoryProviderStore) SetConnectedAccountIfAbsent(ctx context.Context, id string, accountID string) (*provider.Provider, bool, error) {
	if s.FailSetAccount != nil {
		return nil, false, s.FailSetAccount
	}
	p, stored, err := s.InMemoryStore.Mutate(ctx, id, func(p *provider.Provider) (*provider.Provider, bool) {
		if p.HasConnectedAccount() {
			return p, false
		}
		updated := copyProvider(p)
		updated.StripeAccountID = lo.ToPtr(accountID)
		return updated, true
	})
	if err != nil {
		return nil, false, err
	}
	return copyProvider(p), stored, nil
}
