package auth

import (
	"context"

	"github.com/flexprice/marketplace/internal/config"
	"github.com/flexprice/marketplace/internal/domain/auth"
)

type Provider interface {
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}

func NewProvider(cfg *config.Configuration) Provider {
	return NewSupabaseAuth(cfg)
}
