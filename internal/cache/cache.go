package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/marketplace/internal/config"
	"github.com/flexprice/marketplace/internal/logger"
	"go.uber.org/fx"
)

// Cache defines the interface for caching operations
type Cache interface {
	// Get retrieves a value from the cache
	// Returns the value and a boolean indicating whether the key was found
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set adds a value to the cache with the specified expiration
	// If expiration is 0, the default expiration is used
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)

	// Delete removes a key from the cache
	Delete(ctx context.Context, key string)

	// Flush removes all items from the cache
	Flush(ctx context.Context)
}

const (
	TypeInMemory = "inmemory"
	TypeRedis    = "redis"
)

// NewCache builds the backend named by cache.type
func NewCache(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) Cache {
	if cfg.Cache.Type != TypeRedis {
		return NewInMemoryCache(cfg, log)
	}

	c := NewRedisCache(cfg, log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return c.Close()
		},
	})
	return c
}

// Predefined cache key prefixes for different entity types
const (
	PrefixWebhookEvent = "webhook_event:v1:"
)

// GenerateKey creates a cache key from a prefix and a set of parameters
// It joins all parameters with a colon and appends them to the prefix. A trailing colon on the
// prefix is not doubled.
func GenerateKey(prefix string, params ...interface{}) string {
	parts := make([]string, len(params)+1)
	parts[0] = strings.TrimSuffix(prefix, ":")

	for i, param := range params {
		parts[i+1] = fmt.Sprintf("%v", param)
	}

	return strings.Join(parts, ":")
}
