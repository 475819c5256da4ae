package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/flexprice/marketplace/internal/config"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	key := GenerateKey(PrefixWebhookEvent, "evt_123")
	assert.Equal(t, "webhook_event:v1:evt_123", key)

	t.Run("enabled", func(t *testing.T) {
		cfg := config.GetDefaultConfig()
		c := NewInMemoryCache(cfg, logger.NewNoopLogger())

		_, found := c.Get(ctx, key)
		assert.False(t, found)

		c.Set(ctx, key, true, time.Minute)
		v, found := c.Get(ctx, key)
		assert.True(t, found)
		assert.Equal(t, true, v)

		c.Delete(ctx, key)
		_, found = c.Get(ctx, key)
		assert.False(t, found)
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := config.GetDefaultConfig()
		cfg.Cache.Enabled = false
		c := NewInMemoryCache(cfg, logger.NewNoopLogger())

		c.Set(ctx, key, true, time.Minute)
		_, found := c.Get(ctx, key)
		assert.False(t, found)
	})
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "webhook_event:v1:evt_1", GenerateKey("webhook_event:v1:", "evt_1"))
	assert.Equal(t, "webhook_event:v1:evt_1", GenerateKey("webhook_event:v1", "evt_1"))
	assert.Equal(t, "booking:v1:svc:b1", GenerateKey("booking:v1:", "svc", "b1"))
	assert.True(t, strings.HasSuffix(PrefixWebhookEvent, ":"))
}
