package cache

import (
	"context"
	"time"

	"github.com/flexprice/marketplace/internal/config"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache on a shared Redis so every server instance sees the same
// recently processed events. Redis failures degrade to cache misses.
type RedisCache struct {
	client    *redis.Client
	namespace string
	enabled   bool
	logger    *logger.Logger
}

func NewRedisCache(cfg *config.Configuration, log *logger.Logger) *RedisCache {
	log.Infow("initializing redis cache",
		"enabled", cfg.Cache.Enabled,
		"addr", cfg.Cache.Redis.Addr,
		"namespace", cfg.Cache.Redis.KeyPrefix)

	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:         cfg.Cache.Redis.Addr,
			Password:     cfg.Cache.Redis.Password,
			DB:           cfg.Cache.Redis.DB,
			DialTimeout:  cfg.Cache.Redis.Timeout,
			ReadTimeout:  cfg.Cache.Redis.Timeout,
			WriteTimeout: cfg.Cache.Redis.Timeout,
		}),
		namespace: cfg.Cache.Redis.KeyPrefix,
		enabled:   cfg.Cache.Enabled,
		logger:    log,
	}
}

func (c *RedisCache) key(key string) string {
	return c.namespace + key
}

// Get returns the stored value as a string
func (c *RedisCache) Get(ctx context.Context, key string) (interface{}, bool) {
	if !c.enabled {
		return nil, false
	}
	span := startSpan(ctx, "redis", "get", key)
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		finishSpan(span, false, nil)
		return nil, false
	}
	finishSpan(span, err == nil, err)
	if err != nil {
		c.logger.Warnw("redis get failed", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if !c.enabled {
		return
	}
	if expiration == 0 {
		expiration = DefaultExpiration
	}
	span := startSpan(ctx, "redis", "set", key)
	err := c.client.Set(ctx, c.key(key), value, expiration).Err()
	finishSpan(span, false, err)
	if err != nil {
		c.logger.Warnw("redis set failed", "key", key, "error", err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if !c.enabled {
		return
	}
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		c.logger.Warnw("redis delete failed", "key", key, "error", err)
	}
}

// Flush removes the keys under this cache's namespace only
func (c *RedisCache) Flush(ctx context.Context) {
	if !c.enabled {
		return
	}
	iter := c.client.Scan(ctx, 0, c.namespace+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warnw("redis flush failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warnw("redis scan failed", "error", err)
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
