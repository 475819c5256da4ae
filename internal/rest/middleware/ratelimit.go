package middleware

import (
	"time"

	"github.com/flexprice/marketplace/internal/config"
	ierr "github.com/flexprice/marketplace/internal/errors"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/flexprice/marketplace/internal/types"
	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// limiterIdleTTL drops limiters of callers that have gone quiet
const limiterIdleTTL = 10 * time.Minute

// RateLimiter keeps one token bucket per caller
type RateLimiter struct {
	limiters *gocache.Cache
	rate     rate.Limit
	burst    int
	logger   *logger.Logger
}

// NewRateLimiter creates a limiter from server.rate_limit
func NewRateLimiter(cfg *config.Configuration, logger *logger.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: gocache.New(limiterIdleTTL, 2*limiterIdleTTL),
		rate:     rate.Limit(cfg.Server.RateLimit.RequestsPerSecond),
		burst:    cfg.Server.RateLimit.Burst,
		logger:   logger,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	if l, found := rl.limiters.Get(key); found {
		// touch so active callers keep their bucket
		rl.limiters.SetDefault(key, l)
		return l.(*rate.Limiter)
	}

	l := rate.NewLimiter(rl.rate, rl.burst)
	if err := rl.limiters.Add(key, l, gocache.DefaultExpiration); err != nil {
		// lost a race with a concurrent request from the same caller
		if existing, found := rl.limiters.Get(key); found {
			return existing.(*rate.Limiter)
		}
	}
	return l
}

// Handler limits by user id when authenticated, otherwise by client IP
func (rl *RateLimiter) Handler(c *gin.Context) {
	if rl.rate <= 0 {
		c.Next()
		return
	}

	key := types.GetUserID(c.Request.Context())
	if key == "" {
		key = c.ClientIP()
	}

	if !rl.getLimiter(key).Allow() {
		rl.logger.Warnw("rate limit exceeded",
			"key", key,
			"path", c.Request.URL.Path,
			"method", c.Request.Method)
		abortWithError(c, ierr.NewError("rate limit exceeded").
			WithHint("Too many requests, please retry shortly").
			Mark(ierr.ErrTooManyRequests))
		return
	}

	c.Next()
}
