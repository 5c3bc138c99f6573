package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/nativefetch/errors"
)

// RateLimitConfig configures per-caller rate limiting of IPC commands.
type RateLimitConfig struct {
	// RequestsPerMinute is the maximum number of commands per minute per key.
	RequestsPerMinute int
	// KeyFunc extracts the rate limit key. Defaults to client IP.
	KeyFunc func(*gin.Context) string
}

// RateLimit applies a per-key sliding one-minute window. Rejected calls get
// HOST_BUSY so clients can treat them as retryable.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 600
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}

	rl := &rateLimiter{
		requests: make(map[string][]time.Time),
		limit:    cfg.RequestsPerMinute,
		now:      time.Now,
	}

	return func(c *gin.Context) {
		if !rl.allow(cfg.KeyFunc(c)) {
			err := errors.HostBusy(cfg.RequestsPerMinute).WithDetail("window", "1m")
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
			return
		}
		c.Next()
	}
}

// IPBasedKey extracts the client IP for use as a rate limit key.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

type rateLimiter struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	limit     int
	now       func() time.Time
	lastSweep time.Time
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-time.Minute)
	if now.Sub(rl.lastSweep) > 5*time.Minute {
		rl.sweep(cutoff)
		rl.lastSweep = now
	}

	valid := filterByTime(rl.requests[key], cutoff)
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}
	rl.requests[key] = append(valid, now)
	return true
}

// sweep drops keys with no requests inside the window. Caller holds mu.
func (rl *rateLimiter) sweep(cutoff time.Time) {
	for key, times := range rl.requests {
		valid := filterByTime(times, cutoff)
		if len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

func filterByTime(times []time.Time, cutoff time.Time) []time.Time {
	var result []time.Time
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}
