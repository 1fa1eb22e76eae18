package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	// IdleTTL is how long an idle client's limiter is kept.
	IdleTTL           time.Duration
}

// DefaultRateLimitConfig returns the rate limit used for a local API.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 50,
		Burst:             100,
		IdleTTL:           10 * time.Minute,
	}
}

// RateLimit creates a per-IP rate limiting middleware. Limiters of
// clients that stay idle for IdleTTL are evicted.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	clients := cache.New(cfg.IdleTTL, cfg.IdleTTL)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		// Add fails when the entry exists, so racing first requests share one limiter.
		_ = clients.Add(ip, rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst), cache.DefaultExpiration)
		v, ok := clients.Get(ip)
		if !ok {
			c.Next()
			return
		}
		limiter := v.(*rate.Limiter)
		clients.SetDefault(ip, limiter)

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
