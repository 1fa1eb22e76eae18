// Package middleware provides the gin middleware of the web search API.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting
//
// Rate Limiting:
//   - One token bucket per client IP (golang.org/x/time/rate)
//   - Idle clients are evicted after IdleTTL (patrickmn/go-cache)
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
