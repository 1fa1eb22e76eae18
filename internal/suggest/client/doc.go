// Package client provides the HTTP client used by suggestion providers.
//
// Built on go-resty/resty with a hashicorp/go-retryablehttp transport:
//   - Retries with exponential backoff for connection errors, 429 and 5xx
//   - Context-based cancellation (a superseded query aborts its request)
//   - Token bucket rate limiting per client (golang.org/x/time/rate)
//   - A circuit breaker per client so a dead provider fails fast
//
// Example Usage:
//
//	c := client.New(client.Config{Name: "google", Timeout: 5 * time.Second})
//	resp, err := c.Get(ctx, "https://www.google.com/complete/search",
//		map[string]string{"output": "chrome", "q": "weather"})
package client
