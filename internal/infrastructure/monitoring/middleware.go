package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// Label by route template so IDs in paths don't explode cardinality.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Timer measures a suggestion fetch
type Timer struct {
	start    time.Time
	metrics  *Metrics
	provider string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, provider string) *Timer {
	return &Timer{
		start:    time.Now(),
		metrics:  metrics,
		provider: provider,
	}
}

// Stop records the fetch with the given outcome. A nil receiver or nil
// metrics is a no-op.
func (t *Timer) Stop(outcome string) {
	if t == nil || t.metrics == nil {
		return
	}
	t.metrics.RecordSuggestionFetch(t.provider, outcome, time.Since(t.start))
}
