package suggest

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// DefaultFetchTimeout bounds a shared upstream call once no caller's
// context governs it.
const DefaultFetchTimeout = 10 * time.Second

// Cached memoizes a provider's answers for a short TTL. Concurrent
// lookups of the same query share one upstream call. Errors are not
// cached.
type Cached struct {
	next         Provider
	cache        *cache.Cache
	group        singleflight.Group
	fetchTimeout time.Duration
}

// NewCached wraps next with a TTL cache.
func NewCached(next Provider, ttl time.Duration) *Cached {
	return &Cached{
		next:         next,
		cache:        cache.New(ttl, 2*ttl),
		fetchTimeout: DefaultFetchTimeout,
	}
}

func (c *Cached) Name() string { return c.next.Name() }

// Suggestions returns cached completions or fetches them from the
// wrapped provider. The shared fetch keeps the first caller's values but
// not its cancellation, so a caller that gives up does not fail the
// others; each caller stops waiting when its own context ends.
func (c *Cached) Suggestions(ctx context.Context, query string) ([]string, error) {
	if v, ok := c.cache.Get(query); ok {
		return copyStrings(v.([]string)), nil
	}

	ch := c.group.DoChan(query, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		items, err := c.next.Suggestions(fetchCtx, query)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(query, items)
		return items, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return copyStrings(res.Val.([]string)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Flush drops all cached entries.
func (c *Cached) Flush() {
	c.cache.Flush()
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
