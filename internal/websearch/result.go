package websearch

import (
	"context"
	"sync"

	"github.com/GriffinCanCode/AgentOS/websearch/internal/shared/id"
)

// Result is one entry shown to the user.
type Result struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	SubTitle string `json:"subtitle"`
	IconPath string `json:"icon_path"`
	Score    int    `json:"score"`
	// URL is the page the action opens.
	URL      string `json:"url"`

	Action func(ctx context.Context) bool `json:"-"`
}

// Invoke runs the result's action and reports whether it was handled.
func (r Result) Invoke(ctx context.Context) bool {
	if r.Action == nil {
		return false
	}
	return r.Action(ctx)
}

// ResultList is an append-only, concurrency-safe list of results. The
// list returned by BuildResults may still grow after it is returned.
type ResultList struct {
	queryID id.QueryID

	mu      sync.RWMutex
	results []Result
}

// NewResultList creates an empty list for the given query.
func NewResultList(queryID id.QueryID) *ResultList {
	return &ResultList{queryID: queryID}
}

// QueryID returns the query the list belongs to.
func (l *ResultList) QueryID() id.QueryID { return l.queryID }

// Append adds results to the end of the list.
func (l *ResultList) Append(results ...Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, results...)
}

// Snapshot returns a copy of the current entries.
func (l *ResultList) Snapshot() []Result {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Result, len(l.results))
	copy(out, l.results)
	return out
}

// At returns the entry at index i.
func (l *ResultList) At(i int) (Result, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i < 0 || i >= len(l.results) {
		return Result{}, false
	}
	return l.results[i], true
}

// Len returns the number of entries.
func (l *ResultList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.results)
}
