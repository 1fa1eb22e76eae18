package websearch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/GriffinCanCode/AgentOS/websearch/internal/suggest"
)

func TestMain(m *testing.M) {
	// go-cache janitors stop only when their cache is garbage collected.
	goleak.VerifyTestMain(m, goleak.IgnoreAnyFunction("github.com/patrickmn/go-cache.(*janitor).Run"))
}

type fakeProvider struct {
	name  string
	calls atomic.Int32
	fn    func(ctx context.Context, q string) ([]string, error)
}

func (p *fakeProvider) Name() string {
	if p.name == "" {
		return "fake"
	}
	return p.name
}

func (p *fakeProvider) Suggestions(ctx context.Context, q string) ([]string, error) {
	p.calls.Add(1)
	return p.fn(ctx, q)
}

// after returns items once d has passed, regardless of ctx.
func after(d time.Duration, items ...string) *fakeProvider {
	return &fakeProvider{fn: func(ctx context.Context, q string) ([]string, error) {
		time.Sleep(d)
		return items, nil
	}}
}

type fakeLauncher struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (l *fakeLauncher) Launch(ctx context.Context, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.urls = append(l.urls, url)
	return l.err
}

func (l *fakeLauncher) opened() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.urls...)
}

func google() *SearchSource {
	return &SearchSource{
		Title:         "Google",
		ActionKeyword: "g",
		URL:           "https://www.google.com/search?q={q}",
		IconPath:      "google.png",
		Enabled:       true,
	}
}

func newAggregator(t *testing.T, provider *fakeProvider, timeout time.Duration) (*Aggregator, *fakeLauncher) {
	t.Helper()
	l := &fakeLauncher{}
	cfg := AggregatorConfig{
		Launcher: l,
		Timeout:  timeout,
		IconDir:  "/icons",
	}
	if provider != nil {
		cfg.Provider = provider
		cfg.EnableSuggestion = true
	}
	a := NewAggregator(cfg)
	t.Cleanup(a.Wait)
	return a, l
}

func titles(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Title
	}
	return out
}

func collect(a *Aggregator) (events func() []ResultsUpdatedEvent, unsubscribe func()) {
	var mu sync.Mutex
	var got []ResultsUpdatedEvent
	unsubscribe = a.OnResultsUpdated(func(ev ResultsUpdatedEvent) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev)
	})
	return func() []ResultsUpdatedEvent {
		mu.Lock()
		defer mu.Unlock()
		return append([]ResultsUpdatedEvent(nil), got...)
	}, unsubscribe
}

func TestBuildResultsFastProvider(t *testing.T) {
	provider := after(50*time.Millisecond, "weather nyc", "weather sf")
	a, _ := newAggregator(t, provider, 300*time.Millisecond)
	events, _ := collect(a)

	list := a.BuildResults(context.Background(), ParseQuery("g weather"), google())
	results := list.Snapshot()

	require.Len(t, results, 3)
	assert.Equal(t, []string{"weather", "weather nyc", "weather sf"}, titles(results))
	assert.Equal(t, ImmediateScore, results[0].Score)
	assert.Equal(t, SuggestionScore, results[1].Score)
	assert.Equal(t, SuggestionScore, results[2].Score)
	for _, r := range results {
		assert.Equal(t, "Search Google", r.SubTitle)
		assert.Equal(t, "/icons/google.png", r.IconPath)
		assert.NotEmpty(t, r.ID)
	}
	assert.Equal(t, "https://www.google.com/search?q=weather%20nyc", results[1].URL)

	a.Wait()
	assert.Empty(t, events(), "in-time suggestions are not announced")
	assert.Nil(t, a.Coordinator().Current())
}

func TestBuildResultsSlowProvider(t *testing.T) {
	provider := after(500*time.Millisecond, "weather nyc", "weather sf")
	a, _ := newAggregator(t, provider, 300*time.Millisecond)

	updates := make(chan ResultsUpdatedEvent, 1)
	a.OnResultsUpdated(func(ev ResultsUpdatedEvent) { updates <- ev })

	start := time.Now()
	list := a.BuildResults(context.Background(), ParseQuery("g weather"), google())
	elapsed := time.Since(start)

	assert.Equal(t, []string{"weather"}, titles(list.Snapshot()))
	assert.Less(t, elapsed, 450*time.Millisecond)

	select {
	case ev := <-updates:
		assert.Same(t, list, ev.Results)
		assert.Equal(t, list.QueryID(), ev.QueryID)
		assert.Equal(t, "weather", ev.Query.Search)
		assert.Equal(t, []string{"weather", "weather nyc", "weather sf"}, titles(ev.Results.Snapshot()))
	case <-time.After(2 * time.Second):
		t.Fatal("no update notification")
	}
}

func TestBuildResultsEmptySearch(t *testing.T) {
	provider := after(0, "unused")
	a, l := newAggregator(t, provider, 300*time.Millisecond)

	list := a.BuildResults(context.Background(), ParseQuery("g"), google())
	results := list.Snapshot()

	require.Len(t, results, 1)
	assert.Equal(t, "Search Google", results[0].Title)
	assert.Empty(t, results[0].SubTitle)
	assert.Equal(t, int32(0), provider.calls.Load())

	assert.True(t, results[0].Invoke(context.Background()))
	assert.Equal(t, "https://www.google.com/search?q={q}", results[0].URL)
	assert.Equal(t, []string{"https://www.google.com/search?q={q}"}, l.opened())
}

func TestBuildResultsMissingOrDisabledSource(t *testing.T) {
	provider := after(0, "unused")
	a, _ := newAggregator(t, provider, 300*time.Millisecond)

	assert.Equal(t, 0, a.BuildResults(context.Background(), ParseQuery("g weather"), nil).Len())

	disabled := google()
	disabled.Enabled = false
	assert.Equal(t, 0, a.BuildResults(context.Background(), ParseQuery("g weather"), disabled).Len())
	assert.Equal(t, int32(0), provider.calls.Load())
}

func TestBuildResultsMissingSourceSupersedes(t *testing.T) {
	provider := after(100*time.Millisecond, "late")
	a, _ := newAggregator(t, provider, 10*time.Millisecond)
	events, _ := collect(a)

	first := a.BuildResults(context.Background(), ParseQuery("g weather"), google())
	a.BuildResults(context.Background(), ParseQuery("x weather"), nil)
	a.Wait()

	assert.Empty(t, events())
	assert.Equal(t, 1, first.Len())
}

func TestBuildResultsProviderError(t *testing.T) {
	tests := []struct {
		name  string
		delay time.Duration
	}{
		{"in time", 0},
		{"late", 50 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{fn: func(ctx context.Context, q string) ([]string, error) {
				time.Sleep(tt.delay)
				return nil, errors.New("provider unavailable")
			}}
			a, _ := newAggregator(t, provider, 20*time.Millisecond)
			events, _ := collect(a)

			list := a.BuildResults(context.Background(), ParseQuery("g weather"), google())
			a.Wait()

			assert.Equal(t, []string{"weather"}, titles(list.Snapshot()))
			assert.Empty(t, events())
		})
	}
}

func TestOnlyLatestQueryNotifies(t *testing.T) {
	provider := &fakeProvider{fn: func(ctx context.Context, q string) ([]string, error) {
		time.Sleep(100 * time.Millisecond)
		return []string{q + " 1", q + " 2"}, nil
	}}
	a, _ := newAggregator(t, provider, 10*time.Millisecond)
	events, _ := collect(a)

	const n = 5
	lists := make([]*ResultList, n)
	for i := range lists {
		lists[i] = a.BuildResults(context.Background(), ParseQuery("g weather"), google())
		require.Equal(t, 1, lists[i].Len())
	}
	a.Wait()

	got := events()
	require.Len(t, got, 1)
	assert.Same(t, lists[n-1], got[0].Results)
	assert.Equal(t, 3, lists[n-1].Len())
	for _, l := range lists[:n-1] {
		assert.Equal(t, 1, l.Len(), "superseded list must not grow")
	}
}

func TestSupersededFetchIsCancelled(t *testing.T) {
	cancelled := make(chan struct{})
	var once sync.Once
	provider := &fakeProvider{fn: func(ctx context.Context, q string) ([]string, error) {
		if q == "slow" {
			<-ctx.Done()
			once.Do(func() { close(cancelled) })
			return nil, ctx.Err()
		}
		return []string{q + "!"}, nil
	}}
	a, _ := newAggregator(t, provider, 10*time.Millisecond)
	events, _ := collect(a)

	a.BuildResults(context.Background(), ParseQuery("g slow"), google())
	list := a.BuildResults(context.Background(), ParseQuery("g fast"), google())

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("superseded fetch was not cancelled")
	}
	a.Wait()

	assert.Equal(t, []string{"fast", "fast!"}, titles(list.Snapshot()))
	assert.Empty(t, events())
}

func TestCachedProviderServesQueryThatSupersedesSameSearch(t *testing.T) {
	provider := &fakeProvider{fn: func(ctx context.Context, q string) ([]string, error) {
		select {
		case <-time.After(150 * time.Millisecond):
			return []string{q + " nyc"}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}}
	a, _ := newAggregator(t, nil, 10*time.Millisecond)
	a.SetSuggestion(true, suggest.NewCached(provider, time.Minute))
	events, _ := collect(a)

	first := a.BuildResults(context.Background(), ParseQuery("g weather"), google())
	second := a.BuildResults(context.Background(), ParseQuery("g weather "), google())
	a.Wait()

	assert.Equal(t, 1, first.Len())
	assert.Equal(t, []string{"weather", "weather nyc"}, titles(second.Snapshot()))
	assert.Equal(t, int32(1), provider.calls.Load())

	got := events()
	require.Len(t, got, 1)
	assert.Same(t, second, got[0].Results)
}

func TestNoDeduplication(t *testing.T) {
	a, _ := newAggregator(t, after(0, "weather", "weather"), 300*time.Millisecond)

	list := a.BuildResults(context.Background(), ParseQuery("g weather"), google())
	assert.Equal(t, []string{"weather", "weather", "weather"}, titles(list.Snapshot()))
}

func TestSuggestionToggle(t *testing.T) {
	provider := after(0, "weather nyc")
	a, _ := newAggregator(t, provider, 300*time.Millisecond)

	a.SetSuggestion(false, provider)
	assert.Equal(t, 1, a.BuildResults(context.Background(), ParseQuery("g weather"), google()).Len())
	assert.Equal(t, int32(0), provider.calls.Load())

	a.SetSuggestion(true, nil)
	assert.Equal(t, 1, a.BuildResults(context.Background(), ParseQuery("g weather"), google()).Len())

	a.SetSuggestion(true, provider)
	assert.Equal(t, 2, a.BuildResults(context.Background(), ParseQuery("g weather"), google()).Len())
}

func TestBuildResultsContextBoundsWait(t *testing.T) {
	provider := after(100*time.Millisecond, "late")
	a, _ := newAggregator(t, provider, time.Second)

	updates := make(chan ResultsUpdatedEvent, 1)
	a.OnResultsUpdated(func(ev ResultsUpdatedEvent) { updates <- ev })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	list := a.BuildResults(ctx, ParseQuery("g weather"), google())
	assert.Equal(t, 1, list.Len())

	select {
	case ev := <-updates:
		assert.Equal(t, 2, ev.Results.Len())
	case <-time.After(2 * time.Second):
		t.Fatal("no update notification")
	}
}

func TestUnsubscribe(t *testing.T) {
	a, _ := newAggregator(t, after(50*time.Millisecond, "late"), 5*time.Millisecond)
	events, unsubscribe := collect(a)
	unsubscribe()
	unsubscribe()

	a.BuildResults(context.Background(), ParseQuery("g weather"), google())
	a.Wait()
	assert.Empty(t, events())
}

func TestInvokeOpensEscapedURL(t *testing.T) {
	a, l := newAggregator(t, after(0, "rain & snow"), 300*time.Millisecond)

	results := a.BuildResults(context.Background(), ParseQuery("g weather nyc"), google()).Snapshot()
	require.Len(t, results, 2)

	assert.True(t, results[0].Invoke(context.Background()))
	assert.True(t, results[1].Invoke(context.Background()))
	assert.Equal(t, []string{
		"https://www.google.com/search?q=weather%20nyc",
		"https://www.google.com/search?q=rain%20%26%20snow",
	}, l.opened())

	l.err = errors.New("no browser")
	assert.False(t, results[0].Invoke(context.Background()))
	assert.False(t, Result{}.Invoke(context.Background()))
}
