package websearch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/websearch/internal/i18n"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/launcher"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/logging"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/query"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/suggest"
)

const (
	ImmediateScore  = 6
	SuggestionScore = 5

	DefaultTimeout = 300 * time.Millisecond
)

// Launcher opens a result URL.
type Launcher interface {
	Launch(ctx context.Context, url string) error
}

// Translator looks up display strings.
type Translator interface {
	GetTranslation(key string) string
}

// ResultsUpdatedEvent announces suggestions appended to Results after
// BuildResults returned it.
type ResultsUpdatedEvent struct {
	Query   Query
	QueryID id.QueryID
	Results *ResultList
}

// AggregatorConfig configures an Aggregator.
type AggregatorConfig struct {
	Coordinator      *query.Coordinator
	Provider         suggest.Provider
	EnableSuggestion bool
	Launcher         Launcher
	Translator       Translator

	// Timeout bounds how long BuildResults waits for suggestions.
	Timeout time.Duration
	// IconDir resolves relative source icon paths.
	IconDir string

	Logger  *zap.Logger
	Metrics *monitoring.Metrics
}

type listener struct {
	id uint64
	fn func(ResultsUpdatedEvent)
}

type fetchResult struct {
	items []string
	err   error
	timer *monitoring.Timer
}

// Aggregator builds result lists for queries against one source at a time.
type Aggregator struct {
	coordinator *query.Coordinator
	launcher    Launcher
	translator  Translator
	timeout     time.Duration
	iconDir     string
	logger      *zap.Logger
	metrics     *monitoring.Metrics

	mu           sync.RWMutex
	provider     suggest.Provider
	enabled      bool
	listeners    []listener
	nextListener uint64

	wg sync.WaitGroup
}

// NewAggregator creates an aggregator.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	a := &Aggregator{
		coordinator: cfg.Coordinator,
		launcher:    cfg.Launcher,
		translator:  cfg.Translator,
		timeout:     cfg.Timeout,
		iconDir:     cfg.IconDir,
		logger:      logging.OrNop(cfg.Logger),
		metrics:     cfg.Metrics,
		provider:    cfg.Provider,
		enabled:     cfg.EnableSuggestion,
	}
	if a.coordinator == nil {
		a.coordinator = query.NewCoordinator(context.Background())
	}
	if a.launcher == nil {
		a.launcher = launcher.New(launcher.Config{Logger: a.logger})
	}
	if a.translator == nil {
		a.translator = i18n.Default()
	}
	if a.timeout <= 0 {
		a.timeout = DefaultTimeout
	}
	return a
}

// Coordinator returns the coordinator issuing query tokens.
func (a *Aggregator) Coordinator() *query.Coordinator {
	return a.coordinator
}

// SetSuggestion switches suggestion enrichment for subsequent queries.
func (a *Aggregator) SetSuggestion(enabled bool, provider suggest.Provider) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
	a.provider = provider
}

func (a *Aggregator) suggestion() (suggest.Provider, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.provider, a.enabled && a.provider != nil
}

// OnResultsUpdated registers fn for late suggestion updates and returns a
// function that removes it. Listeners run while the query is pinned live,
// so they must not start queries or otherwise call into the coordinator.
func (a *Aggregator) OnResultsUpdated(fn func(ResultsUpdatedEvent)) (unsubscribe func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.nextListener++
	lid := a.nextListener
	a.listeners = append(a.listeners, listener{id: lid, fn: fn})

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		for i, l := range a.listeners {
			if l.id == lid {
				a.listeners = append(a.listeners[:i:i], a.listeners[i+1:]...)
				return
			}
		}
	}
}

// Wait blocks until every background fetch has finished.
func (a *Aggregator) Wait() {
	a.wg.Wait()
}

// BuildResults supersedes the previous query and answers q against
// source. A nil or disabled source yields an empty list. Suggestions are
// included when they arrive within the timeout; otherwise they are
// appended later and announced to listeners. ctx only bounds the wait.
func (a *Aggregator) BuildResults(ctx context.Context, q Query, source *SearchSource) *ResultList {
	tok := a.coordinator.BeginQuery()
	list := NewResultList(tok.ID())

	if source == nil || !source.Enabled {
		a.coordinator.Complete(tok)
		return list
	}
	if a.metrics != nil {
		a.metrics.RecordQuery(source.ActionKeyword)
	}

	subtitle := a.translator.GetTranslation(i18n.KeySearch) + " " + source.Title
	icon := source.Icon(a.iconDir)

	if q.Search == "" {
		target := source.URL
		list.Append(Result{
			ID:       uuid.NewString(),
			Title:    subtitle,
			IconPath: icon,
			URL:      target,
			Action:   a.open(target),
		})
		a.coordinator.Complete(tok)
		return list
	}

	target := source.URLFor(q.Search)
	list.Append(Result{
		ID:       uuid.NewString(),
		Title:    q.Search,
		SubTitle: subtitle,
		IconPath: icon,
		Score:    ImmediateScore,
		URL:      target,
		Action:   a.open(target),
	})

	provider, ok := a.suggestion()
	if !ok {
		a.coordinator.Complete(tok)
		return list
	}

	fetched := make(chan fetchResult, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fetched <- a.fetch(tok, provider, q.Search)
	}()

	timer := time.NewTimer(a.timeout)
	defer timer.Stop()

	merge := func(res fetchResult, late bool) {
		a.merge(tok, q, source, subtitle, icon, list, res, late)
	}

	select {
	case res := <-fetched:
		merge(res, false)
	case <-timer.C:
		a.detach(fetched, merge)
	case <-ctx.Done():
		a.detach(fetched, merge)
	}
	return list
}

// detach finishes the fetch in the background.
func (a *Aggregator) detach(fetched <-chan fetchResult, merge func(fetchResult, bool)) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		merge(<-fetched, true)
	}()
}

func (a *Aggregator) fetch(tok *query.Token, provider suggest.Provider, text string) fetchResult {
	timer := monitoring.NewTimer(a.metrics, provider.Name())
	if err := tok.Err(); err != nil {
		return fetchResult{err: err, timer: timer}
	}
	items, err := provider.Suggestions(tok.Context(), text)
	return fetchResult{items: items, err: err, timer: timer}
}

// merge appends fetched suggestions to list if tok is still live. Late
// merges also notify listeners, under the same liveness check.
func (a *Aggregator) merge(tok *query.Token, q Query, source *SearchSource, subtitle, icon string, list *ResultList, res fetchResult, late bool) {
	defer a.coordinator.Complete(tok)

	logger := a.logger.With(zap.String("query_id", tok.ID().String()), zap.Bool("late", late))

	if res.err != nil {
		if tok.Err() != nil {
			logger.Debug("Discarding superseded suggestion fetch", zap.Error(res.err))
			res.timer.Stop(monitoring.FetchStale)
			return
		}
		logger.Warn("Suggestion fetch failed", zap.String("search", q.Search), zap.Error(res.err))
		res.timer.Stop(monitoring.FetchError)
		return
	}

	entries := make([]Result, 0, len(res.items))
	for _, s := range res.items {
		target := source.URLFor(s)
		entries = append(entries, Result{
			ID:       uuid.NewString(),
			Title:    s,
			SubTitle: subtitle,
			IconPath: icon,
			Score:    SuggestionScore,
			URL:      target,
			Action:   a.open(target),
		})
	}

	published := a.coordinator.Publish(tok, func() {
		list.Append(entries...)
		if late {
			a.notify(ResultsUpdatedEvent{Query: q, QueryID: tok.ID(), Results: list})
		}
	})
	if !published {
		logger.Debug("Discarding stale suggestions", zap.Int("count", len(entries)))
		res.timer.Stop(monitoring.FetchStale)
		return
	}

	outcome := monitoring.FetchInTime
	if late {
		outcome = monitoring.FetchLate
	}
	res.timer.Stop(outcome)
	if a.metrics != nil {
		a.metrics.AddSuggestionsMerged(len(entries))
		if late {
			a.metrics.IncUpdatesPublished()
		}
	}
}

func (a *Aggregator) notify(ev ResultsUpdatedEvent) {
	a.mu.RLock()
	fns := make([]func(ResultsUpdatedEvent), 0, len(a.listeners))
	for _, l := range a.listeners {
		fns = append(fns, l.fn)
	}
	a.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// open returns an action that launches target.
func (a *Aggregator) open(target string) func(context.Context) bool {
	return func(ctx context.Context) bool {
		err := a.launcher.Launch(ctx, target)
		if err != nil {
			a.logger.Warn("Failed to open result", zap.String("url", target), zap.Error(err))
		}
		if a.metrics != nil {
			a.metrics.RecordInvocation(err == nil)
		}
		return err == nil
	}
}
