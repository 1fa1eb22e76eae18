package websearch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/websearch/internal/i18n"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/launcher"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/logging"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/query"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/storage"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/suggest"
)

// PluginConfig configures a Plugin.
type PluginConfig struct {
	Store       *storage.Store[Settings]
	Registry    *suggest.Registry
	Coordinator *query.Coordinator

	// Launcher defaults to one using Settings.BrowserPath.
	Launcher   Launcher
	Translator Translator
	Timeout    time.Duration
	IconDir    string
	Logger     *zap.Logger
	Metrics    *monitoring.Metrics
}

// Plugin serves queries from persisted settings.
type Plugin struct {
	store      *storage.Store[Settings]
	registry   *suggest.Registry
	translator Translator
	logger     *zap.Logger
	aggregator *Aggregator

	mu       sync.RWMutex
	settings Settings
}

// NewPlugin loads settings and builds the aggregator. Load errors are
// returned only by a strict store.
func NewPlugin(cfg PluginConfig) (*Plugin, error) {
	if cfg.Store == nil {
		return nil, errors.New("websearch: settings store is required")
	}

	p := &Plugin{
		store:      cfg.Store,
		registry:   cfg.Registry,
		translator: cfg.Translator,
		logger:     logging.OrNop(cfg.Logger).Named("websearch"),
	}
	if p.registry == nil {
		p.registry = suggest.NewRegistry()
	}
	if p.translator == nil {
		p.translator = i18n.Default()
	}

	settings, err := p.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	p.settings = settings

	l := cfg.Launcher
	if l == nil {
		l = launcher.New(launcher.Config{Browser: p.browserPath, Logger: p.logger})
	}

	p.aggregator = NewAggregator(AggregatorConfig{
		Coordinator: cfg.Coordinator,
		Launcher:    l,
		Translator:  p.translator,
		Timeout:     cfg.Timeout,
		IconDir:     cfg.IconDir,
		Logger:      p.logger,
		Metrics:     cfg.Metrics,
	})
	p.applySuggestion(settings)

	return p, nil
}

// Aggregator returns the plugin's aggregator.
func (p *Plugin) Aggregator() *Aggregator {
	return p.aggregator
}

// Query answers q with the first enabled source whose keyword matches.
func (p *Plugin) Query(ctx context.Context, q Query) *ResultList {
	p.mu.RLock()
	source := p.settings.Source(q.ActionKeyword)
	p.mu.RUnlock()

	return p.aggregator.BuildResults(ctx, q, source)
}

// OnResultsUpdated registers a listener for late updates.
func (p *Plugin) OnResultsUpdated(fn func(ResultsUpdatedEvent)) (unsubscribe func()) {
	return p.aggregator.OnResultsUpdated(fn)
}

// Settings returns a copy of the current settings.
func (p *Plugin) Settings() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings.Clone()
}

// Sources returns the configured search sources.
func (p *Plugin) Sources() []SearchSource {
	return p.Settings().SearchSources
}

// UpdateSettings applies fn to a copy of the settings and installs it.
func (p *Plugin) UpdateSettings(fn func(*Settings)) Settings {
	p.mu.Lock()
	next := p.settings.Clone()
	fn(&next)
	p.settings = next
	p.mu.Unlock()

	p.applySuggestion(next)
	return next.Clone()
}

// Watch applies settings written to the store file by other processes
// until ctx is done.
func (p *Plugin) Watch(ctx context.Context) error {
	return p.store.Watch(ctx, func(s Settings) {
		if s.Equal(p.Settings()) {
			return
		}
		p.logger.Info("Reloading settings changed on disk")
		p.UpdateSettings(func(cur *Settings) { *cur = s })
	})
}

// Save persists the current settings. Errors are only returned by a
// strict store.
func (p *Plugin) Save() error {
	return p.store.Save(p.Settings())
}

// Title returns the translated plugin name.
func (p *Plugin) Title() string {
	return p.translator.GetTranslation(i18n.KeyPluginName)
}

// Description returns the translated plugin description.
func (p *Plugin) Description() string {
	return p.translator.GetTranslation(i18n.KeyPluginDescription)
}

// Close stops accepting queries, waits for background fetches and saves
// the settings.
func (p *Plugin) Close() error {
	p.aggregator.Coordinator().Close()
	p.aggregator.Wait()
	return p.Save()
}

func (p *Plugin) browserPath() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings.BrowserPath
}

func (p *Plugin) applySuggestion(s Settings) {
	if !s.EnableSuggestion || s.SelectedSuggestion == "" {
		p.aggregator.SetSuggestion(false, nil)
		return
	}

	provider, err := p.registry.Get(s.SelectedSuggestion)
	if err != nil {
		p.logger.Warn("Suggestions disabled", zap.String("provider", s.SelectedSuggestion), zap.Error(err))
		p.aggregator.SetSuggestion(false, nil)
		return
	}
	p.aggregator.SetSuggestion(true, provider)
}
