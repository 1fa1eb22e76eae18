package suggest

import (
	"time"

	"github.com/GriffinCanCode/AgentOS/websearch/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/suggest/client"
)

// Config configures the default providers.
type Config struct {
	GoogleURL   string
	BaiduURL    string
	HTTPTimeout time.Duration
	Retries     int
	RateLimit   float64
	// CacheTTL enables response caching when positive.
	CacheTTL time.Duration
	// OnBreakerChange is told about circuit breaker transitions per provider.
	OnBreakerChange func(provider string, from, to resilience.State)
	// Tracer records a span per outbound request.
	Tracer *tracing.Tracer
}

// DefaultConfig returns the production endpoints.
func DefaultConfig() Config {
	return Config{
		GoogleURL:   "https://www.google.com",
		BaiduURL:    "http://suggestion.baidu.com",
		HTTPTimeout: 5 * time.Second,
		Retries:     1,
		RateLimit:   10,
		CacheTTL:    2 * time.Minute,
	}
}

// NewDefaultRegistry builds a registry with the google and baidu
// providers, each with its own HTTP client and circuit breaker.
func NewDefaultRegistry(cfg Config) *Registry {
	newClient := func(name string) *client.Client {
		settings := resilience.Settings{
			MaxRequests:   2,
			Interval:      60 * time.Second,
			Timeout:       15 * time.Second,
			OnStateChange: cfg.OnBreakerChange,
		}
		return client.New(client.Config{
			Name:      name,
			Timeout:   cfg.HTTPTimeout,
			Retries:   cfg.Retries,
			RateLimit: cfg.RateLimit,
			Breaker:   &settings,
			Tracer:    cfg.Tracer,
		})
	}

	providers := []Provider{
		NewGoogle(newClient("google"), cfg.GoogleURL),
		NewBaidu(newClient("baidu"), cfg.BaiduURL),
	}
	if cfg.CacheTTL > 0 {
		for i, p := range providers {
			providers[i] = NewCached(p, cfg.CacheTTL)
		}
	}
	return NewRegistry(providers...)
}
