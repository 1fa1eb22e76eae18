package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/AgentOS/websearch/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/infrastructure/tracing"
)

// Config configures a Client.
type Config struct {
	// Name labels the circuit breaker.
	Name         string
	Timeout      time.Duration
	Retries      int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimit is the allowed requests per second; 0 means unlimited.
	RateLimit float64
	UserAgent string
	// Breaker overrides the default breaker settings.
	Breaker *resilience.Settings
	// Tracer records a span per request; nil disables tracing.
	Tracer *tracing.Tracer
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client wraps resty with rate limiting and a circuit breaker.
type Client struct {
	name    string
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	tracer  *tracing.Tracer
}

// New creates a client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RetryWaitMin == 0 {
		cfg.RetryWaitMin = 100 * time.Millisecond
	}
	if cfg.RetryWaitMax == 0 {
		cfg.RetryWaitMax = time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "AgentOS-WebSearch/1.0"
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil // Disable logging

	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	settings := resilience.Settings{
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	if cfg.Breaker != nil {
		settings = *cfg.Breaker
	}

	return &Client{
		name:    cfg.Name,
		resty:   restyClient,
		limiter: limiter,
		breaker: resilience.New(cfg.Name, settings),
		tracer:  cfg.Tracer,
	}
}

// Breaker exposes the client's circuit breaker.
func (c *Client) Breaker() *resilience.Breaker {
	return c.breaker
}

// Get issues a GET request with the given query parameters. Non-2xx
// responses are errors.
func (c *Client) Get(ctx context.Context, url string, params map[string]string) (_ *Response, err error) {
	span, ctx := c.tracer.StartSpan(ctx, "http.get."+c.name)
	span.SetTag("url", url)
	defer func() {
		span.SetError(err)
		c.tracer.Finish(span)
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	return resilience.Call(ctx, c.breaker, func(ctx context.Context) (*Response, error) {
		req := c.resty.R().
			SetContext(ctx).
			SetQueryParams(params)
		if traceID := tracing.GetTraceID(ctx); traceID != "" {
			req.SetHeader(tracing.TraceHeader, string(traceID))
		}
		resp, err := req.Get(url)
		if err != nil {
			return nil, err
		}
		span.SetStatus(resp.StatusCode())
		if resp.IsError() {
			return nil, fmt.Errorf("%s: unexpected status %d", url, resp.StatusCode())
		}
		return &Response{
			StatusCode:  resp.StatusCode(),
			ContentType: resp.Header().Get("Content-Type"),
			Body:        resp.Body(),
		}, nil
	})
}
