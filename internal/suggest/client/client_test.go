package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/AgentOS/websearch/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/infrastructure/tracing"
)

func TestGetPassesQueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "weather nyc", r.URL.Query().Get("q"))
		assert.Equal(t, "AgentOS-WebSearch/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`["weather nyc",[]]`))
	}))
	defer server.Close()

	c := New(Config{Name: "test"})
	resp, err := c.Get(context.Background(), server.URL, map[string]string{"q": "weather nyc"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json; charset=utf-8", resp.ContentType)
	assert.Equal(t, `["weather nyc",[]]`, string(resp.Body))
}

func TestGetErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := New(Config{Name: "test"})
	_, err := c.Get(context.Background(), server.URL, nil)
	assert.Error(t, err)
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := New(Config{Name: "test", Retries: 2, RetryWaitMin: time.Millisecond, RetryWaitMax: 5 * time.Millisecond})
	resp, err := c.Get(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := New(Config{
		Name: "flaky",
		Breaker: &resilience.Settings{
			Timeout:     time.Minute,
			ReadyToTrip: func(counts resilience.Counts) bool { return counts.ConsecutiveFailures >= 2 },
		},
	})

	for i := 0; i < 2; i++ {
		_, err := c.Get(context.Background(), server.URL, nil)
		assert.Error(t, err)
	}
	assert.Equal(t, resilience.StateOpen, c.Breaker().State())

	_, err := c.Get(context.Background(), server.URL, nil)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := New(Config{Name: "slow"})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, server.URL, nil)
	assert.Error(t, err)
	assert.Equal(t, resilience.Counts{}, c.Breaker().Counts())
}

func TestGetPropagatesTrace(t *testing.T) {
	var header atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header.Store(r.Header.Get(tracing.TraceHeader))
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	tracer := tracing.New("test", zap.New(core))
	root, ctx := tracer.StartSpan(context.Background(), "query")

	c := New(Config{Name: "google", Tracer: tracer})
	_, err := c.Get(ctx, server.URL, nil)
	require.NoError(t, err)

	assert.Equal(t, string(root.TraceID), header.Load())

	entries := logs.FilterMessage("span completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "http.get.google", fields["operation"])
	assert.Equal(t, string(root.SpanID), fields["parent_id"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}
