package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/websearch/internal/storage"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/suggest"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/websearch"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProvider struct {
	delay time.Duration
	items []string
}

func (p stubProvider) Name() string { return "google" }

func (p stubProvider) Suggestions(ctx context.Context, q string) ([]string, error) {
	time.Sleep(p.delay)
	return p.items, nil
}

type recordingLauncher struct {
	mu   sync.Mutex
	urls []string
}

func (l *recordingLauncher) Launch(ctx context.Context, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.urls = append(l.urls, url)
	return nil
}

type fixture struct {
	router   *gin.Engine
	plugin   *websearch.Plugin
	launcher *recordingLauncher
}

func newFixture(t *testing.T, provider stubProvider) *fixture {
	t.Helper()
	store := storage.New(filepath.Join(t.TempDir(), "settings.dat"), websearch.DefaultSettings, storage.Options{})
	l := &recordingLauncher{}

	plugin, err := websearch.NewPlugin(websearch.PluginConfig{
		Store:    store,
		Registry: suggest.NewRegistry(provider),
		Launcher: l,
		Timeout:  100 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { plugin.Aggregator().Wait() })

	router := gin.New()
	NewHandlers(plugin, time.Minute, nil).Register(router)
	return &fixture{router: router, plugin: plugin, launcher: l}
}

func (f *fixture) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func resultTitles(t *testing.T, v any) []string {
	t.Helper()
	items, ok := v.([]any)
	require.True(t, ok, "results is %T", v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.(map[string]any)["title"].(string))
	}
	return out
}

func TestHealthAndSources(t *testing.T) {
	f := newFixture(t, stubProvider{})

	code, body := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "Web Searches", body["service"])
	assert.EqualValues(t, 19, body["sources"])

	code, body = f.do(t, http.MethodGet, "/sources", "")
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 19, body["count"])
}

func TestQueryAndInvoke(t *testing.T) {
	f := newFixture(t, stubProvider{items: []string{"weather nyc", "weather sf"}})

	code, body := f.do(t, http.MethodGet, "/query?q=g+weather", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"weather", "weather nyc", "weather sf"}, resultTitles(t, body["results"]))

	queryID := body["query_id"].(string)
	require.NotEmpty(t, queryID)

	code, body = f.do(t, http.MethodPost, "/query/"+queryID+"/results/1/invoke", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["handled"])
	assert.Equal(t, []string{"https://www.google.com/search?q=weather%20nyc"}, f.launcher.urls)

	code, _ = f.do(t, http.MethodPost, "/query/"+queryID+"/results/9/invoke", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.do(t, http.MethodPost, "/query/"+queryID+"/results/x/invoke", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.do(t, http.MethodPost, "/query/qry_unknown/results/0/invoke", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestQueryPicksUpLateSuggestions(t *testing.T) {
	f := newFixture(t, stubProvider{delay: 250 * time.Millisecond, items: []string{"late"}})

	code, body := f.do(t, http.MethodGet, "/query?q=g+weather", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"weather"}, resultTitles(t, body["results"]))
	queryID := body["query_id"].(string)

	f.plugin.Aggregator().Wait()

	code, body = f.do(t, http.MethodGet, "/query/"+queryID, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"weather", "late"}, resultTitles(t, body["results"]))
}

func TestQueryValidation(t *testing.T) {
	f := newFixture(t, stubProvider{})

	code, _ := f.do(t, http.MethodGet, "/query", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := f.do(t, http.MethodGet, "/query?q=unknown+weather", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["results"])
}

func TestSettingsRoundTrip(t *testing.T) {
	f := newFixture(t, stubProvider{items: []string{"x"}})

	code, body := f.do(t, http.MethodGet, "/settings", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["enable_suggestion"])

	update := `{
		"search_sources": [{"title": "Docs", "action_keyword": "d", "url": "https://docs.example/?q={q}", "enabled": true}],
		"enable_suggestion": false,
		"selected_suggestion": "google",
		"browser_path": "/usr/bin/firefox"
	}`
	code, body = f.do(t, http.MethodPut, "/settings", update)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "/usr/bin/firefox", body["browser_path"])

	assert.Len(t, f.plugin.Sources(), 1)
	_, body = f.do(t, http.MethodGet, "/query?q=d+go", "")
	assert.Equal(t, []string{"go"}, resultTitles(t, body["results"]))
}

func TestSettingsRejected(t *testing.T) {
	f := newFixture(t, stubProvider{})

	bodies := []string{
		`not json`,
		`{"search_sources": [{"title": "", "action_keyword": "d", "url": "u", "enabled": true}]}`,
		`{"search_sources": [{"title": "A", "action_keyword": "", "url": "u", "enabled": true}]}`,
		`{"search_sources": [{"title": "A", "action_keyword": "d", "url": "", "enabled": true}]}`,
		`{"search_sources": [{"title": "A", "action_keyword": "d", "url": "u", "enabled": true},
			{"title": "B", "action_keyword": "d", "url": "u", "enabled": true}]}`,
	}
	for _, b := range bodies {
		code, _ := f.do(t, http.MethodPut, "/settings", b)
		assert.Equal(t, http.StatusBadRequest, code, b)
	}
	assert.Len(t, f.plugin.Sources(), 19)
}
