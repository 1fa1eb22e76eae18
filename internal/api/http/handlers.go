package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/websearch/internal/logging"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/websearch"
)

// DefaultResultTTL is how long a result list stays invocable.
const DefaultResultTTL = 5 * time.Minute

// Plugin is the part of websearch.Plugin the handlers use.
type Plugin interface {
	Query(ctx context.Context, q websearch.Query) *websearch.ResultList
	Settings() websearch.Settings
	UpdateSettings(fn func(*websearch.Settings)) websearch.Settings
	Save() error
	Title() string
	Description() string
}

// QueryResponse is the body of a query answer.
type QueryResponse struct {
	QueryID string             `json:"query_id"`
	Query   websearch.Query    `json:"query"`
	Results []websearch.Result `json:"results"`
}

// Handlers contains all HTTP handlers
type Handlers struct {
	plugin  Plugin
	results *cache.Cache
	logger  *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(plugin Plugin, resultTTL time.Duration, logger *zap.Logger) *Handlers {
	if resultTTL <= 0 {
		resultTTL = DefaultResultTTL
	}
	return &Handlers{
		plugin:  plugin,
		results: cache.New(resultTTL, 2*resultTTL),
		logger:  logging.OrNop(logger),
	}
}

// Register mounts the handlers on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/sources", h.Sources)
	r.GET("/query", h.Query)
	r.GET("/query/:id", h.GetQuery)
	r.POST("/query/:id/results/:index/invoke", h.Invoke)
	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.PutSettings)
}

// Remember keeps list available to GetQuery and Invoke.
func (h *Handlers) Remember(list *websearch.ResultList) {
	h.results.SetDefault(list.QueryID().String(), list)
}

// Health handles health check
func (h *Handlers) Health(c *gin.Context) {
	s := h.plugin.Settings()
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"service":     h.plugin.Title(),
		"description": h.plugin.Description(),
		"sources":     len(s.SearchSources),
		"suggestions": gin.H{
			"enabled":  s.EnableSuggestion,
			"provider": s.SelectedSuggestion,
		},
	})
}

// Sources lists the configured search sources
func (h *Handlers) Sources(c *gin.Context) {
	sources := h.plugin.Settings().SearchSources
	c.JSON(http.StatusOK, gin.H{
		"sources": sources,
		"count":   len(sources),
	})
}

// Query runs a query. Suggestions that miss the first answer are
// appended to the same list and published on the update stream.
func (h *Handlers) Query(c *gin.Context) {
	raw := c.Query("q")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q parameter required"})
		return
	}

	q := websearch.ParseQuery(raw)
	list := h.plugin.Query(c.Request.Context(), q)
	h.Remember(list)

	c.JSON(http.StatusOK, QueryResponse{
		QueryID: list.QueryID().String(),
		Query:   q,
		Results: list.Snapshot(),
	})
}

// GetQuery returns the current results of an earlier query
func (h *Handlers) GetQuery(c *gin.Context) {
	list, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query_id": list.QueryID().String(),
		"results":  list.Snapshot(),
	})
}

// Invoke runs the action of one result
func (h *Handlers) Invoke(c *gin.Context) {
	list, ok := h.lookup(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}
	result, ok := list.At(index)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no result at index %d", index)})
		return
	}

	handled := result.Invoke(c.Request.Context())
	h.logger.Info("Result invoked",
		zap.String("query_id", list.QueryID().String()),
		zap.String("url", result.URL),
		zap.Bool("handled", handled))

	c.JSON(http.StatusOK, gin.H{
		"handled": handled,
		"url":     result.URL,
	})
}

// GetSettings returns the current settings
func (h *Handlers) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.plugin.Settings())
}

// PutSettings replaces the settings and persists them
func (h *Handlers) PutSettings(c *gin.Context) {
	var req websearch.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings: " + err.Error()})
		return
	}
	if err := validateSettings(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	applied := h.plugin.UpdateSettings(func(s *websearch.Settings) { *s = req.Clone() })
	if err := h.plugin.Save(); err != nil {
		h.logger.Error("Failed to save settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settings applied but not saved"})
		return
	}

	c.JSON(http.StatusOK, applied)
}

func (h *Handlers) lookup(c *gin.Context) (*websearch.ResultList, bool) {
	v, ok := h.results.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown or expired query"})
		return nil, false
	}
	return v.(*websearch.ResultList), true
}

func validateSettings(s websearch.Settings) error {
	seen := make(map[string]bool, len(s.SearchSources))
	for i, src := range s.SearchSources {
		switch {
		case src.Title == "":
			return fmt.Errorf("source %d: title required", i)
		case src.ActionKeyword == "":
			return fmt.Errorf("source %d: action_keyword required", i)
		case src.URL == "":
			return fmt.Errorf("source %d: url required", i)
		}
		if src.Enabled && seen[src.ActionKeyword] {
			return errors.New("duplicate enabled action keyword: " + src.ActionKeyword)
		}
		if src.Enabled {
			seen[src.ActionKeyword] = true
		}
	}
	return nil
}
