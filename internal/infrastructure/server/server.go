package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apihttp "github.com/GriffinCanCode/AgentOS/websearch/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/api/ws"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/images"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/logging"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/storage"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/suggest"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/websearch"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	plugin      *websearch.Plugin
	hub         *ws.Hub
	unsubscribe func()
	logger      *logging.Logger
	config      *config.Config
	metrics     *monitoring.Metrics
}

// NewLogger builds the logger described by cfg.
func NewLogger(cfg *config.Config) *logging.Logger {
	lc := logging.DefaultConfig()
	if cfg.Logging.Development {
		lc = logging.DevelopmentConfig()
	}
	if cfg.Logging.Level != "" {
		lc.Level = cfg.Logging.Level
	}
	lc.File.Path = cfg.Logging.File

	logger, err := logging.New(lc)
	if err != nil {
		logger = logging.NewDefault()
		logger.Warn("Invalid logging config, using defaults", zap.Error(err))
	}
	return logger
}

// NewPlugin seeds the icon directory, opens the settings store and
// builds the plugin with the default suggestion providers.
func NewPlugin(cfg *config.Config, logger *zap.Logger, metrics *monitoring.Metrics, tracer *tracing.Tracer) (*websearch.Plugin, error) {
	iconDir := filepath.Join(cfg.Data.Dir, "Images")
	if cfg.Data.BundledImages != "" {
		if _, err := images.ValidateDataDirectory(context.Background(), cfg.Data.BundledImages, iconDir, images.Options{Logger: logger}); err != nil {
			logger.Warn("Failed to seed icons", zap.String("bundled", cfg.Data.BundledImages), zap.Error(err))
		}
	}

	opts := storage.Options{
		Strict:   cfg.Store.Strict,
		Compress: cfg.Store.Compress,
		Logger:   logger.Named("store"),
	}
	if metrics != nil {
		opts.Observer = metrics
	}
	store := storage.New(cfg.Store.Path, websearch.DefaultSettings, opts)

	registry := suggest.NewDefaultRegistry(suggest.Config{
		GoogleURL:   cfg.Suggest.GoogleURL,
		BaiduURL:    cfg.Suggest.BaiduURL,
		HTTPTimeout: cfg.Suggest.HTTPTimeout,
		Retries:     cfg.Suggest.Retries,
		RateLimit:   cfg.Suggest.RateLimit,
		CacheTTL:    cfg.Suggest.CacheTTL,
		Tracer:      tracer,
		OnBreakerChange: func(provider string, from, to resilience.State) {
			logger.Info("Suggestion circuit breaker changed",
				zap.String("provider", provider),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
			if metrics != nil {
				metrics.SetBreakerState(provider, int(to))
			}
		},
	})

	return websearch.NewPlugin(websearch.PluginConfig{
		Store:    store,
		Registry: registry,
		Timeout:  cfg.Suggest.Timeout,
		IconDir:  iconDir,
		Logger:   logger,
		Metrics:  metrics,
	})
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger := NewLogger(cfg)

	logger.Info("Initializing web search server",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("settings", cfg.Store.Path),
		zap.Bool("strict_store", cfg.Store.Strict),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("websearch", logger.Logger)

	plugin, err := NewPlugin(cfg, logger.Logger, metrics, tracer)
	if err != nil {
		return nil, fmt.Errorf("failed to create plugin: %w", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers := apihttp.NewHandlers(plugin, apihttp.DefaultResultTTL, logger.Logger)
	hub := ws.NewHub(plugin, handlers.Remember, logger.Logger, metrics)
	unsubscribe := plugin.OnResultsUpdated(hub.Publish)

	handlers.Register(router)
	router.GET("/stream", hub.HandleConnection)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully", zap.Int("sources", len(plugin.Sources())))

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		plugin:      plugin,
		hub:         hub,
		unsubscribe: unsubscribe,
		logger:      logger,
		config:      cfg,
		metrics:     metrics,
	}, nil
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Plugin returns the served plugin.
func (s *Server) Plugin() *websearch.Plugin {
	return s.plugin
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if s.config.Store.Watch {
		g.Go(func() error {
			return s.plugin.Watch(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close disconnects stream clients, waits for background fetches and
// saves the settings.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	s.unsubscribe()
	s.hub.Close()

	err := s.plugin.Close()
	if err != nil {
		s.logger.Error("Failed to save settings", zap.Error(err))
	}

	_ = s.logger.Sync()
	return err
}
