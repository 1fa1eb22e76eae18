package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Suggest   SuggestConfig
	Data      DataConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8010"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// StoreConfig holds settings persistence configuration.
type StoreConfig struct {
	Path     string `envconfig:"STORE_PATH" default:"data/websearch/settings.dat"`
	Strict   bool   `envconfig:"STORE_STRICT" default:"false"`
	Compress bool   `envconfig:"STORE_COMPRESS" default:"false"`
	Watch    bool   `envconfig:"STORE_WATCH" default:"false"`
}

// SuggestConfig holds suggestion fetching configuration.
type SuggestConfig struct {
	Timeout     time.Duration `envconfig:"SUGGEST_TIMEOUT" default:"300ms"`
	HTTPTimeout time.Duration `envconfig:"SUGGEST_HTTP_TIMEOUT" default:"5s"`
	Retries     int           `envconfig:"SUGGEST_RETRIES" default:"1"`
	RateLimit   float64       `envconfig:"SUGGEST_RPS" default:"10"`
	CacheTTL    time.Duration `envconfig:"SUGGEST_CACHE_TTL" default:"2m"`
	GoogleURL   string        `envconfig:"SUGGEST_GOOGLE_URL" default:"https://www.google.com"`
	BaiduURL    string        `envconfig:"SUGGEST_BAIDU_URL" default:"http://suggestion.baidu.com"`
}

// DataConfig holds on-disk locations outside the settings file.
type DataConfig struct {
	Dir           string `envconfig:"DATA_DIR" default:"data/websearch"`
	BundledImages string `envconfig:"BUNDLED_IMAGES" default:"Images"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
	File        string `envconfig:"LOG_FILE" default:""`
}

// RateLimitConfig holds API rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables. Values from an
// optional .env file in the working directory are applied first; variables
// already present in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8010",
			Host: "127.0.0.1",
		},
		Store: StoreConfig{
			Path: "data/websearch/settings.dat",
		},
		Suggest: SuggestConfig{
			Timeout:     300 * time.Millisecond,
			HTTPTimeout: 5 * time.Second,
			Retries:     1,
			RateLimit:   10,
			CacheTTL:    2 * time.Minute,
			GoogleURL:   "https://www.google.com",
			BaiduURL:    "http://suggestion.baidu.com",
		},
		Data: DataConfig{
			Dir:           "data/websearch",
			BundledImages: "Images",
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}
