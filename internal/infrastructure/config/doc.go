// Package config provides 12-factor configuration for the websearch service.
//
// Configuration is loaded from environment variables (optionally seeded
// from a .env file) with defaults. CLI flags override individual values.
//
// Configuration Sections:
//   - Server: HTTP API listen address
//   - Store: settings file path, strict mode, compression
//   - Suggest: suggestion timeout, HTTP client tuning, provider endpoints
//   - Data: data directory and bundled icon directory
//   - Logging: level, output format, rotating file
//   - RateLimit: per-client API rate limiting
//
// Environment Variables:
//   - PORT, HOST
//   - STORE_PATH, STORE_STRICT, STORE_COMPRESS
//   - SUGGEST_TIMEOUT, SUGGEST_HTTP_TIMEOUT, SUGGEST_RETRIES, SUGGEST_RPS,
//     SUGGEST_CACHE_TTL, SUGGEST_GOOGLE_URL, SUGGEST_BAIDU_URL
//   - DATA_DIR, BUNDLED_IMAGES
//   - LOG_LEVEL, LOG_DEV, LOG_FILE
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
