// Package logging provides structured logging using uber/zap.
//
// Two console modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// When Config.File.Path is set, every entry is also written as JSON to a
// lumberjack-rotated file.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Settings loaded", zap.String("path", path))
//	logger.Warn("Suggestion provider failed", zap.Error(err))
package logging
