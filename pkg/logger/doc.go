// Package logger provides a structured logging interface for the unfollow service.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors
// - File output
// - Context support for request tracing
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "fcunfollow/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File: "/var/log/fcunfollow.log",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Server started")
//	logger.WithField("fid", "3621").Info("Scan requested")
//	logger.WithError(err).Error("Failed to fetch following list")
//
// Advanced Usage:
//
//	// Create a logger instance with fields
//	log := logger.GetLogger().
//	    WithField("component", "scanner").
//	    WithField("request_id", "12345")
//
//	// Use structured logging
//	log.InfoWithFields("Scan completed", map[string]interface{}{
//	    "total":   412,
//	    "flagged": 10,
//	    "duration": time.Second * 5,
//	})
package logger
