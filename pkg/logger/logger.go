// Package logger provides structured logging for the trade depot service
package logger

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log is the global logger instance
var Log zerolog.Logger

// Config holds logger configuration
type Config struct {
	// Level is the minimum log level: debug, info, warn, error
	Level string
	// Format is the output format: json or console
	Format string
	// TimeFormat is the timestamp format
	TimeFormat string
}

// DefaultConfig returns logger configuration from environment variables
func DefaultConfig() Config {
	return Config{
		Level:      getEnv("LOG_LEVEL", "info"),
		Format:     getEnv("LOG_FORMAT", "json"),
		TimeFormat: time.RFC3339,
	}
}

// Init initializes the global logger
func Init(cfg Config) {
	zerolog.TimeFieldFormat = cfg.TimeFormat

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: cfg.TimeFormat}
		logger = zerolog.New(output)
	} else {
		logger = zerolog.New(os.Stdout)
	}

	Log = logger.Level(level).With().
		Timestamp().
		Str("service", "tradedepot").
		Logger()
}

// contextKey is the type for context keys to avoid collisions
type contextKey string

// RequestIDKey is the context key for HTTP request IDs
const RequestIDKey contextKey = "request_id"

// WithRequestID returns a context carrying the request ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// FromContext returns a logger enriched with IDs found in the context
func FromContext(ctx context.Context) zerolog.Logger {
	logger := Log

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		logger = logger.With().Str("request_id", requestID).Logger()
	}

	return logger
}

// Session returns a logger scoped to one bot session
func Session(identity string) *zerolog.Logger {
	logger := Log.With().Str("steam_id", identity).Logger()
	return &logger
}

// Offer returns a logger scoped to one trade offer
func Offer(offerID string) *zerolog.Logger {
	logger := Log.With().Str("offer_id", offerID).Logger()
	return &logger
}

// HTTP returns a logger for the HTTP layer
func HTTP() *zerolog.Logger {
	logger := Log.With().Str("component", "http").Logger()
	return &logger
}

// Feed returns a logger for the price feed client
func Feed() *zerolog.Logger {
	logger := Log.With().Str("component", "pricefeed").Logger()
	return &logger
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func init() {
	// Ensure the logger is usable before Init is called
	Init(DefaultConfig())
}
