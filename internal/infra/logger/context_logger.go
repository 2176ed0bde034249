package logger

import (
	"context"
	"log/slog"
)

type ContextKey string

const (
	// Business context keys, 'word.' prefixed after OpenTelemetry attribute naming
	RunIDKey ContextKey = "word.run.id"
	QueryKey ContextKey = "word.query"
)

// ContextLogger adds run-scoped business fields to log lines
type ContextLogger struct {
	logger      *slog.Logger
	serviceName string
}

// NewContextLogger creates a new context-aware logger. A nil base logger
// falls back to slog.Default.
func NewContextLogger(base *slog.Logger, serviceName string) *ContextLogger {
	if base == nil {
		base = slog.Default()
	}
	return &ContextLogger{
		logger:      base,
		serviceName: serviceName,
	}
}

// WithContext returns a logger with context values extracted and added as fields
func (cl *ContextLogger) WithContext(ctx context.Context) *slog.Logger {
	logger := cl.logger.With("service", cl.serviceName)

	var fields []any
	for _, key := range []ContextKey{RunIDKey, QueryKey} {
		if v := ctx.Value(key); v != nil {
			fields = append(fields, string(key), v)
		}
	}

	if len(fields) > 0 {
		logger = logger.With(fields...)
	}

	return logger
}

// WithRunID adds the pipeline run id to context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// WithQuery adds the query word to context
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, QueryKey, query)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
