package logger

import (
	"context"
	"log/slog"
)

type ContextKey string

const (
	LoggerKey ContextKey = "logger"
)

// FromContext returns the request-scoped logger, falling back to slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// WithUserID tags every following log line with the acting user.
func WithUserID(ctx context.Context, userID string) context.Context {
	return WithLogger(ctx, FromContext(ctx).With("user_id", userID))
}
