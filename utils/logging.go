package utils

import (
	"context"
	"log/slog"
	"os"
)

type ContextKey int

const (
	ContextKeyLogger ContextKey = iota
)

// NewLogger builds the process logger. "json" is what log collectors ingest
// in deployed environments; anything else falls back to the dev text handler.
func NewLogger(format string) *slog.Logger {
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{})
	default:
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{})
	}
	return slog.New(handler)
}

func StoreLoggerInContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ContextKeyLogger, logger)
}

// LoggerFromContext never returns nil: code deep in a call stack logs through
// it without caring whether the caller installed one.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger, found := ctx.Value(ContextKeyLogger).(*slog.Logger)
	if !found {
		return slog.Default()
	}
	return logger
}
