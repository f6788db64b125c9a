package http

import (
	"context"
	"log/slog"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/logging"
)

// ContextWithLogger attaches a request-scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request-scoped logger, if one was attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// handlerLogger prefers the request-scoped logger over the handler's
// injected fallback, tagged with the handler name and operation.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := LoggerFromContext(ctx)
	if logger == nil {
		logger = defaultLogger(fallback)
	}

	tagged := append([]any{"handler", handlerName, "operation", operation}, attrs...)
	return logger.With(tagged...)
}
