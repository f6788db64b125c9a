// Package logging provides the process logger and the context plumbing that
// lets HTTP middleware hand a request-scoped logger down to the services.
package logging

import (
	"context"
	"io"
	"log/slog"
)

// New builds the JSON logger the service emits. Every line carries the
// service attribute so aggregated logs from several deployments stay
// attributable.
func New(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("service", "fieldops")
}

type loggerKey struct{}

// ContextWithLogger returns a derived context carrying logger. Request
// middleware attaches a logger enriched with the request id here so service
// and repository log lines correlate with the access log.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger attached by ContextWithLogger, or nil when
// the context carries none. Callers fall back to their own injected logger.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(*slog.Logger)
	return logger
}
