package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// serviceLogger prefers the request-scoped logger carried in ctx over the
// service's injected base logger, then tags it with the service name,
// operation, and any extra attributes.
func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = defaultLogger(base)
	}

	tagged := append([]any{"service", serviceName, "operation", operation}, attrs...)
	return logger.With(tagged...)
}

var errorKinds = []struct {
	sentinel error
	label    string
}{
	{ErrUnauthorized, "unauthorized"},
	{ErrNotFound, "not_found"},
	{ErrAlreadyExists, "already_exists"},
	{ErrInvalidCredentials, "invalid_credentials"},
	{ErrAccountDisabled, "account_disabled"},
	{ErrSessionExpired, "session_expired"},
	{ErrSessionRevoked, "session_revoked"},
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, kind := range errorKinds {
		if errors.Is(err, kind.sentinel) {
			return kind.label
		}
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	return "unexpected"
}
