package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/application"
)

type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (application.Principal, error)
}

func RequireSession(validator SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractTokenFromRequest(r)
			if token == "" {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
				return
			}

			principal, err := validator.ValidateSession(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, application.ErrSessionExpired), errors.Is(err, application.ErrSessionRevoked):
					responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
						ErrorCode: "AUTH_SESSION_EXPIRED",
						Message:   "the session is no longer valid, please sign in again",
					})
				case errors.Is(err, application.ErrAccountDisabled):
					responder.writeJSON(r.Context(), w, http.StatusForbidden, errorResponse{
						ErrorCode: "AUTH_ACCOUNT_DISABLED",
						Message:   "this account is disabled or temporarily locked",
					})
				case errors.Is(err, application.ErrUnauthorized), errors.Is(err, application.ErrNotFound):
					responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Message: "the session is not valid, please sign in again"})
				default:
					responder.writeJSON(r.Context(), w, http.StatusInternalServerError, errorResponse{Message: "session validation failed"})
				}
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}

// PublicRateLimit throttles unauthenticated endpoints per client address.
// Limiters for addresses idle longer than an hour are dropped on sweep.
func PublicRateLimit(limit rate.Limit, burst int, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)
	limiters := struct {
		sync.Mutex
		byAddr map[string]*addrLimiter
	}{byAddr: make(map[string]*addrLimiter)}

	lookup := func(addr string) *rate.Limiter {
		limiters.Lock()
		defer limiters.Unlock()

		now := time.Now()
		if len(limiters.byAddr) > 1024 {
			for key, entry := range limiters.byAddr {
				if now.Sub(entry.lastSeen) > time.Hour {
					delete(limiters.byAddr, key)
				}
			}
		}

		entry, ok := limiters.byAddr[addr]
		if !ok {
			entry = &addrLimiter{limiter: rate.NewLimiter(limit, burst)}
			limiters.byAddr[addr] = entry
		}
		entry.lastSeen = now
		return entry.limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr := clientAddr(r)
			if !lookup(addr).Allow() {
				responder.writeJSON(r.Context(), w, http.StatusTooManyRequests, errorResponse{
					Message: "too many requests, slow down",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type addrLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func clientAddr(r *http.Request) string {
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
