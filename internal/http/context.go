package http

import (
	"context"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/application"
)

type contextKey string

const (
	principalContextKey      contextKey = "principal"
	clientIDContextKey       contextKey = "client_id"
	subscriptionIDContextKey contextKey = "subscription_id"
	jobIDContextKey          contextKey = "job_id"
	quoteIDContextKey        contextKey = "quote_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithClientID injects the client identifier resolved from the request path.
func ContextWithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDContextKey, clientID)
}

// ClientIDFromContext extracts a client identifier previously associated with the context.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(clientIDContextKey).(string)
	return id, ok
}

// ContextWithSubscriptionID injects the subscription identifier resolved from the request path.
func ContextWithSubscriptionID(ctx context.Context, subscriptionID string) context.Context {
	return context.WithValue(ctx, subscriptionIDContextKey, subscriptionID)
}

// SubscriptionIDFromContext extracts a subscription identifier previously associated with the context.
func SubscriptionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(subscriptionIDContextKey).(string)
	return id, ok
}

// ContextWithJobID injects the job identifier resolved from the request path.
func ContextWithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, jobIDContextKey, jobID)
}

// JobIDFromContext extracts a job identifier previously associated with the context.
func JobIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(jobIDContextKey).(string)
	return id, ok
}

// ContextWithQuoteID injects the quote identifier resolved from the request path.
func ContextWithQuoteID(ctx context.Context, quoteID string) context.Context {
	return context.WithValue(ctx, quoteIDContextKey, quoteID)
}

// QuoteIDFromContext extracts a quote identifier previously associated with the context.
func QuoteIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(quoteIDContextKey).(string)
	return id, ok
}
