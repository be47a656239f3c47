package middleware

import (
	"context"

	"go-portal-app/internal/auth"
)

// contextKey defines a custom type for context keys to avoid collisions.
type contextKey string

const principalContextKey = contextKey("principal")

// GetPrincipal retrieves the acting principal from the request context.
// Requests that never passed the authorizer resolve to the anonymous
// principal, never to ambient global state.
func GetPrincipal(ctx context.Context) auth.Principal {
	if p, ok := ctx.Value(principalContextKey).(auth.Principal); ok {
		return p
	}
	return auth.Anonymous()
}

// SetPrincipal adds the acting principal to the request context.
func SetPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}
