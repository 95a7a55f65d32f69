package middleware

import (
	"context"

	"github.com/leanttro/storefront/internal/auth"
	"github.com/leanttro/storefront/internal/tenant"
)

type contextKey string

const (
	ContextKeyTenant  contextKey = "tenant"
	ContextKeySession contextKey = "session"
)

// WithTenant stores the resolved tenant context on a request context.
func WithTenant(ctx context.Context, tc *tenant.Context) context.Context {
	return context.WithValue(ctx, ContextKeyTenant, tc)
}

// TenantFromContext returns the resolved tenant for the request, if any.
func TenantFromContext(ctx context.Context) (*tenant.Context, bool) {
	v, ok := ctx.Value(ContextKeyTenant).(*tenant.Context)
	return v, ok && v.Resolved()
}

// WithSession stores a verified admin session on a request context.
func WithSession(ctx context.Context, s *auth.Session) context.Context {
	return context.WithValue(ctx, ContextKeySession, s)
}

// SessionFromContext returns the verified admin session, if any.
func SessionFromContext(ctx context.Context) (*auth.Session, bool) {
	v, ok := ctx.Value(ContextKeySession).(*auth.Session)
	return v, ok && v != nil
}
