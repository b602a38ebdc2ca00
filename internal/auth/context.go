package auth

import (
	"context"
)

// TenantContext holds the authenticated user and the tenant whose data
// the request operates on. TenantEmail equals UserEmail unless a super
// user supplied a valid tenant override.
type TenantContext struct {
	UserEmail   string
	DisplayName string
	TenantEmail string
	IsSuperUser bool
	// Overridden is true when TenantEmail differs from UserEmail
	Overridden bool
}

type contextKey string

const tenantContextKey contextKey = "tenantContext"

// WithTenantContext adds the tenant context to the context
func WithTenantContext(ctx context.Context, tc *TenantContext) context.Context {
	return context.WithValue(ctx, tenantContextKey, tc)
}

// FromContext extracts the tenant context from the context
func FromContext(ctx context.Context) (*TenantContext, bool) {
	tc, ok := ctx.Value(tenantContextKey).(*TenantContext)
	return tc, ok
}

// MustFromContext extracts the tenant context or panics
func MustFromContext(ctx context.Context) *TenantContext {
	tc, ok := FromContext(ctx)
	if !ok {
		panic("tenant context not found in context")
	}
	return tc
}

// TenantEmailFromContext returns the effective tenant email for queries.
// Repositories use this to scope every read and write; the empty string
// means the request carries no tenant and must not touch tenant data.
func TenantEmailFromContext(ctx context.Context) string {
	if tc, ok := FromContext(ctx); ok {
		return tc.TenantEmail
	}
	return ""
}
