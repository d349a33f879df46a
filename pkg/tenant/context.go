package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithTenant returns a child context with the tenant bound. The parent
// context is untouched, which is what gives nested scope changes their
// restore-on-exit discipline: callers keep their own binding no matter
// what happens inside the child scope.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// Bind is WithTenant under the name long-lived workers use: a worker
// that owns a whole execution context binds its tenant once and passes
// the returned context to everything it does. Request handlers should
// rely on middleware or RunWithTenant instead.
func Bind(ctx context.Context, t *Tenant) context.Context {
	return WithTenant(ctx, t)
}

// FromContext retrieves the tenant bound to the context.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	if !ok || t == nil {
		return nil, false
	}
	return t, true
}

// IDFromContext retrieves just the bound tenant's id.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	t, ok := FromContext(ctx)
	if !ok {
		return uuid.UUID{}, false
	}
	return t.ID, true
}

// RequireFromContext retrieves the bound tenant or fails with
// ErrMissingTenantContext. Operations that touch tenant-scoped data
// must use this form: a missing binding is a contract violation, never
// something to default around.
func RequireFromContext(ctx context.Context) (*Tenant, error) {
	t, ok := FromContext(ctx)
	if !ok {
		return nil, ErrMissingTenantContext
	}
	return t, nil
}

// RunWithTenant executes fn with t bound as the current tenant. The
// binding exists only inside fn; whatever the caller had bound before
// is still in effect when RunWithTenant returns, whether fn succeeds,
// errors, or panics. This is the sanctioned way to borrow a tenant
// scope for a nested operation.
func RunWithTenant(ctx context.Context, t *Tenant, fn func(ctx context.Context) error) error {
	return fn(WithTenant(ctx, t))
}

// LoggerExtractor stamps the bound tenant id onto log records.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
