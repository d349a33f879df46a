package tenant

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ErrorHandler renders tenant resolution failures to the client.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Option configures the middleware.
type Option func(*mwConfig)

type mwConfig struct {
	errorHandler  ErrorHandler
	skipPaths     []string
	requireActive bool
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *mwConfig) { c.errorHandler = handler }
}

// WithSkipPaths sets path prefixes that bypass tenant resolution,
// e.g. health and metrics endpoints.
func WithSkipPaths(paths ...string) Option {
	return func(c *mwConfig) { c.skipPaths = paths }
}

// WithRequireActive controls whether inactive tenants are rejected.
// Enabled by default.
func WithRequireActive(require bool) Option {
	return func(c *mwConfig) { c.requireActive = require }
}

// Middleware resolves the tenant for each request and binds it into the
// request context. Provider lookups are keyed by UUID when the resolved
// identifier parses as one, by host otherwise. Requests without any
// tenant identifier pass through unbound; downstream guards decide
// whether that is allowed.
func Middleware(resolver Resolver, provider Provider, opts ...Option) func(http.Handler) http.Handler {
	cfg := &mwConfig{
		errorHandler:  defaultErrorHandler,
		requireActive: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			key, err := resolver.Resolve(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			t, err := lookup(r, provider, key)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			if cfg.requireActive && !t.Active {
				cfg.errorHandler(w, r, ErrInactiveTenant)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), t)))
		})
	}
}

func lookup(r *http.Request, provider Provider, key string) (*Tenant, error) {
	if id, err := uuid.Parse(key); err == nil {
		return provider.GetByID(r.Context(), id)
	}
	return provider.GetByHost(r.Context(), key)
}

// RequireTenant rejects requests that reach it without a bound tenant.
// Mount it on route groups that must never run unscoped.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				errorHandler(w, r, ErrMissingTenantContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTenantNotFound):
		http.Error(w, "Tenant not found", http.StatusNotFound)
	case errors.Is(err, ErrInactiveTenant):
		http.Error(w, "Tenant is inactive", http.StatusForbidden)
	case errors.Is(err, ErrInvalidIdentifier):
		http.Error(w, "Invalid tenant identifier", http.StatusBadRequest)
	case errors.Is(err, ErrMissingTenantContext):
		http.Error(w, "Tenant scope required", http.StatusForbidden)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
