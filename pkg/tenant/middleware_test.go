package tenant_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridiancrm/meridian/pkg/tenant"
)

type fakeProvider struct {
	byID   map[uuid.UUID]*tenant.Tenant
	byHost map[string]*tenant.Tenant
}

func newFakeProvider(tenants ...*tenant.Tenant) *fakeProvider {
	p := &fakeProvider{
		byID:   make(map[uuid.UUID]*tenant.Tenant),
		byHost: make(map[string]*tenant.Tenant),
	}
	for _, t := range tenants {
		p.byID[t.ID] = t
		if t.Active {
			p.byHost[t.Host] = t
		}
	}
	return p
}

func (p *fakeProvider) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	if t, ok := p.byID[id]; ok {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound
}

func (p *fakeProvider) GetByHost(ctx context.Context, host string) (*tenant.Tenant, error) {
	if t, ok := p.byHost[host]; ok {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound
}

func (p *fakeProvider) ListActive(ctx context.Context) ([]*tenant.Tenant, error) {
	var out []*tenant.Tenant
	for _, t := range p.byHost {
		out = append(out, t)
	}
	return out, nil
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	acme := testTenant("acme", true)
	dormant := testTenant("dormant", false)
	provider := newFakeProvider(acme, dormant)
	resolver := tenant.NewHostResolver()

	captureTenant := func(dst **tenant.Tenant) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*dst, _ = tenant.FromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("binds resolved tenant", func(t *testing.T) {
		t.Parallel()

		var got *tenant.Tenant
		handler := tenant.Middleware(resolver, provider)(captureTenant(&got))

		req := httptest.NewRequest("GET", "/", nil)
		req.Host = acme.Host
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, acme.ID, got.ID)
	})

	t.Run("looks up by id when key is a uuid", func(t *testing.T) {
		t.Parallel()

		var got *tenant.Tenant
		handler := tenant.Middleware(tenant.NewHeaderResolver(""), provider)(captureTenant(&got))

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Tenant-ID", acme.ID.String())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, acme.ID, got.ID)
	})

	t.Run("unknown host rejected", func(t *testing.T) {
		t.Parallel()

		handler := tenant.Middleware(resolver, provider)(captureTenant(new(*tenant.Tenant)))

		req := httptest.NewRequest("GET", "/", nil)
		req.Host = "nobody.example.com"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("inactive tenant rejected", func(t *testing.T) {
		t.Parallel()

		var got *tenant.Tenant
		handler := tenant.Middleware(tenant.NewHeaderResolver(""), provider)(captureTenant(&got))

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Tenant-ID", dormant.ID.String())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Nil(t, got)
	})

	t.Run("skip paths pass through unbound", func(t *testing.T) {
		t.Parallel()

		var got *tenant.Tenant
		handler := tenant.Middleware(resolver, provider, tenant.WithSkipPaths("/healthz"))(captureTenant(&got))

		req := httptest.NewRequest("GET", "/healthz", nil)
		req.Host = acme.Host
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, got)
	})
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("rejects unbound request", func(t *testing.T) {
		t.Parallel()

		handler := tenant.RequireTenant(nil)(next)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("passes bound request", func(t *testing.T) {
		t.Parallel()

		handler := tenant.RequireTenant(nil)(next)
		req := httptest.NewRequest("GET", "/", nil)
		req = req.WithContext(tenant.WithTenant(req.Context(), testTenant("acme", true)))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
