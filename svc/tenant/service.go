package tenant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/meridiancrm/meridian/pkg/audit"
	"github.com/meridiancrm/meridian/pkg/cache"
	"github.com/meridiancrm/meridian/pkg/hosting"
	"github.com/meridiancrm/meridian/pkg/schema"
	"github.com/meridiancrm/meridian/pkg/tenant"
)

// store is the persistence surface the service needs; *Store satisfies
// it and tests substitute a fake.
type store interface {
	Insert(ctx context.Context, t *tenant.Tenant) error
	Update(ctx context.Context, t *tenant.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error)
	GetByHost(ctx context.Context, host string) (*tenant.Tenant, error)
	ListActive(ctx context.Context) ([]*tenant.Tenant, error)
}

// Service is the tenant registry: lookup collaborator for request
// middleware and schema routing, and the management surface for
// provisioning flows. It satisfies tenant.Provider.
//
// Registry cache entries are deliberately cross-tenant (GlobalCache):
// host resolution runs before any tenant scope exists. The two key
// shapes are "tenant:id:<uuid>" and "tenant:host:<host>".
type Service struct {
	store   store
	cache   *cache.GlobalCache
	stamper *audit.Stamper
	mode    hosting.Mode
	log     *slog.Logger
}

// NewService wires the registry.
func NewService(store store, globalCache *cache.GlobalCache, stamper *audit.Stamper, mode hosting.Mode, log *slog.Logger) *Service {
	return &Service{store: store, cache: globalCache, stamper: stamper, mode: mode, log: log}
}

func idKey(id uuid.UUID) string { return "tenant:id:" + id.String() }
func hostKey(host string) string { return "tenant:host:" + host }

// CreateParams carries the attributes a new tenant is provisioned with.
type CreateParams struct {
	Name         string
	Host         string
	ContactEmail string
	Timezone     string
	// SchemaName overrides the conventional schema name; only meaningful
	// in schema-per-tenant hosting.
	SchemaName string
}

// Create provisions a new active tenant. The host must not be owned by
// another active tenant; collisions fail with ErrHostAlreadyInUse. In
// schema-per-tenant hosting the schema name is fixed at creation so the
// record is never mis-provisioned.
func (s *Service) Create(ctx context.Context, params CreateParams) (*tenant.Tenant, error) {
	host := normalizeHost(params.Host)
	if host == "" {
		return nil, fmt.Errorf("%w: empty host", tenant.ErrInvalidIdentifier)
	}

	t := &tenant.Tenant{
		ID:           uuid.New(),
		Name:         params.Name,
		Host:         host,
		ContactEmail: params.ContactEmail,
		Timezone:     params.Timezone,
		Active:       true,
	}

	if s.mode == hosting.ModeSchemaPerTenant {
		t.SchemaName = params.SchemaName
		if t.SchemaName == "" {
			t.SchemaName = schema.DefaultSchemaName(t.ID)
		}
	}

	// The registry is a global entity: stamped with the acting user or
	// the system actor, never with a tenant id.
	if err := s.stamper.StampInsert(ctx, t); err != nil {
		return nil, err
	}

	if err := s.store.Insert(ctx, t); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "tenant created", "tenant", t.ID, "host", t.Host)
	return t, nil
}

// GetByID implements tenant.Provider with read-through caching.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	if t, ok := s.cached(ctx, idKey(id)); ok {
		return t, nil
	}

	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, idKey(id), t)
	return t, nil
}

// GetByHost implements tenant.Provider with read-through caching.
func (s *Service) GetByHost(ctx context.Context, host string) (*tenant.Tenant, error) {
	host = normalizeHost(host)
	if t, ok := s.cached(ctx, hostKey(host)); ok {
		return t, nil
	}

	t, err := s.store.GetByHost(ctx, host)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, hostKey(host), t)
	return t, nil
}

// ListActive implements tenant.Provider. Uncached: it serves admin and
// provisioning surfaces where staleness is worse than the query.
func (s *Service) ListActive(ctx context.Context) ([]*tenant.Tenant, error) {
	return s.store.ListActive(ctx)
}

// UpdateParams carries the mutable tenant attributes; nil leaves a
// field unchanged.
type UpdateParams struct {
	Name         *string
	Host         *string
	ContactEmail *string
	Timezone     *string
}

// Update applies the changed attributes and invalidates every cache
// entry the write could have stale: the id key and both the old and new
// host keys. Write-through invalidation, not expiry, keeps lookups
// coherent.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*tenant.Tenant, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldHost := t.Host
	if params.Name != nil {
		t.Name = *params.Name
	}
	if params.Host != nil {
		host := normalizeHost(*params.Host)
		if host == "" {
			return nil, fmt.Errorf("%w: empty host", tenant.ErrInvalidIdentifier)
		}
		t.Host = host
	}
	if params.ContactEmail != nil {
		t.ContactEmail = *params.ContactEmail
	}
	if params.Timezone != nil {
		t.Timezone = *params.Timezone
	}

	s.stamper.StampUpdate(ctx, t)

	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}

	s.invalidate(ctx, t.ID, oldHost, t.Host)
	return t, nil
}

// Deactivate soft-disables a tenant. The row stays for audit and
// reactivation; the host is freed for reuse by the partial unique
// index.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.setActive(ctx, id, false)
}

// Activate re-enables a deactivated tenant.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id uuid.UUID, active bool) (*tenant.Tenant, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Active == active {
		return t, nil
	}

	t.Active = active
	s.stamper.StampUpdate(ctx, t)

	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}

	s.invalidate(ctx, t.ID, t.Host)
	s.log.InfoContext(ctx, "tenant active flag changed", "tenant", t.ID, "active", active)
	return t, nil
}

func (s *Service) cached(ctx context.Context, key string) (*tenant.Tenant, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var t tenant.Tenant
	if err := json.Unmarshal(raw, &t); err != nil {
		// A corrupt entry behaves like a miss; the authoritative store
		// will repopulate it.
		return nil, false
	}
	return &t, true
}

func (s *Service) cacheSet(ctx context.Context, key string, t *tenant.Tenant) {
	raw, err := json.Marshal(t)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, raw, 0)
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID, hosts ...string) {
	keys := []string{idKey(id)}
	seen := map[string]struct{}{}
	for _, h := range hosts {
		if _, dup := seen[h]; dup || h == "" {
			continue
		}
		seen[h] = struct{}{}
		keys = append(keys, hostKey(h))
	}
	_ = s.cache.Remove(ctx, keys...)
}

// normalizeHost produces the canonical host form shared with the
// request-side HostResolver: trimmed, lowercased, port stripped.
func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}
