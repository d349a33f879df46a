package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/meridiancrm/meridian/pkg/hosting"
	"github.com/meridiancrm/meridian/pkg/tenant"
)

var (
	// ErrUnresolvableSchema is returned in schema-per-tenant mode when
	// the bound tenant has no resolvable schema. There is no fallback:
	// routing to a default schema would cross an isolation boundary.
	ErrUnresolvableSchema = errors.New("no resolvable schema for tenant")
)

// Target is the concrete destination of a data-access operation: which
// schema to address and whether queries against tenant-scoped tables
// must carry a tenant_id predicate. Stores obtain a fresh Target per
// operation and never cache one across requests.
type Target struct {
	Schema    string
	TenantID  uuid.UUID
	RowFilter bool
}

// Qualify returns the schema-qualified name for a table.
func (t Target) Qualify(table string) string {
	return t.Schema + "." + table
}

// Router translates (hosting mode, bound tenant) into a Target.
// It is a pure function of its inputs; both error outcomes abort the
// calling operation.
type Router struct {
	mode            hosting.Mode
	defaultSchema   string
	bootstrapSchema string
}

// Config carries schema naming settings.
type Config struct {
	DefaultSchema   string `env:"SCHEMA_DEFAULT" envDefault:"public"`
	BootstrapSchema string `env:"SCHEMA_BOOTSTRAP" envDefault:"public"`
}

// NewRouter creates a router for the process-wide hosting mode.
func NewRouter(mode hosting.Mode, cfg Config) *Router {
	return &Router{
		mode:            mode,
		defaultSchema:   cfg.DefaultSchema,
		bootstrapSchema: cfg.BootstrapSchema,
	}
}

// Mode returns the hosting mode the router was built with.
func (r *Router) Mode() hosting.Mode { return r.mode }

// ResolveTarget resolves the data-access target for the tenant bound to
// ctx.
//
// Shared-schema mode targets the fixed default schema and demands a row
// filter; every tenant-scoped query built from the Target carries the
// tenant_id predicate, and inserts stamp the tenant id.
//
// Schema-per-tenant mode targets the tenant's own schema; isolation is
// structural and no row filter applies. A tenant without a resolvable
// schema is mis-provisioned and fails with ErrUnresolvableSchema.
func (r *Router) ResolveTarget(ctx context.Context) (Target, error) {
	t, err := tenant.RequireFromContext(ctx)
	if err != nil {
		return Target{}, err
	}

	switch r.mode {
	case hosting.ModeSchemaPerTenant:
		if t.SchemaName == "" {
			return Target{}, fmt.Errorf("%w: tenant %s", ErrUnresolvableSchema, t.ID)
		}
		return Target{Schema: t.SchemaName, TenantID: t.ID}, nil
	default:
		return Target{Schema: r.defaultSchema, TenantID: t.ID, RowFilter: true}, nil
	}
}

// BootstrapTarget returns the well-known schema used during migration
// bootstrap, before any real tenant exists. It must not be used for
// request-path data access.
func (r *Router) BootstrapTarget() Target {
	if r.mode == hosting.ModeSchemaPerTenant {
		return Target{Schema: r.bootstrapSchema}
	}
	return Target{Schema: r.defaultSchema, RowFilter: true}
}

// DefaultSchemaName is the naming convention provisioning applies when
// a tenant is created without an explicit schema name:
// tenant_<first 8 hex of the uuid>. The router itself never derives a
// name at resolution time; a tenant whose record lacks a schema is
// mis-provisioned and must fail loudly, not be guessed at.
func DefaultSchemaName(id uuid.UUID) string {
	return "tenant_" + id.String()[:8]
}
