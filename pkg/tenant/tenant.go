package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tenant is an isolated customer organization. Host is globally unique
// among active tenants and is the primary lookup key for inbound
// requests. SchemaName is only meaningful in schema-per-tenant hosting
// and stays empty otherwise.
type Tenant struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Host         string    `json:"host"`
	ContactEmail string    `json:"contact_email"`
	Timezone     string    `json:"timezone"`
	Active       bool      `json:"active"`
	SchemaName   string    `json:"schema_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	CreatedBy    uuid.UUID `json:"created_by"`
	UpdatedBy    uuid.UUID `json:"updated_by"`
}

// StampCreate fills the creation audit columns. The Tenant record is a
// global entity: it carries no tenant id of its own and is stamped with
// the system actor by the callers that manage it.
func (t *Tenant) StampCreate(at time.Time, by uuid.UUID) {
	t.CreatedAt = at
	t.UpdatedAt = at
	t.CreatedBy = by
	t.UpdatedBy = by
}

// StampUpdate fills the update audit columns.
func (t *Tenant) StampUpdate(at time.Time, by uuid.UUID) {
	t.UpdatedAt = at
	t.UpdatedBy = by
}

// Provider loads tenant records from the authoritative store. It is the
// lookup collaborator consumed by request middleware and by schema
// routing in schema-per-tenant mode.
type Provider interface {
	// GetByID retrieves a tenant by its identifier.
	// Returns ErrTenantNotFound if no tenant matches.
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// GetByHost retrieves the active tenant owning the given host.
	// Returns ErrTenantNotFound if no active tenant matches.
	GetByHost(ctx context.Context, host string) (*Tenant, error)

	// ListActive returns all active tenants.
	ListActive(ctx context.Context) ([]*Tenant, error)
}
