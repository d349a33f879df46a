package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meridiancrm/meridian/pkg/tenant"
)

// TenantScoped marks entity types whose rows belong to exactly one
// tenant. The interface is the type-level line between tenant-scoped
// and global entities: types that do not implement it (the Tenant
// record itself, platform settings) are never stamped with a tenant id.
type TenantScoped interface {
	TenantID() uuid.UUID
	SetTenantID(id uuid.UUID)
}

// Auditable is implemented by entities carrying audit columns.
// Embedding Fields satisfies it.
type Auditable interface {
	StampCreate(at time.Time, by uuid.UUID)
	StampUpdate(at time.Time, by uuid.UUID)
}

// Fields holds the audit columns shared by every persisted entity.
// Embed it and the entity satisfies Auditable.
type Fields struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy uuid.UUID `json:"created_by"`
	UpdatedBy uuid.UUID `json:"updated_by"`
}

func (f *Fields) StampCreate(at time.Time, by uuid.UUID) {
	f.CreatedAt = at
	f.UpdatedAt = at
	f.CreatedBy = by
	f.UpdatedBy = by
}

func (f *Fields) StampUpdate(at time.Time, by uuid.UUID) {
	f.UpdatedAt = at
	f.UpdatedBy = by
}

// Stamper populates tenant and audit attributes on entities about to be
// written, so individual services never remember to do it themselves.
// The zero value is not usable; construct with NewStamper.
type Stamper struct {
	now func() time.Time
}

// NewStamper creates a stamper using UTC wall time.
func NewStamper() *Stamper {
	return &Stamper{now: func() time.Time { return time.Now().UTC() }}
}

// NewStamperWithClock injects a clock for tests.
func NewStamperWithClock(now func() time.Time) *Stamper {
	return &Stamper{now: now}
}

// StampInsert prepares an entity for insert. For TenantScoped entities
// the tenant id is taken from the bound context, but only when the
// entity's id is still zero — an already-set tenant id is never
// overwritten (set-once invariant). A TenantScoped entity inserted
// without a bound tenant and without a pre-set id fails with
// tenant.ErrMissingTenantContext. Audit columns are always filled, with
// the system actor as fallback.
func (s *Stamper) StampInsert(ctx context.Context, e Auditable) error {
	if scoped, ok := e.(TenantScoped); ok {
		if scoped.TenantID() == (uuid.UUID{}) {
			id, bound := tenant.IDFromContext(ctx)
			if !bound {
				return tenant.ErrMissingTenantContext
			}
			scoped.SetTenantID(id)
		}
	}

	e.StampCreate(s.now(), actorOrSystem(ctx))
	return nil
}

// StampUpdate refreshes the update audit columns. The tenant id is
// untouched: rows never change owners.
func (s *Stamper) StampUpdate(ctx context.Context, e Auditable) {
	e.StampUpdate(s.now(), actorOrSystem(ctx))
}
