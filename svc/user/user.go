package user

import (
	"github.com/google/uuid"

	"github.com/meridiancrm/meridian/pkg/audit"
)

// User is a tenant-scoped CRM user. The owning tenant is private state
// behind the audit.TenantScoped accessors: it is set exactly once at
// insert (by the stamper, from the bound context) and nothing outside
// this package can flip it afterwards.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`

	tenantID uuid.UUID

	audit.Fields
}

// TenantID returns the owning tenant.
func (u *User) TenantID() uuid.UUID { return u.tenantID }

// SetTenantID sets the owning tenant. Called by the audit stamper and
// by row scanning; the set-once invariant is enforced by the stamper.
func (u *User) SetTenantID(id uuid.UUID) { u.tenantID = id }
