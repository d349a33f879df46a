// Package audit stamps ownership and provenance onto entities at write
// time: the owning tenant id (set once, never overwritten), UTC
// created/updated timestamps, and the acting user with a well-known
// system actor fallback.
//
// Tenant scoping is a type-level property: entities opt in by
// implementing TenantScoped. There is no reflection walk over struct
// fields — a type either declares a tenant id accessor pair or it is a
// global entity and the stamper leaves tenancy alone.
package audit
