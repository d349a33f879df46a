// Package user manages CRM users, the reference tenant-scoped entity.
// Its store demonstrates the full isolation contract: schema-routed
// queries, mandatory row filters in shared-schema hosting, set-once
// tenant stamping, and write-through cache invalidation.
package user
