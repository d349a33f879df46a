// Package tenant is the tenant registry service: provisioning, lookup
// by id and host, soft deactivation, and the cache discipline around
// them. It implements the pkg/tenant Provider contract consumed by the
// request middleware and by schema routing.
package tenant
