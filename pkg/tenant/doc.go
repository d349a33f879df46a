// Package tenant defines the tenant model, the request-scoped tenant
// binding, and the HTTP plumbing that establishes it.
//
// # Context discipline
//
// The bound tenant lives in a context.Context value under a private
// key. Because contexts are immutable, a nested scope created with
// RunWithTenant (or WithTenant) can never leak into its caller: the
// caller's binding is restored simply by the child context going out of
// scope. There is no mutable singleton to corrupt, and concurrent
// requests never observe each other's tenant.
//
// Operations that require a tenant call RequireFromContext and treat
// ErrMissingTenantContext as a hard precondition violation. Nothing in
// this package falls back to a default tenant.
//
// # Request flow
//
//	resolver := tenant.NewCompositeResolver(
//		tenant.NewHostResolver(),
//		tenant.NewClaimResolver("tid"),
//	)
//	r.Use(tenant.Middleware(resolver, tenantService))
//	r.Use(tenant.RequireTenant(nil))
//
// Resolvers only produce a lookup key (host, header value, or JWT
// claim); the Provider is the single authority that turns a key into a
// tenant record.
package tenant
