// Package schema routes tenant-scoped data access to a concrete target.
//
// A Target names the physical schema and says whether a mandatory
// tenant_id row filter applies. Stores never decide this themselves:
// they resolve a Target per operation and build queries from it, so a
// forgotten WHERE clause is structurally impossible rather than a code
// review concern.
//
// The two hosting modes map to two shapes of Target:
//
//   - shared-schema: one fixed schema, RowFilter true, tenant id carried
//     for predicates and insert stamping.
//   - schema-per-tenant: the tenant record's own schema, no row filter.
//     A tenant without a schema name fails with ErrUnresolvableSchema;
//     there is no default-schema fallback.
package schema
