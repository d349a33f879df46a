package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when a tenant cannot be found.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrMissingTenantContext is returned when an operation requires a
	// bound tenant but none is present. This is a programming-contract
	// violation in the request pipeline, not a user-facing condition.
	ErrMissingTenantContext = errors.New("no tenant bound to context")

	// ErrInactiveTenant is returned when the resolved tenant is disabled.
	ErrInactiveTenant = errors.New("tenant is inactive")

	// ErrInvalidIdentifier is returned when the identifier format is invalid.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrHostAlreadyInUse is returned when a tenant is created or updated
	// with a host another active tenant already owns.
	ErrHostAlreadyInUse = errors.New("host already in use by another tenant")
)
