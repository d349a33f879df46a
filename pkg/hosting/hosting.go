package hosting

import (
	"errors"
	"fmt"
)

// Mode selects the physical tenant-isolation strategy for the process.
// It is read once at startup and never changes for the process lifetime.
type Mode string

const (
	// ModeSharedSchema keeps all tenants in one schema and isolates rows
	// by a mandatory tenant_id predicate applied at the data-access layer.
	ModeSharedSchema Mode = "shared-schema"

	// ModeSchemaPerTenant gives every tenant its own schema; isolation is
	// structural and no row filter is applied.
	ModeSchemaPerTenant Mode = "schema-per-tenant"
)

// ErrInvalidMode is returned for hosting mode values outside the two
// supported strategies. Treated as fatal at startup.
var ErrInvalidMode = errors.New("invalid hosting mode")

// Config carries the hosting mode setting. Absence defaults to
// shared-schema, matching self-hosted deployments.
type Config struct {
	Mode string `env:"HOSTING_MODE" envDefault:"shared-schema"`
}

// Parse validates the configured mode string.
func Parse(cfg Config) (Mode, error) {
	switch Mode(cfg.Mode) {
	case ModeSharedSchema, ModeSchemaPerTenant:
		return Mode(cfg.Mode), nil
	default:
		return "", fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidMode, cfg.Mode, ModeSharedSchema, ModeSchemaPerTenant)
	}
}

// String implements fmt.Stringer for log output.
func (m Mode) String() string { return string(m) }
