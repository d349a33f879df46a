package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridiancrm/meridian/pkg/config"
)

// Each test uses its own config type: parsed configs are cached per
// type for the process lifetime.

func TestLoad(t *testing.T) {
	t.Run("parses env tags", func(t *testing.T) {
		type testCfg struct {
			Host string `env:"LOADER_TEST_HOST"`
			Port int    `env:"LOADER_TEST_PORT" envDefault:"5432"`
		}

		t.Setenv("LOADER_TEST_HOST", "db.internal")

		var cfg testCfg
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "db.internal", cfg.Host)
		assert.Equal(t, 5432, cfg.Port)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		type requiredCfg struct {
			DSN string `env:"LOADER_TEST_DSN,required"`
		}

		var cfg requiredCfg
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("caches per type", func(t *testing.T) {
		type cachedCfg struct {
			Value string `env:"LOADER_TEST_CACHED"`
		}

		t.Setenv("LOADER_TEST_CACHED", "first")
		var first cachedCfg
		require.NoError(t, config.Load(&first))
		require.Equal(t, "first", first.Value)

		// Later env changes are invisible; the first parse wins.
		t.Setenv("LOADER_TEST_CACHED", "second")
		var second cachedCfg
		require.NoError(t, config.Load(&second))
		assert.Equal(t, "first", second.Value)
	})

	t.Run("nil pointer rejected", func(t *testing.T) {
		type nilCfg struct{}
		err := config.Load[nilCfg](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		type mustCfg struct {
			DSN string `env:"LOADER_TEST_MUST_DSN,required"`
		}

		assert.Panics(t, func() {
			var cfg mustCfg
			config.MustLoad(&cfg)
		})
	})

	t.Run("loads valid config", func(t *testing.T) {
		type okCfg struct {
			Name string `env:"LOADER_TEST_NAME" envDefault:"meridian"`
		}

		var cfg okCfg
		config.MustLoad(&cfg)
		assert.Equal(t, "meridian", cfg.Name)
	})
}
