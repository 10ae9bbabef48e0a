package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/credkit/pkg/config"
)

type testConfig struct {
	Host string `env:"TEST_CFG_HOST" envDefault:"localhost"`
	Port int    `env:"TEST_CFG_PORT" envDefault:"5432"`
}

type requiredConfig struct {
	Secret string `env:"TEST_CFG_MISSING_SECRET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 5432, cfg.Port)
	})

	t.Run("returns cached value on repeated loads", func(t *testing.T) {
		var first, second testConfig
		require.NoError(t, config.Load(&first))

		// Changing the environment after the first load must not change
		// the cached snapshot.
		t.Setenv("TEST_CFG_HOST", "other-host")
		require.NoError(t, config.Load(&second))
		assert.Equal(t, first, second)
	})

	t.Run("fails on missing required variable", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("rejects nil pointer", func(t *testing.T) {
		err := config.Load[testConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}
