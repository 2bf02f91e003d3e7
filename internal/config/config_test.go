// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_SEED_DATA", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 0.05, cfg.Payment.CommissionRate)
	assert.Equal(t, 48, cfg.Download.TokenTTL)
	assert.True(t, cfg.Database.SeedData)
}

func TestLoadSeedDataDisabled(t *testing.T) {
	t.Setenv("DB_SEED_DATA", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Database.SeedData)
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("SOME_FLAG", "TRUE")
	assert.True(t, getEnvAsBool("SOME_FLAG", false))

	t.Setenv("SOME_FLAG", "0")
	assert.False(t, getEnvAsBool("SOME_FLAG", true))

	t.Setenv("SOME_FLAG", "not-a-bool")
	assert.True(t, getEnvAsBool("SOME_FLAG", true))

	assert.True(t, getEnvAsBool("UNSET_FLAG", true))
	assert.False(t, getEnvAsBool("UNSET_FLAG", false))
}
