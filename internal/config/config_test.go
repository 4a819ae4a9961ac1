package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 4, cfg.Optimization.MaxConcurrentRuns)
	assert.Equal(t, 1000, cfg.Optimization.DefaultMaxIterations)
	assert.Equal(t, 1e-6, cfg.Optimization.DefaultTolerance)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("OPT_DEFAULT_MAX_ITERATIONS", "250")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 250, cfg.Optimization.DefaultMaxIterations)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("DEVANA_TEST_STR", "value")
	t.Setenv("DEVANA_TEST_INT", "42")
	t.Setenv("DEVANA_TEST_BOOL", "true")

	assert.Equal(t, "value", GetEnv("DEVANA_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", GetEnv("DEVANA_TEST_MISSING", "fallback"))
	assert.Equal(t, 42, GetEnvAsInt("DEVANA_TEST_INT", 0))
	assert.Equal(t, 7, GetEnvAsInt("DEVANA_TEST_MISSING", 7))
	assert.True(t, GetEnvAsBool("DEVANA_TEST_BOOL", false))
	assert.False(t, GetEnvAsBool("DEVANA_TEST_MISSING", false))
}
