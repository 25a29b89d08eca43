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

	assert.Equal(t, "https://api.photovault.local", cfg.ServerURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.NotEmpty(t, cfg.CacheDir)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PHOTOVAULT_SERVER_URL", "https://example.test")
	t.Setenv("PHOTOVAULT_TIMEOUT", "5s")
	t.Setenv("PHOTOVAULT_LOG_LEVEL", "debug")
	t.Setenv("PHOTOVAULT_MOBILE_KDF", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.test", cfg.ServerURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.MobileKDF)
}
