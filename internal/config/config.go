// Package config holds the CLI's runtime settings. Values come from the
// environment; anything unset falls back to a working default so a bare
// `pvctl` invocation still runs.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ServerURL   string        `env:"PHOTOVAULT_SERVER_URL"`
	Timeout     time.Duration `env:"PHOTOVAULT_TIMEOUT"`
	CacheDir    string        `env:"PHOTOVAULT_CACHE_DIR"`
	LogLevel    string        `env:"PHOTOVAULT_LOG_LEVEL"`
	MobileKDF   bool          `env:"PHOTOVAULT_MOBILE_KDF"`
	MaxAttempts int           `env:"PHOTOVAULT_MAX_UNLOCK_ATTEMPTS"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.ServerURL == "" {
		c.ServerURL = "https://api.photovault.local"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.CacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = "."
		}
		c.CacheDir = filepath.Join(base, "photovault")
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
}
