package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvAttemptsRedisURL      = "QUAY_ATTEMPTS_REDIS_URL"
	EnvAttemptsRedisPassword = "QUAY_ATTEMPTS_REDIS_PASSWORD"
	EnvAttemptsMax           = "QUAY_ATTEMPTS_MAX"
	EnvAttemptsWindow        = "QUAY_ATTEMPTS_WINDOW"
)

// AttemptsConfig holds the thread attempt-record store settings. An
// empty redis_url selects the in-process store, which is only suitable
// for a single instance.
type AttemptsConfig struct {
	RedisURL      string `toml:"redis_url"`
	RedisPassword string `toml:"redis_password"`
	Max           int    `toml:"max"`
	Window        string `toml:"window"`
}

// WindowDuration returns Window as a time.Duration.
func (c *AttemptsConfig) WindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.Window)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AttemptsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AttemptsConfig) Merge(overlay *AttemptsConfig) {
	if overlay.RedisURL != "" {
		c.RedisURL = overlay.RedisURL
	}
	if overlay.RedisPassword != "" {
		c.RedisPassword = overlay.RedisPassword
	}
	if overlay.Max != 0 {
		c.Max = overlay.Max
	}
	if overlay.Window != "" {
		c.Window = overlay.Window
	}
}

func (c *AttemptsConfig) loadDefaults() {
	if c.Max == 0 {
		c.Max = 2
	}
	if c.Window == "" {
		c.Window = "168h"
	}
}

func (c *AttemptsConfig) loadEnv() {
	if v := os.Getenv(EnvAttemptsRedisURL); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv(EnvAttemptsRedisPassword); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv(EnvAttemptsMax); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Max = n
		}
	}
	if v := os.Getenv(EnvAttemptsWindow); v != "" {
		c.Window = v
	}
}

func (c *AttemptsConfig) validate() error {
	if c.Max < 1 {
		return fmt.Errorf("invalid max: %d", c.Max)
	}
	if _, err := time.ParseDuration(c.Window); err != nil {
		return fmt.Errorf("invalid window: %w", err)
	}
	return nil
}
