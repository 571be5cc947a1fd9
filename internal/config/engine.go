package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvEngineMaxRounds        = "QUAY_ENGINE_MAX_ROUNDS"
	EnvEngineMaxToolsPerRound = "QUAY_ENGINE_MAX_TOOLS_PER_ROUND"
	EnvEngineTimeBudget       = "QUAY_ENGINE_TIME_BUDGET"
	EnvEngineCallTimeout      = "QUAY_ENGINE_CALL_TIMEOUT"
)

// EngineConfig bounds the tool-calling loop.
type EngineConfig struct {
	MaxRounds        int    `toml:"max_rounds"`
	MaxToolsPerRound int    `toml:"max_tools_per_round"`
	TimeBudget       string `toml:"time_budget"`
	CallTimeout      string `toml:"call_timeout"`
}

// TimeBudgetDuration returns TimeBudget as a time.Duration.
func (c *EngineConfig) TimeBudgetDuration() time.Duration {
	d, _ := time.ParseDuration(c.TimeBudget)
	return d
}

// CallTimeoutDuration returns CallTimeout as a time.Duration.
func (c *EngineConfig) CallTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.CallTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EngineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *EngineConfig) Merge(overlay *EngineConfig) {
	if overlay.MaxRounds != 0 {
		c.MaxRounds = overlay.MaxRounds
	}
	if overlay.MaxToolsPerRound != 0 {
		c.MaxToolsPerRound = overlay.MaxToolsPerRound
	}
	if overlay.TimeBudget != "" {
		c.TimeBudget = overlay.TimeBudget
	}
	if overlay.CallTimeout != "" {
		c.CallTimeout = overlay.CallTimeout
	}
}

func (c *EngineConfig) loadDefaults() {
	if c.MaxRounds == 0 {
		c.MaxRounds = 8
	}
	if c.MaxToolsPerRound == 0 {
		c.MaxToolsPerRound = 5
	}
	if c.TimeBudget == "" {
		c.TimeBudget = "90s"
	}
	if c.CallTimeout == "" {
		c.CallTimeout = "30s"
	}
}

func (c *EngineConfig) loadEnv() {
	if v := os.Getenv(EnvEngineMaxRounds); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRounds = n
		}
	}
	if v := os.Getenv(EnvEngineMaxToolsPerRound); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxToolsPerRound = n
		}
	}
	if v := os.Getenv(EnvEngineTimeBudget); v != "" {
		c.TimeBudget = v
	}
	if v := os.Getenv(EnvEngineCallTimeout); v != "" {
		c.CallTimeout = v
	}
}

func (c *EngineConfig) validate() error {
	if c.MaxRounds < 1 {
		return fmt.Errorf("invalid max_rounds: %d", c.MaxRounds)
	}
	if c.MaxToolsPerRound < 1 {
		return fmt.Errorf("invalid max_tools_per_round: %d", c.MaxToolsPerRound)
	}

	budget, err := time.ParseDuration(c.TimeBudget)
	if err != nil {
		return fmt.Errorf("invalid time_budget: %w", err)
	}

	timeout, err := time.ParseDuration(c.CallTimeout)
	if err != nil {
		return fmt.Errorf("invalid call_timeout: %w", err)
	}

	if timeout > budget {
		return fmt.Errorf("call_timeout %s exceeds time_budget %s", c.CallTimeout, c.TimeBudget)
	}
	return nil
}
