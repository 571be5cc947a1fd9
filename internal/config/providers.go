package config

import (
	"fmt"
	"os"
)

// Provider kinds accepted by the providers config.
const (
	ProviderKindOpenAI = "openai"
	ProviderKindOllama = "ollama"
)

// Environment variables for the primary provider.
const (
	EnvPrimaryKind    = "QUAY_PRIMARY_KIND"
	EnvPrimaryName    = "QUAY_PRIMARY_NAME"
	EnvPrimaryBaseURL = "QUAY_PRIMARY_BASE_URL"
	EnvPrimaryToken   = "QUAY_PRIMARY_TOKEN"
	EnvPrimaryModel   = "QUAY_PRIMARY_MODEL"
)

// Environment variables for the secondary provider.
const (
	EnvSecondaryKind    = "QUAY_SECONDARY_KIND"
	EnvSecondaryName    = "QUAY_SECONDARY_NAME"
	EnvSecondaryBaseURL = "QUAY_SECONDARY_BASE_URL"
	EnvSecondaryToken   = "QUAY_SECONDARY_TOKEN"
	EnvSecondaryModel   = "QUAY_SECONDARY_MODEL"
)

// ProviderConfig describes one inference backend.
type ProviderConfig struct {
	Kind    string `toml:"kind"`
	Name    string `toml:"name"`
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
	Model   string `toml:"model"`
}

// Configured reports whether the provider has enough settings to build
// a client.
func (c *ProviderConfig) Configured() bool {
	return c.Kind != "" && c.Model != ""
}

// Merge overwrites non-zero fields from overlay.
func (c *ProviderConfig) Merge(overlay *ProviderConfig) {
	if overlay.Kind != "" {
		c.Kind = overlay.Kind
	}
	if overlay.Name != "" {
		c.Name = overlay.Name
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
}

func (c *ProviderConfig) validate(label string) error {
	switch c.Kind {
	case ProviderKindOpenAI, ProviderKindOllama:
	default:
		return fmt.Errorf("%s: kind must be %s or %s", label, ProviderKindOpenAI, ProviderKindOllama)
	}
	if c.Model == "" {
		return fmt.Errorf("%s: model required", label)
	}
	return nil
}

// ProvidersConfig holds the primary provider and the optional secondary
// fallback the engine may switch to once at round 0.
type ProvidersConfig struct {
	Primary   ProviderConfig `toml:"primary"`
	Secondary ProviderConfig `toml:"secondary"`
}

// Finalize applies defaults, environment variable overrides, and validation.
// The secondary provider is optional: it is only validated when any of its
// fields are set.
func (c *ProvidersConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.Primary.validate("primary"); err != nil {
		return err
	}
	if c.Secondary.Configured() {
		return c.Secondary.validate("secondary")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ProvidersConfig) Merge(overlay *ProvidersConfig) {
	c.Primary.Merge(&overlay.Primary)
	c.Secondary.Merge(&overlay.Secondary)
}

func (c *ProvidersConfig) loadDefaults() {
	if c.Primary.Kind == "" {
		c.Primary.Kind = ProviderKindOpenAI
	}
	if c.Primary.Name == "" {
		c.Primary.Name = "primary"
	}
	if c.Secondary.Configured() && c.Secondary.Name == "" {
		c.Secondary.Name = "secondary"
	}
}

func (c *ProvidersConfig) loadEnv() {
	loadProviderEnv(&c.Primary, EnvPrimaryKind, EnvPrimaryName, EnvPrimaryBaseURL, EnvPrimaryToken, EnvPrimaryModel)
	loadProviderEnv(&c.Secondary, EnvSecondaryKind, EnvSecondaryName, EnvSecondaryBaseURL, EnvSecondaryToken, EnvSecondaryModel)
}

func loadProviderEnv(c *ProviderConfig, kind, name, baseURL, token, model string) {
	if v := os.Getenv(kind); v != "" {
		c.Kind = v
	}
	if v := os.Getenv(name); v != "" {
		c.Name = v
	}
	if v := os.Getenv(baseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(token); v != "" {
		c.Token = v
	}
	if v := os.Getenv(model); v != "" {
		c.Model = v
	}
}
