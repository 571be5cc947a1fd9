package api_test

import (
	"testing"

	"github.com/quaydesk/quay/internal/api"
	"github.com/quaydesk/quay/internal/config"
	"github.com/quaydesk/quay/internal/infrastructure"
	"github.com/quaydesk/quay/pkg/database"
	"github.com/quaydesk/quay/pkg/middleware"
	"github.com/quaydesk/quay/pkg/pagination"
)

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     "1m",
			WriteTimeout:    "15m",
			ShutdownTimeout: "30s",
		},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "quay",
			User:            "quay",
			Password:        "quay",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		API: config.APIConfig{
			BasePath: "/api",
			CORS: middleware.CORSConfig{
				Enabled: false,
			},
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
		},
		Engine: config.EngineConfig{
			MaxRounds:        8,
			MaxToolsPerRound: 5,
			TimeBudget:       "90s",
			CallTimeout:      "30s",
		},
		Providers: config.ProvidersConfig{
			Primary: config.ProviderConfig{
				Kind:  "openai",
				Name:  "openai",
				Token: "test-token",
				Model: "gpt-4o-mini",
			},
			Secondary: config.ProviderConfig{
				Kind:    "ollama",
				Name:    "ollama",
				BaseURL: "http://localhost:11434",
				Model:   "llama3.1:8b",
			},
		},
		Attempts: config.AttemptsConfig{
			Max:    2,
			Window: "168h",
		},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
}

func setupInfra(t *testing.T) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	return infra
}

func TestNewModule(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)

	runtime := api.NewRuntime(cfg, infra)

	if runtime.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default page size: got %d, want 20", runtime.Pagination.DefaultPageSize)
	}
	if runtime.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max page size: got %d, want 100", runtime.Pagination.MaxPageSize)
	}
	if runtime.Logger == nil {
		t.Error("runtime logger is nil")
	}
	if runtime.Database == nil {
		t.Error("runtime database is nil")
	}
	if runtime.Attempts == nil {
		t.Error("runtime attempt store is nil")
	}
	if runtime.Lifecycle == nil {
		t.Error("runtime lifecycle is nil")
	}
}

func TestNewDomain(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)
	runtime := api.NewRuntime(cfg, infra)

	domain, err := api.NewDomain(runtime)
	if err != nil {
		t.Fatalf("NewDomain() error = %v", err)
	}
	if domain.Classifications == nil {
		t.Error("classifications system is nil")
	}
	if domain.Tariffs == nil {
		t.Error("tariffs system is nil")
	}
	if domain.Memory == nil {
		t.Error("memory system is nil")
	}
	if domain.Prompts == nil {
		t.Error("prompts system is nil")
	}
}

func TestNewDomainWithoutSecondary(t *testing.T) {
	cfg := validConfig()
	cfg.Providers.Secondary = config.ProviderConfig{}
	infra := setupInfra(t)
	runtime := api.NewRuntime(cfg, infra)

	if _, err := api.NewDomain(runtime); err != nil {
		t.Fatalf("NewDomain() without secondary error = %v", err)
	}
}
