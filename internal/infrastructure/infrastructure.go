// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, attempt store) that domain
// systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/quaydesk/quay/internal/attempts"
	"github.com/quaydesk/quay/internal/config"
	"github.com/quaydesk/quay/pkg/database"
	"github.com/quaydesk/quay/pkg/lifecycle"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, and the shared attempt-record store.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Attempts  attempts.Store
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := newLogger(cfg.Env())

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := newAttemptStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("attempt store init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Attempts:  store,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	return nil
}

// newLogger builds the service logger: colorized tint output for local
// development, JSON elsewhere.
func newLogger(env string) *slog.Logger {
	if env == "local" {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

// newAttemptStore selects the Redis-backed store when a URL is
// configured, falling back to the in-process store for single-instance
// deployments.
func newAttemptStore(cfg *config.Config, logger *slog.Logger) (attempts.Store, error) {
	if cfg.Attempts.RedisURL == "" {
		logger.Warn("no redis url configured, using in-process attempt store")
		return attempts.NewMemory(), nil
	}

	return attempts.NewRedis(
		cfg.Attempts.RedisURL,
		cfg.Attempts.RedisPassword,
		cfg.Attempts.WindowDuration(),
		logger,
	)
}
