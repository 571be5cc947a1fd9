package api

import (
	"fmt"

	"github.com/quaydesk/quay/internal/classifications"
	"github.com/quaydesk/quay/internal/config"
	"github.com/quaydesk/quay/internal/engine"
	"github.com/quaydesk/quay/internal/gates"
	"github.com/quaydesk/quay/internal/memory"
	"github.com/quaydesk/quay/internal/prompts"
	"github.com/quaydesk/quay/internal/providers"
	"github.com/quaydesk/quay/internal/tariffs"
	"github.com/quaydesk/quay/internal/tools"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Classifications classifications.System
	Tariffs         tariffs.System
	Memory          memory.System
	Prompts         prompts.System
}

// NewDomain creates all domain systems from the API runtime: the
// reference and memory domains first, then the tool dispatcher, engine,
// and gate pipeline that the classification runtime is built from.
func NewDomain(runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	tariffsSystem := tariffs.New(db, runtime.Logger, runtime.Pagination)
	memorySystem := memory.New(db, runtime.Logger, runtime.Pagination)
	promptsSystem := prompts.New(db, runtime.Logger, runtime.Pagination)

	dispatcher, err := tools.NewDispatcher(
		runtime.Logger,
		tools.NewTariffLookup(tariffsSystem),
		tools.NewTariffSearch(tariffsSystem),
		tools.NewMeasuresLookup(tariffsSystem),
		tools.NewMemoryLookup(memorySystem),
	)
	if err != nil {
		return nil, fmt.Errorf("build dispatcher: %w", err)
	}

	primary, err := buildClient(runtime.Config.Providers.Primary)
	if err != nil {
		return nil, fmt.Errorf("build primary provider: %w", err)
	}

	var secondary providers.ModelClient
	if runtime.Config.Providers.Secondary.Configured() {
		secondary, err = buildClient(runtime.Config.Providers.Secondary)
		if err != nil {
			return nil, fmt.Errorf("build secondary provider: %w", err)
		}
	}

	eng := engine.New(primary, secondary, dispatcher, engine.Options{
		MaxRounds:        runtime.Config.Engine.MaxRounds,
		MaxToolsPerRound: runtime.Config.Engine.MaxToolsPerRound,
		TimeBudget:       runtime.Config.Engine.TimeBudgetDuration(),
		CallTimeout:      runtime.Config.Engine.CallTimeoutDuration(),
	}, runtime.Logger)

	pipeline := gates.NewPipeline(
		gates.NewCodeValidationGate(tariffsSystem, runtime.Logger),
		gates.NewLoopBreakerGate(runtime.Attempts, runtime.Config.Attempts.Max, runtime.Logger),
		gates.NewContentFilterGate(runtime.Config.Filter.Phrases),
		runtime.Logger,
	)

	classificationsSystem := classifications.New(
		db,
		&classifications.Runtime{
			Engine:   eng,
			Gates:    pipeline,
			Memory:   memorySystem,
			Prompts:  promptsSystem,
			Attempts: runtime.Attempts,
		},
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Classifications: classificationsSystem,
		Tariffs:         tariffsSystem,
		Memory:          memorySystem,
		Prompts:         promptsSystem,
	}, nil
}

func buildClient(cfg config.ProviderConfig) (providers.ModelClient, error) {
	switch cfg.Kind {
	case config.ProviderKindOllama:
		return providers.NewOllama(cfg.Name, cfg.BaseURL, cfg.Model)
	default:
		return providers.NewOpenAI(cfg.Name, cfg.BaseURL, cfg.Token, cfg.Model)
	}
}
