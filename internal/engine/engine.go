// Package engine runs the bounded multi-round tool-calling loop that turns
// a classification prompt into final model text. It owns the transcript,
// the round and time budgets, and the one-time provider failover.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quaydesk/quay/internal/metrics"
	"github.com/quaydesk/quay/internal/providers"
)

// Dispatcher executes model-requested tool invocations and advertises
// their schemas. Satisfied by tools.Dispatcher.
type Dispatcher interface {
	Execute(ctx context.Context, name string, args json.RawMessage) (string, error)
	Schemas() []providers.ToolSchema
}

// Options bound a single run. Zero values fall back to the defaults.
type Options struct {
	MaxRounds        int
	MaxToolsPerRound int
	TimeBudget       time.Duration
	CallTimeout      time.Duration
}

// Default run bounds.
const (
	DefaultMaxRounds        = 8
	DefaultMaxToolsPerRound = 5
	DefaultTimeBudget       = 90 * time.Second
	DefaultCallTimeout      = 30 * time.Second
)

func (o Options) normalize() Options {
	if o.MaxRounds <= 0 {
		o.MaxRounds = DefaultMaxRounds
	}
	if o.MaxToolsPerRound <= 0 {
		o.MaxToolsPerRound = DefaultMaxToolsPerRound
	}
	if o.TimeBudget <= 0 {
		o.TimeBudget = DefaultTimeBudget
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = DefaultCallTimeout
	}
	return o
}

// Engine orchestrates the tool-calling loop over a primary and an
// optional secondary provider. The secondary is consulted at most once
// per request, only on a round-0 primary failure, and always with a
// fresh transcript.
type Engine struct {
	primary   providers.ModelClient
	secondary providers.ModelClient
	tools     Dispatcher
	options   Options
	logger    *slog.Logger
}

// New creates an engine. secondary may be nil when no fallback provider
// is configured.
func New(primary, secondary providers.ModelClient, tools Dispatcher, options Options, logger *slog.Logger) *Engine {
	return &Engine{
		primary:   primary,
		secondary: secondary,
		tools:     tools,
		options:   options.normalize(),
		logger:    logger.With("system", "engine"),
	}
}

// Run executes the loop: each round sends the full transcript and tool
// schemas to the active provider, executes any requested invocations,
// and appends results. It returns when the model emits text with no tool
// calls, or a degraded Outcome when a budget is exhausted. ErrNoProviders
// is terminal; any other error accompanies a degraded Outcome so callers
// always receive an audit trail.
func (e *Engine) Run(ctx context.Context, system, user string) (*Outcome, error) {
	if system == "" && user == "" {
		return nil, ErrEmptyPrompt
	}

	start := time.Now()
	client := e.primary
	switched := false

	transcript := freshTranscript(system, user)
	schemas := e.tools.Schemas()

	outcome := &Outcome{
		Provider: client.Name(),
		Model:    client.Model(),
	}

	defer func() {
		outcome.Elapsed = time.Since(start)
		metrics.EngineRounds.Observe(float64(len(outcome.Rounds)))
	}()

	for round := 0; round < e.options.MaxRounds; round++ {
		remaining := e.options.TimeBudget - time.Since(start)
		if remaining <= 0 {
			e.logger.Warn("time budget exhausted", "round", round, "elapsed", time.Since(start))
			outcome.Degraded = true
			return outcome, nil
		}

		reply, err := e.complete(ctx, client, transcript, schemas, remaining)
		if err != nil {
			if round == 0 && !switched && e.secondary != nil && errors.Is(err, providers.ErrUnavailable) {
				e.logger.Warn("primary provider unavailable, switching",
					"primary", client.Name(),
					"secondary", e.secondary.Name(),
					"error", err)

				client = e.secondary
				switched = true
				transcript = freshTranscript(system, user)
				outcome.Provider = client.Name()
				outcome.Model = client.Model()
				round--
				continue
			}

			if round == 0 && errors.Is(err, providers.ErrUnavailable) {
				return outcome, fmt.Errorf("%w: %v", ErrNoProviders, err)
			}

			outcome.Degraded = true
			return outcome, fmt.Errorf("round %d: %w", round, err)
		}

		outcome.Usage.Add(reply.Usage)

		record := Round{
			Index:    len(outcome.Rounds),
			Provider: client.Name(),
			Text:     reply.Text,
		}

		if len(reply.ToolCalls) == 0 {
			outcome.Rounds = append(outcome.Rounds, record)
			outcome.Text = reply.Text
			return outcome, nil
		}

		transcript = append(transcript, providers.Message{
			Role:      providers.RoleAssistant,
			Content:   reply.Text,
			ToolCalls: reply.ToolCalls,
		})

		for i, call := range reply.ToolCalls {
			invocation, result := e.invoke(ctx, call, i, start)
			record.Invocations = append(record.Invocations, invocation)

			transcript = append(transcript, providers.Message{
				Role:       providers.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
				ToolName:   call.Name,
			})
		}

		outcome.Rounds = append(outcome.Rounds, record)
		outcome.Text = reply.Text
	}

	e.logger.Warn("round budget exhausted", "rounds", len(outcome.Rounds))
	outcome.Degraded = true
	return outcome, nil
}

func (e *Engine) complete(
	ctx context.Context,
	client providers.ModelClient,
	transcript []providers.Message,
	schemas []providers.ToolSchema,
	remaining time.Duration,
) (*providers.Reply, error) {
	timeout := e.options.CallTimeout
	if remaining < timeout {
		timeout = remaining
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return client.Complete(callCtx, transcript, schemas)
}

// invoke runs one requested tool call, enforcing the per-round cap and
// the remaining time budget. Capped or over-budget invocations receive
// an explicit result instead of blocking; tool errors are recorded as
// the tool's result so the model can adapt.
func (e *Engine) invoke(ctx context.Context, call providers.ToolCall, index int, start time.Time) (Invocation, string) {
	invocation := Invocation{
		Tool:      call.Name,
		Arguments: string(call.Arguments),
	}

	remaining := e.options.TimeBudget - time.Since(start)
	overBudget := index >= e.options.MaxToolsPerRound || remaining <= 0

	if overBudget {
		invocation.Result = budgetExceededResult
		return invocation, budgetExceededResult
	}

	timeout := e.options.CallTimeout
	if remaining < timeout {
		timeout = remaining
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	began := time.Now()
	result, err := e.tools.Execute(callCtx, call.Name, call.Arguments)
	invocation.Duration = time.Since(began)

	if err != nil {
		e.logger.Warn("tool invocation failed", "tool", call.Name, "error", err)
		invocation.Error = err.Error()
		payload := toolErrorResult(call.Name, err)
		invocation.Result = payload
		return invocation, payload
	}

	invocation.Result = result
	return invocation, result
}

func toolErrorResult(name string, err error) string {
	data, marshalErr := json.Marshal(map[string]string{
		"error": err.Error(),
		"tool":  name,
	})
	if marshalErr != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(data)
}

func freshTranscript(system, user string) []providers.Message {
	transcript := make([]providers.Message, 0, 2)
	if system != "" {
		transcript = append(transcript, providers.Message{Role: providers.RoleSystem, Content: system})
	}
	if user != "" {
		transcript = append(transcript, providers.Message{Role: providers.RoleUser, Content: user})
	}
	return transcript
}
