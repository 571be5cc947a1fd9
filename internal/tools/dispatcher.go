// Package tools implements the capability dispatcher for the classification
// engine. Every model-callable capability (reference search, memory lookup,
// regulatory enrichment) registers behind the same contract; the engine
// needs no tool-specific handling.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/quaydesk/quay/internal/metrics"
	"github.com/quaydesk/quay/internal/providers"
)

// Capability is one named, typed tool. Implementations validate their own
// arguments before running and return a JSON-encoded result for the model.
type Capability interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Invoke(ctx context.Context, args json.RawMessage) (string, error)
}

// Dispatcher routes tool invocations by name and tracks per-tool call counts.
type Dispatcher struct {
	caps   map[string]Capability
	order  []string
	logger *slog.Logger

	mu     sync.Mutex
	counts map[string]int64
}

// NewDispatcher creates a dispatcher with the given capabilities registered.
// Duplicate names are a configuration error.
func NewDispatcher(logger *slog.Logger, caps ...Capability) (*Dispatcher, error) {
	d := &Dispatcher{
		caps:   make(map[string]Capability, len(caps)),
		logger: logger.With("system", "tools"),
		counts: make(map[string]int64),
	}

	for _, c := range caps {
		if err := d.Register(c); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Register adds a capability to the dispatcher.
func (d *Dispatcher) Register(c Capability) error {
	if _, exists := d.caps[c.Name()]; exists {
		return fmt.Errorf("tool %q already registered", c.Name())
	}
	d.caps[c.Name()] = c
	d.order = append(d.order, c.Name())
	return nil
}

// Execute runs the named capability with the given arguments. An unknown
// name returns ErrToolNotFound; capability failures are returned as-is so
// the engine can record them in the transcript.
func (d *Dispatcher) Execute(ctx context.Context, name string, args json.RawMessage) (string, error) {
	capability, ok := d.caps[name]
	if !ok {
		metrics.ToolInvocations.WithLabelValues(name, "not_found").Inc()
		return "", fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}

	d.mu.Lock()
	d.counts[name]++
	d.mu.Unlock()

	result, err := capability.Invoke(ctx, args)
	if err != nil {
		metrics.ToolInvocations.WithLabelValues(name, "error").Inc()
		d.logger.Warn("tool execution failed", "tool", name, "error", err)
		return "", err
	}

	metrics.ToolInvocations.WithLabelValues(name, "ok").Inc()
	return result, nil
}

// Schemas returns the tool schemas for every registered capability, in
// registration order.
func (d *Dispatcher) Schemas() []providers.ToolSchema {
	schemas := make([]providers.ToolSchema, 0, len(d.order))
	for _, name := range d.order {
		c := d.caps[name]
		schemas = append(schemas, providers.ToolSchema{
			Name:        c.Name(),
			Description: c.Description(),
			Parameters:  c.Parameters(),
		})
	}
	return schemas
}

// Counts returns a snapshot of per-tool invocation counts.
func (d *Dispatcher) Counts() map[string]int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	snapshot := make(map[string]int64, len(d.counts))
	for k, v := range d.counts {
		snapshot[k] = v
	}
	return snapshot
}
