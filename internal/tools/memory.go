package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quaydesk/quay/internal/memory"
)

// MemoryLookup checks prior confirmed classifications for a description.
type MemoryLookup struct {
	memory memory.System
}

// NewMemoryLookup creates the memory lookup capability.
func NewMemoryLookup(sys memory.System) *MemoryLookup {
	return &MemoryLookup{memory: sys}
}

func (m *MemoryLookup) Name() string {
	return "lookup_memory"
}

func (m *MemoryLookup) Description() string {
	return "Check whether a product description has been classified before. Returns the remembered code or found=false."
}

func (m *MemoryLookup) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{
				"type":        "string",
				"description": "Free-text product description",
			},
		},
		"required": []string{"description"},
	}
}

func (m *MemoryLookup) Invoke(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if params.Description == "" {
		return "", fmt.Errorf("%w: description is required", ErrInvalidArguments)
	}

	hit, err := m.memory.Lookup(ctx, params.Description)
	if errors.Is(err, memory.ErrNotFound) {
		return marshalResult(map[string]any{"found": false})
	}
	if err != nil {
		return "", err
	}

	return marshalResult(map[string]any{
		"found":      true,
		"code":       hit.Code,
		"confidence": hit.Confidence,
		"hits":       hit.Hits,
	})
}
