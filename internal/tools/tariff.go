package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quaydesk/quay/internal/tariffs"
	"github.com/quaydesk/quay/pkg/pagination"
)

const searchLimit = 10

// TariffLookup resolves an exact tariff code against the reference dataset.
type TariffLookup struct {
	tariffs tariffs.System
}

// NewTariffLookup creates the exact-lookup capability.
func NewTariffLookup(sys tariffs.System) *TariffLookup {
	return &TariffLookup{tariffs: sys}
}

func (t *TariffLookup) Name() string {
	return "lookup_tariff_code"
}

func (t *TariffLookup) Description() string {
	return "Look up a tariff code in the harmonized schedule. Returns the canonical entry or found=false."
}

func (t *TariffLookup) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"code": map[string]any{
				"type":        "string",
				"description": "Tariff code, 6-10 digits, separators allowed",
			},
		},
		"required": []string{"code"},
	}
}

func (t *TariffLookup) Invoke(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if params.Code == "" {
		return "", fmt.Errorf("%w: code is required", ErrInvalidArguments)
	}

	code, err := t.tariffs.Lookup(ctx, params.Code)
	if errors.Is(err, tariffs.ErrNotFound) {
		return marshalResult(map[string]any{"found": false, "code": params.Code})
	}
	if err != nil {
		return "", err
	}

	return marshalResult(map[string]any{"found": true, "entry": code})
}

// TariffSearch searches the reference dataset by keyword or code prefix.
type TariffSearch struct {
	tariffs tariffs.System
}

// NewTariffSearch creates the search capability.
func NewTariffSearch(sys tariffs.System) *TariffSearch {
	return &TariffSearch{tariffs: sys}
}

func (t *TariffSearch) Name() string {
	return "search_tariff_codes"
}

func (t *TariffSearch) Description() string {
	return "Search the harmonized schedule by keyword, or list entries under a code prefix."
}

func (t *TariffSearch) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Keyword to match against code descriptions",
			},
			"prefix": map[string]any{
				"type":        "string",
				"description": "Code prefix to list entries under (2-8 digits)",
			},
		},
	}
}

func (t *TariffSearch) Invoke(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Query  string `json:"query"`
		Prefix string `json:"prefix"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if params.Query == "" && params.Prefix == "" {
		return "", fmt.Errorf("%w: query or prefix is required", ErrInvalidArguments)
	}

	if params.Prefix != "" {
		codes, err := t.tariffs.SearchPrefix(ctx, params.Prefix, searchLimit)
		if err != nil {
			return "", err
		}
		return marshalResult(map[string]any{"entries": codes})
	}

	page := pagination.PageRequest{
		Page:     1,
		PageSize: searchLimit,
		Search:   &params.Query,
	}

	result, err := t.tariffs.List(ctx, page, tariffs.Filters{})
	if err != nil {
		return "", err
	}

	return marshalResult(map[string]any{"entries": result.Data, "total": result.Total})
}

// MeasuresLookup returns regulatory trade measures applicable to a code.
type MeasuresLookup struct {
	tariffs tariffs.System
}

// NewMeasuresLookup creates the regulatory enrichment capability.
func NewMeasuresLookup(sys tariffs.System) *MeasuresLookup {
	return &MeasuresLookup{tariffs: sys}
}

func (m *MeasuresLookup) Name() string {
	return "lookup_trade_measures"
}

func (m *MeasuresLookup) Description() string {
	return "List regulatory trade measures (licensing, quotas, anti-dumping) applicable to a tariff code."
}

func (m *MeasuresLookup) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"code": map[string]any{
				"type":        "string",
				"description": "Tariff code, 6-10 digits",
			},
		},
		"required": []string{"code"},
	}
}

func (m *MeasuresLookup) Invoke(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if params.Code == "" {
		return "", fmt.Errorf("%w: code is required", ErrInvalidArguments)
	}

	measures, err := m.tariffs.Measures(ctx, params.Code)
	if err != nil {
		return "", err
	}

	return marshalResult(map[string]any{"measures": measures})
}

func marshalResult(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal tool result: %w", err)
	}
	return string(data), nil
}
