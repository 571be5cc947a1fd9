package gates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quaydesk/quay/internal/engine"
	"github.com/quaydesk/quay/internal/tariffs"
)

const (
	// GateCodeValidation identifies the code validation stage in audit
	// records and metrics.
	GateCodeValidation = "code_validation"

	siblingLimit = 25
)

// Dataset is the slice of the tariff reference the gate needs.
// Satisfied by tariffs.System.
type Dataset interface {
	Lookup(ctx context.Context, code string) (*tariffs.Code, error)
	SearchPrefix(ctx context.Context, prefix string, limit int) ([]tariffs.Code, error)
}

// CodeValidationGate verifies every candidate code against the reference
// dataset, correcting near misses to the closest sibling and flagging
// codes with no plausible neighborhood. It never removes a candidate.
type CodeValidationGate struct {
	dataset Dataset
	logger  *slog.Logger
}

// NewCodeValidationGate creates the gate.
func NewCodeValidationGate(dataset Dataset, logger *slog.Logger) *CodeValidationGate {
	return &CodeValidationGate{
		dataset: dataset,
		logger:  logger.With("system", "gates", "gate", GateCodeValidation),
	}
}

// Evaluate scans report.Candidates in place. Already-valid candidates
// are left untouched, so the gate is idempotent. Internal errors mark
// the gate unevaluated without blocking the pipeline.
func (g *CodeValidationGate) Evaluate(ctx context.Context, report *Report) Result {
	result := Result{Gate: GateCodeValidation, Evaluated: true, Passed: true}

	for i := range report.Candidates {
		candidate := &report.Candidates[i]
		if candidate.Valid {
			continue
		}

		if err := g.validate(ctx, candidate); err != nil {
			g.logger.Error("validation failed", "code", candidate.Code, "error", err)
			result.Evaluated = false
			result.Passed = false
			result.Findings = append(result.Findings, fmt.Sprintf("internal error validating %s: %v", candidate.Code, err))
			return result
		}

		switch {
		case candidate.Corrected:
			result.Passed = false
			result.Findings = append(result.Findings,
				fmt.Sprintf("line %d: corrected %s to %s", candidate.LineIndex, candidate.OriginalCode, candidate.Code))
		case !candidate.Valid:
			result.Passed = false
			result.Findings = append(result.Findings,
				fmt.Sprintf("line %d: %s", candidate.LineIndex, candidate.InvalidReason))
			report.BlockingIssues = append(report.BlockingIssues,
				fmt.Sprintf("line %d: code %s %s", candidate.LineIndex, candidate.Code, candidate.InvalidReason))
		}
	}

	return result
}

func (g *CodeValidationGate) validate(ctx context.Context, candidate *engine.Candidate) error {
	normalized := tariffs.NormalizeCode(candidate.Code)
	if len(normalized) < 4 {
		candidate.Valid = false
		candidate.InvalidReason = "is not a recognizable tariff code"
		return nil
	}

	entry, err := g.dataset.Lookup(ctx, normalized)
	if err == nil {
		candidate.Code = entry.Code
		candidate.Description = entry.Description
		candidate.Valid = true
		return nil
	}
	if !errors.Is(err, tariffs.ErrNotFound) {
		return err
	}

	sibling, err := g.closestSibling(ctx, normalized)
	if err != nil {
		return err
	}
	if sibling == nil {
		candidate.Valid = false
		candidate.InvalidReason = "has no match or siblings in the tariff schedule"
		return nil
	}

	candidate.OriginalCode = candidate.Code
	candidate.Code = sibling.Code
	candidate.Description = sibling.Description
	candidate.Corrected = true
	candidate.Valid = true
	candidate.Confidence = candidate.Confidence.Downgrade()
	return nil
}

// closestSibling looks for neighbors under the six-digit subheading
// first, widening to the four-digit heading when the subheading is
// empty. Siblings are scored by shared leading digits with the target.
func (g *CodeValidationGate) closestSibling(ctx context.Context, code string) (*tariffs.Code, error) {
	for _, width := range []int{6, 4} {
		if len(code) < width {
			continue
		}

		siblings, err := g.dataset.SearchPrefix(ctx, code[:width], siblingLimit)
		if err != nil {
			return nil, err
		}
		if len(siblings) == 0 {
			continue
		}

		best := 0
		bestScore := sharedPrefix(code, siblings[0].Code)
		for i := 1; i < len(siblings); i++ {
			if score := sharedPrefix(code, siblings[i].Code); score > bestScore {
				best = i
				bestScore = score
			}
		}

		return &siblings[best], nil
	}

	return nil, nil
}

func sharedPrefix(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
