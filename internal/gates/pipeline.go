// Package gates applies the ordered validation pipeline to engine output:
// code validation, loop breaking, and content filtering. Every gate is
// fail-open: an internal error marks the gate unevaluated and the
// pipeline continues, so a gate failure can never block a response.
package gates

import (
	"context"
	"log/slog"

	"github.com/quaydesk/quay/internal/engine"
	"github.com/quaydesk/quay/internal/metrics"
)

// Gate result outcome labels for metrics.
const (
	outcomePassed      = "passed"
	outcomeFlagged     = "flagged"
	outcomeUnevaluated = "unevaluated"
)

// Result is the audit record of one gate's evaluation. Evaluated=false
// means the gate hit an internal error and was skipped.
type Result struct {
	Gate      string   `json:"gate"`
	Evaluated bool     `json:"evaluated"`
	Passed    bool     `json:"passed"`
	Blocking  bool     `json:"blocking"`
	Findings  []string `json:"findings,omitempty"`
}

// Attempt summarizes the loop breaker's decision for this thread.
type Attempt struct {
	Number     int      `json:"number"`
	Escalate   bool     `json:"escalate"`
	PriorCodes []string `json:"prior_codes,omitempty"`
}

// Input carries everything the pipeline inspects: the candidate list,
// the final rendered text, and the thread key for attempt tracking.
type Input struct {
	ThreadKey  string
	Candidates []engine.Candidate
	Text       string
}

// Report is the pipeline's output: the possibly corrected candidates,
// the cleaned text, non-blocking issues, the attempt decision, and the
// per-gate audit trail.
type Report struct {
	Candidates     []engine.Candidate `json:"candidates"`
	Text           string             `json:"text"`
	BlockingIssues []string           `json:"blocking_issues,omitempty"`
	Attempt        Attempt            `json:"attempt"`
	PhrasesFound   []string           `json:"phrases_found,omitempty"`
	Modified       bool               `json:"modified"`
	Gates          []Result           `json:"gates"`
}

// Pipeline runs the three gates in fixed order.
type Pipeline struct {
	code   *CodeValidationGate
	loop   *LoopBreakerGate
	filter *ContentFilterGate
	logger *slog.Logger
}

// NewPipeline assembles the pipeline from its gates.
func NewPipeline(code *CodeValidationGate, loop *LoopBreakerGate, filter *ContentFilterGate, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		code:   code,
		loop:   loop,
		filter: filter,
		logger: logger.With("system", "gates"),
	}
}

// Evaluate applies the gates to input. It never returns an error: gate
// failures are recorded in the report and the pipeline continues.
func (p *Pipeline) Evaluate(ctx context.Context, input Input) *Report {
	report := &Report{
		Candidates: input.Candidates,
		Text:       input.Text,
		Attempt:    Attempt{Number: 1},
	}

	p.record(report, p.code.Evaluate(ctx, report))
	p.record(report, p.loop.Evaluate(ctx, input.ThreadKey, report))
	p.record(report, p.filter.Evaluate(report))

	return report
}

func (p *Pipeline) record(report *Report, result Result) {
	report.Gates = append(report.Gates, result)

	outcome := outcomePassed
	switch {
	case !result.Evaluated:
		outcome = outcomeUnevaluated
		p.logger.Warn("gate skipped", "gate", result.Gate, "findings", result.Findings)
	case !result.Passed:
		outcome = outcomeFlagged
	}

	metrics.GateResults.WithLabelValues(result.Gate, outcome).Inc()
}
