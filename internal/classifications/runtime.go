package classifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quaydesk/quay/internal/attempts"
	"github.com/quaydesk/quay/internal/engine"
	"github.com/quaydesk/quay/internal/gates"
	"github.com/quaydesk/quay/internal/memory"
	"github.com/quaydesk/quay/internal/prompts"
)

// Runtime bundles everything one classification run needs: the engine
// loop, the gate pipeline, memory shortcuts, prompt composition, and
// the attempt store for recording produced codes.
type Runtime struct {
	Engine   *engine.Engine
	Gates    *gates.Pipeline
	Memory   memory.System
	Prompts  prompts.System
	Attempts attempts.Store
	Logger   *slog.Logger
}

// result is the in-process final payload before persistence.
type result struct {
	Status   Status
	Summary  string
	Report   *gates.Report
	Outcome  *engine.Outcome
	Degraded bool
}

// execute runs the full decision flow for one request. It always
// produces a result: provider exhaustion and budget overruns land in a
// failed or degraded payload rather than an error. Only invalid input
// and internal faults before the engine starts return an error.
func execute(ctx context.Context, rt *Runtime, threadKey string, cmd ClassifyCommand) (*result, error) {
	hits := memoryShortcuts(ctx, rt, cmd.Lines)

	var outcome *engine.Outcome
	var parsed engine.ParsedPayload
	degraded := false

	if len(hits) == len(cmd.Lines) {
		rt.Logger.Info("all lines resolved from memory", "lines", len(cmd.Lines))
	} else {
		system, err := rt.Prompts.Compose(ctx, prompts.StageClassify)
		if err != nil {
			return nil, fmt.Errorf("compose prompt: %w", err)
		}

		outcome, err = rt.Engine.Run(ctx, system, renderRequest(cmd))
		if err != nil {
			if errors.Is(err, engine.ErrNoProviders) {
				rt.Logger.Error("no usable provider", "thread_key", threadKey, "error", err)
				return failedResult(ctx, rt, threadKey, hits, "no inference provider was reachable"), nil
			}

			rt.Logger.Warn("engine run degraded", "thread_key", threadKey, "error", err)
			degraded = true
		}

		if outcome != nil {
			degraded = degraded || outcome.Degraded
			parsed = engine.ParsePayload(outcome.Text)
		}
	}

	candidates := engine.MergeMemory(parsed.Candidates, hits)

	report := rt.Gates.Evaluate(ctx, gates.Input{
		ThreadKey:  threadKey,
		Candidates: candidates,
		Text:       summaryText(parsed, outcome),
	})

	status := StatusReview
	if report.Attempt.Escalate {
		status = StatusEscalated
	}

	recordCodes(ctx, rt, threadKey, report.Candidates)
	learn(ctx, rt, cmd.Lines, report.Candidates)

	return &result{
		Status:   status,
		Summary:  report.Text,
		Report:   report,
		Outcome:  outcome,
		Degraded: degraded,
	}, nil
}

// failedResult still runs the gate pipeline so the attempt counter
// advances and any memory-resolved lines are validated; the manual path
// receives a complete audit trail even when no provider answered.
func failedResult(ctx context.Context, rt *Runtime, threadKey string, hits map[int]engine.Candidate, reason string) *result {
	candidates := engine.MergeMemory(nil, hits)

	report := rt.Gates.Evaluate(ctx, gates.Input{
		ThreadKey:  threadKey,
		Candidates: candidates,
		Text:       "",
	})
	report.BlockingIssues = append(report.BlockingIssues, reason)

	return &result{
		Status:   StatusFailed,
		Summary:  "",
		Report:   report,
		Degraded: true,
	}
}

// memoryShortcuts resolves each line against classification memory
// before the model is consulted. Lookup failures are logged and the
// line falls through to the model.
func memoryShortcuts(ctx context.Context, rt *Runtime, lines []ProductLine) map[int]engine.Candidate {
	hits := make(map[int]engine.Candidate)

	for i, line := range lines {
		hit, err := rt.Memory.Lookup(ctx, line.Description)
		if err != nil {
			if !errors.Is(err, memory.ErrNotFound) {
				rt.Logger.Warn("memory lookup failed", "line", i, "error", err)
			}
			continue
		}

		hits[i] = engine.Candidate{
			LineIndex:  i,
			Code:       hit.Code,
			Confidence: engine.Confidence(hit.Confidence).Normalize(),
			Source:     engine.SourceMemory,
			Reasoning:  fmt.Sprintf("identical description classified %d times before", hit.Hits),
		}
	}

	return hits
}

// renderRequest builds the user prompt: free-text context followed by
// the numbered product lines with their declared attributes.
func renderRequest(cmd ClassifyCommand) string {
	var sb strings.Builder

	if cmd.Context != "" {
		sb.WriteString(cmd.Context)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Product lines to classify:\n")
	for i, line := range cmd.Lines {
		sb.WriteString(fmt.Sprintf("%d. %s", i, line.Description))
		if line.Quantity != nil {
			sb.WriteString(fmt.Sprintf(" (quantity: %g)", *line.Quantity))
		}
		if line.DeclaredOrigin != nil {
			sb.WriteString(fmt.Sprintf(" (declared origin: %s)", *line.DeclaredOrigin))
		}
		if line.DeclaredValue != nil {
			sb.WriteString(fmt.Sprintf(" (declared value: %s)", *line.DeclaredValue))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func summaryText(parsed engine.ParsedPayload, outcome *engine.Outcome) string {
	if parsed.Summary != "" {
		return parsed.Summary
	}
	if outcome != nil {
		return outcome.Text
	}
	return ""
}

// recordCodes appends the produced codes to the thread's attempt record
// so later retries and the escalation path see the full history.
// Best effort: failure never fails the request.
func recordCodes(ctx context.Context, rt *Runtime, threadKey string, candidates []engine.Candidate) {
	if threadKey == "" || len(candidates) == 0 {
		return
	}

	codes := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.Code != "" {
			codes = append(codes, c.Code)
		}
	}

	if err := rt.Attempts.RecordCodes(ctx, threadKey, codes); err != nil {
		rt.Logger.Warn("recording prior codes failed", "thread_key", threadKey, "error", err)
	}
}

// learn feeds valid, confident, uncorrected model results back into
// classification memory. Runs strictly after the gate pipeline and is
// best effort: failure never fails the request.
func learn(ctx context.Context, rt *Runtime, lines []ProductLine, candidates []engine.Candidate) {
	for _, c := range candidates {
		if c.Source != engine.SourceModel || !c.Valid || c.Corrected {
			continue
		}
		if c.Confidence != engine.ConfidenceHigh {
			continue
		}
		if c.LineIndex < 0 || c.LineIndex >= len(lines) {
			continue
		}

		description := lines[c.LineIndex].Description
		if _, err := rt.Memory.Learn(ctx, description, c.Code, string(c.Confidence)); err != nil {
			rt.Logger.Warn("memory learn failed", "line", c.LineIndex, "error", err)
		}
	}
}
