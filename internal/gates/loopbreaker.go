package gates

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quaydesk/quay/internal/attempts"
)

// GateLoopBreaker identifies the loop breaker stage in audit records
// and metrics.
const GateLoopBreaker = "loop_breaker"

// DefaultMaxAttempts is the attempt ceiling when none is configured.
const DefaultMaxAttempts = 2

// LoopBreakerGate counts automated attempts per thread key and signals
// escalation once the ceiling is reached. Escalation is a control
// signal, not an error: the report still carries the full prior-code
// history for the manual path.
type LoopBreakerGate struct {
	store  attempts.Store
	max    int
	logger *slog.Logger
}

// NewLoopBreakerGate creates the gate. max <= 0 falls back to
// DefaultMaxAttempts.
func NewLoopBreakerGate(store attempts.Store, max int, logger *slog.Logger) *LoopBreakerGate {
	if max <= 0 {
		max = DefaultMaxAttempts
	}
	return &LoopBreakerGate{
		store:  store,
		max:    max,
		logger: logger.With("system", "gates", "gate", GateLoopBreaker),
	}
}

// Evaluate atomically increments the attempt record for threadKey and
// fills report.Attempt. An empty thread key or a store failure marks the
// gate unevaluated and the request proceeds as a first attempt.
func (g *LoopBreakerGate) Evaluate(ctx context.Context, threadKey string, report *Report) Result {
	result := Result{Gate: GateLoopBreaker, Evaluated: true, Passed: true}

	if threadKey == "" {
		result.Evaluated = false
		result.Findings = append(result.Findings, "no thread key available")
		return result
	}

	record, allowed, err := g.store.Increment(ctx, threadKey, g.max)
	if err != nil {
		g.logger.Error("attempt store failed", "key", threadKey, "error", err)
		result.Evaluated = false
		result.Passed = false
		result.Findings = append(result.Findings, fmt.Sprintf("attempt store error: %v", err))
		return result
	}

	report.Attempt = Attempt{
		Number:     record.Attempts,
		Escalate:   !allowed,
		PriorCodes: record.PriorCodes,
	}

	if !allowed {
		g.logger.Warn("attempt ceiling reached, escalating",
			"key", threadKey,
			"attempts", record.Attempts,
			"prior_codes", len(record.PriorCodes))

		result.Passed = false
		result.Blocking = true
		result.Findings = append(result.Findings,
			fmt.Sprintf("attempt %d of %d: automated retries exhausted, escalation required", record.Attempts, g.max))
		return result
	}

	if record.Attempts > 1 {
		result.Findings = append(result.Findings,
			fmt.Sprintf("attempt %d of %d for this thread", record.Attempts, g.max))
	}

	return result
}
