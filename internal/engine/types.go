package engine

import (
	"time"

	"github.com/quaydesk/quay/internal/providers"
)

// Confidence is the model-reported certainty tier for a candidate.
type Confidence string

// Confidence tiers, ordered from most to least certain.
const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Downgrade returns the next lower confidence tier. LOW stays LOW.
func (c Confidence) Downgrade() Confidence {
	switch c {
	case ConfidenceHigh:
		return ConfidenceMedium
	case ConfidenceMedium:
		return ConfidenceLow
	default:
		return ConfidenceLow
	}
}

// Normalize maps unknown or empty confidence strings to LOW.
func (c Confidence) Normalize() Confidence {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return c
	default:
		return ConfidenceLow
	}
}

// Candidate source values.
const (
	SourceModel  = "model"
	SourceMemory = "memory"
)

// Candidate is one proposed classification for a product line. It is
// produced by the parser or a memory shortcut and then mutated only by
// the gate pipeline, single-writer.
type Candidate struct {
	LineIndex     int        `json:"line_index"`
	Code          string     `json:"code"`
	Description   string     `json:"description"`
	Confidence    Confidence `json:"confidence"`
	Source        string     `json:"source"`
	Reasoning     string     `json:"reasoning,omitempty"`
	OriginalCode  string     `json:"original_code,omitempty"`
	Corrected     bool       `json:"corrected"`
	Valid         bool       `json:"valid"`
	InvalidReason string     `json:"invalid_reason,omitempty"`
}

// ParsedPayload is the structured content extracted from the model's
// final text. Empty when the text carried no recoverable JSON.
type ParsedPayload struct {
	Summary    string      `json:"summary"`
	Candidates []Candidate `json:"candidates"`
}

// Invocation records one tool execution within a round.
type Invocation struct {
	Tool      string        `json:"tool"`
	Arguments string        `json:"arguments"`
	Result    string        `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Round is the append-only record of one loop iteration.
type Round struct {
	Index       int          `json:"index"`
	Provider    string       `json:"provider"`
	Invocations []Invocation `json:"invocations,omitempty"`
	Text        string       `json:"text,omitempty"`
}

// Outcome is the orchestrator's result: the final free text plus the
// audit trail of every round. Degraded marks results cut short by the
// round limit, the time budget, or a mid-flight provider failure.
type Outcome struct {
	Text     string          `json:"text"`
	Rounds   []Round         `json:"rounds"`
	Provider string          `json:"provider"`
	Model    string          `json:"model"`
	Degraded bool            `json:"degraded"`
	Elapsed  time.Duration   `json:"elapsed"`
	Usage    providers.Usage `json:"usage"`
}
