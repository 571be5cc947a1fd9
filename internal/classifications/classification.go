// Package classifications implements the classification domain for Quay.
// It provides types, data access, and business logic for running the
// decision engine over trade document requests, applying the validation
// gates, and managing the human review lifecycle of the results.
package classifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/quaydesk/quay/internal/engine"
	"github.com/quaydesk/quay/internal/gates"
)

// ProductLine is one item to classify. Quantity, origin, and value are
// declared context only and never influence the assigned code.
type ProductLine struct {
	Description    string   `json:"description"`
	Quantity       *float64 `json:"quantity,omitempty"`
	DeclaredOrigin *string  `json:"declared_origin,omitempty"`
	DeclaredValue  *string  `json:"declared_value,omitempty"`
}

// ClassifyCommand carries one classification request: a subject for
// thread tracking, free-text context, and the product lines to resolve.
type ClassifyCommand struct {
	Subject string        `json:"subject"`
	Context string        `json:"context"`
	Lines   []ProductLine `json:"lines"`
}

// Classification is the stored final payload for one request: cleaned
// summary text, the validated candidate list, the gate audit trail, and
// review lifecycle metadata.
type Classification struct {
	ID             uuid.UUID          `json:"id"`
	ThreadKey      string             `json:"thread_key"`
	Subject        string             `json:"subject"`
	Status         Status             `json:"status"`
	Summary        string             `json:"summary"`
	Candidates     []engine.Candidate `json:"candidates"`
	BlockingIssues []string           `json:"blocking_issues"`
	Gates          []gates.Result     `json:"gates"`
	Attempt        int                `json:"attempt"`
	ProviderName   string             `json:"provider_name"`
	ModelName      string             `json:"model_name"`
	Rounds         int                `json:"rounds"`
	Degraded       bool               `json:"degraded"`
	ClassifiedAt   time.Time          `json:"classified_at"`
	ValidatedBy    *string            `json:"validated_by"`
	ValidatedAt    *time.Time         `json:"validated_at"`
}

// ValidateCommand carries the data needed to confirm a classification.
// ValidatedBy identifies the broker who reviewed the result.
type ValidateCommand struct {
	ValidatedBy string `json:"validated_by"`
}

// UpdateCommand carries a manual correction of a classification result.
// Candidates and Summary overwrite the engine-produced values.
// UpdatedBy identifies the broker who made the correction.
type UpdateCommand struct {
	Candidates []engine.Candidate `json:"candidates"`
	Summary    string             `json:"summary"`
	UpdatedBy  string             `json:"updated_by"`
}
