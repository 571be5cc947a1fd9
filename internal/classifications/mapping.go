package classifications

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/quaydesk/quay/internal/engine"
	"github.com/quaydesk/quay/internal/gates"
	"github.com/quaydesk/quay/pkg/query"
	"github.com/quaydesk/quay/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "classifications", "c").
	Project("id", "ID").
	Project("thread_key", "ThreadKey").
	Project("subject", "Subject").
	Project("status", "Status").
	Project("summary", "Summary").
	Project("candidates", "Candidates").
	Project("blocking_issues", "BlockingIssues").
	Project("gate_results", "Gates").
	Project("attempt", "Attempt").
	Project("provider_name", "ProviderName").
	Project("model_name", "ModelName").
	Project("rounds", "Rounds").
	Project("degraded", "Degraded").
	Project("classified_at", "ClassifiedAt").
	Project("validated_by", "ValidatedBy").
	Project("validated_at", "ValidatedAt")

var defaultSort = query.SortField{
	Field:      "ClassifiedAt",
	Descending: true,
}

const returningColumns = `id, thread_key, subject, status, summary, candidates,
		blocking_issues, gate_results, attempt, provider_name, model_name,
		rounds, degraded, classified_at, validated_by, validated_at`

// Filters contains optional filtering criteria for classification queries.
// Nil fields are ignored. All fields use exact matching.
type Filters struct {
	Status      *Status `json:"status,omitempty"`
	ThreadKey   *string `json:"thread_key,omitempty"`
	Degraded    *bool   `json:"degraded,omitempty"`
	ValidatedBy *string `json:"validated_by,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("ThreadKey", f.ThreadKey).
		WhereEquals("Degraded", f.Degraded).
		WhereEquals("ValidatedBy", f.ValidatedBy)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		if status, err := ParseStatus(s); err == nil {
			f.Status = &status
		}
	}

	if t := values.Get("thread_key"); t != "" {
		f.ThreadKey = &t
	}

	if d := values.Get("degraded"); d != "" {
		if v, err := strconv.ParseBool(d); err == nil {
			f.Degraded = &v
		}
	}

	if v := values.Get("validated_by"); v != "" {
		f.ValidatedBy = &v
	}

	return f
}

func scanClassification(s repository.Scanner) (Classification, error) {
	var c Classification
	var candidatesRaw, issuesRaw, gatesRaw []byte

	err := s.Scan(
		&c.ID,
		&c.ThreadKey,
		&c.Subject,
		&c.Status,
		&c.Summary,
		&candidatesRaw,
		&issuesRaw,
		&gatesRaw,
		&c.Attempt,
		&c.ProviderName,
		&c.ModelName,
		&c.Rounds,
		&c.Degraded,
		&c.ClassifiedAt,
		&c.ValidatedBy,
		&c.ValidatedAt,
	)

	if err != nil {
		return c, err
	}

	if len(candidatesRaw) > 0 {
		if err := json.Unmarshal(candidatesRaw, &c.Candidates); err != nil {
			return c, fmt.Errorf("unmarshal candidates: %w", err)
		}
	}

	if len(issuesRaw) > 0 {
		if err := json.Unmarshal(issuesRaw, &c.BlockingIssues); err != nil {
			return c, fmt.Errorf("unmarshal blocking_issues: %w", err)
		}
	}

	if len(gatesRaw) > 0 {
		if err := json.Unmarshal(gatesRaw, &c.Gates); err != nil {
			return c, fmt.Errorf("unmarshal gate_results: %w", err)
		}
	}

	if c.Candidates == nil {
		c.Candidates = []engine.Candidate{}
	}
	if c.BlockingIssues == nil {
		c.BlockingIssues = []string{}
	}
	if c.Gates == nil {
		c.Gates = []gates.Result{}
	}

	return c, nil
}
