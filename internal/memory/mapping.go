package memory

import (
	"net/url"

	"github.com/quaydesk/quay/pkg/query"
	"github.com/quaydesk/quay/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "memory_hits", "m").
	Project("id", "ID").
	Project("description", "Description").
	Project("code", "Code").
	Project("confidence", "Confidence").
	Project("hits", "Hits").
	Project("last_used", "LastUsed").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "LastUsed",
	Descending: true,
}

// Filters contains optional filtering criteria for memory queries.
// Nil fields are ignored.
type Filters struct {
	Code       *string `json:"code,omitempty"`
	Confidence *string `json:"confidence,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Code", f.Code).
		WhereEquals("Confidence", f.Confidence)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("code"); c != "" {
		f.Code = &c
	}

	if c := values.Get("confidence"); c != "" {
		f.Confidence = &c
	}

	return f
}

func scanHit(s repository.Scanner) (Hit, error) {
	var h Hit
	err := s.Scan(
		&h.ID,
		&h.Description,
		&h.Code,
		&h.Confidence,
		&h.Hits,
		&h.LastUsed,
		&h.CreatedAt,
	)
	return h, err
}
