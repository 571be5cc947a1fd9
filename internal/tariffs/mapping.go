package tariffs

import (
	"net/url"

	"github.com/quaydesk/quay/pkg/query"
	"github.com/quaydesk/quay/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "tariff_codes", "t").
	Project("code", "Code").
	Project("description", "Description").
	Project("unit", "Unit").
	Project("duty_rate", "DutyRate").
	Project("chapter", "Chapter").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "Code",
	Descending: false,
}

// Filters contains optional filtering criteria for tariff queries.
// Nil fields are ignored. Prefix matches the start of the code.
type Filters struct {
	Chapter *string `json:"chapter,omitempty"`
	Prefix  *string `json:"prefix,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.WhereEquals("Chapter", f.Chapter)
	if f.Prefix != nil && *f.Prefix != "" {
		prefix := NormalizeCode(*f.Prefix)
		b.WherePrefix("Code", &prefix)
	}
	return b
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("chapter"); c != "" {
		f.Chapter = &c
	}

	if p := values.Get("prefix"); p != "" {
		f.Prefix = &p
	}

	return f
}

func scanCode(s repository.Scanner) (Code, error) {
	var c Code
	err := s.Scan(
		&c.Code,
		&c.Description,
		&c.Unit,
		&c.DutyRate,
		&c.Chapter,
		&c.UpdatedAt,
	)
	return c, err
}

func scanMeasure(s repository.Scanner) (Measure, error) {
	var m Measure
	err := s.Scan(
		&m.ID,
		&m.CodePrefix,
		&m.MeasureType,
		&m.Description,
	)
	return m, err
}
