// Package tariffs implements the tariff reference dataset domain for Quay.
// It provides types, data access, and HTTP handlers for the harmonized
// tariff schedule that classification candidates are validated against.
package tariffs

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Code represents one entry in the harmonized tariff schedule. The code
// value is stored digits-only; hierarchy is positional (2-digit chapter,
// 4-digit heading, 6-digit subheading, 8-10 digit national line).
type Code struct {
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Unit        *string   `json:"unit"`
	DutyRate    *string   `json:"duty_rate"`
	Chapter     string    `json:"chapter"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Heading returns the 4-digit heading prefix of the code.
func (c *Code) Heading() string {
	if len(c.Code) < 4 {
		return c.Code
	}
	return c.Code[:4]
}

// Measure represents a regulatory trade measure attached to a code prefix
// (licensing requirements, quotas, anti-dumping duties, embargo flags).
type Measure struct {
	ID          uuid.UUID `json:"id"`
	CodePrefix  string    `json:"code_prefix"`
	MeasureType string    `json:"measure_type"`
	Description string    `json:"description"`
}

// NormalizeCode strips formatting separators from a tariff code so that
// "8516.71.00" and "8516 71 00" both resolve to "85167100".
func NormalizeCode(code string) string {
	var sb strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
