// Package memory implements the classification memory domain for Quay.
// It stores deterministic description-to-code matches learned from
// completed classifications, letting repeat descriptions bypass the
// model entirely.
package memory

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Hit represents a learned exact match between a normalized product
// description and a verified tariff code.
type Hit struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
	Confidence  string    `json:"confidence"`
	Hits        int       `json:"hits"`
	LastUsed    time.Time `json:"last_used"`
	CreatedAt   time.Time `json:"created_at"`
}

// NormalizeDescription lowercases a product description, strips punctuation,
// and collapses whitespace so trivially reworded repeats still match.
func NormalizeDescription(description string) string {
	var sb strings.Builder
	lastSpace := true

	for _, r := range strings.ToLower(description) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || unicode.IsPunct(r):
			if !lastSpace {
				sb.WriteRune(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimSpace(sb.String())
}
