// Package attempts implements the thread attempt-record store for Quay.
// It is the only state shared across concurrent classification requests:
// a counter per thread key whose increment must be atomic so racing
// duplicate submissions cannot push attempts past the configured maximum.
package attempts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"time"
)

// ErrNotFound is returned when no record exists for a thread key.
var ErrNotFound = errors.New("attempt record not found")

// Record tracks automated classification attempts for one thread key.
// Records are retained after escalation so the full history stays
// available to the manual path.
type Record struct {
	Key        string    `json:"key"`
	Attempts   int       `json:"attempts"`
	PriorCodes []string  `json:"prior_codes"`
	FirstSeen  time.Time `json:"first_seen"`
	LastSeen   time.Time `json:"last_seen"`
}

// Store defines the attempt-record contract. Increment must be a single
// atomic conditional operation: it creates the record on first use, bumps
// the counter while attempts < max, and refuses further increments once
// the maximum is reached.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)
	Increment(ctx context.Context, key string, max int) (*Record, bool, error)
	RecordCodes(ctx context.Context, key string, codes []string) error
}

var (
	replyPrefixRegex   = regexp.MustCompile(`(?i)^(re|fw|fwd|aw|sv)\s*:\s*`)
	trackingTokenRegex = regexp.MustCompile(`\[#[^\]]*\]|\{#[^}]*\}`)
	whitespaceRegex    = regexp.MustCompile(`\s+`)
)

// ThreadKey derives a stable identifier for "the same underlying question"
// from a request subject: reply/forward prefixes and machine-generated
// tracking tokens are stripped, the remainder is lowercased and collapsed,
// and the result hashed.
func ThreadKey(subject string) string {
	s := strings.TrimSpace(subject)

	for {
		stripped := replyPrefixRegex.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = strings.TrimSpace(stripped)
	}

	s = trackingTokenRegex.ReplaceAllString(s, "")
	s = whitespaceRegex.ReplaceAllString(strings.ToLower(s), " ")
	s = strings.TrimSpace(s)

	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:16])
}
