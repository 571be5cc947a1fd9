package classifications

import (
	"encoding/json"
	"slices"
)

// Status represents the review lifecycle state of a classification.
type Status string

// Valid lifecycle states. Every engine run lands in review, escalated,
// or failed; only a human moves a classification to complete.
const (
	StatusReview    Status = "review"
	StatusEscalated Status = "escalated"
	StatusComplete  Status = "complete"
	StatusFailed    Status = "failed"
)

var statuses = []Status{
	StatusReview,
	StatusEscalated,
	StatusComplete,
	StatusFailed,
}

// Statuses returns the list of valid lifecycle states.
func Statuses() []Status {
	return statuses
}

// UnmarshalJSON validates that the decoded string is a known status value.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := Status(raw)
	if !slices.Contains(statuses, v) {
		return ErrInvalidStatusValue
	}
	*s = v
	return nil
}

// ParseStatus validates a string as a known lifecycle state.
// Returns ErrInvalidStatusValue if the value is not recognized.
func ParseStatus(s string) (Status, error) {
	v := Status(s)
	if !slices.Contains(statuses, v) {
		return "", ErrInvalidStatusValue
	}
	return v, nil
}
