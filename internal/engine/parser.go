package engine

import (
	"strings"

	"github.com/quaydesk/quay/pkg/formatting"
)

// ParsePayload extracts a structured payload from raw model output. It
// tolerates JSON wrapped in code fences, JSON embedded in prose, and
// malformed input, returning an empty payload rather than an error.
// Candidate confidence values are normalized and codes are trimmed.
func ParsePayload(raw string) ParsedPayload {
	payload, err := formatting.Parse[ParsedPayload](raw)
	if err != nil {
		return ParsedPayload{}
	}

	for i := range payload.Candidates {
		c := &payload.Candidates[i]
		c.Code = strings.TrimSpace(c.Code)
		c.Confidence = c.Confidence.Normalize()
		if c.Source == "" {
			c.Source = SourceModel
		}
	}

	return payload
}

// MergeMemory folds deterministic memory hits, resolved before the model
// was invoked, into the parsed candidate list. A memory hit for a line is
// never overridden by a model result for the same line; lines the model
// did not address are filled from memory. A memory hit with an empty code
// yields to the model's candidate.
func MergeMemory(parsed []Candidate, hits map[int]Candidate) []Candidate {
	if len(hits) == 0 {
		return parsed
	}

	merged := make([]Candidate, 0, len(parsed)+len(hits))
	covered := make(map[int]bool, len(hits))

	for _, c := range parsed {
		if hit, ok := hits[c.LineIndex]; ok && hit.Code != "" {
			merged = append(merged, hit)
			covered[c.LineIndex] = true
			continue
		}
		covered[c.LineIndex] = true
		merged = append(merged, c)
	}

	for index, hit := range hits {
		if !covered[index] {
			merged = append(merged, hit)
		}
	}

	sortCandidates(merged)
	return merged
}

func sortCandidates(candidates []Candidate) {
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].LineIndex < candidates[j-1].LineIndex; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
}
