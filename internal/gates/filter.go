package gates

import (
	"fmt"
	"regexp"
	"sort"
)

// GateContentFilter identifies the content filter stage in audit records
// and metrics.
const GateContentFilter = "content_filter"

type phraseRule struct {
	phrase      string
	pattern     *regexp.Regexp
	replacement string
}

// ContentFilterGate scrubs the final rendered text against a fixed
// phrase table. It is a pure case-insensitive scan and replace with no
// semantic analysis; the phrases found are reported but never block.
type ContentFilterGate struct {
	rules []phraseRule
}

// DefaultPhraseTable maps phrases that must never reach an outbound
// customs document to their safe replacements.
var DefaultPhraseTable = map[string]string{
	"guaranteed to clear customs": "expected to be accepted",
	"legally binding":             "advisory",
	"official ruling":             "classification suggestion",
	"no duty applies":             "duty treatment to be confirmed",
	"cannot be inspected":         "subject to inspection",
}

// NewContentFilterGate compiles the phrase table. Patterns are anchored
// to nothing: any case-insensitive occurrence of a phrase is replaced.
func NewContentFilterGate(table map[string]string) *ContentFilterGate {
	if table == nil {
		table = DefaultPhraseTable
	}

	phrases := make([]string, 0, len(table))
	for phrase := range table {
		phrases = append(phrases, phrase)
	}
	sort.Strings(phrases)

	rules := make([]phraseRule, 0, len(phrases))
	for _, phrase := range phrases {
		rules = append(rules, phraseRule{
			phrase:      phrase,
			pattern:     regexp.MustCompile(`(?i)` + regexp.QuoteMeta(phrase)),
			replacement: table[phrase],
		})
	}

	return &ContentFilterGate{rules: rules}
}

// Evaluate replaces every phrase match in report.Text and records what
// was found. The gate has no external dependencies and cannot fail.
func (g *ContentFilterGate) Evaluate(report *Report) Result {
	result := Result{Gate: GateContentFilter, Evaluated: true, Passed: true}

	for _, rule := range g.rules {
		if !rule.pattern.MatchString(report.Text) {
			continue
		}

		report.Text = rule.pattern.ReplaceAllString(report.Text, rule.replacement)
		report.PhrasesFound = append(report.PhrasesFound, rule.phrase)
		report.Modified = true
		result.Passed = false
		result.Findings = append(result.Findings, fmt.Sprintf("replaced %q", rule.phrase))
	}

	return result
}
