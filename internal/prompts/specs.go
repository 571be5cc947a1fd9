package prompts

const classifySpec = `When your analysis is complete, respond without requesting any further tools, with a JSON object matching this exact structure:

{
  "summary": "<explanation>",
  "candidates": [
    {
      "line_index": 0,
      "code": "<digits>",
      "description": "<schedule description>",
      "confidence": "<HIGH|MEDIUM|LOW>",
      "reasoning": "<explanation>"
    }
  ]
}

Field constraints:
- summary: Brief overall account of the classification, including any
  lines that could not be resolved and why.
- candidates: One entry per numbered product line, in line order. Every
  line in the request must appear exactly once.
- line_index: The zero-based index of the product line this entry
  classifies.
- code: The assigned tariff code, digits only, no separators. Use the
  most specific level the description supports.
- description: The schedule description for the assigned code as
  returned by the lookup tools.
- confidence: Categorical certainty of the assignment.
  HIGH = the description maps unambiguously to one code.
  MEDIUM = the code is defensible but an adjacent code is plausible.
  LOW = the description is too vague for a confident assignment.
- reasoning: How the code was reached, naming the distinguishing
  attributes of the product that drove the choice.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Confirm every code with lookup_tariff_code before including it
- Never output a code the lookup tools could not confirm without
  lowering confidence and saying so in the reasoning`

const reviewSpec = `Respond with a JSON object matching this exact structure:

{
  "summary": "<broker-facing summary>",
  "action_items": ["<item1>", "<item2>"]
}

Field constraints:
- summary: Plain-language account of the classification result suitable
  for inclusion in a reply to the requesting broker.
- action_items: Concrete follow-ups the broker must perform, such as
  verifying a license requirement or supplying missing product detail.
  Empty array when nothing is required.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Never promise duty outcomes or clearance results`

var specs = map[Stage]string{
	StageClassify: classifySpec,
	StageReview:   reviewSpec,
}

// Spec returns the hardcoded response specification for an engine stage.
// Specifications define the expected output format and behavioral constraints.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
