package engine

import "errors"

var (
	// ErrNoProviders signals that the primary provider failed and the
	// secondary either failed as well or was not configured. Callers must
	// route the request to a manual path, never treat it as success.
	ErrNoProviders = errors.New("no usable inference provider")

	// ErrEmptyPrompt signals a run invoked without a system or user prompt.
	ErrEmptyPrompt = errors.New("prompt is empty")
)

const budgetExceededResult = `{"error":"budget exceeded","detail":"tool budget for this request was exhausted before this invocation ran"}`
