// Package providers defines the normalized model client contract and the
// adapters for each inference backend. Provider-specific request and
// response shapes never leak past an adapter: the engine works entirely
// in terms of Message, Reply, and ToolSchema.
package providers

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrUnavailable wraps network and auth failures from a provider backend.
// The engine treats it as grounds for a one-time provider switch at round 0.
var ErrUnavailable = errors.New("provider unavailable")

// Role identifies the author of a transcript message.
type Role string

// Transcript message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model-requested capability invocation.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Message is one provider-agnostic transcript entry. Assistant messages may
// carry tool calls; tool messages carry the result for a prior call ID.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
}

// Usage carries token accounting for a single call, zero when the backend
// does not report it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Add accumulates usage from another call.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
}

// Reply is the normalized result of one inference call: free text plus
// zero or more requested tool invocations.
type Reply struct {
	Text      string     `json:"text"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Usage     Usage      `json:"usage"`
}

// ToolSchema describes one callable capability in the form providers expect:
// a name, a description, and a JSON Schema for the arguments.
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ModelClient is the uniform contract over one inference backend.
type ModelClient interface {
	// Name identifies the provider for logs, metrics, and audit records.
	Name() string
	// Model returns the configured model identifier.
	Model() string
	// Complete sends the full transcript and tool schemas to the backend
	// and returns its normalized reply.
	Complete(ctx context.Context, transcript []Message, tools []ToolSchema) (*Reply, error)
}
