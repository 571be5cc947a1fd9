package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/quaydesk/quay/internal/metrics"
)

// OllamaClient adapts a local Ollama backend to the ModelClient contract.
// It serves as the secondary fallback provider: slower, but available when
// the hosted primary is unreachable.
type OllamaClient struct {
	llm   *ollama.LLM
	name  string
	model string
}

// NewOllama creates an adapter for a local Ollama server.
func NewOllama(name, serverURL, model string) (*OllamaClient, error) {
	if model == "" {
		return nil, fmt.Errorf("provider %s: model required", name)
	}

	opts := []ollama.Option{ollama.WithModel(model)}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", name, err)
	}

	return &OllamaClient{
		llm:   llm,
		name:  name,
		model: model,
	}, nil
}

func (c *OllamaClient) Name() string {
	return c.name
}

func (c *OllamaClient) Model() string {
	return c.model
}

func (c *OllamaClient) Complete(
	ctx context.Context,
	transcript []Message,
	tools []ToolSchema,
) (*Reply, error) {
	content := toLangchainMessages(transcript)

	var opts []llms.CallOption
	if len(tools) > 0 {
		opts = append(opts, llms.WithTools(toLangchainTools(tools)))
	}

	start := time.Now()
	resp, err := c.llm.GenerateContent(ctx, content, opts...)
	metrics.ProviderLatency.WithLabelValues(c.name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ProviderCalls.WithLabelValues(c.name, "error").Inc()
		// Ollama failures are transport-level: the server is local and
		// either reachable or not.
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, c.name, err)
	}

	if len(resp.Choices) == 0 {
		metrics.ProviderCalls.WithLabelValues(c.name, "empty").Inc()
		return nil, fmt.Errorf("provider %s: no choices returned", c.name)
	}

	metrics.ProviderCalls.WithLabelValues(c.name, "ok").Inc()

	choice := resp.Choices[0]
	reply := &Reply{
		Text:  choice.Content,
		Usage: usageFromGenerationInfo(choice.GenerationInfo),
	}

	metrics.ProviderTokens.WithLabelValues(c.name, "prompt").Add(float64(reply.Usage.PromptTokens))
	metrics.ProviderTokens.WithLabelValues(c.name, "completion").Add(float64(reply.Usage.CompletionTokens))

	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		reply.ToolCalls = append(reply.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.FunctionCall.Name,
			Arguments: []byte(tc.FunctionCall.Arguments),
		})
	}

	return reply, nil
}

func toLangchainMessages(transcript []Message) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(transcript))

	for _, m := range transcript {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		case RoleUser:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		case RoleAssistant:
			mc := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if m.Content != "" {
				mc.Parts = append(mc.Parts, llms.TextPart(m.Content))
			}
			for _, tc := range m.ToolCalls {
				mc.Parts = append(mc.Parts, llms.ToolCall{
					ID:   tc.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Name,
						Arguments: string(tc.Arguments),
					},
				})
			}
			messages = append(messages, mc)
		case RoleTool:
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: m.ToolCallID,
						Name:       m.ToolName,
						Content:    m.Content,
					},
				},
			})
		}
	}

	return messages
}

func toLangchainTools(tools []ToolSchema) []llms.Tool {
	out := make([]llms.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

func usageFromGenerationInfo(info map[string]any) Usage {
	var u Usage
	if v, ok := info["PromptTokens"].(int); ok {
		u.PromptTokens = v
	}
	if v, ok := info["CompletionTokens"].(int); ok {
		u.CompletionTokens = v
	}
	return u
}
