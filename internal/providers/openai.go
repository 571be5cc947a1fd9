package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/quaydesk/quay/internal/metrics"
)

// OpenAIClient adapts any OpenAI-compatible chat completion backend to the
// ModelClient contract. It serves as the primary, cost-optimized provider.
type OpenAIClient struct {
	client *openai.Client
	name   string
	model  string
}

// NewOpenAI creates an adapter for an OpenAI-compatible endpoint. An empty
// baseURL uses the hosted API default.
func NewOpenAI(name, baseURL, token, model string) (*OpenAIClient, error) {
	if token == "" {
		return nil, fmt.Errorf("provider %s: token required", name)
	}
	if model == "" {
		return nil, fmt.Errorf("provider %s: model required", name)
	}

	cfg := openai.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		name:   name,
		model:  model,
	}, nil
}

func (c *OpenAIClient) Name() string {
	return c.name
}

func (c *OpenAIClient) Model() string {
	return c.model
}

func (c *OpenAIClient) Complete(
	ctx context.Context,
	transcript []Message,
	tools []ToolSchema,
) (*Reply, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAIMessages(transcript),
		Tools:    toOpenAITools(tools),
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	metrics.ProviderLatency.WithLabelValues(c.name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ProviderCalls.WithLabelValues(c.name, "error").Inc()
		return nil, classifyOpenAIError(c.name, err)
	}

	if len(resp.Choices) == 0 {
		metrics.ProviderCalls.WithLabelValues(c.name, "empty").Inc()
		return nil, fmt.Errorf("provider %s: no choices returned", c.name)
	}

	metrics.ProviderCalls.WithLabelValues(c.name, "ok").Inc()
	metrics.ProviderTokens.WithLabelValues(c.name, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.ProviderTokens.WithLabelValues(c.name, "completion").Add(float64(resp.Usage.CompletionTokens))

	choice := resp.Choices[0].Message
	reply := &Reply{
		Text: choice.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}

	for _, tc := range choice.ToolCalls {
		reply.ToolCalls = append(reply.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: []byte(tc.Function.Arguments),
		})
	}

	return reply, nil
}

func toOpenAIMessages(transcript []Message) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(transcript))

	for _, m := range transcript {
		msg := openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}

		switch m.Role {
		case RoleAssistant:
			for _, tc := range m.ToolCalls {
				msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: string(tc.Arguments),
					},
				})
			}
		case RoleTool:
			msg.ToolCallID = m.ToolCallID
			msg.Name = m.ToolName
		}

		messages = append(messages, msg)
	}

	return messages
}

func toOpenAITools(tools []ToolSchema) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}

	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

func classifyOpenAIError(name string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return fmt.Errorf("%w: %s auth: %v", ErrUnavailable, name, err)
		case apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500:
			return fmt.Errorf("%w: %s: %v", ErrUnavailable, name, err)
		}
		return fmt.Errorf("provider %s: %w", name, err)
	}

	// Transport-level failures (connection refused, DNS, timeouts).
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, name, err)
}
