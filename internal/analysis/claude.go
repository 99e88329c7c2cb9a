package analysis

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
)

const (
	// DefaultClaudeModel answers analysis prompts on the Claude backend
	DefaultClaudeModel = "claude-3-5-haiku-latest"

	claudeMaxTokens = 4096
)

// ClaudeClient generates analysis text with the Anthropic messages API
type ClaudeClient struct {
	client *anthropic.Client
	model  string
}

// NewClaudeClient creates a Claude text backend
func NewClaudeClient(apiKey, model, baseURL string) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultClaudeModel
	}

	return &ClaudeClient{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

// Generate returns the text answer to prompt
func (c *ClaudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(prompt),
				},
			},
		},
		MaxTokens: claudeMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("claude request failed: %w", err)
	}

	if len(resp.Content) > 0 && resp.Content[0].Text != nil {
		return *resp.Content[0].Text, nil
	}
	return "", nil
}
