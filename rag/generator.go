package rag

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/omisdami/bankassist/config"
)

// AnthropicGenerator implements Generator with the Claude API.
type AnthropicGenerator struct {
	client anthropic.Client
	cfg    config.ModelConfig
}

// NewAnthropicGenerator creates a generator backed by the given client.
func NewAnthropicGenerator(client anthropic.Client, cfg config.ModelConfig) *AnthropicGenerator {
	return &AnthropicGenerator{client: client, cfg: cfg}
}

// Complete runs a single completion with no tools.
func (g *AnthropicGenerator) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.cfg.Name),
		MaxTokens: g.cfg.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}
