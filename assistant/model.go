package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/omisdami/bankassist/config"
	"github.com/omisdami/bankassist/core"
)

// ToolCall is a single tool invocation requested by the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Part is one piece of a model response, either text or a tool call.
type Part struct {
	Text string
	Call *ToolCall
}

// ModelResponse holds the ordered parts of one model turn.
type ModelResponse struct {
	Parts []Part
}

// Model produces one response for a system prompt and conversation history.
type Model interface {
	Generate(ctx context.Context, system string, history []core.Message) (*ModelResponse, error)
}

// AnthropicModel talks to the Anthropic messages API with the banking tools
// attached to every request.
type AnthropicModel struct {
	client anthropic.Client
	cfg    config.ModelConfig
	tools  []anthropic.ToolUnionParam
}

// NewAnthropicModel builds a model client. The API key comes from the
// environment, which is how the SDK wants it.
func NewAnthropicModel(cfg config.ModelConfig) *AnthropicModel {
	return &AnthropicModel{
		client: anthropic.NewClient(),
		cfg:    cfg,
		tools:  toolUnionParams(core.BankingToolDefinitions()),
	}
}

func (m *AnthropicModel) Generate(ctx context.Context, system string, history []core.Message) (*ModelResponse, error) {
	messages := make([]anthropic.MessageParam, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case core.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case core.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	resp, err := m.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(m.cfg.Name),
		MaxTokens: m.cfg.MaxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  messages,
		Tools:     m.tools,
	})
	if err != nil {
		return nil, fmt.Errorf("generating response: %w", err)
	}

	out := &ModelResponse{}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			out.Parts = append(out.Parts, Part{Text: block.Text})
		case "tool_use":
			args := map[string]any{}
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &args); err != nil {
					return nil, fmt.Errorf("decoding arguments for %s: %w", block.Name, err)
				}
			}
			out.Parts = append(out.Parts, Part{Call: &ToolCall{
				ID:   block.ID,
				Name: block.Name,
				Args: args,
			}})
		}
	}
	return out, nil
}

func toolUnionParams(defs []core.ToolDefinition) []anthropic.ToolUnionParam {
	params := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		params = append(params, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        def.Name,
				Description: anthropic.String(def.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: def.InputSchema["properties"],
				},
			},
		})
	}
	return params
}
