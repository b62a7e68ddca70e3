package anthropic

import (
	"encoding/json"
	"errors"

	"github.com/Cyclone1070/commander/internal/provider"
	"github.com/Cyclone1070/commander/internal/tool"
	"github.com/anthropics/anthropic-sdk-go"
)

// toAnthropicMessages converts non-system turns. Consecutive tool results
// are folded into one user turn, which the API requires after a tool_use turn.
func toAnthropicMessages(messages []provider.Message) []anthropic.MessageParam {
	result := make([]anthropic.MessageParam, 0, len(messages))
	var pending []anthropic.ContentBlockParamUnion

	flush := func() {
		if len(pending) > 0 {
			result = append(result, anthropic.NewUserMessage(pending...))
			pending = nil
		}
	}

	for _, msg := range messages {
		if msg.Role == provider.RoleTool {
			pending = append(pending, anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false))
			continue
		}
		flush()

		switch msg.Role {
		case provider.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				input := tc.Arguments
				if input == nil {
					input = map[string]any{}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropic.NewTextBlock(""))
			}
			result = append(result, anthropic.NewAssistantMessage(blocks...))
		default:
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	flush()

	return result
}

func toAnthropicTools(decls []tool.Declaration) []anthropic.ToolUnionParam {
	result := make([]anthropic.ToolUnionParam, 0, len(decls))
	for _, d := range decls {
		schema := anthropic.ToolInputSchemaParam{Properties: map[string]any{}}
		if d.Parameters != nil {
			props := make(map[string]any, len(d.Parameters.Properties))
			for name, prop := range d.Parameters.Properties {
				props[name] = prop
			}
			schema.Properties = props
			schema.Required = d.Parameters.Required
		}

		t := anthropic.ToolUnionParamOfTool(schema, d.Name)
		if d.Description != "" {
			t.OfTool.Description = anthropic.String(d.Description)
		}
		result = append(result, t)
	}
	return result
}

func fromAnthropicMessage(msg *anthropic.Message) (*provider.Response, error) {
	if msg == nil || len(msg.Content) == 0 {
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeEmptyResponse,
			Message: "no content blocks in response",
		}
	}

	out := &provider.Response{
		Usage: provider.Usage{
			PromptUnits:     int(msg.Usage.InputTokens),
			CompletionUnits: int(msg.Usage.OutputTokens),
		},
	}

	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			out.Content += b.Text
		case anthropic.ToolUseBlock:
			var args map[string]any
			_ = json.Unmarshal(b.Input, &args)
			out.ToolCalls = append(out.ToolCalls, provider.ToolCall{
				ID:        b.ID,
				Name:      b.Name,
				Arguments: args,
			})
		}
	}

	return out, nil
}

func mapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return provider.FromStatus(apiErr.StatusCode, apiErr.Error(), err)
	}
	return provider.Network(err)
}
