package ollama

import (
	"errors"

	"github.com/Cyclone1070/commander/internal/provider"
	"github.com/Cyclone1070/commander/internal/tool"
	"github.com/google/uuid"
	"github.com/ollama/ollama/api"
)

func toOllamaMessages(messages []provider.Message) []api.Message {
	result := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		m := api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
		if msg.Role == provider.RoleTool {
			m.ToolName = msg.ToolName
		}
		for _, tc := range msg.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, api.ToolCall{
				Function: api.ToolCallFunction{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		result = append(result, m)
	}
	return result
}

func toOllamaTools(decls []tool.Declaration) []api.Tool {
	tools := make([]api.Tool, 0, len(decls))
	for _, d := range decls {
		params := api.ToolFunctionParameters{
			Type:       string(tool.TypeObject),
			Properties: make(map[string]api.ToolProperty),
		}
		if d.Parameters != nil {
			params.Required = d.Parameters.Required
			for name, prop := range d.Parameters.Properties {
				params.Properties[name] = toOllamaProperty(prop)
			}
		}
		tools = append(tools, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  params,
			},
		})
	}
	return tools
}

func toOllamaProperty(s *tool.Schema) api.ToolProperty {
	prop := api.ToolProperty{
		Type:        api.PropertyType{string(s.Type)},
		Description: s.Description,
	}
	for _, e := range s.Enum {
		prop.Enum = append(prop.Enum, e)
	}
	if s.Items != nil {
		prop.Items = s.Items
	}
	return prop
}

func fromOllamaResponse(resp *api.ChatResponse) (*provider.Response, error) {
	if resp == nil {
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeEmptyResponse,
			Message: "no response from ollama",
		}
	}

	out := &provider.Response{
		Content: resp.Message.Content,
		Usage: provider.Usage{
			PromptUnits:     resp.PromptEvalCount,
			CompletionUnits: resp.EvalCount,
		},
	}
	// Ollama does not assign call IDs.
	for _, tc := range resp.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, provider.ToolCall{
			ID:        uuid.NewString(),
			Name:      tc.Function.Name,
			Arguments: map[string]any(tc.Function.Arguments),
		})
	}
	return out, nil
}

func mapError(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return provider.FromStatus(statusErr.StatusCode, statusErr.ErrorMessage, err)
	}
	return provider.Network(err)
}
