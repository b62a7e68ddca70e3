package openai

import (
	"encoding/json"
	"errors"

	"github.com/Cyclone1070/commander/internal/provider"
	"github.com/Cyclone1070/commander/internal/tool"
	"github.com/openai/openai-go/v3"
)

func toOpenAIMessages(messages []provider.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case provider.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case provider.RoleTool:
			result = append(result, openai.ToolMessage(msg.Content, msg.ToolCallID))
		case provider.RoleAssistant:
			result = append(result, assistantMessage(msg))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}
	return result
}

func assistantMessage(msg provider.Message) openai.ChatCompletionMessageParamUnion {
	if len(msg.ToolCalls) == 0 {
		return openai.AssistantMessage(msg.Content)
	}

	assistant := openai.ChatCompletionAssistantMessageParam{}
	if msg.Content != "" {
		assistant.Content.OfString = openai.String(msg.Content)
	}
	for _, tc := range msg.ToolCalls {
		args, err := json.Marshal(tc.Arguments)
		if err != nil || tc.Arguments == nil {
			args = []byte("{}")
		}
		assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: tc.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      tc.Name,
					Arguments: string(args),
				},
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}

func toOpenAITools(decls []tool.Declaration) []openai.ChatCompletionToolUnionParam {
	tools := make([]openai.ChatCompletionToolUnionParam, 0, len(decls))
	for _, d := range decls {
		params := openai.FunctionParameters{"type": "object", "properties": map[string]any{}}
		if d.Parameters != nil {
			params = schemaToMap(d.Parameters)
		}
		tools = append(tools, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        d.Name,
			Description: openai.String(d.Description),
			Parameters:  params,
		}))
	}
	return tools
}

// schemaToMap renders a tool schema as a JSON Schema object.
func schemaToMap(s *tool.Schema) map[string]any {
	data, _ := json.Marshal(s)
	var out map[string]any
	_ = json.Unmarshal(data, &out)
	if s.Type == tool.TypeObject {
		if _, ok := out["properties"]; !ok {
			out["properties"] = map[string]any{}
		}
	}
	return out
}

func fromOpenAIResponse(resp *openai.ChatCompletion) (*provider.Response, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeEmptyResponse,
			Message: "no choices in response",
		}
	}

	msg := resp.Choices[0].Message
	out := &provider.Response{
		Content: msg.Content,
		Usage: provider.Usage{
			PromptUnits:     int(resp.Usage.PromptTokens),
			CompletionUnits: int(resp.Usage.CompletionTokens),
		},
	}

	for _, tc := range msg.ToolCalls {
		var args map[string]any
		if tc.Function.Arguments != "" {
			// Malformed arguments decode to nil and fail tool validation downstream.
			_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
		}
		out.ToolCalls = append(out.ToolCalls, provider.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	return out, nil
}

func mapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return provider.FromStatus(apiErr.StatusCode, apiErr.Error(), err)
	}
	return provider.Network(err)
}
