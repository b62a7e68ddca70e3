package openai

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Cyclone1070/commander/internal/provider"
	"github.com/Cyclone1070/commander/internal/tool"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChat struct {
	newFunc func(ctx context.Context, body openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

func (m *mockChat) New(ctx context.Context, body openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	return m.newFunc(ctx, body)
}

func completion(t *testing.T, raw string) *openai.ChatCompletion {
	t.Helper()
	var c openai.ChatCompletion
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	return &c
}

// wire renders params the way the SDK sends them.
func wire(t *testing.T, params openai.ChatCompletionNewParams) map[string]any {
	t.Helper()
	data, err := json.Marshal(params)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestComplete_TextResponse(t *testing.T) {
	var sent map[string]any
	p := New(&mockChat{newFunc: func(ctx context.Context, body openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
		sent = wire(t, body)
		return completion(t, `{
			"id": "c1", "object": "chat.completion", "model": "gpt-4o",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "done"}}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150}
		}`), nil
	}})

	resp, err := p.Complete(context.Background(), &provider.Request{
		Model: "gpt-4o",
		Messages: []provider.Message{
			{Role: provider.RoleSystem, Content: "be brief"},
			{Role: provider.RoleUser, Content: "hi"},
		},
		Temperature: provider.Float32(0.5),
	})

	require.NoError(t, err)
	assert.Equal(t, "done", resp.Content)
	assert.Empty(t, resp.ToolCalls)
	assert.Equal(t, provider.Usage{PromptUnits: 120, CompletionUnits: 30}, resp.Usage)

	assert.Equal(t, "gpt-4o", sent["model"])
	assert.InDelta(t, 0.5, sent["temperature"], 1e-6)
	assert.NotContains(t, sent, "tools")
	msgs := sent["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestComplete_ToolCalls(t *testing.T) {
	var sent map[string]any
	p := New(&mockChat{newFunc: func(ctx context.Context, body openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
		sent = wire(t, body)
		return completion(t, `{
			"id": "c2", "object": "chat.completion", "model": "gpt-4o",
			"choices": [{"index": 0, "finish_reason": "tool_calls",
				"message": {"role": "assistant", "content": "",
					"tool_calls": [
						{"id": "call_1", "type": "function", "function": {"name": "read_file", "arguments": "{\"filepath\":\"main.py\"}"}},
						{"id": "call_2", "type": "function", "function": {"name": "list_files", "arguments": "not json"}}
					]}}],
			"usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}
		}`), nil
	}})

	resp, err := p.Complete(context.Background(), &provider.Request{
		Model:    "gpt-4o",
		Messages: []provider.Message{{Role: provider.RoleUser, Content: "read main.py"}},
		Tools: []tool.Declaration{{
			Name:        "read_file",
			Description: "Read a file",
			Parameters: &tool.Schema{
				Type:       tool.TypeObject,
				Properties: map[string]*tool.Schema{"filepath": {Type: tool.TypeString}},
				Required:   []string{"filepath"},
			},
		}},
	})

	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 2)
	assert.Equal(t, provider.ToolCall{ID: "call_1", Name: "read_file", Arguments: map[string]any{"filepath": "main.py"}}, resp.ToolCalls[0])
	assert.Equal(t, "list_files", resp.ToolCalls[1].Name)
	assert.Nil(t, resp.ToolCalls[1].Arguments)

	tools := sent["tools"].([]any)
	require.Len(t, tools, 1)
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "read_file", fn["name"])
	params := fn["parameters"].(map[string]any)
	assert.Equal(t, "object", params["type"])
	assert.Equal(t, []any{"filepath"}, params["required"])
}

func TestComplete_ToolRoundTrip(t *testing.T) {
	var sent map[string]any
	p := New(&mockChat{newFunc: func(ctx context.Context, body openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
		sent = wire(t, body)
		return completion(t, `{"id": "c3", "object": "chat.completion", "model": "m",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "ok"}}]}`), nil
	}})

	_, err := p.Complete(context.Background(), &provider.Request{
		Model: "m",
		Messages: []provider.Message{
			{Role: provider.RoleUser, Content: "go"},
			{Role: provider.RoleAssistant, ToolCalls: []provider.ToolCall{
				{ID: "call_1", Name: "read_file", Arguments: map[string]any{"filepath": "a.py"}},
			}},
			{Role: provider.RoleTool, Content: "print(1)", ToolCallID: "call_1", ToolName: "read_file"},
		},
	})
	require.NoError(t, err)

	msgs := sent["messages"].([]any)
	require.Len(t, msgs, 3)
	assistant := msgs[1].(map[string]any)
	assert.Equal(t, "assistant", assistant["role"])
	call := assistant["tool_calls"].([]any)[0].(map[string]any)
	assert.Equal(t, "call_1", call["id"])
	fn := call["function"].(map[string]any)
	assert.Equal(t, "read_file", fn["name"])
	assert.JSONEq(t, `{"filepath":"a.py"}`, fn["arguments"].(string))

	toolMsg := msgs[2].(map[string]any)
	assert.Equal(t, "tool", toolMsg["role"])
	assert.Equal(t, "call_1", toolMsg["tool_call_id"])
}

func TestComplete_EmptyChoices(t *testing.T) {
	p := New(&mockChat{newFunc: func(ctx context.Context, body openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
		return completion(t, `{"id": "c4", "object": "chat.completion", "model": "m", "choices": []}`), nil
	}})

	_, err := p.Complete(context.Background(), &provider.Request{Model: "m"})

	var pe *provider.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, provider.ErrorCodeEmptyResponse, pe.Code)
}

func TestComplete_TransportError(t *testing.T) {
	cause := errors.New("connection refused")
	p := New(&mockChat{newFunc: func(ctx context.Context, body openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
		return nil, cause
	}})

	_, err := p.Complete(context.Background(), &provider.Request{Model: "m"})

	var pe *provider.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, provider.ErrorCodeNetwork, pe.Code)
	assert.ErrorIs(t, err, cause)
}

func TestNew_NilClientPanics(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
}
