// Package openai adapts OpenAI-compatible chat completion APIs (OpenAI,
// DeepSeek, OpenRouter, vLLM) to the completion backend contract.
package openai

import (
	"context"
	"net/http"

	"github.com/Cyclone1070/commander/internal/provider"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// chatClient is the slice of the SDK used here; *openai.ChatCompletionService satisfies it.
type chatClient interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Provider implements the completion backend over the chat completions API.
type Provider struct {
	chat chatClient
}

// NewClient builds the SDK client. An empty baseURL uses api.openai.com.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	client := openai.NewClient(opts...)
	return New(&client.Chat.Completions)
}

// New wraps an existing chat client.
func New(chat chatClient) *Provider {
	if chat == nil {
		panic("chat client is required")
	}
	return &Provider{chat: chat}
}

// Complete sends one chat completion request.
func (p *Provider) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: toOpenAIMessages(req.Messages),
	}
	if len(req.Tools) > 0 {
		params.Tools = toOpenAITools(req.Tools)
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(float64(*req.Temperature))
	}

	resp, err := p.chat.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}
	return fromOpenAIResponse(resp)
}
