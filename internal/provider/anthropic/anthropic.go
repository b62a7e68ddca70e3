// Package anthropic adapts the Anthropic Messages API to the completion
// backend contract.
package anthropic

import (
	"context"
	"net/http"

	"github.com/Cyclone1070/commander/internal/provider"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// maxTokens is required by the Messages API.
const maxTokens = 4096

type messageClient interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Provider implements the completion backend over the Messages API.
type Provider struct {
	messages messageClient
}

// NewClient builds the SDK client. An empty baseURL uses api.anthropic.com.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	client := anthropic.NewClient(opts...)
	return New(&client.Messages)
}

// New wraps an existing messages client.
func New(messages messageClient) *Provider {
	if messages == nil {
		panic("messages client is required")
	}
	return &Provider{messages: messages}
}

// Complete sends one Messages request.
func (p *Provider) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	system, rest := provider.SplitSystem(req.Messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
		Messages:  toAnthropicMessages(rest),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if len(req.Tools) > 0 {
		params.Tools = toAnthropicTools(req.Tools)
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(float64(*req.Temperature))
	}

	msg, err := p.messages.New(ctx, params)
	if err != nil {
		return nil, mapError(err)
	}
	return fromAnthropicMessage(msg)
}
