// Package ollama adapts a local Ollama server to the completion backend
// contract. It is the default watchdog backend.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Cyclone1070/commander/internal/provider"
	"github.com/ollama/ollama/api"
)

// DefaultBaseURL is used when the tier has no base_url.
const DefaultBaseURL = "http://localhost:11434"

type chatClient interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
}

// Provider implements the completion backend over /api/chat.
type Provider struct {
	client chatClient
}

// NewClient connects to the server at baseURL.
func NewClient(baseURL string, httpClient *http.Client) (*Provider, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return New(api.NewClient(u, httpClient)), nil
}

// New wraps an existing chat client.
func New(client chatClient) *Provider {
	if client == nil {
		panic("ollama client is required")
	}
	return &Provider{client: client}
}

// Complete sends one non-streaming chat request.
func (p *Provider) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	stream := false
	chatReq := &api.ChatRequest{
		Model:    req.Model,
		Messages: toOllamaMessages(req.Messages),
		Stream:   &stream,
	}
	if len(req.Tools) > 0 {
		chatReq.Tools = toOllamaTools(req.Tools)
	}
	if req.Temperature != nil {
		chatReq.Options = map[string]any{"temperature": *req.Temperature}
	}

	var final *api.ChatResponse
	err := p.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		final = &resp
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return fromOllamaResponse(final)
}
