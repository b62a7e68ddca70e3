// Package gemini adapts Google Gemini to the completion backend contract.
package gemini

import (
	"context"

	"github.com/Cyclone1070/commander/internal/provider"
	"google.golang.org/genai"
)

// GeminiProvider implements the completion backend for Google Gemini.
type GeminiProvider struct {
	client GeminiClient
}

// New creates a new GeminiProvider with the specified client.
func New(client GeminiClient) *GeminiProvider {
	if client == nil {
		panic("client is required")
	}
	return &GeminiProvider{client: client}
}

// Complete sends one request to the Gemini API and returns the response.
func (p *GeminiProvider) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	system, rest := provider.SplitSystem(req.Messages)

	config := &genai.GenerateContentConfig{
		SafetySettings: defaultSafetySettings(),
		Temperature:    req.Temperature,
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		config.Tools = toGeminiTools(req.Tools)
	}

	resp, err := p.client.GenerateContent(ctx, req.Model, toGeminiContents(rest), config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	return fromGeminiResponse(resp)
}
