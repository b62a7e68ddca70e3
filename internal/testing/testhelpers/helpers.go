// Package testhelpers provides shared utilities for integration testing
package testhelpers

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Cyclone1070/commander/internal/provider"
)

// DefaultReply is returned once the scripted responses run out.
const DefaultReply = "Done"

// MockBackend is a scripted completion backend. Responses are returned in
// the order they were queued; each call is recorded.
type MockBackend struct {
	mu        sync.Mutex
	responses []scripted
	index     int
	requests  []*provider.Request
	usage     provider.Usage

	// OnCompleteCalled is a callback for observing Complete calls
	OnCompleteCalled func(*provider.Request)
}

type scripted struct {
	resp *provider.Response
	err  error
}

// NewMockBackend creates a backend that bills every reply at 100 prompt and
// 50 completion units.
func NewMockBackend() *MockBackend {
	return &MockBackend{usage: provider.Usage{PromptUnits: 100, CompletionUnits: 50}}
}

// WithTextResponse adds a final text response to the queue
func (m *MockBackend) WithTextResponse(text string) *MockBackend {
	m.responses = append(m.responses, scripted{resp: &provider.Response{Content: text}})
	return m
}

// WithToolCallResponse adds a tool call response to the queue
func (m *MockBackend) WithToolCallResponse(calls ...provider.ToolCall) *MockBackend {
	m.responses = append(m.responses, scripted{resp: &provider.Response{ToolCalls: calls}})
	return m
}

// WithError adds a failed call to the queue
func (m *MockBackend) WithError(err error) *MockBackend {
	m.responses = append(m.responses, scripted{err: err})
	return m
}

// WithUsage sets the usage reported for every subsequent reply
func (m *MockBackend) WithUsage(promptUnits, completionUnits int) *MockBackend {
	m.usage = provider.Usage{PromptUnits: promptUnits, CompletionUnits: completionUnits}
	return m
}

// Complete implements router.Backend
func (m *MockBackend) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	if m.OnCompleteCalled != nil {
		m.OnCompleteCalled(req)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if m.index >= len(m.responses) {
		return &provider.Response{Content: DefaultReply, Usage: m.usage}, nil
	}
	s := m.responses[m.index]
	m.index++
	if s.err != nil {
		return nil, s.err
	}
	resp := *s.resp
	resp.Usage = m.usage
	return &resp, nil
}

// Requests returns a copy of every request received so far
func (m *MockBackend) Requests() []*provider.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*provider.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// CreateTestWorkspace creates a temporary mission directory holding files,
// keyed by slash-separated relative path.
func CreateTestWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}
