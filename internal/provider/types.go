// Package provider defines the completion backend contract shared by the
// gemini, openai, anthropic and ollama adapters.
package provider

import (
	"github.com/Cyclone1070/commander/internal/tool"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is one function invocation requested by the backend.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Message is one conversation turn. Assistant turns may carry ToolCalls;
// tool turns carry the ToolCallID (and ToolName) they answer.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	ToolName   string
}

// Usage is the billing unit count for one call.
type Usage struct {
	PromptUnits     int
	CompletionUnits int
}

// Request is a single completion request.
type Request struct {
	Model       string
	Messages    []Message
	Tools       []tool.Declaration
	Temperature *float32
}

// Response is a single completion response.
type Response struct {
	Content   string
	ToolCalls []ToolCall
	Usage     Usage
}

// Float32 returns a pointer to v.
func Float32(v float32) *float32 { return &v }

// SplitSystem separates leading system turns from the rest of the
// conversation, joining multiple system turns with a blank line.
func SplitSystem(messages []Message) (string, []Message) {
	var system string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
