package toolmanager

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Cyclone1070/commander/internal/logging"
	"github.com/Cyclone1070/commander/internal/provider"
	"github.com/Cyclone1070/commander/internal/tool"
	"github.com/mitchellh/mapstructure"
)

// ToolManager dispatches model tool calls to registered handlers.
type ToolManager struct {
	registry map[tool.Name]toolImpl
	logger   *slog.Logger
}

func NewToolManager(logger *slog.Logger, tools ...toolImpl) *ToolManager {
	tm := &ToolManager{
		registry: make(map[tool.Name]toolImpl),
		logger:   logging.OrDiscard(logger),
	}
	for _, t := range tools {
		tm.Register(t)
	}
	return tm
}

// Register adds t, replacing any tool with the same name.
// Names outside the closed set are a programming error.
func (m *ToolManager) Register(t toolImpl) {
	if !t.Name().Valid() {
		panic(fmt.Sprintf("unknown tool name %q", t.Name()))
	}
	m.registry[t.Name()] = t
}

func (m *ToolManager) Declarations() []tool.Declaration {
	decls := make([]tool.Declaration, 0, len(m.registry))
	for _, t := range m.registry {
		decls = append(decls, t.Declaration())
	}
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Name < decls[j].Name
	})
	return decls
}

// Execute runs one tool call. Every failure is reported to the model as the
// message content; Execute itself never fails.
func (m *ToolManager) Execute(ctx context.Context, tc provider.ToolCall) (msg provider.Message) {
	msg = provider.Message{
		Role:       provider.RoleTool,
		ToolCallID: tc.ID,
		ToolName:   tc.Name,
	}

	t, ok := m.registry[tool.Name(tc.Name)]
	if !ok {
		declsJSON, _ := json.MarshalIndent(m.Declarations(), "", "  ")
		m.logger.Warn("unknown tool requested", "tool", tc.Name)
		msg.Content = fmt.Sprintf("Error: tool %q does not exist.\n\nAvailable tools:\n%s", tc.Name, declsJSON)
		return msg
	}

	req := t.Input()
	if err := decode(tc.Arguments, req); err != nil {
		msg.Content = invalidArguments(t, err)
		return msg
	}
	if v, ok := req.(validatable); ok {
		if err := v.Validate(); err != nil {
			msg.Content = invalidArguments(t, err)
			return msg
		}
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("tool panicked", "tool", tc.Name, "panic", r)
			msg.Content = fmt.Sprintf("Error: tool %q panicked: %v", tc.Name, r)
		}
	}()

	m.logger.Debug("tool start", "tool", tc.Name, "request", display(req))
	res, err := t.Execute(ctx, req)
	if err != nil {
		m.logger.Info("tool failed", "tool", tc.Name, "error", err)
		msg.Content = fmt.Sprintf("Error: %v", err)
		return msg
	}
	m.logger.Debug("tool end", "tool", tc.Name, "bytes", len(res))

	msg.Content = res.LLMContent()
	return msg
}

// decode maps loosely typed model arguments onto the typed request.
// Unknown keys and type mismatches are errors.
func decode(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: false,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(args)
}

func invalidArguments(t toolImpl, err error) string {
	declJSON, _ := json.MarshalIndent(t.Declaration(), "", "  ")
	return fmt.Sprintf("Error: invalid arguments for tool %q: %v\n\nExpected schema:\n%s", t.Name(), err, declJSON)
}

func display(req any) string {
	if s, ok := req.(fmt.Stringer); ok {
		return s.String()
	}
	return ""
}
