package shell

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/commander/internal/tool"
)

// ValidateCodeTool runs a validation command and repairs the file until it passes.
type ValidateCodeTool struct {
	policy  *Policy
	gateway validator
}

// NewValidateCodeTool creates a new ValidateCodeTool with injected dependencies.
func NewValidateCodeTool(policy *Policy, gateway validator) *ValidateCodeTool {
	if policy == nil {
		panic("policy is required")
	}
	if gateway == nil {
		panic("gateway is required")
	}
	return &ValidateCodeTool{policy: policy, gateway: gateway}
}

func (t *ValidateCodeTool) Name() tool.Name { return tool.ValidateCode }

func (t *ValidateCodeTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name: string(tool.ValidateCode),
		Description: "Runs a validation command (argv form, no shell) from the sandbox root. " +
			"On failure the file is repaired with the fast code model and the command is retried.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"filepath": {Type: tool.TypeString, Description: "File to repair when validation fails."},
				"command_list": {
					Type:        tool.TypeArray,
					Description: "Command and arguments, e.g. [\"python3\", \"-m\", \"py_compile\", \"app.py\"].",
					Items:       &tool.Schema{Type: tool.TypeString},
				},
			},
			Required: []string{"filepath", "command_list"},
		},
	}
}

func (t *ValidateCodeTool) Input() any { return &ValidateCodeRequest{} }

func (t *ValidateCodeTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*ValidateCodeRequest)
	if !ok {
		return "", fmt.Errorf("unexpected input type %T", input)
	}
	if err := t.policy.Check(req.CommandList); err != nil {
		return "", err
	}

	command := strings.Join(req.CommandList, " ")
	if t.gateway.ValidateAndRepair(ctx, req.Filepath, req.CommandList) {
		return tool.Result(fmt.Sprintf("Validation passed: `%s` succeeded for %s.", command, req.Filepath)), nil
	}
	return tool.Result(fmt.Sprintf("Validation failed: `%s` did not pass for %s after repair attempts.", command, req.Filepath)), nil
}
