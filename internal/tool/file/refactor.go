package file

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/commander/internal/tool"
)

// RefactorFileTool delegates a rewrite of one file to the action gateway.
type RefactorFileTool struct {
	gateway refactorer
}

// NewRefactorFileTool creates a new RefactorFileTool with injected dependencies.
func NewRefactorFileTool(gateway refactorer) *RefactorFileTool {
	if gateway == nil {
		panic("gateway is required")
	}
	return &RefactorFileTool{gateway: gateway}
}

func (t *RefactorFileTool) Name() tool.Name { return tool.RefactorFile }

func (t *RefactorFileTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        string(tool.RefactorFile),
		Description: "Rewrites a sandboxed file with the fast code model so that it achieves the objective.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"filepath":  {Type: tool.TypeString, Description: "Path relative to the sandbox root."},
				"objective": {Type: tool.TypeString, Description: "What the rewritten file must achieve."},
			},
			Required: []string{"filepath", "objective"},
		},
	}
}

func (t *RefactorFileTool) Input() any { return &RefactorFileRequest{} }

func (t *RefactorFileTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*RefactorFileRequest)
	if !ok {
		return "", fmt.Errorf("unexpected input type %T", input)
	}
	if t.gateway.Refactor(ctx, req.Filepath, req.Objective) {
		return tool.Result(fmt.Sprintf("Refactored %s successfully.", req.Filepath)), nil
	}
	return tool.Result(fmt.Sprintf("Refactor of %s failed. The file was not changed.", req.Filepath)), nil
}
