package file

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/commander/internal/tool"
)

// ReadFileTool returns the content of a sandboxed file.
type ReadFileTool struct {
	jail reader
}

// NewReadFileTool creates a new ReadFileTool with injected dependencies.
func NewReadFileTool(jail reader) *ReadFileTool {
	if jail == nil {
		panic("jail is required")
	}
	return &ReadFileTool{jail: jail}
}

func (t *ReadFileTool) Name() tool.Name { return tool.ReadFile }

func (t *ReadFileTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        string(tool.ReadFile),
		Description: "Reads a file inside the sandbox and returns its full content.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"filepath": {Type: tool.TypeString, Description: "Path relative to the sandbox root."},
			},
			Required: []string{"filepath"},
		},
	}
}

func (t *ReadFileTool) Input() any { return &ReadFileRequest{} }

func (t *ReadFileTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*ReadFileRequest)
	if !ok {
		return "", fmt.Errorf("unexpected input type %T", input)
	}
	content, err := t.Run(ctx, req)
	if err != nil {
		return "", err
	}
	return tool.Result(content), nil
}

// Run reads the requested file through the jail.
func (t *ReadFileTool) Run(ctx context.Context, req *ReadFileRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return t.jail.Read(req.Filepath)
}
