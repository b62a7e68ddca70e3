package toolmanager

import (
	"context"

	"github.com/Cyclone1070/commander/internal/tool"
)

// toolImpl defines the interface for individual tools.
type toolImpl interface {
	// Name returns the tool's identifier from the closed set.
	Name() tool.Name

	// Declaration returns the tool's schema for the LLM.
	Declaration() tool.Declaration

	// Input returns a pointer to a fresh request struct (e.g., &ReadFileRequest{}).
	Input() any

	// Execute runs the tool with the decoded, validated input.
	Execute(ctx context.Context, input any) (tool.Result, error)
}

// validatable is implemented by request structs with required fields.
type validatable interface {
	Validate() error
}
