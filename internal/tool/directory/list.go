package directory

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Cyclone1070/commander/internal/config"
	"github.com/Cyclone1070/commander/internal/tool"
)

// ListFilesTool lists the immediate entries of a mission directory.
type ListFilesTool struct {
	jail           lister
	ignore         ignoreMatcher
	codeExtensions []string
}

// NewListFilesTool creates a new ListFilesTool with injected dependencies.
// A nil ignore matcher disables gitignore filtering.
func NewListFilesTool(jail lister, ignore ignoreMatcher, cfg *config.Config) *ListFilesTool {
	if jail == nil {
		panic("jail is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	exts := make([]string, 0, len(cfg.Tools.CodeExtensions))
	for _, ext := range cfg.Tools.CodeExtensions {
		exts = append(exts, strings.ToLower(ext))
	}
	return &ListFilesTool{jail: jail, ignore: ignore, codeExtensions: exts}
}

func (t *ListFilesTool) Name() tool.Name { return tool.ListFiles }

func (t *ListFilesTool) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        string(tool.ListFiles),
		Description: "Lists files in a mission directory inside the sandbox. Returns one root-relative path per line.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"mission_name": {
					Type:        tool.TypeString,
					Description: "Directory to list, relative to the sandbox root. Use \".\" for the root.",
				},
				"code_only": {
					Type:        tool.TypeBoolean,
					Description: fmt.Sprintf("Only return source files (%s).", strings.Join(t.codeExtensions, " ")),
				},
			},
			Required: []string{"mission_name"},
		},
	}
}

func (t *ListFilesTool) Input() any { return &ListFilesRequest{} }

func (t *ListFilesTool) Execute(ctx context.Context, input any) (tool.Result, error) {
	req, ok := input.(*ListFilesRequest)
	if !ok {
		return "", fmt.Errorf("unexpected input type %T", input)
	}
	entries, err := t.Run(ctx, req)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return tool.Result(fmt.Sprintf("No files found in %s.", req.MissionName)), nil
	}
	return tool.Result(strings.Join(entries, "\n")), nil
}

// Run returns the filtered, sorted entries of the mission directory.
func (t *ListFilesTool) Run(ctx context.Context, req *ListFilesRequest) ([]string, error) {
	entries, err := t.jail.List(req.MissionName)
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := t.jail.Stat(entry)
		if err != nil {
			// Entries that escape the jail (symlinks out) are not listed.
			continue
		}
		if t.ignore != nil && t.ignore.ShouldIgnore(entry, info.IsDir()) {
			continue
		}
		if req.CodeOnly && (info.IsDir() || !t.isCode(entry)) {
			continue
		}
		result = append(result, entry)
	}
	return result, nil
}

func (t *ListFilesTool) isCode(path string) bool {
	return slices.Contains(t.codeExtensions, strings.ToLower(filepath.Ext(path)))
}
