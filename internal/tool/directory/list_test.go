package directory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Cyclone1070/commander/internal/config"
	"github.com/Cyclone1070/commander/internal/tool"
	"github.com/Cyclone1070/commander/internal/tool/service/fs"
	"github.com/Cyclone1070/commander/internal/tool/service/git"
	"github.com/Cyclone1070/commander/internal/tool/service/jail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMission(t *testing.T) (*jail.Jail, *git.IgnoreMatcher) {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		".gitignore":              "*.log\nbuild/\n",
		"alpha/main.py":           "print('hi')",
		"alpha/App.TSX":           "export {}",
		"alpha/notes.md":          "# notes",
		"alpha/debug.log":         "trace",
		"alpha/build/out.go":      "package out",
		"alpha/pkg/server.go":     "package pkg",
		"beta/only.txt":           "x",
		"alpha/lib/helpers.ts":    "export const x = 1",
		"alpha/lib/helpers.ts.bk": "backup",
	}
	for rel, body := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}

	osfs := fs.NewOSFileSystem()
	j, err := jail.New(root, osfs, 1<<20)
	require.NoError(t, err)
	m, err := git.NewIgnoreMatcher(j.Root(), osfs)
	require.NoError(t, err)
	return j, m
}

func TestListFilesTool_Run(t *testing.T) {
	j, m := setupMission(t)
	lt := NewListFilesTool(j, m, config.DefaultConfig())

	t.Run("lists immediate entries without ignored ones", func(t *testing.T) {
		got, err := lt.Run(context.Background(), &ListFilesRequest{MissionName: "alpha"})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha/App.TSX", "alpha/lib", "alpha/main.py", "alpha/notes.md", "alpha/pkg"}, got)
	})

	t.Run("code only keeps source files", func(t *testing.T) {
		got, err := lt.Run(context.Background(), &ListFilesRequest{MissionName: "alpha", CodeOnly: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha/App.TSX", "alpha/main.py"}, got)
	})

	t.Run("without matcher ignored entries appear", func(t *testing.T) {
		plain := NewListFilesTool(j, nil, config.DefaultConfig())
		got, err := plain.Run(context.Background(), &ListFilesRequest{MissionName: "alpha"})
		require.NoError(t, err)
		assert.Contains(t, got, "alpha/debug.log")
		assert.Contains(t, got, "alpha/build")
	})

	t.Run("missing mission", func(t *testing.T) {
		_, err := lt.Run(context.Background(), &ListFilesRequest{MissionName: "gamma"})
		assert.ErrorIs(t, err, jail.ErrNotFound)
	})

	t.Run("escape is rejected", func(t *testing.T) {
		_, err := lt.Run(context.Background(), &ListFilesRequest{MissionName: "../"})
		assert.ErrorIs(t, err, jail.ErrSecurityViolation)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := lt.Run(ctx, &ListFilesRequest{MissionName: "alpha"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestListFilesTool_Execute(t *testing.T) {
	j, m := setupMission(t)
	lt := NewListFilesTool(j, m, config.DefaultConfig())

	res, err := lt.Execute(context.Background(), &ListFilesRequest{MissionName: "beta"})
	require.NoError(t, err)
	assert.Equal(t, tool.Result("beta/only.txt"), res)

	require.NoError(t, os.MkdirAll(filepath.Join(j.Root(), "empty"), 0o755))
	res, err = lt.Execute(context.Background(), &ListFilesRequest{MissionName: "empty"})
	require.NoError(t, err)
	assert.Equal(t, "No files found in empty.", res.LLMContent())

	_, err = lt.Execute(context.Background(), "wrong")
	assert.Error(t, err)
}

func TestListFilesRequest_Validate(t *testing.T) {
	assert.ErrorIs(t, (&ListFilesRequest{}).Validate(), ErrMissionRequired)
	assert.NoError(t, (&ListFilesRequest{MissionName: "."}).Validate())
	assert.Equal(t, "alpha (code only)", (&ListFilesRequest{MissionName: "alpha", CodeOnly: true}).String())
}

func TestListFilesTool_Declaration(t *testing.T) {
	j, _ := setupMission(t)
	decl := NewListFilesTool(j, nil, config.DefaultConfig()).Declaration()
	assert.Equal(t, "list_files", decl.Name)
	assert.Equal(t, []string{"mission_name"}, decl.Parameters.Required)
	assert.Contains(t, decl.Parameters.Properties, "code_only")
}
