package git

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFileSystem struct {
	files   map[string]string
	readErr error
}

func (m *mockFileSystem) ReadFileLimited(path string, limit int64) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	data, ok := m.files[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return []byte(data), nil
}

func TestNewIgnoreMatcher(t *testing.T) {
	t.Run("patterns from root gitignore", func(t *testing.T) {
		fs := &mockFileSystem{files: map[string]string{
			"/workspace/.gitignore": "# build output\n*.log\r\nnode_modules/\n\n__pycache__\n",
		}}

		m, err := NewIgnoreMatcher("/workspace", fs)
		require.NoError(t, err)

		tests := []struct {
			path  string
			isDir bool
			want  bool
		}{
			{"debug.log", false, true},
			{"mission/run.log", false, true},
			{"node_modules", true, true},
			{"node_modules", false, false},
			{"mission/__pycache__", true, true},
			{"mission/app.py", false, false},
			{"# build output", false, false},
			{".", true, false},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.want, m.ShouldIgnore(tt.path, tt.isDir), tt.path)
		}
	})

	t.Run("missing gitignore never ignores", func(t *testing.T) {
		m, err := NewIgnoreMatcher("/workspace", &mockFileSystem{files: map[string]string{}})
		require.NoError(t, err)
		assert.False(t, m.ShouldIgnore("anything.log", false))
	})

	t.Run("read error surfaces", func(t *testing.T) {
		cause := errors.New("permission denied")
		_, err := NewIgnoreMatcher("/workspace", &mockFileSystem{readErr: cause})

		var readErr *GitignoreReadError
		require.ErrorAs(t, err, &readErr)
		assert.Equal(t, "/workspace/.gitignore", readErr.Path)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("requires root and fs", func(t *testing.T) {
		assert.Panics(t, func() { _, _ = NewIgnoreMatcher("", &mockFileSystem{}) })
		assert.Panics(t, func() { _, _ = NewIgnoreMatcher("/workspace", nil) })
	})
}

func TestNoOpMatcher(t *testing.T) {
	assert.False(t, NoOpMatcher{}.ShouldIgnore("x.log", false))
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c.py"}, splitPath("./a//b/c.py"))
	assert.Nil(t, splitPath(""))
}
