package jail

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// maxSymlinkHops mirrors the kernel's ELOOP bound.
const maxSymlinkHops = 40

// canonicaliseRoot makes root absolute, resolves symlinks and requires a directory.
func canonicaliseRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", &RootError{Root: root, Cause: err}
	}

	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", &RootError{Root: absRoot, Cause: err}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", &RootError{Root: resolved, Cause: err}
	}
	if !info.IsDir() {
		return "", &RootError{Root: resolved, Cause: fmt.Errorf("%w: %s", ErrNotADirectory, resolved)}
	}
	return resolved, nil
}

// canonicalise resolves every symlink in abs, including ones in components
// that do not exist yet. The longest existing prefix is resolved with
// EvalSymlinks and the missing tail is re-appended. A dangling symlink is
// followed by hand so a write through it cannot land outside the root.
func canonicalise(abs string) (string, error) {
	cur := filepath.Clean(abs)
	var tail []string

	for hops := 0; ; {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return joinTail(resolved, tail), nil
		}
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, syscall.ENOTDIR) {
			return "", err
		}

		if info, lerr := os.Lstat(cur); lerr == nil && info.Mode()&os.ModeSymlink != 0 {
			hops++
			if hops > maxSymlinkHops {
				return "", ErrSymlinkLoop
			}
			target, err := os.Readlink(cur)
			if err != nil {
				return "", err
			}
			if !filepath.IsAbs(target) {
				target = filepath.Join(filepath.Dir(cur), target)
			}
			cur = filepath.Clean(target)
			continue
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return joinTail(cur, tail), nil
		}
		tail = append(tail, filepath.Base(cur))
		cur = parent
	}
}

// joinTail appends tail (collected leaf-first) back onto base.
func joinTail(base string, tail []string) string {
	parts := make([]string, 0, len(tail)+1)
	parts = append(parts, base)
	for i := len(tail) - 1; i >= 0; i-- {
		parts = append(parts, tail[i])
	}
	return filepath.Join(parts...)
}

// within reports whether path is root or a descendant of root, comparing
// whole components so "/jailx" is not inside "/jail".
func within(root, path string) bool {
	if path == root {
		return true
	}
	if root == string(filepath.Separator) {
		return filepath.IsAbs(path)
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
