// Package jail confines every file operation to a single sandbox root.
package jail

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// fileSystem defines the filesystem primitives the jail delegates to once a
// path has been proven to lie inside the root.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadFileLimited(path string, limit int64) ([]byte, error)
	WriteFileAtomic(path string, content []byte, perm os.FileMode) error
	EnsureDirs(path string) error
	ListDir(path string) ([]string, error)
}

// ResolvedPath is an absolute, symlink-free path proven to lie inside a
// Jail's root. Only Jail.Verify produces one; the zero value is invalid.
type ResolvedPath struct {
	abs string
}

// String returns the absolute path.
func (p ResolvedPath) String() string { return p.abs }

// IsZero reports whether p was not produced by Verify.
func (p ResolvedPath) IsZero() bool { return p.abs == "" }

// Jail resolves and validates paths against one allowed root.
// It holds no mutable state and is safe for concurrent use.
type Jail struct {
	root        string
	fs          fileSystem
	maxFileSize int64
}

// New canonicalises root and returns a Jail bound to it.
// maxFileSize bounds Read; <= 0 disables the bound.
func New(root string, fs fileSystem, maxFileSize int64) (*Jail, error) {
	if fs == nil {
		panic("fs is required")
	}
	canonical, err := canonicaliseRoot(root)
	if err != nil {
		return nil, err
	}
	return &Jail{root: canonical, fs: fs, maxFileSize: maxFileSize}, nil
}

// Root returns the canonical sandbox root.
func (j *Jail) Root() string { return j.root }

// Verify canonicalises path (relative paths are taken from the root) and
// proves it lies inside the root.
func (j *Jail) Verify(path string) (ResolvedPath, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(j.root, abs)
	}

	canonical, err := canonicalise(abs)
	if err != nil {
		return ResolvedPath{}, fmt.Errorf("resolve %s: %w", path, err)
	}

	if !within(j.root, canonical) {
		return ResolvedPath{}, &SecurityViolationError{Path: path, Resolved: canonical, Root: j.root}
	}

	return ResolvedPath{abs: canonical}, nil
}

// Rel returns p relative to the root using forward slashes; the root itself is ".".
func (j *Jail) Rel(p ResolvedPath) string {
	rel, err := filepath.Rel(j.root, p.abs)
	if err != nil {
		return p.abs
	}
	return filepath.ToSlash(rel)
}

// Stat verifies path and returns its file info.
func (j *Jail) Stat(path string) (os.FileInfo, error) {
	rp, err := j.Verify(path)
	if err != nil {
		return nil, err
	}
	info, err := j.fs.Stat(rp.abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Reason: "no such file"}
		}
		return nil, err
	}
	return info, nil
}

// Read returns the content of a file inside the root.
// Missing paths and directories fail with *NotFoundError.
func (j *Jail) Read(path string) (string, error) {
	rp, err := j.Verify(path)
	if err != nil {
		return "", err
	}

	info, err := j.fs.Stat(rp.abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &NotFoundError{Path: path, Reason: "no such file"}
		}
		return "", err
	}
	if info.IsDir() {
		return "", &NotFoundError{Path: path, Reason: "is a directory"}
	}

	data, err := j.fs.ReadFileLimited(rp.abs, j.maxFileSize)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Write creates missing parent directories under the root and replaces the
// file's content. Existing file permissions are preserved.
func (j *Jail) Write(path string, content string) error {
	rp, err := j.Verify(path)
	if err != nil {
		return err
	}

	perm := os.FileMode(0o644)
	info, err := j.fs.Stat(rp.abs)
	switch {
	case err == nil && info.IsDir():
		return &os.PathError{Op: "write", Path: path, Err: ErrIsDirectory}
	case err == nil:
		perm = info.Mode().Perm()
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}

	if err := j.fs.EnsureDirs(filepath.Dir(rp.abs)); err != nil {
		return err
	}
	return j.fs.WriteFileAtomic(rp.abs, []byte(content), perm)
}

// List returns the immediate entries of dir as sorted root-relative paths.
// An empty dir lists the root.
func (j *Jail) List(dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	rp, err := j.Verify(dir)
	if err != nil {
		return nil, err
	}

	info, err := j.fs.Stat(rp.abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: dir, Reason: "no such directory"}
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, &NotFoundError{Path: dir, Reason: "not a directory"}
	}

	names, err := j.fs.ListDir(rp.abs)
	if err != nil {
		return nil, err
	}

	entries := make([]string, 0, len(names))
	for _, name := range names {
		entries = append(entries, j.Rel(ResolvedPath{abs: filepath.Join(rp.abs, name)}))
	}
	return entries, nil
}
