package jail

import (
	"errors"
	"fmt"
)

// -- Error Types --

// RootError is returned when the sandbox root is invalid.
type RootError struct {
	Root  string
	Cause error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("invalid sandbox root %s: %v", e.Root, e.Cause)
}
func (e *RootError) Unwrap() error { return e.Cause }

// SecurityViolationError is returned when a path canonicalises outside the root.
type SecurityViolationError struct {
	Path     string
	Resolved string
	Root     string
}

func (e *SecurityViolationError) Error() string {
	return fmt.Sprintf("security violation: %s resolves to %s, outside %s", e.Path, e.Resolved, e.Root)
}
func (e *SecurityViolationError) Is(target error) bool { return target == ErrSecurityViolation }

// NotFoundError is returned when a path is missing or has the wrong kind.
type NotFoundError struct {
	Path   string
	Reason string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s (%s)", e.Path, e.Reason)
}
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// -- Sentinels --

var (
	ErrSecurityViolation = errors.New("path escapes sandbox root")
	ErrNotFound          = errors.New("path not found")
	ErrIsDirectory       = errors.New("path is a directory")
	ErrNotADirectory     = errors.New("not a directory")
	ErrSymlinkLoop       = errors.New("too many levels of symbolic links")
)
