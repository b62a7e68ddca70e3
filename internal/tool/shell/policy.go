package shell

import (
	"path/filepath"
	"slices"
)

// Policy decides which root commands validate_code may run.
// Deny wins over allow. An empty allow list permits anything not denied.
type Policy struct {
	allow []string
	deny  []string
}

// NewPolicy copies the allow and deny lists.
func NewPolicy(allow, deny []string) *Policy {
	return &Policy{allow: slices.Clone(allow), deny: slices.Clone(deny)}
}

// Check validates the root command of argv.
func (p *Policy) Check(argv []string) error {
	if len(argv) == 0 {
		return &CommandRequiredError{}
	}
	root := commandRoot(argv)
	if slices.Contains(p.deny, root) {
		return &CommandDeniedError{Command: root, Reason: "on the deny list"}
	}
	if len(p.allow) > 0 && !slices.Contains(p.allow, root) {
		return &CommandDeniedError{Command: root, Reason: "not on the allow list"}
	}
	return nil
}

// commandRoot extracts the basename of the executable.
// Example: ["/usr/bin/python3", "-m", "py_compile"] returns "python3".
func commandRoot(argv []string) string {
	return filepath.Base(argv[0])
}
