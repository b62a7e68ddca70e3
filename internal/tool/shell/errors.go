package shell

import (
	"errors"
	"fmt"
)

var (
	ErrPathRequired  = errors.New("filepath is required")
	ErrCommandDenied = errors.New("command denied by policy")
)

// CommandRequiredError is returned when command_list is empty.
type CommandRequiredError struct{}

func (e *CommandRequiredError) Error() string {
	return "command_list cannot be empty"
}

// CommandDeniedError is returned when the root command is not permitted.
type CommandDeniedError struct {
	Command string
	Reason  string
}

func (e *CommandDeniedError) Error() string {
	return fmt.Sprintf("command '%s' is denied: %s", e.Command, e.Reason)
}

func (e *CommandDeniedError) Is(target error) bool { return target == ErrCommandDenied }
