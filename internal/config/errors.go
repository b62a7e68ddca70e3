package config

import (
	"errors"
	"fmt"
)

// ParseError is returned when a config file cannot be decoded.
type ParseError struct {
	Path  string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse config %s: %v", e.Path, e.Cause)
}
func (e *ParseError) Unwrap() error { return e.Cause }

// EnvError is returned when an environment override has an invalid value.
type EnvError struct {
	Name  string
	Value string
	Cause error
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Name, e.Cause)
}
func (e *EnvError) Unwrap() error { return e.Cause }

var ErrUnsupportedFormat = errors.New("unsupported config format")
