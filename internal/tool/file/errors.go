package file

import "errors"

var (
	ErrPathRequired      = errors.New("filepath is required")
	ErrObjectiveRequired = errors.New("objective is required")
)
