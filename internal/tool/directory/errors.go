package directory

import "errors"

// ErrMissionRequired is returned when mission_name is empty.
var ErrMissionRequired = errors.New("mission_name is required")
