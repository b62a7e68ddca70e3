package session

import "errors"

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("session pool closed")
