package tools

import "errors"

// Dispatcher and capability errors.
var (
	ErrToolNotFound      = errors.New("tool not found")
	ErrInvalidArguments  = errors.New("invalid tool arguments")
)
