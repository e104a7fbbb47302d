package cli

import "errors"

// Common errors.
var (
	ErrUsage  = errors.New("usage")
	ErrFailed = errors.New("operation failed")
)
