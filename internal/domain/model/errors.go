package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrEmptyTimestamp = errors.New("empty timestamp")
	ErrBadTimestamp   = errors.New("unrecognized timestamp")
)
