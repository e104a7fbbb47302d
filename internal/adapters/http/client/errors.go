package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds for client errors. These allow errors.Is from callers.
var (
	ErrRequest   = errors.New("build request failed")
	ErrTransport = errors.New("transport failed")
	ErrStatus    = errors.New("unexpected status")
	ErrDecode    = errors.New("decode response failed")
)

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 64 << 10

// StatusError is returned when the backend answers with a non-2xx status.
// Body holds the response payload exactly as received (up to 64 KiB).
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if len(e.Body) > 0 {
		msg += ": " + string(e.Body)
	}
	return msg
}

// Is makes errors.Is(err, ErrStatus) hold for every StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not a
// StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
