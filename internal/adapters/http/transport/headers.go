// Package transport provides http.RoundTripper decorators used by the API
// client.
package transport

import (
	"net/http"

	"github.com/google/uuid"
)

// HeaderRequestID carries a per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// HeaderOptions configures Headers.
type HeaderOptions struct {
	// UserAgent is set when non-empty.
	UserAgent string
	// Token is sent as "Authorization: Bearer <token>" when non-empty.
	Token string
}

type headerTransport struct {
	next http.RoundTripper
	opts HeaderOptions
}

// Headers returns a RoundTripper that stamps every outgoing request with a
// request id, user agent and optional bearer token. Headers already set by
// the caller are left alone. A nil next uses http.DefaultTransport.
func Headers(next http.RoundTripper, opts HeaderOptions) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &headerTransport{next: next, opts: opts}
}

// RoundTrip clones the request before touching headers, as RoundTrippers
// must not modify the caller's request.
func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if r.Header.Get(HeaderRequestID) == "" {
		r.Header.Set(HeaderRequestID, uuid.NewString())
	}
	if t.opts.UserAgent != "" && r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", t.opts.UserAgent)
	}
	if t.opts.Token != "" && r.Header.Get("Authorization") == "" {
		r.Header.Set("Authorization", "Bearer "+t.opts.Token)
	}
	return t.next.RoundTrip(r)
}
