package client

import (
	"net/http"
	"time"

	"github.com/okian/intellinbox/pkg/logger"
	"github.com/okian/intellinbox/pkg/metrics"
)

// Option applies a configuration option to the Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	base       http.RoundTripper
	timeout    time.Duration
	logger     logger.Logger
	metrics    *metrics.Manager
	userAgent  string
	token      string
	trace      bool
}

// WithHTTPClient uses a copy of hc. Its Transport becomes the innermost
// round tripper; the original client is not modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		if hc != nil {
			o.httpClient = hc
		}
	}
}

// WithRoundTripper sets the innermost round tripper.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *options) {
		if rt != nil {
			o.base = rt
		}
	}
}

// WithTimeout bounds each request. Zero keeps the http.Client's own setting.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger used for request logs and traces.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records request metrics on m, which may be shared between
// clients. The default is a fresh manager per client.
func WithMetrics(m *metrics.Manager) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithAPIToken sends token as a bearer token on every request.
func WithAPIToken(token string) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithTrace dumps every request and response at debug level.
func WithTrace(enabled bool) Option {
	return func(o *options) {
		o.trace = enabled
	}
}
