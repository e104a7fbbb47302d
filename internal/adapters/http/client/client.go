// Package client is a typed HTTP client for the IntellInbox REST API.
//
// Every method performs exactly one round trip and never retries. Trigger
// endpoints (sync, reset, sync-all, re-analysis) only start work on the
// backend; callers re-list inboxes or emails to observe the outcome.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/intellinbox/internal/adapters/http/transport"
	"github.com/okian/intellinbox/pkg/logger"
	"github.com/okian/intellinbox/pkg/metrics"
)

// Client talks to one IntellInbox backend. It holds no mutable state and
// is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  logger.Logger
	metrics *metrics.Manager
}

// New returns a Client rooted at baseURL, which must be an absolute http or
// https URL. A path prefix on baseURL is kept in front of every route.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %w", ErrRequest, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: base url must be absolute http(s), got %q", ErrRequest, baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""

	o := &options{
		logger:  logger.Nop(),
		metrics: metrics.NewManager(),
	}
	for _, opt := range opts {
		opt(o)
	}

	hc := &http.Client{}
	if o.httpClient != nil {
		copied := *o.httpClient
		hc = &copied
	}
	rt := hc.Transport
	if o.base != nil {
		rt = o.base
	}
	if rt == nil {
		rt = http.DefaultTransport
	}
	if o.trace {
		rt = transport.Trace(rt, o.logger)
	}
	hc.Transport = transport.Headers(rt, transport.HeaderOptions{UserAgent: o.userAgent, Token: o.token})
	if o.timeout > 0 {
		hc.Timeout = o.timeout
	}

	return &Client{
		baseURL: u,
		http:    hc,
		logger:  o.logger,
		metrics: o.metrics,
	}, nil
}

// Metrics returns the manager requests are recorded on. Unless WithMetrics
// was given it belongs to this client alone.
func (c *Client) Metrics() *metrics.Manager {
	return c.metrics
}

// BaseURL returns the root routes are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// call describes one round trip.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	// out receives the decoded JSON body; nil discards the body.
	out any
}

func (c *Client) do(ctx context.Context, cl call) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + cl.path
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}
	target := u.String()

	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			c.metrics.RecordError(cl.op, metrics.ErrorTypeRequest)
			return fmt.Errorf("%w: %s %s: %w", ErrRequest, cl.method, target, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		c.metrics.RecordError(cl.op, metrics.ErrorTypeRequest)
		return fmt.Errorf("%w: %s %s: %w", ErrRequest, cl.method, target, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	done := c.metrics.RequestStarted()
	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	done()

	if err != nil {
		c.metrics.ObserveRequest(cl.op, cl.method, 0, elapsed)
		c.metrics.RecordError(cl.op, metrics.ErrorTypeTransport)
		c.logger.Debug(ctx, "api request failed",
			logger.String("op", cl.op),
			logger.String("url", target),
			logger.Duration("elapsed", elapsed),
			logger.Error(err))
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, cl.method, target, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug(ctx, "failed to close response body", logger.Error(err))
		}
	}()

	c.metrics.ObserveRequest(cl.op, cl.method, resp.StatusCode, elapsed)
	c.logger.Debug(ctx, "api request",
		logger.String("op", cl.op),
		logger.String("method", cl.method),
		logger.String("url", target),
		logger.Int("status", resp.StatusCode),
		logger.Duration("elapsed", elapsed))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.metrics.RecordError(cl.op, metrics.ErrorTypeStatus)
		return &StatusError{
			Method:     cl.method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       payload,
		}
	}

	if cl.out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		c.metrics.RecordError(cl.op, metrics.ErrorTypeDecode)
		return fmt.Errorf("%w: %s %s: %w", ErrDecode, cl.method, target, err)
	}
	return nil
}
