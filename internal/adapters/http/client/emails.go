package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/intellinbox/internal/domain/model"
)

const (
	opListEmails    = "list_emails"
	opGetEmail      = "get_email"
	opCreateEmail   = "create_email"
	opDeleteEmail   = "delete_email"
	opRerunAnalysis = "rerun_analysis"
)

func emailPath(id int64, suffix string) string {
	return "/emails/" + strconv.FormatInt(id, 10) + suffix
}

// ListOption narrows ListEmails.
type ListOption func(*listParams)

type listParams struct {
	skip, limit       int
	hasSkip, hasLimit bool
}

// WithSkip skips the first n emails (newest first).
func WithSkip(n int) ListOption {
	return func(p *listParams) {
		p.skip, p.hasSkip = n, true
	}
}

// WithLimit caps the number of emails returned. The backend's own default
// is 100.
func WithLimit(n int) ListOption {
	return func(p *listParams) {
		p.limit, p.hasLimit = n, true
	}
}

func (p listParams) query() (url.Values, error) {
	q := url.Values{}
	if p.hasSkip {
		if p.skip < 0 {
			return nil, fmt.Errorf("%w: skip must not be negative", model.ErrInvalidInput)
		}
		q.Set("skip", strconv.Itoa(p.skip))
	}
	if p.hasLimit {
		if p.limit < 1 {
			return nil, fmt.Errorf("%w: limit must be positive", model.ErrInvalidInput)
		}
		q.Set("limit", strconv.Itoa(p.limit))
	}
	return q, nil
}

// ListEmails returns ingested emails, newest first. Without options no
// query is sent and the backend's default page applies.
func (c *Client) ListEmails(ctx context.Context, opts ...ListOption) ([]model.Email, error) {
	var p listParams
	for _, opt := range opts {
		opt(&p)
	}
	q, err := p.query()
	if err != nil {
		return nil, err
	}

	var emails []model.Email
	if err := c.do(ctx, call{op: opListEmails, method: http.MethodGet, path: "/emails/", query: q, out: &emails}); err != nil {
		return nil, err
	}
	return emails, nil
}

// GetEmail returns one email.
func (c *Client) GetEmail(ctx context.Context, id int64) (model.Email, error) {
	var email model.Email
	if err := c.do(ctx, call{op: opGetEmail, method: http.MethodGet, path: emailPath(id, ""), out: &email}); err != nil {
		return model.Email{}, err
	}
	return email, nil
}

// CreateEmail submits an email for analysis outside of any inbox sync.
// An invalid payload fails with model.ErrInvalidInput and nothing is sent.
func (c *Client) CreateEmail(ctx context.Context, in model.EmailCreate) (model.Email, error) {
	if err := in.Validate(); err != nil {
		return model.Email{}, err
	}
	var created model.Email
	if err := c.do(ctx, call{op: opCreateEmail, method: http.MethodPost, path: "/emails/", body: in, out: &created}); err != nil {
		return model.Email{}, err
	}
	return created, nil
}

// DeleteEmail removes one email.
func (c *Client) DeleteEmail(ctx context.Context, id int64) error {
	return c.do(ctx, call{op: opDeleteEmail, method: http.MethodDelete, path: emailPath(id, "")})
}

// RerunAnalysis discards an email's analysis and queues a new one. The new
// result is not returned; it shows up on a later GetEmail or ListEmails.
func (c *Client) RerunAnalysis(ctx context.Context, emailID int64) error {
	return c.do(ctx, call{op: opRerunAnalysis, method: http.MethodPatch, path: emailPath(emailID, "/analysis")})
}
