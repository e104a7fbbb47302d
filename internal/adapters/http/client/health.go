package client

import (
	"context"
	"net/http"
)

const opPing = "ping"

// Status is the backend's root greeting.
type Status struct {
	Message string `json:"message"`
}

// Ping fetches the backend root, which answers when the API is up.
func (c *Client) Ping(ctx context.Context) (Status, error) {
	var s Status
	if err := c.do(ctx, call{op: opPing, method: http.MethodGet, path: "/", out: &s}); err != nil {
		return Status{}, err
	}
	return s, nil
}
