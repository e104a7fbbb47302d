package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/intellinbox/internal/domain/model"
)

// Operation names used as metric labels.
const (
	opListInboxes       = "list_inboxes"
	opCreateInbox       = "create_inbox"
	opDeleteInbox       = "delete_inbox"
	opUpdateInboxStatus = "update_inbox_status"
	opSyncInbox         = "sync_inbox"
	opResetInbox        = "reset_inbox"
	opSyncAll           = "sync_all"
)

func inboxPath(id int64, suffix string) string {
	return "/inboxes/" + strconv.FormatInt(id, 10) + suffix
}

// ListInboxes returns every monitored inbox.
func (c *Client) ListInboxes(ctx context.Context) ([]model.Inbox, error) {
	var inboxes []model.Inbox
	err := c.do(ctx, call{op: opListInboxes, method: http.MethodGet, path: "/inboxes/", out: &inboxes})
	if err != nil {
		return nil, err
	}
	return inboxes, nil
}

// CreateInbox registers a new inbox. The payload is normalized and
// validated first; an invalid payload fails with model.ErrInvalidInput
// and nothing is sent. The backend starts the initial sync on its own.
func (c *Client) CreateInbox(ctx context.Context, in model.InboxCreate) (model.Inbox, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return model.Inbox{}, err
	}

	var q url.Values
	if in.SyncDays > 0 {
		q = url.Values{"sync_days": {strconv.Itoa(in.SyncDays)}}
	}

	var created model.Inbox
	err := c.do(ctx, call{op: opCreateInbox, method: http.MethodPost, path: "/inboxes/", query: q, body: in, out: &created})
	if err != nil {
		return model.Inbox{}, err
	}
	return created, nil
}

// DeleteInbox removes an inbox and, on the backend, its emails.
func (c *Client) DeleteInbox(ctx context.Context, id int64) error {
	return c.do(ctx, call{op: opDeleteInbox, method: http.MethodDelete, path: inboxPath(id, "")})
}

// UpdateInboxStatus activates or deactivates an inbox.
func (c *Client) UpdateInboxStatus(ctx context.Context, id int64, active bool) (model.Inbox, error) {
	var updated model.Inbox
	err := c.do(ctx, call{
		op:     opUpdateInboxStatus,
		method: http.MethodPatch,
		path:   inboxPath(id, "/status"),
		query:  url.Values{"is_active": {strconv.FormatBool(active)}},
		out:    &updated,
	})
	if err != nil {
		return model.Inbox{}, err
	}
	return updated, nil
}

// SyncInbox asks the backend to sync one inbox.
func (c *Client) SyncInbox(ctx context.Context, id int64) error {
	return c.do(ctx, call{op: opSyncInbox, method: http.MethodPost, path: inboxPath(id, "/sync")})
}

// ResetInbox asks the backend to drop an inbox's emails and re-import the
// last syncDays days.
func (c *Client) ResetInbox(ctx context.Context, id int64, syncDays int) error {
	if syncDays < 0 {
		return fmt.Errorf("%w: sync_days must not be negative", model.ErrInvalidInput)
	}
	return c.do(ctx, call{
		op:     opResetInbox,
		method: http.MethodPost,
		path:   inboxPath(id, "/reset"),
		query:  url.Values{"sync_days": {strconv.Itoa(syncDays)}},
	})
}

// TriggerSyncAll asks the backend to sync every active inbox.
func (c *Client) TriggerSyncAll(ctx context.Context) error {
	return c.do(ctx, call{op: opSyncAll, method: http.MethodPost, path: "/inboxes/syncall"})
}
