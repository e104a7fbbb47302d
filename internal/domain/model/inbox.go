// Package model contains the transfer types exchanged with the IntellInbox
// backend.
package model

import (
	"fmt"
	"net"
	"net/mail"
	"strconv"
	"strings"
	"time"
)

// DefaultIMAPServer is used when InboxCreate leaves the server empty.
const DefaultIMAPServer = "imap.gmail.com"

// Inbox is a monitored mailbox connection.
type Inbox struct {
	ID           int64  `json:"id"`
	EmailAddress string `json:"email_address"`
	IMAPServer   string `json:"imap_server"`
	IsActive     bool   `json:"is_active"`
	LastSynced   string `json:"last_synced"`
}

// LastSyncedTime parses LastSynced.
func (i Inbox) LastSyncedTime() (time.Time, error) {
	return ParseTimestamp(i.LastSynced)
}

// InboxCreate is the payload for registering a new inbox.
type InboxCreate struct {
	EmailAddress string `json:"email_address"`
	IMAPServer   string `json:"imap_server"`
	Password     string `json:"password"`
	IsActive     *bool  `json:"is_active,omitempty"`

	// SyncDays is the initial sync window. It travels as a query
	// parameter; zero leaves the backend default.
	SyncDays int `json:"-"`
}

// Normalize returns a copy with defaults applied and whitespace trimmed.
func (in InboxCreate) Normalize() InboxCreate {
	out := in
	out.EmailAddress = strings.TrimSpace(in.EmailAddress)
	out.IMAPServer = strings.TrimSpace(in.IMAPServer)
	if out.IMAPServer == "" {
		out.IMAPServer = DefaultIMAPServer
	}
	if out.IsActive == nil {
		active := true
		out.IsActive = &active
	}
	return out
}

// Validate checks the fields the backend requires. It does not apply
// defaults; call Normalize first.
func (in InboxCreate) Validate() error {
	if err := validateBareAddress("email_address", in.EmailAddress); err != nil {
		return err
	}
	if err := validateHost("imap_server", in.IMAPServer); err != nil {
		return err
	}
	if in.Password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if in.SyncDays < 0 {
		return fmt.Errorf("%w: sync_days must not be negative", ErrInvalidInput)
	}
	return nil
}

// validateBareAddress accepts "user@host" only, no display name.
func validateBareAddress(field, v string) error {
	if v == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	addr, err := mail.ParseAddress(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidInput, field, err)
	}
	if addr.Name != "" || addr.Address != v {
		return fmt.Errorf("%w: %s must be a bare address, got %q", ErrInvalidInput, field, v)
	}
	return nil
}

// validateHost accepts a host name or IP with an optional port.
func validateHost(field, v string) error {
	if v == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if strings.ContainsAny(v, "/ \t@") {
		return fmt.Errorf("%w: %s must be a host name, got %q", ErrInvalidInput, field, v)
	}
	host := v
	if strings.Contains(v, ":") && net.ParseIP(v) == nil {
		h, port, err := net.SplitHostPort(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidInput, field, err)
		}
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return fmt.Errorf("%w: %s: invalid port %q", ErrInvalidInput, field, port)
		}
		host = h
	}
	if host == "" {
		return fmt.Errorf("%w: %s: missing host", ErrInvalidInput, field)
	}
	return nil
}
