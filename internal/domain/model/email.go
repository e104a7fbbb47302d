package model

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// EmailStatus is the backend's processing label for an email. The set is
// owned by the backend; unknown values are kept as-is.
type EmailStatus string

// Known statuses.
const (
	StatusPending    EmailStatus = "pending"
	StatusProcessing EmailStatus = "processing"
	StatusCompleted  EmailStatus = "completed"
	StatusFailed     EmailStatus = "failed"
)

// Email is a single ingested message.
type Email struct {
	ID         int64       `json:"id"`
	InboxID    int64       `json:"inbox_id"`
	Sender     string      `json:"sender"`
	Receiver   string      `json:"receiver"`
	Subject    string      `json:"subject"`
	Body       string      `json:"body"`
	Status     EmailStatus `json:"status"`
	ReceivedAt string      `json:"received_at"`

	// Analysis is nil until classification has run.
	Analysis *Analysis `json:"analysis,omitempty"`
}

// Analyzed reports whether classification results are attached.
func (e Email) Analyzed() bool {
	return e.Analysis != nil
}

// ReceivedTime parses ReceivedAt.
func (e Email) ReceivedTime() (time.Time, error) {
	return ParseTimestamp(e.ReceivedAt)
}

// Analysis is the classification result for an email.
type Analysis struct {
	Category      string  `json:"category"`
	PriorityScore float64 `json:"priority_score"`
	Summary       string  `json:"summary"`
	ProcessedAt   string  `json:"processed_at"`
}

// ProcessedTime parses ProcessedAt.
func (a Analysis) ProcessedTime() (time.Time, error) {
	return ParseTimestamp(a.ProcessedAt)
}

// EmailCreate is the payload for submitting an email directly for analysis.
type EmailCreate struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

// Validate checks addresses and that there is something to analyze.
// Display names are allowed in both addresses.
func (in EmailCreate) Validate() error {
	for _, f := range []struct{ name, v string }{
		{"sender", in.Sender},
		{"receiver", in.Receiver},
	} {
		if strings.TrimSpace(f.v) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, f.name)
		}
		if _, err := mail.ParseAddress(f.v); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidInput, f.name, err)
		}
	}
	if strings.TrimSpace(in.Subject) == "" && strings.TrimSpace(in.Body) == "" {
		return fmt.Errorf("%w: subject and body are both empty", ErrInvalidInput)
	}
	return nil
}
