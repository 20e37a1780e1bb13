// Package report records user-submitted error reports.
//
// Reports are validated and written to the structured log. Nothing is sent
// over the network.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits, in runes.
const (
	MaxMessageLength     = 1000
	MaxStackLength       = 10000
	MaxDescriptionLength = 2000
	MaxEmailLength       = 254
	MaxUserAgentLength   = 512
)

// Sentinel errors for report validation.
var (
	ErrMissingMessage = errors.New("error message is required")
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrFieldTooLong   = errors.New("field too long")
)

// Record is one error report.
type Record struct {
	ErrorMessage string `json:"errorMessage"`
	StackTrace   string `json:"stackTrace,omitempty"`
	Description  string `json:"description,omitempty"`
	Email        string `json:"email,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"` // RFC 3339
	UserAgent    string `json:"userAgent,omitempty"`
}

// Validate checks required fields and limits.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.ErrorMessage) == "" {
		return ErrMissingMessage
	}
	if r.Email != "" && !strings.Contains(r.Email, "@") {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, r.Email)
	}
	if r.Timestamp != "" {
		if _, err := time.Parse(time.RFC3339, r.Timestamp); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"errorMessage", r.ErrorMessage, MaxMessageLength},
		{"stackTrace", r.StackTrace, MaxStackLength},
		{"description", r.Description, MaxDescriptionLength},
		{"email", r.Email, MaxEmailLength},
		{"userAgent", r.UserAgent, MaxUserAgentLength},
	} {
		if utf8.RuneCountInString(f.value) > f.max {
			return fmt.Errorf("%w: %s exceeds %d characters", ErrFieldTooLong, f.name, f.max)
		}
	}
	return nil
}

// Logger accepts reports and writes them to a structured log.
type Logger struct {
	log *slog.Logger
	now func() time.Time
}

// NewLogger creates a Logger. A nil logger discards reports.
func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Logger{log: log, now: time.Now}
}

// Submit validates r, stamps it when it has no timestamp and logs it at
// error level.
func (l *Logger) Submit(ctx context.Context, r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Timestamp == "" {
		r.Timestamp = l.now().UTC().Format(time.RFC3339)
	}

	l.log.LogAttrs(ctx, slog.LevelError, "error report",
		slog.String("message", r.ErrorMessage),
		slog.String("description", r.Description),
		slog.String("email", r.Email),
		slog.String("timestamp", r.Timestamp),
		slog.String("userAgent", r.UserAgent),
		slog.String("stack", r.StackTrace),
	)
	return nil
}
