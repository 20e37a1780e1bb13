// Package ingest validates uploaded Markdown files and assembles accepted
// bodies into a single document.
package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize is the per-file upload limit (10 MiB).
const DefaultMaxFileSize int64 = 10 << 20

// fenceToken is counted to detect unclosed code blocks.
const fenceToken = "```"

// allowedExtensions lists accepted file extensions, lowercase.
var allowedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// Candidate is a file offered for upload.
// Open is called at most once and only after the name and size checks pass.
type Candidate struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// Reason classifies a validation outcome.
type Reason string

// Rejection reasons. ReasonNone marks an accepted file.
const (
	ReasonNone              Reason = ""
	ReasonInvalidType       Reason = "invalid_type"
	ReasonTooLarge          Reason = "too_large"
	ReasonReadFailure       Reason = "read_failure"
	ReasonEmpty             Reason = "empty"
	ReasonUnclosedCodeBlock Reason = "unclosed_code_block"
)

// Outcome is the immutable result of validating one candidate.
// Body is set only when Err is nil.
type Outcome struct {
	Name string
	Body string
	Err  error
}

// Accepted reports whether the candidate passed every check.
func (o Outcome) Accepted() bool {
	return o.Err == nil
}

// Reason maps the outcome error to its rejection reason.
func (o Outcome) Reason() Reason {
	return ReasonOf(o.Err)
}

// Message returns the user-facing rejection text, or "" when accepted.
func (o Outcome) Message() string {
	return MessageOf(o.Err)
}

// Validate classifies one candidate. Checks run in a fixed order and the first
// failing check decides the reason:
//  1. extension is .md or .markdown (case-insensitive)
//  2. size does not exceed limit
//  3. content is readable
//  4. content is not blank
//  5. the number of ``` markers is even
//
// A limit <= 0 uses DefaultMaxFileSize.
func Validate(c Candidate, limit int64) Outcome {
	if limit <= 0 {
		limit = DefaultMaxFileSize
	}
	out := Outcome{Name: c.Name}

	ext := strings.ToLower(filepath.Ext(c.Name))
	if !allowedExtensions[ext] {
		out.Err = fmt.Errorf("%w: %q", ErrInvalidType, c.Name)
		return out
	}

	if c.Size > limit {
		out.Err = fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, c.Size, limit)
		return out
	}

	text, err := read(c, limit)
	if err != nil {
		out.Err = err
		return out
	}

	if strings.TrimSpace(text) == "" {
		out.Err = ErrEmpty
		return out
	}

	if strings.Count(text, fenceToken)%2 != 0 {
		out.Err = fmt.Errorf("%w: %d fence markers", ErrUnclosedCodeBlock, strings.Count(text, fenceToken))
		return out
	}

	out.Body = normalizeLineEndings(text)
	return out
}

// ValidateBatch validates candidates in order. One rejection never affects its
// siblings. The context is checked between files only.
func ValidateBatch(ctx context.Context, candidates []Candidate, limit int64) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, Validate(c, limit))
	}
	return outcomes, nil
}

// read loads the candidate content. The reader is capped at limit+1 bytes so a
// candidate whose declared size understates its content is still rejected.
func read(c Candidate, limit int64) (string, error) {
	if c.Open == nil {
		return "", fmt.Errorf("%w: no content source", ErrReadFailure)
	}
	rc, err := c.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadFailure, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadFailure, err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%w: content exceeds %d bytes", ErrTooLarge, limit)
	}
	return string(data), nil
}

// normalizeLineEndings converts CRLF and lone CR to LF.
func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
