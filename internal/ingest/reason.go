package ingest

import (
	"errors"
	"strings"
)

// ReasonOf maps a validation error to its Reason.
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, ErrInvalidType):
		return ReasonInvalidType
	case errors.Is(err, ErrTooLarge):
		return ReasonTooLarge
	case errors.Is(err, ErrEmpty):
		return ReasonEmpty
	case errors.Is(err, ErrUnclosedCodeBlock):
		return ReasonUnclosedCodeBlock
	default:
		return ReasonReadFailure
	}
}

// MessageOf returns the text shown to the user for a rejected file.
func MessageOf(err error) string {
	switch ReasonOf(err) {
	case ReasonNone:
		return ""
	case ReasonInvalidType:
		return "Invalid file type. Only .md and .markdown files are supported."
	case ReasonTooLarge:
		return "File too large. Maximum size is 10MB."
	case ReasonEmpty:
		return "File is empty."
	case ReasonUnclosedCodeBlock:
		return "Unclosed code block detected. Please check your markdown syntax."
	default:
		return "Failed to read file: " + readCause(err)
	}
}

// readCause strips the sentinel prefix from a read failure.
func readCause(err error) string {
	msg := err.Error()
	if cause, ok := strings.CutPrefix(msg, ErrReadFailure.Error()+": "); ok {
		return cause
	}
	return msg
}
