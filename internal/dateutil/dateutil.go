// Package dateutil expands the date stamp syntax used in export footers.
//
// A stamp is either literal text, "auto" for today's ISO date, or
// "auto:FORMAT" where FORMAT is a preset name or a token pattern.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxFormatLength limits pattern length.
const MaxFormatLength = 50

// DefaultFormat is used by a bare "auto".
const DefaultFormat = "YYYY-MM-DD"

const autoPrefix = "auto"

// tokens maps pattern tokens to Go layout parts, longest first.
var tokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named patterns accepted after "auto:".
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// Layout converts a token pattern such as "DD/MM/YYYY" to a Go time layout.
// Text inside brackets is copied literally: "[Exported] YYYY".
func Layout(pattern string) (string, error) {
	if pattern == "" {
		return "", fmt.Errorf("%w: pattern is empty", ErrInvalidDateFormat)
	}
	if len(pattern) > MaxFormatLength {
		return "", fmt.Errorf("%w: pattern exceeds %d characters", ErrInvalidDateFormat, MaxFormatLength)
	}

	var b strings.Builder
	b.Grow(len(pattern) + 8)

	for i := 0; i < len(pattern); {
		if pattern[i] == '[' {
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			b.WriteString(pattern[i+1 : i+1+end])
			i += end + 2
			continue
		}
		if layout, n := matchToken(pattern[i:]); n > 0 {
			b.WriteString(layout)
			i += n
			continue
		}
		b.WriteByte(pattern[i])
		i++
	}
	return b.String(), nil
}

func matchToken(s string) (string, int) {
	for _, t := range tokens {
		if strings.HasPrefix(s, t.token) {
			return t.layout, len(t.token)
		}
	}
	return "", 0
}

// Resolve expands stamp at time t. Values not starting with "auto" are
// returned unchanged.
func Resolve(stamp string, t time.Time) (string, error) {
	lower := strings.ToLower(stamp)
	if !strings.HasPrefix(lower, autoPrefix) {
		return stamp, nil
	}

	pattern := DefaultFormat
	if lower != autoPrefix {
		if !strings.HasPrefix(lower, autoPrefix+":") {
			return "", fmt.Errorf("%w: %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, stamp)
		}
		pattern = stamp[len(autoPrefix)+1:]
		if preset, ok := Presets[strings.ToLower(pattern)]; ok {
			pattern = preset
		}
	}

	layout, err := Layout(pattern)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// Validate reports whether stamp would resolve.
func Validate(stamp string) error {
	_, err := Resolve(stamp, time.Time{})
	return err
}
