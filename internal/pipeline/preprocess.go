package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Highlight placeholders use Unicode Private Use Area characters.
// They pass through goldmark unchanged and become <mark> tags after rendering.
const (
	MarkStartPlaceholder = "\uE000"
	MarkEndPlaceholder   = "\uE001"
)

var (
	crlfOrCR         = regexp.MustCompile(`\r\n?`)
	highlightPattern = regexp.MustCompile(`==([^=\n]+?)==`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor applies transformations before goldmark parsing.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown normalizes line endings, then converts ==highlight== and
// limits blank runs to one empty line outside code fences.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	content = convertHighlights(content)
	content = compressBlankLines(content)
	return content
}

func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines keeps at most one empty line in a row. Fenced code is
// left untouched.
func compressBlankLines(content string) string {
	lines := strings.Split(content, "\n")
	out := lines[:0]
	var fence fenceTracker
	prevBlank := false
	for _, line := range lines {
		if fence.step(line) {
			out = append(out, line)
			prevBlank = false
			continue
		}
		blank := line == ""
		if blank && prevBlank {
			continue
		}
		prevBlank = blank
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// convertHighlights replaces ==text== with placeholder markers on lines that
// are not inside a fenced code block.
func convertHighlights(content string) string {
	if !strings.Contains(content, "==") {
		return content
	}

	lines := strings.Split(content, "\n")
	var fence fenceTracker
	for i, line := range lines {
		if fence.step(line) {
			continue
		}
		lines[i] = highlightPattern.ReplaceAllString(line, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
	}
	return strings.Join(lines, "\n")
}

// ConvertMarkPlaceholders turns highlight placeholders into <mark> tags.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}

// fenceTracker follows fenced code blocks line by line. A fence closes only
// on a run of the opening character at least as long, with nothing after it.
type fenceTracker struct {
	open string
}

// step reports whether line is a fence line or lies inside a fenced block.
func (f *fenceTracker) step(line string) bool {
	marker, rest := fenceRun(line)
	if f.open == "" {
		f.open = marker
		return marker != ""
	}
	if marker != "" && marker[0] == f.open[0] && len(marker) >= len(f.open) && strings.TrimSpace(rest) == "" {
		f.open = ""
	}
	return true
}

// fenceRun splits a fence line into its ``` or ~~~ run and the remainder.
// marker is "" when the line is not a fence.
func fenceRun(line string) (marker, rest string) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return "", ""
	}
	for _, c := range []byte{'`', '~'} {
		n := 0
		for n < len(trimmed) && trimmed[n] == c {
			n++
		}
		if n >= 3 {
			return trimmed[:n], trimmed[n:]
		}
	}
	return "", ""
}
