// Package outline derives the heading outline of a document.
//
// It is the only place headings are detected: the sidebar, the search index
// and the renderer's anchor ids all go through Extract, Caption and Slugify,
// so a heading listed in navigation always resolves to an anchor in the
// rendered view.
package outline

import (
	"regexp"
	"strings"
)

// MaxLevel is the deepest ATX heading level.
const MaxLevel = 6

// Heading is one entry of the document outline.
type Heading struct {
	Level int    // 1..6, number of leading '#'
	Text  string // trimmed caption
	ID    string // anchor id, see Slugify
	Line  int    // zero-based line index in the source text
}

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})[ \t]+(.+)$`)
	nonWordRun     = regexp.MustCompile(`[^A-Za-z0-9_]+`)
	closingHashes  = regexp.MustCompile(`(^|[ \t]+)#+[ \t]*$`)
)

// Slugify derives an anchor id from a caption: lowercase, then every maximal
// run of non-word characters collapses to a single hyphen.
// Leading and trailing hyphens are kept and equal captions give equal ids.
func Slugify(caption string) string {
	return nonWordRun.ReplaceAllString(strings.ToLower(caption), "-")
}

// Caption normalizes raw heading text: surrounding whitespace and an optional
// closing '#' sequence are removed.
func Caption(raw string) string {
	s := strings.TrimSpace(raw)
	if stripped := closingHashes.ReplaceAllString(s, ""); stripped != "" {
		s = stripped
	}
	return strings.TrimSpace(s)
}

// Extract returns the ATX headings of doc up to maxLevel, in source order.
// Lines inside fenced code blocks are ignored.
// A maxLevel outside 1..6 is treated as 6.
func Extract(doc string, maxLevel int) []Heading {
	if maxLevel < 1 || maxLevel > MaxLevel {
		maxLevel = MaxLevel
	}

	var headings []Heading
	var fence string
	for i, line := range splitLines(doc) {
		if marker, rest := fenceMarker(line); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case marker[0] == fence[0] && len(marker) >= len(fence) && strings.TrimSpace(rest) == "":
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}

		m := headingPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		level := len(m[1])
		if level > maxLevel {
			continue
		}
		text := Caption(m[2])
		if text == "" {
			continue
		}
		headings = append(headings, Heading{
			Level: level,
			Text:  text,
			ID:    Slugify(text),
			Line:  i,
		})
	}
	return headings
}

// splitLines splits on LF and drops a trailing CR so CRLF input matches too.
func splitLines(doc string) []string {
	lines := strings.Split(doc, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// fenceMarker returns the run of a fence line (``` or ~~~, three or more)
// and the text after it. marker is "" when the line is not a fence.
func fenceMarker(line string) (marker, rest string) {
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
