package ingest

import "strings"

// Separators used when assembling a document.
const (
	batchSeparator = "\n\n"
	entrySeparator = "\n\n---\n\n"
)

// Entry is an accepted body paired with its source file name.
type Entry struct {
	Name string
	Body string
}

// Assemble appends entries to doc. Each entry becomes a level-1 heading with
// the file name, a blank line and the body; entries are joined by a thematic
// break and the batch is separated from doc by a blank line.
// Previously assembled text is never modified. No entries returns doc as is.
func Assemble(doc string, entries []Entry) string {
	if len(entries) == 0 {
		return doc
	}

	var b strings.Builder
	b.Grow(len(doc) + Overhead(entries) + bodiesLen(entries))
	b.WriteString(doc)
	b.WriteString(batchSeparator)
	for i, e := range entries {
		if i > 0 {
			b.WriteString(entrySeparator)
		}
		b.WriteString("# ")
		b.WriteString(e.Name)
		b.WriteString("\n\n")
		b.WriteString(e.Body)
	}
	return b.String()
}

// Overhead is the number of bytes Assemble adds around the bodies of entries.
func Overhead(entries []Entry) int {
	if len(entries) == 0 {
		return 0
	}
	n := len(batchSeparator) + len(entrySeparator)*(len(entries)-1)
	for _, e := range entries {
		n += len("# ") + len(e.Name) + len("\n\n")
	}
	return n
}

func bodiesLen(entries []Entry) int {
	n := 0
	for _, e := range entries {
		n += len(e.Body)
	}
	return n
}
