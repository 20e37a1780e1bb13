// Package search provides fuzzy search over a document's headings and the
// text that follows them.
//
// An Index is built from one document snapshot and never updated; callers
// build a new Index when the document changes.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/alnah/go-mdview/internal/outline"
)

// Defaults for Options.
const (
	DefaultMaxResults    = 5
	DefaultFuzziness     = 1
	DefaultPreviewLength = 100
	DefaultMaxLevel      = 3

	// MaxFuzziness is the largest edit distance bleve accepts.
	MaxFuzziness = 2

	// longTermRunes is the length from which a fuzzy term tolerates two
	// edits, enough for one transposed letter pair.
	longTermRunes = 6

	previewLines = 2
	headingBoost = 2.0
	prefixBoost  = 1.5
)

// Index field names.
const (
	fieldHeading = "heading"
	fieldPreview = "preview"
)

// Options configures an Index. Zero values select the defaults, except
// Fuzziness: 0 is exact matching. Start from DefaultOptions for fuzzy search.
type Options struct {
	MaxResults    int
	Fuzziness     int
	PreviewLength int
	MaxLevel      int
}

// DefaultOptions returns the options used by the viewer.
func DefaultOptions() Options {
	return Options{
		MaxResults:    DefaultMaxResults,
		Fuzziness:     DefaultFuzziness,
		PreviewLength: DefaultPreviewLength,
		MaxLevel:      DefaultMaxLevel,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	o.Fuzziness = max(0, min(o.Fuzziness, MaxFuzziness))
	if o.PreviewLength <= 0 {
		o.PreviewLength = DefaultPreviewLength
	}
	if o.MaxLevel <= 0 || o.MaxLevel > outline.MaxLevel {
		o.MaxLevel = DefaultMaxLevel
	}
	return o
}

// Entry is one searchable heading.
type Entry struct {
	Heading string
	ID      string
	Level   int
	Preview string
}

// Result is a ranked match.
type Result struct {
	Entry
	Score float64
}

// Index is an in-memory fuzzy index over the entries of one document.
// Safe for concurrent queries.
type Index struct {
	opts    Options
	entries []Entry
	idx     bleve.Index
}

// Build derives the entries of doc and indexes them.
func Build(doc string, opts Options) (*Index, error) {
	opts = opts.withDefaults()
	entries := Entries(doc, opts.MaxLevel, opts.PreviewLength)

	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndex, err)
	}

	batch := idx.NewBatch()
	for i, e := range entries {
		if err := batch.Index(docID(i), map[string]interface{}{
			fieldHeading: e.Heading,
			fieldPreview: e.Preview,
		}); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("%w: %v", ErrIndex, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("%w: %v", ErrIndex, err)
	}

	return &Index{opts: opts, entries: entries, idx: idx}, nil
}

// Entries returns the searchable headings of doc up to maxLevel. The preview
// is the two lines after the heading line, joined by a space, trimmed and
// cut to previewLength runes.
func Entries(doc string, maxLevel, previewLength int) []Entry {
	lines := strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n")
	headings := outline.Extract(doc, maxLevel)

	entries := make([]Entry, 0, len(headings))
	for _, h := range headings {
		start := h.Line + 1
		end := min(start+previewLines, len(lines))
		var preview string
		if start < end {
			preview = strings.TrimSpace(strings.Join(lines[start:end], " "))
		}
		entries = append(entries, Entry{
			Heading: h.Text,
			ID:      h.ID,
			Level:   h.Level,
			Preview: truncateRunes(preview, previewLength),
		})
	}
	return entries
}

// Len returns the number of indexed entries.
func (x *Index) Len() int {
	return len(x.entries)
}

// Query returns at most MaxResults entries matching q, best first.
// A blank query matches nothing.
func (x *Index) Query(ctx context.Context, q string) ([]Result, error) {
	q = strings.TrimSpace(q)
	if q == "" || len(x.entries) == 0 {
		return []Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(x.buildQuery(q), x.opts.MaxResults, 0, false)
	req.SortBy([]string{"-_score", "_id"})

	res, err := x.idx.SearchInContext(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	results := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		i, ok := parseDocID(hit.ID)
		if !ok || i >= len(x.entries) {
			continue
		}
		results = append(results, Result{Entry: x.entries[i], Score: hit.Score})
	}
	return results, nil
}

// Close releases the index.
func (x *Index) Close() error {
	return x.idx.Close()
}

// buildQuery matches each word of q fuzzily against heading and preview,
// and the last word as a heading prefix for type-ahead.
func (x *Index) buildQuery(q string) query.Query {
	words := strings.Fields(strings.ToLower(q))

	disjuncts := make([]query.Query, 0, 2*len(words)+1)
	for _, w := range words {
		fuzziness := x.termFuzziness(w)

		heading := bleve.NewMatchQuery(w)
		heading.SetField(fieldHeading)
		heading.SetFuzziness(fuzziness)
		heading.SetBoost(headingBoost)

		preview := bleve.NewMatchQuery(w)
		preview.SetField(fieldPreview)
		preview.SetFuzziness(fuzziness)

		disjuncts = append(disjuncts, heading, preview)
	}

	if last := words[len(words)-1]; utf8.RuneCountInString(last) >= 2 {
		prefix := bleve.NewPrefixQuery(last)
		prefix.SetField(fieldHeading)
		prefix.SetBoost(prefixBoost)
		disjuncts = append(disjuncts, prefix)
	}

	return bleve.NewDisjunctionQuery(disjuncts...)
}

func docID(i int) string {
	return fmt.Sprintf("%06d", i)
}

func parseDocID(id string) (int, bool) {
	i, err := strconv.Atoi(id)
	return i, err == nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// termFuzziness widens the edit distance to MaxFuzziness for long words, so
// a swapped letter pair still matches. Exact matching stays exact.
func (x *Index) termFuzziness(word string) int {
	if x.opts.Fuzziness == 0 {
		return 0
	}
	if utf8.RuneCountInString(word) >= longTermRunes {
		return MaxFuzziness
	}
	return x.opts.Fuzziness
}
