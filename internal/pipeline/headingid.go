package pipeline

import (
	"strings"

	"github.com/alnah/go-mdview/internal/outline"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// collapsibleLevel is the heading level that gets a collapse toggle.
const collapsibleLevel = 1

// headingIDTransformer assigns anchor ids with the outline slug rule, so the
// ids match the sidebar and search entries. Duplicate captions share an id.
type headingIDTransformer struct{}

func (t *headingIDTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		caption := outline.Caption(headingSource(h, source))
		if caption != "" {
			h.SetAttributeString("id", []byte(outline.Slugify(caption)))
		}
		if h.Level == collapsibleLevel {
			h.SetAttributeString("class", []byte("collapsible"))
		}
		return ast.WalkSkipChildren, nil
	})
}

// headingSource returns the raw Markdown of a heading's content.
func headingSource(h *ast.Heading, source []byte) string {
	lines := h.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		parts = append(parts, string(seg.Value(source)))
	}
	return strings.Join(parts, " ")
}
