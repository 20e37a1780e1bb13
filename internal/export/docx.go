package export

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Run styling for DOCX output. Sizes are in half-points.
const (
	docxCodeFont   = "Consolas"
	docxCodeSize   = "20"
	docxFooterSize = "18"
	docxFooterTint = "6B7280"
	docxBullet     = "• "
)

var docxHeadingSizes = [...]string{"", "40", "34", "30", "26", "24", "22"}

// DOCXExporter encodes a document as native OOXML by walking its Markdown
// syntax tree.
type DOCXExporter struct {
	md     goldmark.Markdown
	footer Footer
}

// NewDOCXExporter creates a DOCXExporter.
func NewDOCXExporter(footer Footer) *DOCXExporter {
	return &DOCXExporter{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Footnote)),
		footer: footer,
	}
}

// Export returns the .docx encoding of the Markdown document doc.
func (e *DOCXExporter) Export(ctx context.Context, doc string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc) == "" {
		return nil, ErrEmptyArticle
	}

	src := []byte(doc)
	root := e.md.Parser().Parse(text.NewReader(src))

	w := &docxWriter{doc: docx.New().WithDefaultTheme(), src: src}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w.block(n, 0)
	}
	w.footer(e.footer)

	var buf bytes.Buffer
	if _, err := w.doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDOCX, err)
	}
	return buf.Bytes(), nil
}

type docxWriter struct {
	doc *docx.Docx
	src []byte
}

// runStyle is the inline formatting in effect while walking inlines.
type runStyle struct {
	bold, italic, code bool
}

func (w *docxWriter) block(n ast.Node, depth int) {
	switch n := n.(type) {
	case *ast.Heading:
		p := w.doc.AddParagraph().Style("Heading" + strconv.Itoa(n.Level))
		w.inlines(p, n, runStyle{bold: true}, docxHeadingSizes[n.Level])
	case *ast.Paragraph, *ast.TextBlock:
		w.inlines(w.doc.AddParagraph(), n, runStyle{}, "")
	case *ast.List:
		w.list(n, depth)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		w.code(n)
	case *ast.ThematicBreak:
		w.doc.AddParagraph()
	case *ast.Blockquote:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if para, ok := c.(*ast.Paragraph); ok {
				w.inlines(w.doc.AddParagraph(), para, runStyle{italic: true}, "")
				continue
			}
			w.block(c, depth)
		}
	case *east.Table:
		w.table(n)
	case *east.FootnoteList:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			w.block(c, depth)
		}
	case *east.Footnote:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			w.block(c, depth)
		}
	}
}

func (w *docxWriter) list(l *ast.List, depth int) {
	num := l.Start
	if num == 0 {
		num = 1
	}
	indent := strings.Repeat("    ", depth)
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := docxBullet
		if l.IsOrdered() {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		first := true
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				p := w.doc.AddParagraph()
				if first {
					p.AddText(indent + marker)
					first = false
				} else {
					p.AddText(indent + "    ")
				}
				w.inlines(p, c, runStyle{}, "")
			case *ast.List:
				w.list(c, depth+1)
			default:
				w.block(c, depth+1)
			}
		}
	}
}

func (w *docxWriter) code(n ast.Node) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(w.src)), "\r\n")
		p := w.doc.AddParagraph()
		p.AddText(line).Font(docxCodeFont, "", "", "cs").Size(docxCodeSize)
	}
}

func (w *docxWriter) table(t *east.Table) {
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(w.plain(cell)))
		}
		r := w.doc.AddParagraph().AddText(strings.Join(cells, " | "))
		if _, header := row.(*east.TableHeader); header {
			r.Bold()
		}
	}
}

// inlines appends the inline children of n to p as styled runs.
func (w *docxWriter) inlines(p *docx.Paragraph, n ast.Node, style runStyle, size string) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.inline(p, c, style, size)
	}
}

func (w *docxWriter) inline(p *docx.Paragraph, n ast.Node, style runStyle, size string) {
	switch n := n.(type) {
	case *ast.Text:
		s := string(n.Segment.Value(w.src))
		if n.SoftLineBreak() || n.HardLineBreak() {
			s += " "
		}
		w.run(p, s, style, size)
	case *ast.String:
		w.run(p, string(n.Value), style, size)
	case *ast.CodeSpan:
		style.code = true
		w.run(p, w.plain(n), style, size)
	case *ast.Emphasis:
		if n.Level >= 2 {
			style.bold = true
		} else {
			style.italic = true
		}
		w.inlines(p, n, style, size)
	case *ast.AutoLink:
		w.run(p, string(n.Label(w.src)), style, size)
	case *ast.Image:
		if alt := w.plain(n); alt != "" {
			w.run(p, "["+alt+"]", style, size)
		}
	case *ast.RawHTML:
		// markup has no Word equivalent
	default:
		w.inlines(p, n, style, size)
	}
}

func (w *docxWriter) run(p *docx.Paragraph, s string, style runStyle, size string) {
	if s == "" {
		return
	}
	r := p.AddText(s)
	if size != "" {
		r.Size(size)
	}
	if style.bold {
		r.Bold()
	}
	if style.italic {
		r.Italic()
	}
	if style.code {
		r.Font(docxCodeFont, "", "", "cs")
	}
}

// plain returns the concatenated text of n's descendants.
func (w *docxWriter) plain(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(w.src))
			if c.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func (w *docxWriter) footer(f Footer) {
	if f.Empty() {
		return
	}
	w.doc.AddParagraph()
	for _, line := range f.Lines() {
		w.doc.AddParagraph().Justification("center").
			AddText(line).Size(docxFooterSize).Color(docxFooterTint)
	}
}
