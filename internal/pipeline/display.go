package pipeline

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// defaultImageName is the download name for images without alt text.
const defaultImageName = "image.png"

// displayRenderer overrides goldmark's default output for the constructs the
// viewer decorates: headings, tables, blockquotes, links, images, inline code
// and diagram blocks. Everything else keeps the default rendering.
type displayRenderer struct {
	html.Config
}

func newDisplayRenderer() *displayRenderer {
	return &displayRenderer{Config: html.NewConfig()}
}

// SetOption implements renderer.SetOptioner so html.WithUnsafe and friends apply.
func (r *displayRenderer) SetOption(name renderer.OptionName, value any) {
	r.Config.SetOption(name, value)
}

func (r *displayRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, r.renderHeading)
	reg.Register(ast.KindBlockquote, r.renderBlockquote)
	reg.Register(ast.KindLink, r.renderLink)
	reg.Register(ast.KindAutoLink, r.renderAutoLink)
	reg.Register(ast.KindImage, r.renderImage)
	reg.Register(ast.KindCodeSpan, r.renderCodeSpan)
	reg.Register(east.KindTable, r.renderTable)
	reg.Register(KindDiagramBlock, r.renderDiagramBlock)
}

func (r *displayRenderer) renderHeading(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	if entering {
		_, _ = w.WriteString("<h")
		_ = w.WriteByte("0123456"[n.Level])
		if n.Attributes() != nil {
			html.RenderAttributes(w, node, html.HeadingAttributeFilter)
		}
		_ = w.WriteByte('>')
		if n.Level == collapsibleLevel {
			_, _ = w.WriteString(`<button type="button" class="section-toggle" aria-expanded="true" aria-label="Collapse section"></button>`)
		}
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("</h")
	_ = w.WriteByte("0123456"[n.Level])
	_, _ = w.WriteString(">\n")
	return ast.WalkContinue, nil
}

func (r *displayRenderer) renderTable(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<div class=\"table-scroll\">\n<table")
		if node.Attributes() != nil {
			html.RenderAttributes(w, node, html.GlobalAttributeFilter)
		}
		_, _ = w.WriteString(">\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("</table>\n</div>\n")
	return ast.WalkContinue, nil
}

func (r *displayRenderer) renderBlockquote(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<blockquote class="callout"`)
		if node.Attributes() != nil {
			html.RenderAttributes(w, node, html.BlockquoteAttributeFilter)
		}
		_, _ = w.WriteString(">\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("</blockquote>\n")
	return ast.WalkContinue, nil
}

// renderLink marks '#' links as in-document anchors and sends every other
// link to a new browsing context.
func (r *displayRenderer) renderLink(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(`<a href="`)
	if r.Unsafe || !html.IsDangerousURL(n.Destination) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	}
	_ = w.WriteByte('"')
	if n.Title != nil {
		_, _ = w.WriteString(` title="`)
		r.Writer.Write(w, n.Title)
		_ = w.WriteByte('"')
	}
	writeLinkTarget(w, n.Destination)
	if n.Attributes() != nil {
		html.RenderAttributes(w, n, html.LinkAttributeFilter)
	}
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}

func (r *displayRenderer) renderAutoLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.AutoLink)
	if !entering {
		return ast.WalkContinue, nil
	}

	url := n.URL(source)
	_, _ = w.WriteString(`<a href="`)
	if n.AutoLinkType == ast.AutoLinkEmail && !bytes.HasPrefix(bytes.ToLower(url), []byte("mailto:")) {
		_, _ = w.WriteString("mailto:")
	}
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(url, false)))
	_ = w.WriteByte('"')
	writeLinkTarget(w, url)
	_ = w.WriteByte('>')
	_, _ = w.Write(util.EscapeHTML(n.Label(source)))
	_, _ = w.WriteString("</a>")
	return ast.WalkContinue, nil
}

// writeLinkTarget writes the attributes that classify a link by its href.
func writeLinkTarget(w util.BufWriter, dest []byte) {
	if anchor, ok := bytes.CutPrefix(dest, []byte("#")); ok {
		_, _ = w.WriteString(` class="anchor-link" data-anchor="`)
		_, _ = w.Write(util.EscapeHTML(anchor))
		_ = w.WriteByte('"')
		return
	}
	_, _ = w.WriteString(` target="_blank" rel="noopener noreferrer"`)
}

// renderImage wraps every image in a lightbox with a caption from the alt
// text and a download action.
func (r *displayRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)

	src := []byte{}
	if r.Unsafe || !html.IsDangerousURL(n.Destination) {
		src = util.EscapeHTML(util.URLEscape(n.Destination, true))
	}
	alt := plainText(n, source)

	_, _ = w.WriteString(`<span class="lightbox" data-lightbox><img src="`)
	_, _ = w.Write(src)
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(util.EscapeHTML(alt))
	_ = w.WriteByte('"')
	if n.Title != nil {
		_, _ = w.WriteString(` title="`)
		r.Writer.Write(w, n.Title)
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString(` loading="lazy">`)
	if len(alt) > 0 {
		_, _ = w.WriteString(`<span class="lightbox-caption">`)
		_, _ = w.Write(util.EscapeHTML(alt))
		_, _ = w.WriteString(`</span>`)
	}
	_, _ = w.WriteString(`<a class="lightbox-download" href="`)
	_, _ = w.Write(src)
	_, _ = w.WriteString(`" download="`)
	if len(alt) > 0 {
		_, _ = w.Write(util.EscapeHTML(alt))
	} else {
		_, _ = w.WriteString(defaultImageName)
	}
	_, _ = w.WriteString(`">Download</a></span>`)
	return ast.WalkSkipChildren, nil
}

func (r *displayRenderer) renderCodeSpan(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</code>")
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(`<code class="inline-code">`)
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		var value []byte
		switch t := c.(type) {
		case *ast.Text:
			value = t.Segment.Value(source)
		case *ast.String:
			value = t.Value
		default:
			continue
		}
		if bytes.HasSuffix(value, []byte("\n")) {
			r.Writer.RawWrite(w, value[:len(value)-1])
			r.Writer.RawWrite(w, []byte(" "))
		} else {
			r.Writer.RawWrite(w, value)
		}
	}
	return ast.WalkSkipChildren, nil
}

// plainText concatenates the text content under n.
func plainText(n ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.Write(plainText(c, source))
		}
	}
	return buf.Bytes()
}
