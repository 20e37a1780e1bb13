package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/alnah/go-mdview/internal/pipeline"
)

// CaptureRootID is the id of the element wrapping the exported article.
// The PDF surface captures this element and appends its footer to it.
const CaptureRootID = "markdown-preview"

// documentView is what the export template sees.
type documentView struct {
	Title     string
	CSS       template.CSS
	Article   template.HTML
	Footer    template.HTML
	CaptureID string
}

// HTMLExporter renders the standalone document: inline styles, the article
// and the footer, without the viewer frame.
type HTMLExporter struct {
	tmpl   *template.Template
	css    string
	footer Footer
}

// NewHTMLExporter parses the export template. css is inlined in every
// document.
// Returns ErrTemplate if the template does not place the article inside the
// capture root, or emits footer blocks of its own.
func NewHTMLExporter(tmplContent, css string, footer Footer) (*HTMLExporter, error) {
	tmpl, err := template.New("export").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	e := &HTMLExporter{tmpl: tmpl, css: css, footer: footer}
	if err := e.checkTemplate(); err != nil {
		return nil, err
	}
	return e, nil
}

// checkTemplate renders a sample document with and without the footer. The
// PDF capture needs the article under CaptureRootID and removes footers by
// FooterAttr, so both must hold for every export.
func (e *HTMLExporter) checkTemplate() error {
	const sample = `<p data-sample>sample</p>`
	for _, withFooter := range []bool{true, false} {
		page, err := e.Document(context.Background(), "sample", sample, withFooter)
		if err != nil {
			return err
		}

		inner, err := pipeline.ExtractByID(page, CaptureRootID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTemplate, err)
		}
		if !strings.Contains(inner, "data-sample") {
			return fmt.Errorf("%w: article is outside #%s", ErrTemplate, CaptureRootID)
		}

		n, err := pipeline.CountElementsWithAttr(page, FooterAttr)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTemplate, err)
		}
		want := 0
		if withFooter && !e.footer.Empty() {
			want = 1
		}
		if n != want {
			return fmt.Errorf("%w: %d footer blocks, want %d", ErrTemplate, n, want)
		}
	}
	return nil
}

// Export returns the standalone HTML document for article.
func (e *HTMLExporter) Export(ctx context.Context, title, article string) ([]byte, error) {
	page, err := e.Document(ctx, title, article, true)
	if err != nil {
		return nil, err
	}
	return []byte(page), nil
}

// Document renders the export template. withFooter controls whether the
// footer block is part of the markup.
func (e *HTMLExporter) Document(ctx context.Context, title, article string, withFooter bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(article) == "" {
		return "", ErrEmptyArticle
	}

	view := documentView{
		Title:     title,
		CSS:       template.CSS(e.css),    // #nosec G203 -- embedded or operator-supplied stylesheet
		Article:   template.HTML(article), // #nosec G203 -- produced by the render pipeline
		CaptureID: CaptureRootID,
	}
	if withFooter {
		view.Footer = template.HTML(e.footer.HTML()) // #nosec G203 -- escaped in Footer.HTML
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return buf.String(), nil
}

// Footer returns the footer configured on e.
func (e *HTMLExporter) Footer() Footer {
	return e.footer
}
