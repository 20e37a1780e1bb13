package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/alnah/go-mdview/internal/outline"
)

// ArticleID is the id of the element holding the rendered document in the
// viewer page. Exporters extract this subtree.
const ArticleID = "markdown-content"

// PageFile is a loaded file listed in the viewer sidebar.
type PageFile struct {
	Name string
	Size int64
}

// PageData is the input of the viewer template.
type PageData struct {
	Title       string
	Article     string // trusted HTML from Converter
	Headings    []outline.Heading
	Files       []PageFile
	Revision    uint64
	Footer      string
	Attribution string
}

// pageView is what the template sees.
type pageView struct {
	PageData
	ArticleHTML template.HTML
	ArticleID   string
}

// PageBuilder renders the viewer page around an article.
type PageBuilder struct {
	tmpl     *template.Template
	css      string
	injector CSSInjector
}

// NewPageBuilder parses the viewer template. css is injected into <head>.
func NewPageBuilder(tmplContent, css string) (*PageBuilder, error) {
	tmpl, err := template.New("viewer").Funcs(template.FuncMap{
		"indent": func(level int) int { return (level - 1) * 12 },
	}).Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing viewer template: %w", err)
	}
	return &PageBuilder{tmpl: tmpl, css: css, injector: &CSSInjection{}}, nil
}

// Build renders the complete viewer page.
func (b *PageBuilder) Build(ctx context.Context, data PageData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	view := pageView{
		PageData:    data,
		ArticleHTML: template.HTML(data.Article), // #nosec G203 -- produced by Converter
		ArticleID:   ArticleID,
	}
	if err := b.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return b.injector.InjectCSS(ctx, buf.String(), b.css), nil
}
