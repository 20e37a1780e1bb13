package pipeline

import (
	"bytes"
	"context"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alnah/go-mdview/internal/diagram"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// DefaultHighlightStyle is the chroma style used for fenced code.
const DefaultHighlightStyle = "onedark"

// DefaultRunnableLanguages are the fence languages that get the demo Run action.
var DefaultRunnableLanguages = []string{"javascript", "python", "bash"}

// displayRendererPriority sits ahead of goldmark's defaults (1000) and the
// GFM table renderer (500).
const displayRendererPriority = 100

// Result is the output of one conversion.
type Result struct {
	// HTML is the article fragment. Diagram blocks are placeholders.
	HTML string
	// Diagrams lists distinct diagram sources in document order.
	Diagrams []diagram.Source
}

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (*Result, error)
}

// Options configures a Converter.
type Options struct {
	HighlightStyle    string
	LineNumbers       bool
	RunnableLanguages []string
	Sanitize          bool
}

// Converter renders Markdown with goldmark and the viewer display policy.
type Converter struct {
	md           goldmark.Markdown
	preprocessor MarkdownPreprocessor
	policy       *bluemonday.Policy
}

// NewConverter creates a Converter. Zero-value options select the defaults.
func NewConverter(opts Options) *Converter {
	style := opts.HighlightStyle
	if style == "" {
		style = DefaultHighlightStyle
	}
	runnable := opts.RunnableLanguages
	if runnable == nil {
		runnable = DefaultRunnableLanguages
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			Math,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithGuessLanguage(false),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
					chromahtml.WithLineNumbers(opts.LineNumbers),
				),
				highlighting.WithWrapperRenderer(newCodeBlockWrapper(runnable).render),
			),
		),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(
				util.Prioritized(&headingIDTransformer{}, 100),
				util.Prioritized(&diagramTransformer{}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(), // raw HTML passthrough
			renderer.WithNodeRenderers(
				util.Prioritized(newDisplayRenderer(), displayRendererPriority),
			),
		),
	)

	c := &Converter{
		md:           md,
		preprocessor: &CommonMarkPreprocessor{},
	}
	if opts.Sanitize {
		c.policy = newSanitizePolicy()
	}
	return c
}

// ToHTML renders content to an article fragment.
// Goldmark has no context support, so conversion runs in a goroutine and the
// caller returns as soon as ctx is done.
func (c *Converter) ToHTML(ctx context.Context, content string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		res *Result
		err error
	}

	done := make(chan result, 1)

	go func() {
		res, err := c.convert(ctx, content)
		done <- result{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.res, r.err
	}
}

func (c *Converter) convert(ctx context.Context, content string) (*Result, error) {
	src := []byte(c.preprocessor.PreprocessMarkdown(ctx, content))
	doc := c.md.Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	if err := c.md.Renderer().Render(&buf, src, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	out := buf.String()
	if c.policy != nil {
		out = c.policy.Sanitize(out)
	}

	return &Result{
		HTML:     ConvertMarkPlaceholders(out),
		Diagrams: collectDiagrams(doc),
	}, nil
}

// collectDiagrams lists the distinct diagram sources of doc in order.
func collectDiagrams(doc ast.Node) []diagram.Source {
	var sources []diagram.Source
	seen := make(map[string]bool)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		d, ok := n.(*DiagramBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if !seen[d.Key] {
			seen[d.Key] = true
			sources = append(sources, diagram.Source{Key: d.Key, Source: d.Source})
		}
		return ast.WalkSkipChildren, nil
	})
	return sources
}

// Compile-time interface check.
var _ HTMLConverter = (*Converter)(nil)
