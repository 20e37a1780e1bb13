package pipeline

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindMathSpan is the node kind of MathSpan.
var KindMathSpan = ast.NewNodeKind("MathSpan")

// MathSpan is a $...$ (inline) or $$...$$ (display) LaTeX span. The
// expression is emitted verbatim inside \( \) or \[ \] delimiters for the
// client-side typesetter.
type MathSpan struct {
	ast.BaseInline
	Expr    []byte
	Display bool
}

// Kind implements ast.Node.
func (n *MathSpan) Kind() ast.NodeKind { return KindMathSpan }

// Dump implements ast.Node.
func (n *MathSpan) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Expr": string(n.Expr)}, nil)
}

type mathParser struct{}

func (p *mathParser) Trigger() []byte {
	return []byte{'$'}
}

// Parse reads a math span from the current line. Inline spans must not start
// or end with a space, so prices such as "$5 and $10" stay text.
func (p *mathParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	delim := []byte("$")
	if bytes.HasPrefix(line, []byte("$$")) {
		delim = []byte("$$")
	}

	rest := line[len(delim):]
	end := bytes.Index(rest, delim)
	if end <= 0 {
		return nil
	}
	expr := rest[:end]
	display := len(delim) == 2
	if !display && (expr[0] == ' ' || expr[len(expr)-1] == ' ') {
		return nil
	}

	block.Advance(len(delim)*2 + end)
	return &MathSpan{Expr: append([]byte(nil), expr...), Display: display}
}

type mathRenderer struct{}

func (r *mathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMathSpan, r.render)
}

func (r *mathRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*MathSpan)
	if n.Display {
		_, _ = w.WriteString(`<span class="math math-display">\[`)
		_, _ = w.Write(util.EscapeHTML(n.Expr))
		_, _ = w.WriteString(`\]</span>`)
	} else {
		_, _ = w.WriteString(`<span class="math math-inline">\(`)
		_, _ = w.Write(util.EscapeHTML(n.Expr))
		_, _ = w.WriteString(`\)</span>`)
	}
	return ast.WalkSkipChildren, nil
}

type mathExtension struct{}

// Math enables $...$ and $$...$$ spans.
var Math goldmark.Extender = &mathExtension{}

func (e *mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&mathParser{}, 500),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&mathRenderer{}, 500),
	))
}
