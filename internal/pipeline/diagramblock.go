package pipeline

import (
	"bytes"

	"github.com/alnah/go-mdview/internal/diagram"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// DiagramLanguage is the fence language routed to the diagram renderer.
const DiagramLanguage = "mermaid"

// KindDiagramBlock is the node kind of DiagramBlock.
var KindDiagramBlock = ast.NewNodeKind("DiagramBlock")

// DiagramBlock replaces a mermaid fenced code block. It renders as a
// placeholder and is never syntax highlighted.
type DiagramBlock struct {
	ast.BaseBlock
	Source string
	Key    string
}

// NewDiagramBlock creates a DiagramBlock keyed by its source content.
func NewDiagramBlock(source string) *DiagramBlock {
	return &DiagramBlock{Source: source, Key: diagram.Key(source)}
}

// Kind implements ast.Node.
func (n *DiagramBlock) Kind() ast.NodeKind { return KindDiagramBlock }

// IsRaw implements ast.Node.
func (n *DiagramBlock) IsRaw() bool { return true }

// Dump implements ast.Node.
func (n *DiagramBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Key": n.Key}, nil)
}

// diagramTransformer swaps mermaid fences for DiagramBlock nodes.
type diagramTransformer struct{}

func (t *diagramTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	var fences []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if string(fcb.Language(source)) == DiagramLanguage {
			fences = append(fences, fcb)
		}
		return ast.WalkSkipChildren, nil
	})

	for _, fcb := range fences {
		var buf bytes.Buffer
		lines := fcb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(source))
		}
		parent := fcb.Parent()
		parent.ReplaceChild(parent, fcb, NewDiagramBlock(buf.String()))
	}
}

// renderDiagramBlock writes the placeholder for a DiagramBlock.
func (r *displayRenderer) renderDiagramBlock(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*DiagramBlock)
	_, _ = w.WriteString(diagram.Placeholder(n.Key))
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}
