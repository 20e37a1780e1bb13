package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
)

// docxParagraphs decodes data and returns the text of every paragraph.
func docxParagraphs(t *testing.T, data []byte) []string {
	t.Helper()

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("docx.Parse() error = %v", err)
	}

	var paras []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		var b strings.Builder
		for _, child := range para.Children {
			run, ok := child.(*docx.Run)
			if !ok {
				continue
			}
			for _, rc := range run.Children {
				if txt, ok := rc.(*docx.Text); ok {
					b.WriteString(txt.Text)
				}
			}
		}
		paras = append(paras, b.String())
	}
	return paras
}

func containsParagraph(paras []string, pred func(string) bool) bool {
	for _, p := range paras {
		if pred(p) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// TestDOCXExporter - Native Word output
// ---------------------------------------------------------------------------

func TestDOCXExporter_Export(t *testing.T) {
	t.Parallel()

	doc := "# notes.md\n\nSome **bold** and `code` text.\n\n- apple\n- pear\n\n1. first\n2. second\n\n```go\nfmt.Println(1)\n```\n\n---\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"

	data, err := NewDOCXExporter(DefaultFooter()).Export(context.Background(), doc)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatalf("Export() output is not a zip container")
	}

	paras := docxParagraphs(t, data)

	tests := []struct {
		name string
		pred func(string) bool
	}{
		{name: "heading text", pred: func(p string) bool { return strings.TrimSpace(p) == "notes.md" }},
		{name: "paragraph keeps inline text", pred: func(p string) bool { return p == "Some bold and code text." }},
		{name: "bullet item", pred: func(p string) bool { return strings.Contains(p, "•") && strings.Contains(p, "apple") }},
		{name: "numbered item", pred: func(p string) bool { return strings.Contains(p, "2.") && strings.Contains(p, "second") }},
		{name: "code line", pred: func(p string) bool { return p == "fmt.Println(1)" }},
		{name: "table row", pred: func(p string) bool { return strings.Contains(p, "1 | 2") }},
		{name: "footer", pred: func(p string) bool { return p == DefaultFooterText }},
		{name: "attribution", pred: func(p string) bool { return p == DefaultAttribution }},
	}
	for _, tt := range tests {
		if !containsParagraph(paras, tt.pred) {
			t.Errorf("%s: no matching paragraph in %q", tt.name, paras)
		}
	}
}

func TestDOCXExporter_NoFooter(t *testing.T) {
	t.Parallel()

	data, err := NewDOCXExporter(Footer{}).Export(context.Background(), "plain text")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	paras := docxParagraphs(t, data)
	if containsParagraph(paras, func(p string) bool { return p == DefaultFooterText }) {
		t.Errorf("Export() with empty footer wrote a footer: %q", paras)
	}
}

func TestDOCXExporter_Errors(t *testing.T) {
	t.Parallel()

	e := NewDOCXExporter(DefaultFooter())
	if _, err := e.Export(context.Background(), " \n "); !errors.Is(err, ErrEmptyArticle) {
		t.Errorf("Export(blank) error = %v, want ErrEmptyArticle", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Export(ctx, "# x"); !errors.Is(err, context.Canceled) {
		t.Errorf("Export(cancelled) error = %v, want context.Canceled", err)
	}
}
