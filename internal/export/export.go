package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/alnah/go-mdview/internal/pipeline"
)

// Input is everything an export may need. Each format reads what it uses:
// HTML and DOC the article, PDF the page, DOCX the Markdown document.
type Input struct {
	Name     string // artifact base name, see FileName
	Title    string
	Document string // assembled Markdown
	Article  string // rendered article markup
	BaseDir  string // resolves relative images for PDF capture; may be empty
}

// Set dispatches exports to the per-format exporters. A nil exporter makes
// its format unsupported.
type Set struct {
	HTML *HTMLExporter
	PDF  *PDFExporter
	DOC  *DOCExporter
	DOCX *DOCXExporter
}

// Supports reports whether f can be exported.
func (s *Set) Supports(f Format) bool {
	switch f {
	case FormatHTML:
		return s.HTML != nil
	case FormatPDF:
		return s.PDF != nil && s.HTML != nil
	case FormatDOC:
		return s.DOC != nil
	case FormatDOCX:
		return s.DOCX != nil
	}
	return false
}

// Export produces the artifact for f.
func (s *Set) Export(ctx context.Context, f Format, in Input) (*Artifact, error) {
	if !s.Supports(f) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	if strings.TrimSpace(in.Document) == "" && strings.TrimSpace(in.Article) == "" {
		return nil, ErrEmptyArticle
	}

	name := in.Name
	if name == "" {
		name = DefaultName
	}

	var (
		data []byte
		err  error
	)
	switch f {
	case FormatHTML:
		data, err = s.HTML.Export(ctx, in.Title, in.Article)
	case FormatPDF:
		data, err = s.exportPDF(ctx, in)
	case FormatDOC:
		data, err = s.DOC.Export(ctx, in.Title, in.Article)
	case FormatDOCX:
		data, err = s.DOCX.Export(ctx, in.Document)
	}
	if err != nil {
		return nil, err
	}
	return NewArtifact(name, f, data), nil
}

func (s *Set) exportPDF(ctx context.Context, in Input) ([]byte, error) {
	page, err := s.HTML.Document(ctx, in.Title, in.Article, false)
	if err != nil {
		return nil, err
	}
	if in.BaseDir != "" {
		if page, err = pipeline.RewriteImagePaths(page, in.BaseDir); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCapture, err)
		}
	}
	return s.PDF.Export(ctx, page)
}
