package mdview

import (
	"github.com/alnah/go-mdview/internal/export"
	"github.com/alnah/go-mdview/internal/ingest"
	"github.com/alnah/go-mdview/internal/outline"
	"github.com/alnah/go-mdview/internal/search"
)

// Heading is one entry of the document outline.
type Heading = outline.Heading

// SearchResult is one ranked search hit.
type SearchResult = search.Result

// UploadCandidate is a file offered for upload. Build one with
// CandidateFromBytes, CandidateFromPath or CandidateFromMultipart.
type UploadCandidate = ingest.Candidate

// Format is an export format.
type Format = export.Format

// Export formats.
const (
	FormatHTML = export.FormatHTML
	FormatPDF  = export.FormatPDF
	FormatDOC  = export.FormatDOC
	FormatDOCX = export.FormatDOCX
)

// FormatNames lists the export format names in menu order.
func FormatNames() []string {
	names := make([]string, 0, len(export.Formats))
	for _, f := range export.Formats {
		names = append(names, string(f))
	}
	return names
}

// Artifact is a produced export file.
type Artifact = export.Artifact

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	return export.ParseFormat(s)
}

// FileEntry is a file currently contributing to a session document.
type FileEntry struct {
	Name string `json:"name"`
	Size int64  `json:"size"` // accepted body length in bytes
}

// Rejection describes a file that failed validation.
type Rejection struct {
	Name    string `json:"name"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// UploadResult reports one upload batch.
type UploadResult struct {
	Accepted []string    `json:"accepted"`
	Rejected []Rejection `json:"rejected"`
	Revision uint64      `json:"revision"`
}

// Rendered is a document rendered for display.
type Rendered struct {
	Article  string    // article fragment, diagrams substituted
	Page     string    // complete viewer page
	Headings []Heading // sidebar outline
}

// ExportRequest describes one export.
type ExportRequest struct {
	Format   Format
	Document string // assembled Markdown
	Name     string // artifact base name; empty selects the default
	BaseDir  string // resolves relative images in PDF capture; may be empty
}
