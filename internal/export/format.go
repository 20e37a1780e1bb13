package export

import (
	"fmt"
	"strings"

	"github.com/alnah/go-mdview/internal/fileutil"
)

// DefaultName is the artifact base name when no file is loaded.
const DefaultName = "document"

// Format is an export target.
type Format string

// Supported formats.
const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatDOC  Format = "doc"
	FormatDOCX Format = "docx"
)

// Formats lists the supported formats in menu order.
var Formats = []Format{FormatHTML, FormatPDF, FormatDOC, FormatDOCX}

// ParseFormat returns the Format named by s, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatHTML, FormatPDF, FormatDOC, FormatDOCX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// MIME returns the media type of the format.
func (f Format) MIME() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatDOC:
		return "application/msword"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

// Artifact is an exported file ready for download.
type Artifact struct {
	Name string
	MIME string
	Data []byte
}

// NewArtifact names data after base and the format extension.
func NewArtifact(base string, f Format, data []byte) *Artifact {
	return &Artifact{Name: base + "." + string(f), MIME: f.MIME(), Data: data}
}

// FileName derives the artifact base name: the first file name without its
// extension, else def, else DefaultName.
func FileName(files []string, def string) string {
	if len(files) > 0 {
		if name := fileutil.StripExtension(files[0]); name != "" {
			return name
		}
	}
	if def != "" {
		return def
	}
	return DefaultName
}
