package export

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestParseFormat - Format names
// ---------------------------------------------------------------------------

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Format
		wantErr error
	}{
		{input: "html", want: FormatHTML},
		{input: "PDF", want: FormatPDF},
		{input: " doc ", want: FormatDOC},
		{input: "docx", want: FormatDOCX},
		{input: "rtf", wantErr: ErrUnsupportedFormat},
		{input: "", wantErr: ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFormat(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseFormat(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormat_MIME(t *testing.T) {
	t.Parallel()

	tests := map[Format]string{
		FormatHTML: "text/html; charset=utf-8",
		FormatPDF:  "application/pdf",
		FormatDOC:  "application/msword",
		FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"zip":      "application/octet-stream",
	}
	for f, want := range tests {
		if got := f.MIME(); got != want {
			t.Errorf("%q.MIME() = %q, want %q", f, got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestFileName - Artifact naming
// ---------------------------------------------------------------------------

func TestFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files []string
		def   string
		want  string
	}{
		{name: "first file wins", files: []string{"notes.md", "todo.md"}, want: "notes"},
		{name: "markdown extension", files: []string{"guide.markdown"}, want: "guide"},
		{name: "no files uses default", files: nil, def: "export", want: "export"},
		{name: "no files no default", files: nil, want: DefaultName},
		{name: "extension only name falls back", files: []string{".md"}, want: DefaultName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FileName(tt.files, tt.def); got != tt.want {
				t.Errorf("FileName(%v, %q) = %q, want %q", tt.files, tt.def, got, tt.want)
			}
		})
	}
}

func TestNewArtifact(t *testing.T) {
	t.Parallel()

	a := NewArtifact("notes", FormatDOCX, []byte("x"))
	if a.Name != "notes.docx" {
		t.Errorf("Name = %q, want %q", a.Name, "notes.docx")
	}
	if a.MIME != FormatDOCX.MIME() {
		t.Errorf("MIME = %q, want %q", a.MIME, FormatDOCX.MIME())
	}
}

// ---------------------------------------------------------------------------
// TestFooter - Footer block
// ---------------------------------------------------------------------------

func TestFooter_HTML(t *testing.T) {
	t.Parallel()

	got := DefaultFooter().HTML()
	for _, want := range []string{FooterAttr, "<p>" + DefaultFooterText + "</p>", "<p>" + DefaultAttribution + "</p>"} {
		if !strings.Contains(got, want) {
			t.Errorf("HTML() = %q, want to contain %q", got, want)
		}
	}

	if got := (Footer{Text: "<b>me</b>"}).HTML(); !strings.Contains(got, "&lt;b&gt;me&lt;/b&gt;") {
		t.Errorf("HTML() = %q, want escaped text", got)
	}
	if got := (Footer{}).HTML(); got != "" {
		t.Errorf("empty Footer HTML() = %q, want empty", got)
	}
}

func TestFooter_Date(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

	f := Footer{Text: "Team", Date: "auto:long"}
	lines := f.LinesAt(at)
	if len(lines) != 2 || lines[1] != "January 5, 2026" {
		t.Errorf("LinesAt() = %q, want text then stamped date", lines)
	}
	if err := f.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	bad := Footer{Text: "Team", Date: "auto:[oops"}
	if err := bad.Validate(); err == nil {
		t.Error("Validate() accepted an unclosed bracket")
	}
	if lines := bad.LinesAt(at); len(lines) != 1 {
		t.Errorf("LinesAt() = %q, want the invalid stamp dropped", lines)
	}

	if (Footer{Date: "Q3"}).Empty() {
		t.Error("a footer with only a date is not empty")
	}
}
