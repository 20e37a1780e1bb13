package mdview

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-mdview/internal/ingest"
)

func readCandidate(t *testing.T, c UploadCandidate) string {
	t.Helper()

	rc, err := c.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return string(data)
}

func TestCandidateFromBytes(t *testing.T) {
	t.Parallel()

	c := CandidateFromBytes("a.md", []byte("# A\n"))
	if c.Name != "a.md" || c.Size != 4 {
		t.Errorf("candidate = %+v", c)
	}
	// Open may be called more than once in tests; each call starts over.
	if got := readCandidate(t, c); got != "# A\n" {
		t.Errorf("content = %q", got)
	}
	if got := readCandidate(t, c); got != "# A\n" {
		t.Errorf("second read = %q", got)
	}
}

func TestCandidateFromPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "guide.md")
	if err := os.WriteFile(path, []byte("# Guide\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("existing file", func(t *testing.T) {
		t.Parallel()

		c := CandidateFromPath(path)
		if c.Name != "guide.md" || c.Size != 8 {
			t.Errorf("candidate = %+v", c)
		}
		if got := readCandidate(t, c); got != "# Guide\n" {
			t.Errorf("content = %q", got)
		}
	})

	t.Run("missing file is rejected as unreadable", func(t *testing.T) {
		t.Parallel()

		c := CandidateFromPath(filepath.Join(dir, "missing.md"))
		o := ingest.Validate(c, 0)
		if o.Reason() != ingest.ReasonReadFailure {
			t.Errorf("Reason() = %q, want %q", o.Reason(), ingest.ReasonReadFailure)
		}
	})
}

func TestCandidateFromMultipart(t *testing.T) {
	t.Parallel()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("files", "notes.md")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte("## Notes\n\nText.\n"))
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest(http.MethodPost, "/", &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("ParseMultipartForm() error = %v", err)
	}

	headers := req.MultipartForm.File["files"]
	if len(headers) != 1 {
		t.Fatalf("got %d file headers, want 1", len(headers))
	}

	c := CandidateFromMultipart(headers[0])
	if c.Name != "notes.md" || c.Size != int64(len("## Notes\n\nText.\n")) {
		t.Errorf("candidate = %+v", c)
	}
	if got := readCandidate(t, c); !strings.HasPrefix(got, "## Notes") {
		t.Errorf("content = %q", got)
	}
}
