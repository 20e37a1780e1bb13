package mdview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/alnah/go-mdview/internal/ingest"
	"github.com/alnah/go-mdview/internal/search"
)

func upload(t *testing.T, s *Session, files map[string]string, order ...string) *UploadResult {
	t.Helper()

	cs := make([]UploadCandidate, 0, len(order))
	for _, name := range order {
		cs = append(cs, CandidateFromBytes(name, []byte(files[name])))
	}
	res, err := s.Upload(context.Background(), cs)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	return res
}

// ---------------------------------------------------------------------------
// Upload
// ---------------------------------------------------------------------------

func TestSession_Upload(t *testing.T) {
	t.Parallel()

	v, _, _ := newTestViewer(t)
	s := v.NewSession()
	defer s.Close()

	files := map[string]string{
		"guide.md":   "## Setup\n\nInstall it.\n",
		"notes.txt":  "plain text",
		"empty.md":   "   \n",
		"broken.md":  "```go\nfunc main() {}\n",
		"changes.MD": "## v1\n\nFirst release.\n",
		"pic.png":    "\x89PNG",
	}
	res := upload(t, s, files, "guide.md", "notes.txt", "empty.md", "broken.md", "changes.MD", "pic.png")

	if got, want := strings.Join(res.Accepted, ","), "guide.md,changes.MD"; got != want {
		t.Errorf("Accepted = %s, want %s", got, want)
	}

	wantReasons := map[string]string{
		"notes.txt": string(ingest.ReasonInvalidType),
		"empty.md":  string(ingest.ReasonEmpty),
		"broken.md": string(ingest.ReasonUnclosedCodeBlock),
		"pic.png":   string(ingest.ReasonInvalidType),
	}
	if len(res.Rejected) != len(wantReasons) {
		t.Fatalf("Rejected = %+v, want %d entries", res.Rejected, len(wantReasons))
	}
	for _, r := range res.Rejected {
		if r.Reason != wantReasons[r.Name] {
			t.Errorf("Rejected[%s].Reason = %q, want %q", r.Name, r.Reason, wantReasons[r.Name])
		}
		if r.Message == "" || r.Err == nil {
			t.Errorf("Rejected[%s] should carry a message and an error", r.Name)
		}
	}

	want := ingest.Assemble("", []ingest.Entry{
		{Name: "guide.md", Body: files["guide.md"]},
		{Name: "changes.MD", Body: files["changes.MD"]},
	})
	if got := s.Document(); got != want {
		t.Errorf("Document() = %q, want %q", got, want)
	}
	if res.Revision != 1 || s.Revision() != 1 {
		t.Errorf("revision = %d/%d, want 1", res.Revision, s.Revision())
	}
}

func TestSession_Upload_AllRejectedKeepsRevision(t *testing.T) {
	t.Parallel()

	v, _, _ := newTestViewer(t)
	s := v.NewSession()

	upload(t, s, map[string]string{"a.md": "# A\n"}, "a.md")
	before := s.Document()

	res := upload(t, s, map[string]string{"b.txt": "nope"}, "b.txt")
	if len(res.Accepted) != 0 || len(res.Rejected) != 1 {
		t.Fatalf("result = %+v, want one rejection", res)
	}
	if s.Document() != before || s.Revision() != 1 {
		t.Error("a batch with no accepted file must not change the document")
	}
}

func TestSession_Upload_StrictlyAdditive(t *testing.T) {
	t.Parallel()

	v, _, _ := newTestViewer(t)
	s := v.NewSession()

	upload(t, s, map[string]string{"one.md": "First.\n"}, "one.md")
	first := s.Document()

	upload(t, s, map[string]string{"two.md": "Second.\n"}, "two.md")
	second := s.Document()

	if !strings.HasPrefix(second, first) {
		t.Error("an upload must only append to the document")
	}
	overhead := ingest.Overhead([]ingest.Entry{{Name: "two.md", Body: "Second.\n"}})
	if len(second) != len(first)+overhead+len("Second.\n") {
		t.Errorf("len = %d, want %d", len(second), len(first)+overhead+len("Second.\n"))
	}
}

func TestSession_Upload_SizeLimit(t *testing.T) {
	t.Parallel()

	v, _, _ := newTestViewer(t, WithMaxFileSize(16))
	s := v.NewSession()

	res := upload(t, s, map[string]string{"big.md": strings.Repeat("a", 17)}, "big.md")
	if len(res.Rejected) != 1 || !errors.Is(res.Rejected[0].Err, ErrTooLarge) {
		t.Errorf("Rejected = %+v, want ErrTooLarge", res.Rejected)
	}
}

func TestSession_Upload_CancelledContext(t *testing.T) {
	t.Parallel()

	v, _, _ := newTestViewer(t)
	s := v.NewSession()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Upload(ctx, []UploadCandidate{CandidateFromBytes("a.md", []byte("# A"))})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Upload() error = %v, want context.Canceled", err)
	}
	if s.Document() != "" || s.Revision() != 0 {
		t.Error("a cancelled upload must not commit anything")
	}
}

// ---------------------------------------------------------------------------
// Remove
// ---------------------------------------------------------------------------

func TestSession_Remove(t *testing.T) {
	t.Parallel()

	v, _, _ := newTestViewer(t)
	s := v.NewSession()

	files := map[string]string{"a.md": "Alpha.\n", "b.md": "Beta.\n", "c.md": "Gamma.\n"}
	upload(t, s, files, "a.md", "b.md")
	upload(t, s, files, "c.md")

	if err := s.Remove("b.md"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	want := ingest.Assemble(
		ingest.Assemble("", []ingest.Entry{{Name: "a.md", Body: files["a.md"]}}),
		[]ingest.Entry{{Name: "c.md", Body: files["c.md"]}},
	)
	if got := s.Document(); got != want {
		t.Errorf("Document() = %q, want %q", got, want)
	}
	if strings.Contains(s.Document(), "Beta.") {
		t.Error("removed file text is still in the document")
	}
	if s.Revision() != 3 {
		t.Errorf("Revision() = %d, want 3", s.Revision())
	}

	if err := s.Remove("b.md"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("second Remove() error = %v, want ErrFileNotFound", err)
	}
}

func TestSession_Remove_LastFileEmptiesDocument(t *testing.T) {
	t.Parallel()

	v, _, _ := newTestViewer(t)
	s := v.NewSession()

	upload(t, s, map[string]string{"only.md": "# Only\n"}, "only.md")
	if err := s.Remove("only.md"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if s.Document() != "" || len(s.Files()) != 0 {
		t.Errorf("document = %q files = %v, want empty", s.Document(), s.Files())
	}
	if got := s.ExportName(); got != "document" {
		t.Errorf("ExportName() = %q, want document", got)
	}
}

// ---------------------------------------------------------------------------
// Derived views
// ---------------------------------------------------------------------------

func TestSession_FilesHeadingsExportName(t *testing.T) {
	t.Parallel()

	v, _, _ := newTestViewer(t)
	s := v.NewSession()

	upload(t, s, map[string]string{
		"release-notes.md": "## Fixes\n\nMany.\n",
		"faq.markdown":     "Questions.\n",
	}, "release-notes.md", "faq.markdown")

	files := s.Files()
	if len(files) != 2 || files[0].Name != "release-notes.md" || files[0].Size != int64(len("## Fixes\n\nMany.\n")) {
		t.Errorf("Files() = %+v", files)
	}

	var ids []string
	for _, h := range s.Headings() {
		ids = append(ids, h.ID)
	}
	if got, want := strings.Join(ids, ","), "release-notes-md,fixes,faq-markdown"; got != want {
		t.Errorf("heading ids = %s, want %s", got, want)
	}

	if got := s.ExportName(); got != "release-notes" {
		t.Errorf("ExportName() = %q, want release-notes", got)
	}
}

func TestSession_Render(t *testing.T) {
	t.Parallel()

	v, _, _ := newTestViewer(t)
	s := v.NewSession()

	empty, err := s.Render(context.Background())
	if err != nil {
		t.Fatalf("Render() on empty session error = %v", err)
	}
	if !strings.Contains(empty.Page, `data-revision="0"`) {
		t.Error("empty page should carry revision 0")
	}

	upload(t, s, map[string]string{"intro.md": "Welcome.\n"}, "intro.md")
	got, err := s.Render(context.Background())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{`data-file="intro.md"`, `data-revision="1"`, `id="intro-md"`, "Welcome."} {
		if !strings.Contains(got.Page, want) {
			t.Errorf("Page missing %q", want)
		}
	}
}

func TestSession_Export(t *testing.T) {
	t.Parallel()

	v, _, _ := newTestViewer(t)
	s := v.NewSession()

	if _, err := s.Export(context.Background(), FormatHTML); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("Export() on empty session error = %v, want ErrNothingToExport", err)
	}

	upload(t, s, map[string]string{"handbook.md": "Rules.\n"}, "handbook.md")
	art, err := s.Export(context.Background(), FormatDOC)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if art.Name != "handbook.doc" {
		t.Errorf("Name = %q, want handbook.doc", art.Name)
	}
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

func TestSession_Search(t *testing.T) {
	t.Parallel()

	v, _, _ := newTestViewer(t)
	s := v.NewSession()
	ctx := context.Background()

	got, err := s.Search(ctx, "   ")
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("blank Search() = %v, %v; want empty non-nil slice", got, err)
	}

	upload(t, s, map[string]string{"ops.md": "## Deployment\n\nShip with care.\n"}, "ops.md")
	got, err = s.Search(ctx, "deployment")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) == 0 || got[0].ID != "deployment" {
		t.Fatalf("Search(deployment) = %+v, want deployment first", got)
	}

	// The index follows the document revision.
	upload(t, s, map[string]string{"more.md": "## Monitoring\n\nDashboards.\n"}, "more.md")
	got, err = s.Search(ctx, "monitoring")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) == 0 || got[0].ID != "monitoring" {
		t.Errorf("Search(monitoring) = %+v, want monitoring first", got)
	}

	if err := s.Remove("more.md"); err != nil {
		t.Fatal(err)
	}
	got, err = s.Search(ctx, "monitoring")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for _, r := range got {
		if r.ID == "monitoring" {
			t.Error("removed heading is still searchable")
		}
	}
}

func TestSession_SearchAfterClose(t *testing.T) {
	t.Parallel()

	v, _, _ := newTestViewer(t)
	s := v.NewSession()
	upload(t, s, map[string]string{"a.md": "## Alpha\n"}, "a.md")

	if _, err := s.Search(context.Background(), "alpha"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := s.Search(context.Background(), "alpha"); !errors.Is(err, search.ErrQuery) {
		t.Errorf("Search() after Close() error = %v, want ErrQuery", err)
	}
}

func TestSession_Concurrent(t *testing.T) {
	t.Parallel()

	v, _, _ := newTestViewer(t)
	s := v.NewSession()
	defer s.Close()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("f%d.md", i)
			_, _ = s.Upload(context.Background(), []UploadCandidate{
				CandidateFromBytes(name, []byte(fmt.Sprintf("## Topic %d\n\nBody.\n", i))),
			})
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Search(context.Background(), "topic")
			_ = s.Files()
			_ = s.Headings()
		}()
	}
	wg.Wait()

	if got := len(s.Files()); got != 8 {
		t.Errorf("Files() = %d, want 8", got)
	}
	if s.Revision() != 8 {
		t.Errorf("Revision() = %d, want 8", s.Revision())
	}
}
