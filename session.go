package mdview

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/alnah/go-mdview/internal/export"
	"github.com/alnah/go-mdview/internal/ingest"
	"github.com/alnah/go-mdview/internal/outline"
	"github.com/alnah/go-mdview/internal/pipeline"
	"github.com/alnah/go-mdview/internal/search"
)

// sessionFile is an accepted upload. Files sharing a batch were assembled
// together.
type sessionFile struct {
	name  string
	body  string
	batch int
}

// Session is one user's document: the files uploaded so far and the
// Markdown assembled from them. The document is a pure function of the file
// list, so removing a file retracts its text. Safe for concurrent use.
type Session struct {
	viewer *Viewer

	mu        sync.RWMutex
	files     []sessionFile
	doc       string
	revision  uint64
	nextBatch int

	searchMu    sync.Mutex
	index       *search.Index
	indexRev    uint64
	indexClosed bool
}

func newSession(v *Viewer) *Session {
	return &Session{viewer: v}
}

// Upload validates candidates and appends the accepted ones to the document
// as one batch. Rejections are reported, never fatal. The error is non-nil
// only when ctx ends, in which case nothing is committed.
func (s *Session) Upload(ctx context.Context, candidates []UploadCandidate) (*UploadResult, error) {
	outcomes, err := ingest.ValidateBatch(ctx, candidates, s.viewer.cfg.maxFileSize)
	if err != nil {
		return nil, err
	}

	res := &UploadResult{Accepted: []string{}, Rejected: []Rejection{}}
	var entries []ingest.Entry
	for _, o := range outcomes {
		if !o.Accepted() {
			res.Rejected = append(res.Rejected, Rejection{
				Name:    o.Name,
				Reason:  string(o.Reason()),
				Message: o.Message(),
				Err:     o.Err,
			})
			continue
		}
		res.Accepted = append(res.Accepted, o.Name)
		entries = append(entries, ingest.Entry{Name: o.Name, Body: o.Body})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(entries) > 0 {
		batch := s.nextBatch
		s.nextBatch++
		for _, e := range entries {
			s.files = append(s.files, sessionFile{name: e.Name, body: e.Body, batch: batch})
		}
		s.doc = ingest.Assemble(s.doc, entries)
		s.revision++
	}
	res.Revision = s.revision

	s.viewer.logger.Debug("upload processed",
		"accepted", len(res.Accepted),
		"rejected", len(res.Rejected),
		"revision", s.revision)
	return res, nil
}

// Remove drops every file named name and re-assembles the document from the
// remaining files in upload order. Returns ErrFileNotFound if no file has
// that name.
func (s *Session) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.files[:0:0]
	for _, f := range s.files {
		if f.name != name {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(s.files) {
		return fmt.Errorf("%w: %q", ErrFileNotFound, name)
	}

	s.files = kept
	s.doc = assembleFiles(kept)
	s.revision++
	return nil
}

// assembleFiles rebuilds a document batch by batch, as the uploads did.
func assembleFiles(files []sessionFile) string {
	var (
		doc     string
		entries []ingest.Entry
	)
	for i, f := range files {
		entries = append(entries, ingest.Entry{Name: f.name, Body: f.body})
		if i == len(files)-1 || files[i+1].batch != f.batch {
			doc = ingest.Assemble(doc, entries)
			entries = entries[:0]
		}
	}
	return doc
}

// Files lists the files contributing to the document, in upload order.
func (s *Session) Files() []FileEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]FileEntry, len(s.files))
	for i, f := range s.files {
		out[i] = FileEntry{Name: f.name, Size: int64(len(f.body))}
	}
	return out
}

// Document returns the assembled Markdown.
func (s *Session) Document() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Revision increases on every change to the document.
func (s *Session) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Headings returns the document outline, all levels.
func (s *Session) Headings() []Heading {
	return outline.Extract(s.Document(), outline.MaxLevel)
}

// ExportName is the artifact base name: the first file without its
// extension, else the configured default.
func (s *Session) ExportName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exportNameLocked()
}

func (s *Session) exportNameLocked() string {
	names := make([]string, len(s.files))
	for i, f := range s.files {
		names[i] = f.name
	}
	return export.FileName(names, s.viewer.defaultName)
}

// snapshot returns a consistent view for derivations.
func (s *Session) snapshot() (doc string, rev uint64, files []FileEntry, title string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files = make([]FileEntry, len(s.files))
	for i, f := range s.files {
		files[i] = FileEntry{Name: f.name, Size: int64(len(f.body))}
	}
	if len(s.files) > 0 {
		title = s.exportNameLocked()
	}
	return s.doc, s.revision, files, title
}

// Render renders the current document into the viewer page.
func (s *Session) Render(ctx context.Context) (*Rendered, error) {
	doc, rev, files, title := s.snapshot()

	pageFiles := make([]pipeline.PageFile, len(files))
	for i, f := range files {
		pageFiles[i] = pipeline.PageFile{Name: f.Name, Size: f.Size}
	}

	return s.viewer.render(ctx, doc, pipeline.PageData{
		Title:    title,
		Headings: outline.Extract(doc, outline.MaxLevel),
		Files:    pageFiles,
		Revision: rev,
	})
}

// Export exports the current document.
func (s *Session) Export(ctx context.Context, f Format) (*Artifact, error) {
	s.mu.RLock()
	req := ExportRequest{Format: f, Document: s.doc, Name: s.exportNameLocked()}
	s.mu.RUnlock()

	return s.viewer.Export(ctx, req)
}

// Search queries the document headings. The index is built on first use
// and rebuilt when the document changes. A blank query returns no results.
func (s *Session) Search(ctx context.Context, q string) ([]SearchResult, error) {
	if strings.TrimSpace(q) == "" {
		return []SearchResult{}, nil
	}

	doc, rev, _, _ := s.snapshot()

	s.searchMu.Lock()
	defer s.searchMu.Unlock()

	if s.indexClosed {
		return nil, fmt.Errorf("%w: session closed", search.ErrQuery)
	}
	if s.index == nil || s.indexRev != rev {
		idx, err := search.Build(doc, s.viewer.searchOptions())
		if err != nil {
			return nil, err
		}
		if s.index != nil {
			_ = s.index.Close()
		}
		s.index, s.indexRev = idx, rev
	}
	return s.index.Query(ctx, q)
}

// Close releases the search index. The session must not be searched again.
func (s *Session) Close() error {
	s.searchMu.Lock()
	defer s.searchMu.Unlock()

	s.indexClosed = true
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	return err
}
