package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	mdview "github.com/alnah/go-mdview"
	"github.com/alnah/go-mdview/internal/report"
	"github.com/go-chi/chi/v5"
)

const (
	maxReportBody   = 64 << 10
	multipartMemory = 32 << 20
)

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	out, err := sess.Render(r.Context())
	if err != nil {
		s.log.Error("render page", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(out.Page))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxRequestSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		jsonError(w, "no files provided", http.StatusBadRequest)
		return
	}
	if len(headers) > s.maxFiles {
		jsonError(w, "too many files: at most "+strconv.Itoa(s.maxFiles)+" per upload", http.StatusBadRequest)
		return
	}

	candidates := make([]mdview.UploadCandidate, 0, len(headers))
	for _, fh := range headers {
		fh.Filename = sanitizeFilename(fh.Filename)
		candidates = append(candidates, mdview.CandidateFromMultipart(fh))
	}

	sess := sessionFrom(r.Context())
	res, err := sess.Upload(r.Context(), candidates)
	if err != nil {
		jsonError(w, "upload cancelled", http.StatusServiceUnavailable)
		return
	}
	for _, rej := range res.Rejected {
		s.log.Info("file rejected", "file", rej.Name, "reason", rej.Reason)
	}

	writeJSON(w, http.StatusOK, struct {
		*mdview.UploadResult
		Headings []headingView `json:"headings"`
	}{res, headingViews(sess.Headings())})
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"files":    sess.Files(),
		"revision": sess.Revision(),
	})
}

func (s *Server) handleRemoveFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	sess := sessionFrom(r.Context())
	if err := sess.Remove(name); err != nil {
		if errors.Is(err, mdview.ErrFileNotFound) {
			jsonError(w, "file not found", http.StatusNotFound)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	out, err := sess.Render(r.Context())
	if err != nil {
		s.log.Error("render document", "error", err)
		jsonError(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"article":  out.Article,
		"headings": headingViews(out.Headings),
		"revision": sess.Revision(),
	})
}

func (s *Server) handleHeadings(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"headings": headingViews(sess.Headings())})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	sess := sessionFrom(r.Context())
	results, err := sess.Search(r.Context(), q)
	if err != nil {
		s.log.Warn("search failed", "error", err)
		jsonError(w, "search failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   q,
		"results": searchHits(results),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f, err := mdview.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess := sessionFrom(r.Context())
	art, err := sess.Export(r.Context(), f)
	if err != nil {
		status := exportStatus(err)
		switch status {
		case http.StatusBadRequest:
			msg := err.Error()
			if errors.Is(err, mdview.ErrNothingToExport) {
				msg = "nothing to export: upload a Markdown file first"
			}
			jsonError(w, msg, status)
		case http.StatusServiceUnavailable:
			jsonError(w, "viewer is shutting down", status)
		default:
			s.log.Error("export failed", "format", f, "error", err)
			jsonError(w, "export failed", status)
		}
		return
	}

	w.Header().Set("Content-Type", art.MIME)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	_, _ = w.Write(art.Data)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxReportBody)
	var rec report.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := s.reports.Submit(r.Context(), rec); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "received"})
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "name") != "viewer.js" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	_, _ = w.Write([]byte(s.viewer.Script()))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// exportStatus maps an export error to its HTTP status. Client mistakes
// are 400.
func exportStatus(err error) int {
	switch {
	case errors.Is(err, mdview.ErrNothingToExport), errors.Is(err, mdview.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, mdview.ErrViewerClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
