package server

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	mdview "github.com/alnah/go-mdview"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// errorCodes maps statuses to the machine-readable code of an error body.
var errorCodes = map[int]string{
	http.StatusBadRequest:            "bad_request",
	http.StatusNotFound:              "not_found",
	http.StatusRequestEntityTooLarge: "too_large",
	http.StatusServiceUnavailable:    "unavailable",
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	code, ok := errorCodes[status]
	if !ok {
		code = "internal"
	}
	writeJSON(w, status, map[string]string{"error": msg, "code": code})
}

// sanitizeFilename strips directories and traversal sequences from a
// client-supplied name.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	name = strings.ReplaceAll(name, "/", "_")
	if name == "" || name == "." {
		return "unnamed"
	}
	return name
}

type headingView struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

func headingViews(hs []mdview.Heading) []headingView {
	out := make([]headingView, 0, len(hs))
	for _, h := range hs {
		out = append(out, headingView{Level: h.Level, Text: h.Text, ID: h.ID})
	}
	return out
}

type searchHit struct {
	Heading string  `json:"heading"`
	ID      string  `json:"id"`
	Level   int     `json:"level"`
	Preview string  `json:"preview"`
	Score   float64 `json:"score"`
}

func searchHits(rs []mdview.SearchResult) []searchHit {
	out := make([]searchHit, 0, len(rs))
	for _, r := range rs {
		out = append(out, searchHit{
			Heading: r.Heading,
			ID:      r.ID,
			Level:   r.Level,
			Preview: r.Preview,
			Score:   r.Score,
		})
	}
	return out
}
