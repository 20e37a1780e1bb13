// Package mdview renders Markdown documents for a browser-based viewer and
// exports them as HTML, PDF, Word (.doc) and DOCX.
//
// # Quick Start
//
// Create a viewer, open a session, upload files and render:
//
//	v, err := mdview.New(mdview.WithDiagramEngine(mdview.EngineOff))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer v.Close()
//
//	s := v.NewSession()
//	res, err := s.Upload(ctx, []mdview.UploadCandidate{
//	    mdview.CandidateFromPath("README.md"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range res.Rejected {
//	    fmt.Println(r.Name, r.Message)
//	}
//
//	page, err := s.Render(ctx)
//
// # Documents
//
// A session document is assembled from accepted uploads. Each file becomes a
// level-1 heading with its name followed by its body; files are separated by
// a thematic break. Uploads are validated in a fixed order: extension, size,
// readability, blank content, unclosed code fences. Rejected files never
// reach the document.
//
// # Rendering
//
// The render pipeline is goldmark with GFM, footnotes and math, chroma
// highlighting, and mermaid diagrams rendered by a headless browser or the
// mmdc command (see WithDiagramEngine). Heading ids come from one outline
// source shared by the sidebar, search and the rendered anchors.
//
// # Export
//
// Viewer.Export and Session.Export produce an Artifact:
//
//   - FormatHTML: standalone document with inline styles and footer
//   - FormatPDF: rasterized capture paginated onto A4 pages
//   - FormatDOC: Word-compatible HTML envelope
//   - FormatDOCX: native Office Open XML
//
// PDF export uses a BrowserPool. Share one pool between viewers with
// WithBrowserPool; its size is usually ResolvePoolSize(0).
//
// # Search
//
// Session.Search runs a fuzzy, prefix-aware query over headings of level 1
// to 3 and the two lines that follow each of them.
package mdview
