package mdview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alnah/go-mdview/internal/assets"
	"github.com/alnah/go-mdview/internal/browser"
	"github.com/alnah/go-mdview/internal/diagram"
	"github.com/alnah/go-mdview/internal/export"
	"github.com/alnah/go-mdview/internal/ingest"
	"github.com/alnah/go-mdview/internal/outline"
	"github.com/alnah/go-mdview/internal/pipeline"
	"github.com/alnah/go-mdview/internal/search"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.HTMLConverter = (*pipeline.Converter)(nil)
	_ pipeline.CSSInjector   = (*pipeline.CSSInjection)(nil)
	_ diagram.Engine         = (*diagram.BrowserEngine)(nil)
	_ diagram.Engine         = (*diagram.CLIEngine)(nil)
	_ diagram.Engine         = diagram.DisabledEngine{}
	_ export.SurfaceOpener   = (*export.RodSurfaces)(nil)
)

// Viewer renders Markdown documents for display and export. A Viewer is
// safe for concurrent use; per-user state lives in Session.
// Create with New, and Close when done.
type Viewer struct {
	cfg    viewerConfig
	logger *slog.Logger

	converter pipeline.HTMLConverter
	diagrams  *diagram.Renderer
	pages     *pipeline.PageBuilder
	exports   *export.Set
	bundle    *assets.Bundle

	// Injected by tests; built from cfg when nil.
	engine   diagram.Engine
	surfaces export.SurfaceOpener

	pool            *BrowserPool
	ownsPool        bool
	diagramBrowser  *browser.Launcher
	defaultName     string

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New creates a Viewer. Browsers are launched lazily, on the first diagram
// render or PDF export that needs one.
// Returns error if an option is invalid or asset loading fails.
func New(opts ...Option) (*Viewer, error) {
	v := &Viewer{
		cfg: viewerConfig{
			timeout:     defaultTimeout,
			maxFileSize: ingest.DefaultMaxFileSize,
			engine:      EngineBrowser,
			search:      SearchOptions{Fuzziness: search.DefaultFuzziness},
		},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		ownsPool: true,
	}

	for _, opt := range opts {
		opt(v)
	}

	if err := v.loadAssets(); err != nil {
		return nil, err
	}

	v.converter = pipeline.NewConverter(pipeline.Options{
		HighlightStyle:    v.cfg.highlightStyle,
		LineNumbers:       v.cfg.lineNumbers,
		RunnableLanguages: v.cfg.runnable,
		Sanitize:          v.cfg.sanitize,
	})

	if err := v.initDiagrams(); err != nil {
		return nil, err
	}
	if err := v.initExports(); err != nil {
		return nil, err
	}

	return v, nil
}

// loadAssets resolves the asset bundle and builds the viewer page template.
func (v *Viewer) loadAssets() error {
	var loader assets.AssetLoader = assets.NewEmbeddedLoader()
	switch {
	case v.cfg.assetLoader != nil:
		loader = internalLoader{loader: v.cfg.assetLoader}
	case v.cfg.assetPath != "":
		resolver, err := assets.NewAssetResolver(v.cfg.assetPath)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		loader = resolver
	}

	bundle, err := assets.LoadBundle(loader)
	if err != nil {
		return err
	}
	v.bundle = bundle

	highlight, err := pipeline.HighlightCSS(v.cfg.highlightStyle)
	if err != nil {
		return err
	}

	v.pages, err = pipeline.NewPageBuilder(bundle.Templates.Viewer, bundle.ViewerCSS+"\n"+highlight)
	if err != nil {
		return fmt.Errorf("initializing page builder: %w", err)
	}
	return nil
}

// initDiagrams builds the configured diagram engine.
func (v *Viewer) initDiagrams() error {
	d := v.cfg.diagram

	if v.engine == nil {
		switch v.cfg.engine {
		case EngineBrowser, "":
			v.diagramBrowser = browser.New(v.cfg.browserBin)
			v.engine = diagram.NewBrowserEngine(v.diagramBrowser, d.ScriptURL, d.Timeout)
		case EngineCLI:
			v.engine = diagram.NewCLIEngine(d.Command)
		case EngineOff:
			v.engine = diagram.DisabledEngine{}
		default:
			return fmt.Errorf("%w: %q", ErrInvalidEngine, v.cfg.engine)
		}
	}

	theme := diagram.DefaultTheme()
	if d.FontFamily != "" {
		theme.FontFamily = d.FontFamily
	}
	maps.Copy(theme.ThemeVariables, d.Variables)

	opts := []diagram.Option{diagram.WithTheme(theme), diagram.WithLogger(v.logger)}
	if d.Concurrency > 0 {
		opts = append(opts, diagram.WithConcurrency(d.Concurrency))
	}
	v.diagrams = diagram.NewRenderer(v.engine, opts...)
	return nil
}

// initExports builds the four exporters.
func (v *Viewer) initExports() error {
	e := v.cfg.export

	footer := export.DefaultFooter()
	if e.Footer != "" {
		footer.Text = e.Footer
	}
	if e.Attribution != "" {
		footer.Attribution = e.Attribution
	}
	footer.Date = e.Date
	if err := footer.Validate(); err != nil {
		return fmt.Errorf("export footer: %w", err)
	}
	v.defaultName = e.DefaultName
	if v.defaultName == "" {
		v.defaultName = export.DefaultName
	}

	highlight, err := pipeline.HighlightCSS(v.cfg.highlightStyle)
	if err != nil {
		return err
	}
	htmlExporter, err := export.NewHTMLExporter(v.bundle.Templates.Export, v.bundle.ExportCSS+"\n"+highlight, footer)
	if err != nil {
		return err
	}

	if v.surfaces == nil {
		if v.pool == nil {
			v.pool = NewBrowserPool(ResolvePoolSize(0), v.cfg.browserBin)
			v.ownsPool = true
		}
		v.surfaces = v.pool
	}

	v.exports = &export.Set{
		HTML: htmlExporter,
		PDF:  export.NewPDFExporter(v.surfaces, footer, e.Scale, e.Timeout),
		DOC:  export.NewDOCExporter(footer),
		DOCX: export.NewDOCXExporter(footer),
	}
	return nil
}

// NewSession creates an empty session bound to v.
func (v *Viewer) NewSession() *Session {
	return newSession(v)
}

// Script returns the client script served next to the viewer page.
func (v *Viewer) Script() string {
	return v.bundle.Script
}

// MaxFileSize returns the per-file upload limit.
func (v *Viewer) MaxFileSize() int64 {
	return v.cfg.maxFileSize
}

// Render renders doc into an article and a complete viewer page.
func (v *Viewer) Render(ctx context.Context, doc string) (*Rendered, error) {
	headings := outline.Extract(doc, outline.MaxLevel)
	return v.render(ctx, doc, pipeline.PageData{
		Title:    firstHeading(headings),
		Headings: headings,
	})
}

// render fills data.Article from doc and builds the page around it.
func (v *Viewer) render(ctx context.Context, doc string, data pipeline.PageData) (*Rendered, error) {
	article, err := v.Article(ctx, doc)
	if err != nil {
		return nil, err
	}

	footer := v.exports.HTML.Footer()
	data.Article = article
	data.Footer = footer.Text
	data.Attribution = footer.Attribution

	page, err := v.pages.Build(ctx, data)
	if err != nil {
		return nil, err
	}
	return &Rendered{Article: article, Page: page, Headings: data.Headings}, nil
}

// Article renders doc to the article fragment with diagrams substituted.
// Returns ErrViewerClosed after Close.
func (v *Viewer) Article(ctx context.Context, doc string) (string, error) {
	if v.closed.Load() {
		return "", ErrViewerClosed
	}
	ctx, cancel := context.WithTimeout(ctx, v.cfg.timeout)
	defer cancel()

	start := time.Now()
	res, err := v.converter.ToHTML(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("converting to HTML: %w", err)
	}

	article := res.HTML
	if len(res.Diagrams) > 0 {
		rendered, err := v.diagrams.RenderAll(ctx, res.Diagrams)
		if err != nil {
			return "", fmt.Errorf("rendering diagrams: %w", err)
		}
		article = diagram.Substitute(article, rendered)
	}

	v.logger.Debug("document rendered",
		"bytes", len(doc),
		"diagrams", len(res.Diagrams),
		"duration", time.Since(start))
	return article, nil
}

// Export renders req.Document and encodes it in req.Format.
// Returns ErrViewerClosed after Close.
func (v *Viewer) Export(ctx context.Context, req ExportRequest) (*Artifact, error) {
	if v.closed.Load() {
		return nil, ErrViewerClosed
	}
	if !v.exports.Supports(req.Format) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, req.Format)
	}
	if strings.TrimSpace(req.Document) == "" {
		return nil, ErrNothingToExport
	}

	article, err := v.Article(ctx, req.Document)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = v.defaultName
	}

	start := time.Now()
	art, err := v.exports.Export(ctx, req.Format, export.Input{
		Name:     name,
		Title:    name,
		Document: req.Document,
		Article:  article,
		BaseDir:  req.BaseDir,
	})
	if err != nil {
		return nil, err
	}

	v.logger.Info("document exported",
		"format", string(req.Format),
		"name", art.Name,
		"bytes", len(art.Data),
		"duration", time.Since(start))
	return art, nil
}

// Close releases the diagram engine and, unless it was supplied with
// WithBrowserPool, the browser pool. Safe to call more than once.
func (v *Viewer) Close() error {
	v.closed.Store(true)
	v.closeOnce.Do(func() {
		var errs []error
		if v.diagrams != nil {
			errs = append(errs, v.diagrams.Close())
		}
		if v.diagramBrowser != nil {
			errs = append(errs, v.diagramBrowser.Close())
		}
		if v.pool != nil && v.ownsPool {
			errs = append(errs, v.pool.Close())
		}
		v.closeErr = errors.Join(errs...)
	})
	return v.closeErr
}

// firstHeading returns the text of the first heading, or "".
func firstHeading(headings []Heading) string {
	if len(headings) == 0 {
		return ""
	}
	return headings[0].Text
}

// searchOptions maps the configured search options.
func (v *Viewer) searchOptions() search.Options {
	return search.Options{
		MaxResults:    v.cfg.search.MaxResults,
		Fuzziness:     v.cfg.search.Fuzziness,
		PreviewLength: v.cfg.search.PreviewLength,
	}
}
