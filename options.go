package mdview

import (
	"log/slog"
	"time"
)

// Diagram engine names.
const (
	EngineBrowser = "browser" // mermaid in a headless browser page
	EngineCLI     = "cli"     // the mmdc command
	EngineOff     = "off"     // diagrams render as an error panel
)

// defaultTimeout bounds one render.
const defaultTimeout = 30 * time.Second

// Option configures a Viewer.
type Option func(*Viewer)

// DiagramOptions tunes the diagram engine. Zero values select defaults.
type DiagramOptions struct {
	Command     string // cli engine binary
	ScriptURL   string // mermaid bundle for the browser engine
	Timeout     time.Duration
	Concurrency int
	FontFamily  string
	Variables   map[string]string // merged over the default palette
}

// SearchOptions tunes document search. Zero values select defaults, except
// Fuzziness where 0 means exact matching. A Viewer built without
// WithSearchOptions uses fuzziness 1.
type SearchOptions struct {
	MaxResults    int
	Fuzziness     int
	PreviewLength int
}

// ExportOptions tunes exports. Zero values select defaults.
type ExportOptions struct {
	Footer      string
	Attribution string
	Date        string // footer date stamp: literal, "auto" or "auto:FORMAT"
	DefaultName string
	Scale       float64 // PDF capture pixel ratio
	Timeout     time.Duration
}

// viewerConfig holds the resolved options.
type viewerConfig struct {
	timeout        time.Duration
	maxFileSize    int64
	engine         string
	diagram        DiagramOptions
	sanitize       bool
	highlightStyle string
	lineNumbers    bool
	runnable       []string
	search         SearchOptions
	export         ExportOptions
	assetPath      string
	assetLoader    AssetLoader
	browserBin     string
}

// WithTimeout sets the render timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mdview: WithTimeout duration must be positive")
	}
	return func(v *Viewer) {
		v.cfg.timeout = d
	}
}

// WithMaxFileSize sets the per-file upload limit in bytes.
// Panics if n <= 0.
func WithMaxFileSize(n int64) Option {
	if n <= 0 {
		panic("mdview: WithMaxFileSize limit must be positive")
	}
	return func(v *Viewer) {
		v.cfg.maxFileSize = n
	}
}

// WithDiagramEngine selects the diagram engine: EngineBrowser, EngineCLI or
// EngineOff. New rejects other names with ErrInvalidEngine.
func WithDiagramEngine(name string) Option {
	return func(v *Viewer) {
		v.cfg.engine = name
	}
}

// WithDiagramOptions tunes the diagram engine.
func WithDiagramOptions(o DiagramOptions) Option {
	return func(v *Viewer) {
		v.cfg.diagram = o
	}
}

// WithSanitize filters raw HTML in documents through an allow-list policy.
func WithSanitize(enabled bool) Option {
	return func(v *Viewer) {
		v.cfg.sanitize = enabled
	}
}

// WithHighlightStyle selects the chroma style for fenced code.
func WithHighlightStyle(name string) Option {
	return func(v *Viewer) {
		v.cfg.highlightStyle = name
	}
}

// WithLineNumbers turns on line numbers in fenced code.
func WithLineNumbers(enabled bool) Option {
	return func(v *Viewer) {
		v.cfg.lineNumbers = enabled
	}
}

// WithRunnableLanguages sets the fence languages offered the demo Run action.
// An empty, non-nil slice disables it.
func WithRunnableLanguages(langs []string) Option {
	return func(v *Viewer) {
		v.cfg.runnable = append([]string{}, langs...)
	}
}

// WithSearchOptions tunes document search.
func WithSearchOptions(o SearchOptions) Option {
	return func(v *Viewer) {
		v.cfg.search = o
	}
}

// WithExportOptions tunes exports.
func WithExportOptions(o ExportOptions) Option {
	return func(v *Viewer) {
		v.cfg.export = o
	}
}

// WithAssetPath overrides embedded assets with files under dir.
// Missing files fall back to the embedded copies.
func WithAssetPath(dir string) Option {
	return func(v *Viewer) {
		v.cfg.assetPath = dir
	}
}

// WithAssetLoader loads styles, templates and the client script from
// loader. It takes precedence over WithAssetPath.
func WithAssetLoader(loader AssetLoader) Option {
	return func(v *Viewer) {
		v.cfg.assetLoader = loader
	}
}

// WithBrowserBin sets the browser binary used by the diagram engine and by
// a pool created by New.
func WithBrowserBin(bin string) Option {
	return func(v *Viewer) {
		v.cfg.browserBin = bin
	}
}

// WithBrowserPool shares pool for PDF exports. The caller keeps ownership:
// Viewer.Close does not close it.
func WithBrowserPool(pool *BrowserPool) Option {
	return func(v *Viewer) {
		if pool != nil {
			v.pool = pool
			v.ownsPool = false
		}
	}
}

// WithLogger sets the logger. Nil keeps the default, which discards.
func WithLogger(l *slog.Logger) Option {
	return func(v *Viewer) {
		if l != nil {
			v.logger = l
		}
	}
}
