// Package diagram renders fenced diagram sources to SVG through an external
// layout engine.
//
// The engine is configured once per Renderer, on first use. Each diagram is
// rendered independently and cached by content, so an unchanged diagram is
// never rendered twice and a changed one always is. Engine failures never
// fail the document: they produce an inline error panel with the engine
// message and the raw source.
package diagram

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"html"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Defaults for Renderer.
const (
	DefaultConcurrency = 4
	DefaultCacheSize   = 256
)

// EmptyDiagramMessage is shown for a diagram block with no source.
const EmptyDiagramMessage = "Empty diagram"

// Source is one diagram block: its content key and raw text.
type Source struct {
	Key    string
	Source string
}

// Engine turns diagram source into SVG markup.
type Engine interface {
	// Init applies the process-wide theme. Called once before any Render.
	Init(ctx context.Context, theme Theme) error
	// Render lays out one diagram. id is unique per distinct source.
	Render(ctx context.Context, id, source string) (string, error)
	Close() error
}

// Key returns the content key of a diagram source.
func Key(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:12])
}

// Placeholder returns the markup the render pipeline leaves for a diagram.
func Placeholder(key string) string {
	return `<div class="diagram" data-diagram-key="` + key + `"></div>`
}

// Substitute replaces placeholders in content with rendered markup.
// Placeholders without an entry are left in place.
func Substitute(content string, rendered map[string]string) string {
	if len(rendered) == 0 {
		return content
	}
	pairs := make([]string, 0, len(rendered)*2)
	for key, markup := range rendered {
		pairs = append(pairs, Placeholder(key), markup)
	}
	return strings.NewReplacer(pairs...).Replace(content)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTheme sets the engine theme.
func WithTheme(t Theme) Option {
	return func(r *Renderer) { r.theme = t }
}

// WithConcurrency bounds parallel renders in RenderAll.
func WithConcurrency(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithCacheSize bounds the number of cached results.
func WithCacheSize(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.cacheSize = n
		}
	}
}

// WithLogger sets the logger for engine failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// Renderer drives an Engine for a render pipeline.
type Renderer struct {
	engine      Engine
	theme       Theme
	concurrency int
	cacheSize   int
	logger      *slog.Logger

	initMu   sync.Mutex
	initDone bool
	initErr  error

	cacheMu sync.Mutex
	cache   map[string]string
}

// NewRenderer creates a Renderer for engine.
func NewRenderer(engine Engine, opts ...Option) *Renderer {
	r := &Renderer{
		engine:      engine,
		theme:       DefaultTheme(),
		concurrency: DefaultConcurrency,
		cacheSize:   DefaultCacheSize,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		cache:       make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns the markup for one diagram: the SVG in a container, or an
// error panel. The error is non-nil only when ctx ends.
func (r *Renderer) Render(ctx context.Context, src Source) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if src.Key == "" {
		src.Key = Key(src.Source)
	}

	if err := CheckSource(src.Source); err != nil {
		return ErrorPanel(EmptyDiagramMessage, src.Source), nil
	}

	if markup, ok := r.cached(src.Key); ok {
		return markup, nil
	}

	if err := r.ensureInit(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return ErrorPanel(engineMessage(err), src.Source), nil
	}

	svg, err := r.engine.Render(ctx, "mdv-"+src.Key, src.Source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		r.logger.Debug("diagram render failed", "key", src.Key, "error", err)
		markup := ErrorPanel(engineMessage(err), src.Source)
		r.store(src.Key, markup)
		return markup, nil
	}

	markup := `<div class="diagram diagram-rendered" data-diagram-key="` + src.Key + `">` + svg + `</div>`
	r.store(src.Key, markup)
	return markup, nil
}

// RenderAll renders sources concurrently and returns markup keyed by content
// key. It fails only when ctx ends.
func (r *Renderer) RenderAll(ctx context.Context, sources []Source) (map[string]string, error) {
	results := make([]string, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			markup, err := r.Render(gctx, src)
			if err != nil {
				return err
			}
			results[i] = markup
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(sources))
	for i, src := range sources {
		key := src.Key
		if key == "" {
			key = Key(src.Source)
		}
		out[key] = results[i]
	}
	return out, nil
}

// Close releases the engine.
func (r *Renderer) Close() error {
	return r.engine.Close()
}

// ensureInit configures the engine once. A failure caused by the caller's
// context is not remembered, so the next caller retries.
func (r *Renderer) ensureInit(ctx context.Context) error {
	r.initMu.Lock()
	defer r.initMu.Unlock()

	if r.initDone {
		return r.initErr
	}
	err := r.engine.Init(ctx, r.theme)
	if err != nil && ctx.Err() != nil {
		return err
	}
	r.initDone = true
	r.initErr = err
	return err
}

func (r *Renderer) cached(key string) (string, bool) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	markup, ok := r.cache[key]
	return markup, ok
}

func (r *Renderer) store(key, markup string) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	if len(r.cache) >= r.cacheSize {
		clear(r.cache)
	}
	r.cache[key] = markup
}

// CheckSource returns ErrEmptyDiagram for a blank source.
func CheckSource(source string) error {
	if strings.TrimSpace(source) == "" {
		return ErrEmptyDiagram
	}
	return nil
}

// ErrorPanel renders the inline failure panel for a diagram.
func ErrorPanel(message, source string) string {
	var b strings.Builder
	b.WriteString(`<div class="diagram-error" role="alert">`)
	b.WriteString(`<p class="diagram-error-title">Diagram error</p>`)
	b.WriteString(`<p class="diagram-error-message">`)
	b.WriteString(html.EscapeString(message))
	b.WriteString(`</p><pre class="diagram-error-source"><code>`)
	b.WriteString(html.EscapeString(source))
	b.WriteString(`</code></pre></div>`)
	return b.String()
}

// engineMessage extracts the message shown to the user.
func engineMessage(err error) string {
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Message
	}
	return err.Error()
}
