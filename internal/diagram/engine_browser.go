package diagram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
)

// DefaultTimeout bounds a single diagram render.
const DefaultTimeout = 30 * time.Second

// PageOpener opens browser pages. *browser.Launcher implements it.
type PageOpener interface {
	Page(ctx context.Context) (*rod.Page, error)
}

// BrowserEngine renders diagrams with mermaid.js in a headless browser page.
// One page is kept for the engine lifetime; renders are serialized on it.
type BrowserEngine struct {
	pages     PageOpener
	scriptURL string
	timeout   time.Duration

	mu   sync.Mutex
	page *rod.Page
}

// NewBrowserEngine creates a BrowserEngine. Empty scriptURL and zero timeout
// select the defaults.
func NewBrowserEngine(pages PageOpener, scriptURL string, timeout time.Duration) *BrowserEngine {
	if scriptURL == "" {
		scriptURL = DefaultScriptURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &BrowserEngine{pages: pages, scriptURL: scriptURL, timeout: timeout}
}

// Init loads mermaid into a fresh page and applies the theme.
func (e *BrowserEngine) Init(ctx context.Context, theme Theme) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	page, err := e.pages.Page(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	if err := page.AddScriptTag(e.scriptURL, ""); err != nil {
		_ = page.Close()
		return fmt.Errorf("%w: loading %s: %v", ErrEngineUnavailable, e.scriptURL, err)
	}

	res, err := page.Eval(`() => typeof window.mermaid !== "undefined"`)
	if err != nil || !res.Value.Bool() {
		_ = page.Close()
		return fmt.Errorf("%w: mermaid not available after loading %s", ErrEngineUnavailable, e.scriptURL)
	}

	if _, err := page.Eval(`(cfg) => { window.mermaid.initialize(cfg); return true; }`, theme.MermaidConfig()); err != nil {
		_ = page.Close()
		return fmt.Errorf("%w: initialize: %v", ErrEngineUnavailable, err)
	}

	e.page = page
	return nil
}

// Render lays out source and returns the SVG markup.
func (e *BrowserEngine) Render(ctx context.Context, id, source string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.page == nil {
		return "", ErrEngineUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	res, err := e.page.Context(ctx).Eval(`async (id, src) => {
		try {
			const out = await window.mermaid.render(id, src);
			return out.svg;
		} finally {
			const stray = document.getElementById("d" + id);
			if (stray) stray.remove();
		}
	}`, id, source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &EngineError{Message: evalMessage(err)}
	}
	return res.Value.Str(), nil
}

// Close closes the engine page. The browser belongs to its launcher.
func (e *BrowserEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.page == nil {
		return nil
	}
	err := e.page.Close()
	e.page = nil
	return err
}

// evalMessage strips rod's wrapper text from a JavaScript exception.
func evalMessage(err error) string {
	var evalErr *rod.EvalError
	if errors.As(err, &evalErr) && evalErr.Exception != nil && evalErr.Exception.Description != "" {
		return strings.TrimSpace(evalErr.Exception.Description)
	}
	return firstLine(strings.TrimPrefix(err.Error(), "eval js error: "))
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// Compile-time interface check.
var _ Engine = (*BrowserEngine)(nil)
