// Package browser launches and owns a headless Chrome instance.
//
// The browser is started on first use and shared by the diagram engine and
// the PDF rasterizer. Close kills the whole process group so no renderer
// process outlives the host.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/alnah/go-mdview/internal/hints"
	"github.com/alnah/go-mdview/internal/process"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Sentinel errors for browser operations.
var (
	// ErrBrowserConnect indicates Chrome could not be launched or reached.
	ErrBrowserConnect = errors.New("failed to connect to browser")

	// ErrClosed indicates the browser was used after Close.
	ErrClosed = errors.New("browser closed")
)

// Launcher starts a browser lazily and reuses it until Close.
type Launcher struct {
	mu      sync.Mutex
	bin     string
	l       *launcher.Launcher
	browser *rod.Browser
	closed  bool
}

// New creates a Launcher. bin overrides the browser binary; when empty the
// ROD_BROWSER_BIN environment variable and rod's lookup apply.
func New(bin string) *Launcher {
	return &Launcher{bin: bin}
}

// Browser returns the running browser, launching it on first call.
func (b *Launcher) Browser(ctx context.Context) (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	if b.browser != nil {
		return b.browser, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := launcher.New()
	bin := b.bin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}
	// NoSandbox is required in CI and containers.
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v%s", ErrBrowserConnect, err, hints.ForBrowserConnect())
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v%s", ErrBrowserConnect, err, hints.ForBrowserConnect())
	}

	b.l = l
	b.browser = browser
	return browser, nil
}

// Page opens a blank page bound to ctx.
func (b *Launcher) Page(ctx context.Context) (*rod.Page, error) {
	browser, err := b.Browser(ctx)
	if err != nil {
		return nil, err
	}
	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: opening page: %v", ErrBrowserConnect, err)
	}
	return page.Context(ctx), nil
}

// Close shuts the browser down and kills its process group. Close is
// idempotent.
func (b *Launcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.l != nil {
		if pid := b.l.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		b.l.Kill()
		b.l = nil
	}
	return err
}
