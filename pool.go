package mdview

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/alnah/go-mdview/internal/browser"
	"github.com/alnah/go-mdview/internal/export"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// BrowserPool manages a bounded set of headless browsers used to rasterize
// PDF exports. Browsers are launched lazily on first acquire.
type BrowserPool struct {
	size     int
	bin      string
	browsers []*browser.Launcher
	sem      chan *browser.Launcher
	mu       sync.Mutex
	created  int
	closed   bool
	width    int
}

// NewBrowserPool creates a pool with capacity for n browsers. bin overrides
// the browser binary.
func NewBrowserPool(n int, bin string) *BrowserPool {
	if n < 1 {
		n = 1
	}

	return &BrowserPool{
		size:     n,
		bin:      bin,
		browsers: make([]*browser.Launcher, 0, n),
		sem:      make(chan *browser.Launcher, n),
		width:    export.DefaultViewportWidth,
	}
}

// Acquire gets a browser from the pool, creating one if needed.
// Blocks until one is released or ctx is done.
func (p *BrowserPool) Acquire(ctx context.Context) (*browser.Launcher, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.mu.Unlock()

	// Try to get an existing browser (non-blocking)
	select {
	case b, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return b, nil
	default:
	}

	// Check if we can create a new browser
	p.mu.Lock()
	if p.created < p.size {
		p.created++
		b := browser.New(p.bin)
		p.browsers = append(p.browsers, b)
		p.mu.Unlock()
		return b, nil
	}
	p.mu.Unlock()

	// All browsers created, wait for one to be released
	select {
	case b, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return b, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a browser to the pool.
// The lock is held while sending: the channel has room for every browser the
// pool created, so the send never blocks.
func (p *BrowserPool) Release(b *browser.Launcher) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- b
}

// Open implements export.SurfaceOpener. The browser stays acquired until the
// returned surface is closed.
func (p *BrowserPool) Open(ctx context.Context, pageHTML string) (export.Surface, error) {
	b, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	s, err := export.NewRodSurfaces(b, p.width).Open(ctx, pageHTML)
	if err != nil {
		p.Release(b)
		return nil, err
	}
	return &pooledSurface{Surface: s, release: func() { p.Release(b) }}, nil
}

// Close releases all browser resources.
// Returns an aggregated error if multiple browsers fail to close.
func (p *BrowserPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	browsers := p.browsers
	p.mu.Unlock()

	var errs []error
	for _, b := range browsers {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *BrowserPool) Size() int {
	return p.size
}

// pooledSurface hands its browser back to the pool on Close.
type pooledSurface struct {
	export.Surface
	once    sync.Once
	release func()
}

func (s *pooledSurface) Close() error {
	err := s.Surface.Close()
	s.once.Do(s.release)
	return err
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	// Explicit value takes priority
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}

// Compile-time interface check.
var _ export.SurfaceOpener = (*BrowserPool)(nil)
