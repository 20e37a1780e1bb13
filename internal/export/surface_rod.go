package export

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-mdview/internal/fileutil"
	"github.com/alnah/go-mdview/internal/pipeline"
)

// DefaultViewportWidth is the CSS width the page is laid out at.
const DefaultViewportWidth = 900

// PageOpener provides fresh browser pages.
type PageOpener interface {
	Page(ctx context.Context) (*rod.Page, error)
}

const appendFooterJS = `(id, markup) => {
	const root = document.getElementById(id) || document.body;
	const t = document.createElement("template");
	t.innerHTML = markup;
	root.appendChild(t.content);
}`

const removeFooterJS = `(attr) => {
	document.querySelectorAll("[" + attr + "]").forEach((n) => n.remove());
}`

// RodSurfaces opens export pages in headless Chrome.
type RodSurfaces struct {
	pages PageOpener
	width int
}

// NewRodSurfaces creates a SurfaceOpener backed by pages.
func NewRodSurfaces(pages PageOpener, width int) *RodSurfaces {
	if width <= 0 {
		width = DefaultViewportWidth
	}
	return &RodSurfaces{pages: pages, width: width}
}

// Open writes pageHTML to a temporary file and loads it.
func (o *RodSurfaces) Open(ctx context.Context, pageHTML string) (Surface, error) {
	path, cleanup, err := fileutil.WriteTempFile(pageHTML, "html")
	if err != nil {
		return nil, err
	}

	page, err := o.pages.Page(ctx)
	if err != nil {
		cleanup()
		return nil, err
	}

	s := &rodSurface{page: page, width: o.width, cleanup: cleanup}
	if err := s.load(ctx, path); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

type rodSurface struct {
	page    *rod.Page
	width   int
	cleanup func()
}

func (s *rodSurface) load(ctx context.Context, path string) error {
	p := s.page.Context(ctx)
	if err := s.viewport(p, 1); err != nil {
		return err
	}
	if err := p.Navigate(fileutil.FileURL(path)); err != nil {
		return fmt.Errorf("navigating: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("waiting for load: %w", err)
	}
	// Let fonts and client scripts settle before measuring.
	if err := p.WaitIdle(2 * time.Second); err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

func (s *rodSurface) viewport(p *rod.Page, scale float64) error {
	return p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.width,
		Height:            800,
		DeviceScaleFactor: scale,
	})
}

func (s *rodSurface) AppendFooter(ctx context.Context, footerHTML string) error {
	_, err := s.page.Context(ctx).Eval(appendFooterJS, CaptureRootID, footerHTML)
	return err
}

// RemoveFooter removes the footer blocks and reads the DOM back to confirm
// none is left.
func (s *rodSurface) RemoveFooter(ctx context.Context) error {
	p := s.page.Context(ctx)
	if _, err := p.Eval(removeFooterJS, FooterAttr); err != nil {
		return err
	}
	dom, err := p.HTML()
	if err != nil {
		return err
	}
	return checkFooterRemoved(dom)
}

// checkFooterRemoved fails when dom still carries a footer block.
func checkFooterRemoved(dom string) error {
	n, err := pipeline.CountElementsWithAttr(dom, FooterAttr)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d footer blocks left after removal", ErrCapture, n)
	}
	return nil
}

func (s *rodSurface) Capture(ctx context.Context, scale float64) ([]byte, error) {
	p := s.page.Context(ctx)
	if err := s.viewport(p, scale); err != nil {
		return nil, err
	}
	el, err := p.Element("#" + CaptureRootID)
	if err != nil {
		return nil, err
	}
	return el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
}

func (s *rodSurface) Close() error {
	defer s.cleanup()
	return s.page.Close()
}

// Compile-time interface checks.
var (
	_ SurfaceOpener = (*RodSurfaces)(nil)
	_ Surface       = (*rodSurface)(nil)
)
