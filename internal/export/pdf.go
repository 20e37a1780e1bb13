package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDF defaults.
const (
	DefaultScale      = 2.0
	DefaultPDFTimeout = 60 * time.Second

	// a4Ratio is height over width of an A4 portrait page.
	a4Ratio = 297.0 / 210.0

	// importDescription places one image per A4 portrait page, filling it.
	importDescription = "formsize:A4, position:full"
)

var disableConfigDir sync.Once

// Surface is a live rendered view an export can temporarily decorate and
// rasterize.
type Surface interface {
	// AppendFooter adds the footer block to the captured element.
	AppendFooter(ctx context.Context, footerHTML string) error
	// RemoveFooter removes every footer block. Safe to call repeatedly.
	RemoveFooter(ctx context.Context) error
	// Capture returns a PNG of the captured element at the given pixel ratio.
	Capture(ctx context.Context, scale float64) ([]byte, error)
	Close() error
}

// SurfaceOpener loads a page into a new Surface.
type SurfaceOpener interface {
	Open(ctx context.Context, pageHTML string) (Surface, error)
}

// PDFExporter rasterizes a rendered page and paginates it onto A4.
type PDFExporter struct {
	opener  SurfaceOpener
	footer  Footer
	scale   float64
	timeout time.Duration
}

// NewPDFExporter creates a PDFExporter. Non-positive scale or timeout select
// the defaults.
func NewPDFExporter(opener SurfaceOpener, footer Footer, scale float64, timeout time.Duration) *PDFExporter {
	if scale <= 0 {
		scale = DefaultScale
	}
	if timeout <= 0 {
		timeout = DefaultPDFTimeout
	}
	return &PDFExporter{opener: opener, footer: footer, scale: scale, timeout: timeout}
}

// Export captures pageHTML with the footer appended and returns the PDF.
// The footer is removed from the surface on every path.
func (e *PDFExporter) Export(ctx context.Context, pageHTML string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	surface, err := e.opener.Open(ctx, pageHTML)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	defer func() { _ = surface.Close() }()

	img, err := e.capture(ctx, surface)
	if err != nil {
		return nil, err
	}
	return AssemblePDF(img)
}

func (e *PDFExporter) capture(ctx context.Context, s Surface) ([]byte, error) {
	defer func() { _ = s.RemoveFooter(context.WithoutCancel(ctx)) }()

	if !e.footer.Empty() {
		if err := s.AppendFooter(ctx, e.footer.HTML()); err != nil {
			return nil, fmt.Errorf("%w: appending footer: %v", ErrCapture, err)
		}
	}

	img, err := s.Capture(ctx, e.scale)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	return img, nil
}

// AssemblePDF slices a PNG into A4-proportioned tiles at its own width and
// places one tile per A4 portrait page. The last tile is padded with white.
func AssemblePDF(pngData []byte) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding capture: %v", ErrPDFAssembly, err)
	}

	tiles, err := Tiles(src)
	if err != nil {
		return nil, err
	}

	readers := make([]io.Reader, 0, len(tiles))
	for _, t := range tiles {
		var buf bytes.Buffer
		if err := png.Encode(&buf, t); err != nil {
			return nil, fmt.Errorf("%w: encoding page: %v", ErrPDFAssembly, err)
		}
		readers = append(readers, &buf)
	}

	imp, err := api.Import(importDescription, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFAssembly, err)
	}

	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, readers, imp, pdfConfig()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFAssembly, err)
	}
	return out.Bytes(), nil
}

// Tiles cuts img into consecutive A4-proportioned slices of its full width.
func Tiles(img image.Image) ([]image.Image, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty capture", ErrPDFAssembly)
	}

	tileHeight := int(float64(b.Dx()) * a4Ratio)
	if tileHeight < 1 {
		tileHeight = 1
	}

	var tiles []image.Image
	for y := b.Min.Y; y < b.Max.Y; y += tileHeight {
		tile := image.NewRGBA(image.Rect(0, 0, b.Dx(), tileHeight))
		draw.Draw(tile, tile.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		src := image.Rect(b.Min.X, y, b.Max.X, min(y+tileHeight, b.Max.Y))
		draw.Draw(tile, image.Rect(0, 0, src.Dx(), src.Dy()), img, src.Min, draw.Over)
		tiles = append(tiles, tile)
	}
	return tiles, nil
}

// PageCount returns the number of pages in a PDF.
func PageCount(pdf []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(pdf), pdfConfig())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPDFAssembly, err)
	}
	return n, nil
}

// pdfConfig returns a pdfcpu configuration that never touches the user's
// config directory.
func pdfConfig() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	return model.NewDefaultConfiguration()
}