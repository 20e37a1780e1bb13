package mdview

import (
	"errors"

	"github.com/alnah/go-mdview/internal/browser"
	"github.com/alnah/go-mdview/internal/export"
	"github.com/alnah/go-mdview/internal/ingest"
)

// Sentinel errors for library operations.
var (
	ErrFileNotFound     = errors.New("file not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrInvalidEngine    = errors.New("invalid diagram engine")
	ErrPoolClosed       = errors.New("browser pool closed")
	ErrViewerClosed     = errors.New("viewer closed")
)

// Asset errors, returned by loaders from NewAssetLoader.
var (
	ErrStyleNotFound         = errors.New("style not found")
	ErrTemplateSetNotFound   = errors.New("template set not found")
	ErrIncompleteTemplateSet = errors.New("template set missing required template")
	ErrScriptNotFound        = errors.New("script not found")
)

// Upload rejection errors. Rejection.Err wraps one of these.
var (
	ErrInvalidType       = ingest.ErrInvalidType
	ErrTooLarge          = ingest.ErrTooLarge
	ErrReadFailure       = ingest.ErrReadFailure
	ErrEmptyFile         = ingest.ErrEmpty
	ErrUnclosedCodeBlock = ingest.ErrUnclosedCodeBlock
)

// Export errors.
var (
	ErrNothingToExport   = export.ErrEmptyArticle
	ErrUnsupportedFormat = export.ErrUnsupportedFormat
	ErrBrowserConnect    = browser.ErrBrowserConnect
)
