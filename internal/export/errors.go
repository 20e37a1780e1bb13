package export

import "errors"

// Sentinel errors for export operations.
var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrEmptyArticle      = errors.New("nothing to export")
	ErrTemplate          = errors.New("export template failed")
	ErrCapture           = errors.New("capturing rendered view failed")
	ErrPDFAssembly       = errors.New("assembling PDF failed")
	ErrDOCX              = errors.New("encoding DOCX failed")
)
