package pipeline

import "errors"

// Sentinel errors for the render pipeline.
var (
	// ErrHTMLConversion indicates goldmark failed to render the document.
	ErrHTMLConversion = errors.New("HTML conversion failed")

	// ErrPageRender indicates the viewer page template failed to execute.
	ErrPageRender = errors.New("page rendering failed")

	// ErrElementNotFound indicates the requested element is absent from an HTML document.
	ErrElementNotFound = errors.New("element not found")
)
