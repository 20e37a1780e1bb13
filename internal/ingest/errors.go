package ingest

import "errors"

// Sentinel errors for rejected upload candidates, one per rejection reason.
var (
	// ErrInvalidType indicates the file extension is not .md or .markdown.
	ErrInvalidType = errors.New("invalid file type")

	// ErrTooLarge indicates the file exceeds the size limit.
	ErrTooLarge = errors.New("file too large")

	// ErrReadFailure indicates the file content could not be read.
	ErrReadFailure = errors.New("failed to read file")

	// ErrEmpty indicates the file has no content after trimming whitespace.
	ErrEmpty = errors.New("file is empty")

	// ErrUnclosedCodeBlock indicates an odd number of ``` fence markers.
	ErrUnclosedCodeBlock = errors.New("unclosed code block")
)
