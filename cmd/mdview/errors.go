package main

import "errors"

// Sentinel errors for CLI operations.
var (
	ErrUsage            = errors.New("invalid usage")
	ErrNoInput          = errors.New("no input files")
	ErrAllRejected      = errors.New("every input file was rejected")
	ErrWriteOutput      = errors.New("failed to write output")
	ErrMissingQuery     = errors.New("missing search query")
	ErrInvalidFormat    = errors.New("invalid log format")
	ErrUnsupportedShell = errors.New("unsupported shell")
)
