package main

import (
	"errors"
	"os"

	mdview "github.com/alnah/go-mdview"
	"github.com/alnah/go-mdview/internal/config"
	"github.com/alnah/go-mdview/internal/diagram"
)

// Exit codes for the mdview CLI.
// 0=success, 1=general, 2=usage, then custom codes below 126.
const (
	ExitSuccess  = 0 // Command completed
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or validation
	ExitIO       = 3 // File not found, permission denied
	ExitBrowser  = 4 // Browser or diagram engine errors
	ExitRejected = 5 // Every input file failed validation
)

// exitCodeFor returns the exit code for err, checking wrapped errors.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrAllRejected) {
		return ExitRejected
	}

	if errors.Is(err, mdview.ErrBrowserConnect) ||
		errors.Is(err, mdview.ErrPoolClosed) ||
		errors.Is(err, diagram.ErrEngineUnavailable) {
		return ExitBrowser
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrMissingQuery) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrConfigValidation) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, mdview.ErrUnsupportedFormat) ||
		errors.Is(err, mdview.ErrNothingToExport) ||
		errors.Is(err, mdview.ErrInvalidEngine) ||
		errors.Is(err, mdview.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}
