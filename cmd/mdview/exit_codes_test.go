package main

// Notes:
// - exitCodeFor: every sentinel mapped by the CLI is listed, plus wrapped
//   variants to check the errors.Is chain.

import (
	"errors"
	"fmt"
	"os"
	"testing"

	mdview "github.com/alnah/go-mdview"
	"github.com/alnah/go-mdview/internal/config"
	"github.com/alnah/go-mdview/internal/diagram"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},

		{"all rejected", ErrAllRejected, ExitRejected},
		{"wrapped all rejected", fmt.Errorf("%w: 2 file(s)", ErrAllRejected), ExitRejected},

		{"browser connect", mdview.ErrBrowserConnect, ExitBrowser},
		{"pool closed", mdview.ErrPoolClosed, ExitBrowser},
		{"diagram engine", diagram.ErrEngineUnavailable, ExitBrowser},
		{"wrapped browser connect", fmt.Errorf("export: %w", mdview.ErrBrowserConnect), ExitBrowser},

		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},

		{"usage", ErrUsage, ExitUsage},
		{"missing query", ErrMissingQuery, ExitUsage},
		{"invalid log format", ErrInvalidFormat, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"config validation", config.ErrConfigValidation, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"unsupported format", mdview.ErrUnsupportedFormat, ExitUsage},
		{"nothing to export", mdview.ErrNothingToExport, ExitUsage},
		{"invalid engine", mdview.ErrInvalidEngine, ExitUsage},
		{"invalid asset path", mdview.ErrInvalidAssetPath, ExitUsage},

		{"unknown error", errors.New("boom"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodes_Conventions(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Error("exit codes 0, 1, 2 must keep their Unix meaning")
	}
	for _, code := range []int{ExitIO, ExitBrowser, ExitRejected} {
		if code >= 126 {
			t.Errorf("custom exit code %d collides with shell-reserved codes", code)
		}
	}
}
