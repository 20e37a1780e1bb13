// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdview/internal/fileutil"
)

// appDirName is the user config subdirectory holding named configs.
const appDirName = "go-mdview"

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	// Detect CI environment
	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	// Suggest ROD_NO_SANDBOX for container/CI environments
	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	// Suggest ROD_BROWSER_BIN if not set
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config dir.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path (contains the app dir) to suggest
	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "/"+appDirName+"/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForDiagramEngine returns hints for a diagram engine that failed to start.
func ForDiagramEngine(engine string) string {
	switch engine {
	case "cli":
		return format("install mermaid-cli (npm install -g @mermaid-js/mermaid-cli) or set diagram.engine: browser")
	case "browser":
		return format("set diagram.engine: cli to render with mermaid-cli, or off to skip diagrams")
	}
	return ""
}

// ForUnsupportedFormat lists the formats that can be exported.
func ForUnsupportedFormat(supported []string) string {
	if len(supported) == 0 {
		return ""
	}
	return format("supported formats: " + strings.Join(supported, ", "))
}

// ForAddressInUse returns hints for a listen address already taken.
func ForAddressInUse(addr string) string {
	return format(addr + " is taken; use --addr 127.0.0.1:0 to pick a free port")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
