package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/alnah/go-mdview/internal/config"
	"github.com/alnah/go-mdview/internal/fileutil"
	flag "github.com/spf13/pflag"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo  `json:"chrome"`
	Diagram  diagramInfo `json:"diagram"`
	Config   configInfo  `json:"config"`
	Env      envInfo     `json:"environment"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// diagramInfo reports the configured diagram engine.
type diagramInfo struct {
	Engine      string `json:"engine"`
	Command     string `json:"command,omitempty"`
	CommandPath string `json:"command_path,omitempty"`
}

// configInfo reports config resolution.
type configInfo struct {
	Source string `json:"source"` // "defaults" or the name given
	Valid  bool   `json:"valid"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Warnings still exit 0.
func runDoctorCmd(args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	result := runDoctor(flags.config, env)

	if flags.json {
		_ = writeJSONTo(env.Stdout, result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(configName string, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  env.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.Getenv("ROD_BROWSER_BIN"),
		},
	}

	cfg := checkConfig(result, configName, env)
	checkChrome(result, cfg, env)
	checkDiagram(result, cfg, env)
	checkEnvironment(result, env)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkConfig loads the configuration, falling back to defaults on error.
func checkConfig(result *doctorResult, name string, env *Environment) *config.Config {
	result.Config.Source = "defaults"
	if name != "" {
		result.Config.Source = name
	} else if v := env.Getenv("MDVIEW_CONFIG"); v != "" {
		result.Config.Source = v
	}

	cfg, err := loadConfig(name, env)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
		return config.DefaultConfig()
	}
	result.Config.Valid = true
	return cfg
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult, cfg *config.Config, env *Environment) {
	chromePath := cfg.Browser.Bin
	if chromePath == "" {
		chromePath = result.Env.BrowserBin
	}

	if chromePath == "" {
		var found bool
		chromePath, found = env.FindBrowser()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN (needed for PDF export and diagrams)")
			return
		}
	}

	if !fileutil.FileExists(chromePath) {
		result.Errors = append(result.Errors, fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- path comes from local config or PATH lookup
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkDiagram verifies that the configured diagram engine can run.
func checkDiagram(result *doctorResult, cfg *config.Config, env *Environment) {
	result.Diagram.Engine = cfg.Diagram.Engine

	switch cfg.Diagram.Engine {
	case config.EngineCLI:
		result.Diagram.Command = cfg.Diagram.Command
		path, err := env.LookPath(cfg.Diagram.Command)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Diagram command %q not found. Install @mermaid-js/mermaid-cli or set diagram.engine: browser", cfg.Diagram.Command))
			return
		}
		result.Diagram.CommandPath = path
	case config.EngineOff:
		result.Warnings = append(result.Warnings, "Diagrams are disabled (diagram.engine: off)")
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, env *Environment) {
	result.Env.Container, result.Env.ContainerHint = isContainer(env.Getenv)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if env.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects a container environment and names the signal found.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("MDVIEW_CONTAINER") == "1" {
		return true, "MDVIEW_CONTAINER=1"
	}
	if fileutil.FileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory is writable; PDF capture and the
// mermaid CLI write scratch files there.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "mdview-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdview doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Diagrams")
	fmt.Fprintf(w, "  [OK] Engine: %s\n", r.Diagram.Engine)
	if r.Diagram.CommandPath != "" {
		fmt.Fprintf(w, "  [OK] Command: %s\n", r.Diagram.CommandPath)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config")
	if r.Config.Valid {
		fmt.Fprintf(w, "  [OK] Source: %s\n", r.Config.Source)
	} else {
		fmt.Fprintf(w, "  [ERROR] Source: %s\n", r.Config.Source)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
