package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mdview/internal/config"
	"github.com/alnah/go-mdview/internal/yamlutil"
)

// envConfig holds configuration from MDVIEW_* environment variables.
type envConfig struct {
	ConfigPath    string        // MDVIEW_CONFIG: config name or path
	Addr          string        // MDVIEW_ADDR: listen address
	DiagramEngine string        // MDVIEW_DIAGRAM_ENGINE: browser, cli, off
	BrowserBin    string        // MDVIEW_BROWSER_BIN: Chrome binary
	AssetPath     string        // MDVIEW_ASSET_PATH: asset override directory
	LogLevel      string        // MDVIEW_LOG_LEVEL: debug, info, warn, error
	LogFormat     string        // MDVIEW_LOG_FORMAT: text, json
	Timeout       time.Duration // MDVIEW_TIMEOUT: export timeout
	Workers       int           // MDVIEW_WORKERS: browser pool size
}

// knownEnvVars lists valid MDVIEW_* variables, for typo warnings.
var knownEnvVars = map[string]bool{
	"MDVIEW_CONFIG":         true,
	"MDVIEW_ADDR":           true,
	"MDVIEW_DIAGRAM_ENGINE": true,
	"MDVIEW_BROWSER_BIN":    true,
	"MDVIEW_ASSET_PATH":     true,
	"MDVIEW_LOG_LEVEL":      true,
	"MDVIEW_LOG_FORMAT":     true,
	"MDVIEW_TIMEOUT":        true,
	"MDVIEW_WORKERS":        true,
}

// loadEnvConfig reads MDVIEW_* variables through getenv.
// Malformed durations and counts are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath:    getenv("MDVIEW_CONFIG"),
		Addr:          getenv("MDVIEW_ADDR"),
		DiagramEngine: getenv("MDVIEW_DIAGRAM_ENGINE"),
		BrowserBin:    getenv("MDVIEW_BROWSER_BIN"),
		AssetPath:     getenv("MDVIEW_ASSET_PATH"),
		LogLevel:      getenv("MDVIEW_LOG_LEVEL"),
		LogFormat:     getenv("MDVIEW_LOG_FORMAT"),
	}

	if timeout := getenv("MDVIEW_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := getenv("MDVIEW_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars writes a warning for each unrecognized MDVIEW_* variable.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, "MDVIEW_") {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overlays set variables on cfg.
// Precedence: flags > environment > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.DiagramEngine != "" {
		cfg.Diagram.Engine = env.DiagramEngine
	}
	if env.BrowserBin != "" {
		cfg.Browser.Bin = env.BrowserBin
	}
	if env.AssetPath != "" {
		cfg.Assets.Path = env.AssetPath
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
	if env.Timeout > 0 {
		cfg.Export.Timeout = yamlutil.Duration(env.Timeout)
	}
	if env.Workers > 0 {
		cfg.Browser.Workers = env.Workers
	}
}
