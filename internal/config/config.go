package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdview/internal/dateutil"
	"github.com/alnah/go-mdview/internal/fileutil"
	"github.com/alnah/go-mdview/internal/hints"
	"github.com/alnah/go-mdview/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound   = errors.New("config file not found")
	ErrEmptyConfigName  = errors.New("config name cannot be empty")
	ErrConfigParse      = errors.New("failed to parse config")
	ErrConfigValidation = errors.New("invalid config")
	ErrFieldTooLong     = errors.New("field exceeds maximum length")
)

// AppDirName is the directory under the user config dir searched for named
// configs.
const AppDirName = "go-mdview"

// Field length limits.
const (
	MaxAddrLength     = 255  // host:port
	MaxPathLength     = 4096 // filesystem paths and commands
	MaxURLLength      = 2048 // Browser limit
	MaxTextLength     = 500  // Footer/free-form text
	MaxNameLength     = 100  // Artifact base name
	MaxStyleLength    = 50   // Chroma style name
	MaxLanguageLength = 30   // Fence language tag
	MaxColorLength    = 20   // "#0f172a" or color name
)

// Diagram engine names.
const (
	EngineBrowser = "browser"
	EngineCLI     = "cli"
	EngineOff     = "off"
)

// Config holds all configuration of the viewer.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Upload  UploadConfig  `yaml:"upload"`
	Render  RenderConfig  `yaml:"render"`
	Diagram DiagramConfig `yaml:"diagram"`
	Export  ExportConfig  `yaml:"export"`
	Search  SearchConfig  `yaml:"search"`
	Browser BrowserConfig `yaml:"browser"`
	Log     LogConfig     `yaml:"log"`
	Assets  AssetsConfig  `yaml:"assets"`
}

// ServerConfig defines the HTTP surface.
type ServerConfig struct {
	Addr            string            `yaml:"addr"`
	ReadTimeout     yamlutil.Duration `yaml:"readTimeout"`
	WriteTimeout    yamlutil.Duration `yaml:"writeTimeout"`
	ShutdownTimeout yamlutil.Duration `yaml:"shutdownTimeout"`
	SessionTTL      yamlutil.Duration `yaml:"sessionTTL"` // idle time before a session is dropped
	MaxSessions     int               `yaml:"maxSessions"`
}

// UploadConfig defines upload limits.
type UploadConfig struct {
	MaxFileSize    int64 `yaml:"maxFileSize"`    // bytes per file
	MaxFiles       int   `yaml:"maxFiles"`       // files per request
	MaxRequestSize int64 `yaml:"maxRequestSize"` // bytes per request body
}

// RenderConfig defines Markdown rendering options.
type RenderConfig struct {
	Sanitize          bool     `yaml:"sanitize"`
	HighlightStyle    string   `yaml:"highlightStyle"`
	LineNumbers       bool     `yaml:"lineNumbers"`
	RunnableLanguages []string `yaml:"runnableLanguages"`
}

// DiagramConfig defines the diagram engine.
type DiagramConfig struct {
	Engine      string            `yaml:"engine"`  // "browser", "cli" or "off"
	Command     string            `yaml:"command"` // cli engine binary
	ScriptURL   string            `yaml:"scriptURL"`
	Timeout     yamlutil.Duration `yaml:"timeout"`
	Concurrency int               `yaml:"concurrency"`
	Theme       ThemeConfig       `yaml:"theme"`
}

// ThemeConfig overrides parts of the diagram theme.
type ThemeConfig struct {
	FontFamily string            `yaml:"fontFamily"`
	Variables  map[string]string `yaml:"variables"` // merged over the default palette
}

// ExportConfig defines export options.
type ExportConfig struct {
	Footer      string            `yaml:"footer"`
	Attribution string            `yaml:"attribution"`
	Date        string            `yaml:"date"` // "auto", "auto:FORMAT" or literal
	DefaultName string            `yaml:"defaultName"`
	Scale       float64           `yaml:"scale"` // PDF capture pixel ratio, 1 to 4
	Timeout     yamlutil.Duration `yaml:"timeout"`
}

// SearchConfig defines search options.
type SearchConfig struct {
	MaxResults    int `yaml:"maxResults"`
	Fuzziness     int `yaml:"fuzziness"`     // edit distance, 0 to 2
	PreviewLength int `yaml:"previewLength"` // runes
}

// BrowserConfig defines the headless browser pool.
type BrowserConfig struct {
	Workers int    `yaml:"workers"` // 0 = auto
	Bin     string `yaml:"bin"`     // overrides ROD_BROWSER_BIN
}

// LogConfig defines process logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text" or "json"
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	Path string `yaml:"path"` // Empty = use embedded assets
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:8765",
			ReadTimeout:     yamlutil.Duration(30 * time.Second),
			WriteTimeout:    yamlutil.Duration(120 * time.Second),
			ShutdownTimeout: yamlutil.Duration(10 * time.Second),
			SessionTTL:      yamlutil.Duration(time.Hour),
			MaxSessions:     64,
		},
		Upload: UploadConfig{
			MaxFileSize:    10 << 20,
			MaxFiles:       50,
			MaxRequestSize: 64 << 20,
		},
		Render: RenderConfig{
			HighlightStyle:    "onedark",
			RunnableLanguages: []string{"javascript", "python", "bash"},
		},
		Diagram: DiagramConfig{
			Engine:      EngineBrowser,
			Command:     "mmdc",
			ScriptURL:   "https://cdn.jsdelivr.net/npm/mermaid@10.9.1/dist/mermaid.min.js",
			Timeout:     yamlutil.Duration(30 * time.Second),
			Concurrency: 4,
		},
		Export: ExportConfig{
			Footer:      "Made with ❤️ by Sagar Kumar",
			Attribution: "Generated with MD Converter Pro",
			DefaultName: "document",
			Scale:       2,
			Timeout:     yamlutil.Duration(60 * time.Second),
		},
		Search: SearchConfig{
			MaxResults:    5,
			Fuzziness:     1,
			PreviewLength: 100,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks enums, ranges and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"server.addr", c.Server.Addr, MaxAddrLength},
		{"render.highlightStyle", c.Render.HighlightStyle, MaxStyleLength},
		{"diagram.command", c.Diagram.Command, MaxPathLength},
		{"diagram.scriptURL", c.Diagram.ScriptURL, MaxURLLength},
		{"diagram.theme.fontFamily", c.Diagram.Theme.FontFamily, MaxTextLength},
		{"export.footer", c.Export.Footer, MaxTextLength},
		{"export.attribution", c.Export.Attribution, MaxTextLength},
		{"export.defaultName", c.Export.DefaultName, MaxNameLength},
		{"browser.bin", c.Browser.Bin, MaxPathLength},
		{"assets.path", c.Assets.Path, MaxPathLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}
	for i, lang := range c.Render.RunnableLanguages {
		if err := validateFieldLength(fmt.Sprintf("render.runnableLanguages[%d]", i), lang, MaxLanguageLength); err != nil {
			return err
		}
	}
	for k, v := range c.Diagram.Theme.Variables {
		if err := validateFieldLength("diagram.theme.variables."+k, v, MaxColorLength); err != nil {
			return err
		}
	}

	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	if err := c.validateDiagram(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}

	if c.Browser.Workers < 0 || c.Browser.Workers > MaxBrowserWorkers {
		return invalid("browser.workers: must be between 0 and %d, got %d", MaxBrowserWorkers, c.Browser.Workers)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return invalid("log.format: invalid value %q (must be text or json)", c.Log.Format)
	}
	return nil
}

// MaxBrowserWorkers caps browser.workers.
const MaxBrowserWorkers = 8

func (c *Config) validateServer() error {
	s := c.Server
	if strings.TrimSpace(s.Addr) == "" {
		return invalid("server.addr: required")
	}
	for name, d := range map[string]yamlutil.Duration{
		"server.readTimeout":     s.ReadTimeout,
		"server.writeTimeout":    s.WriteTimeout,
		"server.shutdownTimeout": s.ShutdownTimeout,
		"server.sessionTTL":      s.SessionTTL,
	} {
		if d <= 0 {
			return invalid("%s: must be positive, got %s", name, d)
		}
	}
	if s.MaxSessions < 1 {
		return invalid("server.maxSessions: must be at least 1, got %d", s.MaxSessions)
	}
	return nil
}

func (c *Config) validateUpload() error {
	u := c.Upload
	if u.MaxFileSize <= 0 {
		return invalid("upload.maxFileSize: must be positive, got %d", u.MaxFileSize)
	}
	if u.MaxFiles < 1 {
		return invalid("upload.maxFiles: must be at least 1, got %d", u.MaxFiles)
	}
	if u.MaxRequestSize < u.MaxFileSize {
		return invalid("upload.maxRequestSize: must be at least maxFileSize (%d), got %d", u.MaxFileSize, u.MaxRequestSize)
	}
	return nil
}

func (c *Config) validateDiagram() error {
	d := c.Diagram
	switch d.Engine {
	case EngineBrowser, EngineCLI, EngineOff:
	default:
		return invalid("diagram.engine: invalid value %q (must be browser, cli, or off)", d.Engine)
	}
	if d.Engine == EngineCLI && strings.TrimSpace(d.Command) == "" {
		return invalid("diagram.command: required when engine is cli")
	}
	if d.Engine == EngineBrowser && !fileutil.IsURL(d.ScriptURL) {
		return invalid("diagram.scriptURL: must be an http(s) URL, got %q", d.ScriptURL)
	}
	if d.Timeout <= 0 {
		return invalid("diagram.timeout: must be positive, got %s", d.Timeout)
	}
	if d.Concurrency < 1 || d.Concurrency > 32 {
		return invalid("diagram.concurrency: must be between 1 and 32, got %d", d.Concurrency)
	}
	return nil
}

func (c *Config) validateExport() error {
	e := c.Export
	if fileutil.IsFilePath(e.DefaultName) {
		return invalid("export.defaultName: must not contain path separators, got %q", e.DefaultName)
	}
	if e.Scale < 1 || e.Scale > 4 {
		return invalid("export.scale: must be between 1 and 4, got %.2f", e.Scale)
	}
	if e.Timeout <= 0 {
		return invalid("export.timeout: must be positive, got %s", e.Timeout)
	}
	if err := dateutil.Validate(e.Date); err != nil {
		return invalid("export.date: %v", err)
	}
	return nil
}

func (c *Config) validateSearch() error {
	s := c.Search
	if s.MaxResults < 1 || s.MaxResults > 50 {
		return invalid("search.maxResults: must be between 1 and 50, got %d", s.MaxResults)
	}
	if s.Fuzziness < 0 || s.Fuzziness > 2 {
		return invalid("search.fuzziness: must be between 0 and 2, got %d", s.Fuzziness)
	}
	if s.PreviewLength < 1 || s.PreviewLength > 1000 {
		return invalid("search.previewLength: must be between 1 and 1000, got %d", s.PreviewLength)
	}
	return nil
}

// SlogLevel parses the configured level. Empty means info.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, invalid("log.level: invalid value %q (must be debug, info, warn, or error)", l.Level)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConfigValidation}, args...)...)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator or a YAML extension, it's treated
// as a file path. Otherwise, it's treated as a config name and searched in
// standard locations. Keys absent from the file keep their defaults.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	return fileutil.IsFilePath(s) || ext == ".yaml" || ext == ".yml"
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/go-mdview/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppDirName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s%s", ErrConfigNotFound, strings.Join(triedPaths, ", "), hints.ForConfigNotFound(triedPaths))
}
