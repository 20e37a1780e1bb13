package diagram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/alnah/go-mdview/internal/fileutil"
)

// DefaultCommand is the mermaid CLI binary.
const DefaultCommand = "mmdc"

// CommandRunner abstracts command execution so tests need no subprocess.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

// Run executes name with args and collects both output streams.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return "", "", fmt.Errorf("creating stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return "", "", fmt.Errorf("starting command: %w", err)
	}

	stderrContent, err := io.ReadAll(stderrPipe)
	if err != nil {
		return "", "", fmt.Errorf("reading stderr: %w", err)
	}

	err = cmd.Wait()
	return stdout.String(), string(stderrContent), err
}

// CLIEngine renders diagrams by invoking the mermaid CLI once per diagram.
// The theme is written to a config file once, in Init.
type CLIEngine struct {
	Runner  CommandRunner
	Command string

	mu            sync.Mutex
	configPath    string
	configCleanup func()
}

// NewCLIEngine creates a CLIEngine with a real command runner.
func NewCLIEngine(command string) *CLIEngine {
	if command == "" {
		command = DefaultCommand
	}
	return &CLIEngine{Runner: &ExecRunner{}, Command: command}
}

// Init writes the mermaid config file.
func (e *CLIEngine) Init(_ context.Context, theme Theme) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	data, err := json.Marshal(theme.MermaidConfig())
	if err != nil {
		return fmt.Errorf("%w: encoding config: %v", ErrEngineUnavailable, err)
	}
	path, cleanup, err := fileutil.WriteTempFile(string(data), "json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	e.configPath = path
	e.configCleanup = cleanup
	return nil
}

// Render runs the CLI on source and returns the SVG it wrote.
func (e *CLIEngine) Render(ctx context.Context, _ string, source string) (string, error) {
	e.mu.Lock()
	configPath := e.configPath
	e.mu.Unlock()
	if configPath == "" {
		return "", ErrEngineUnavailable
	}

	inPath, cleanupIn, err := fileutil.WriteTempFile(source, "mmd")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	defer cleanupIn()

	outPath := strings.TrimSuffix(inPath, ".mmd") + ".svg"
	defer func() { _ = os.Remove(outPath) }()

	_, stderr, err := e.Runner.Run(ctx, e.Command,
		"-i", inPath,
		"-o", outPath,
		"-c", configPath,
		"-b", "transparent",
		"-q",
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		return "", &EngineError{Message: msg}
	}

	svg, err := os.ReadFile(outPath) // #nosec G304 -- path derived from our own temp file
	if err != nil {
		return "", &EngineError{Message: fmt.Sprintf("no output produced: %v", err)}
	}
	return string(svg), nil
}

// Close removes the config file.
func (e *CLIEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.configCleanup != nil {
		e.configCleanup()
		e.configCleanup = nil
		e.configPath = ""
	}
	return nil
}

// DisabledEngine renders every diagram as an error panel.
type DisabledEngine struct{}

func (DisabledEngine) Init(context.Context, Theme) error { return nil }

func (DisabledEngine) Render(context.Context, string, string) (string, error) {
	return "", &EngineError{Message: ErrEngineDisabled.Error()}
}

func (DisabledEngine) Close() error { return nil }

// Compile-time interface checks.
var (
	_ Engine = (*CLIEngine)(nil)
	_ Engine = DisabledEngine{}
)
