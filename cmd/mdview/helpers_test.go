package main

// Notes:
// - testEnv never reads the process environment: variables come from a map
//   and the browser lookup is faked, so tests run in parallel.
// - Diagrams are forced off through Environment.Options so no test starts
//   Chrome.

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	mdview "github.com/alnah/go-mdview"
)

// ---------------------------------------------------------------------------
// Test Environment
// ---------------------------------------------------------------------------

type testEnvironment struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	opened []string
}

func newTestEnv(t *testing.T, vars map[string]string) *testEnvironment {
	t.Helper()

	te := &testEnvironment{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	te.Environment = &Environment{
		Now:    func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
		Stdout: te.stdout,
		Stderr: te.stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		LookPath:    func(string) (string, error) { return "", errors.New("not found") },
		FindBrowser: func() (string, bool) { return "", false },
		OpenURL: func(u string) error {
			te.opened = append(te.opened, u)
			return nil
		},
		Options: []mdview.Option{mdview.WithDiagramEngine(mdview.EngineOff)},
	}
	return te
}

// writeFile creates name under dir with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
