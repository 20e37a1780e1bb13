package main

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunServe
// ---------------------------------------------------------------------------

func TestRunServe_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := newTestEnv(t, nil)
	err := runServe(ctx, []string{"--addr", "127.0.0.1:0", "--open"}, env.Environment)
	if err != nil {
		t.Fatalf("runServe() error = %v", err)
	}

	out := env.stdout.String()
	if !strings.Contains(out, "mdview serving at http://127.0.0.1:") {
		t.Errorf("stdout = %q, want serving line", out)
	}
	if len(env.opened) != 1 || !strings.HasPrefix(env.opened[0], "http://127.0.0.1:") {
		t.Errorf("opened = %v, want the viewer url", env.opened)
	}
}

func TestRunServe_AddressInUse(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = ln.Close() }()

	env := newTestEnv(t, nil)
	err = runServe(context.Background(), []string{"--addr", ln.Addr().String(), "-q"}, env.Environment)
	if err == nil {
		t.Fatal("runServe() error = nil, want listen error")
	}
	if !strings.Contains(err.Error(), "hint:") {
		t.Errorf("error = %v, want address hint", err)
	}
}

func TestRunServe_FlagErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"positional", []string{"file.md"}},
		{"bad log format", []string{"--addr", "127.0.0.1:0", "--log-format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, nil)
			err := runServe(context.Background(), tt.args, env.Environment)
			if !errors.Is(err, ErrUsage) && !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("error = %v, want usage error", err)
			}
		})
	}
}
