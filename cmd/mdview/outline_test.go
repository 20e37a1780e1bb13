package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	mdview "github.com/alnah/go-mdview"
)

// ---------------------------------------------------------------------------
// TestRunOutline
// ---------------------------------------------------------------------------

func TestRunOutline_Text(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "guide.md", "# Guide\n\n## Install\n\n```sh\n# not a heading\n```\n\n### Linux\n")

	env := newTestEnv(t, nil)
	if err := runOutline(context.Background(), []string{in}, env.Environment); err != nil {
		t.Fatalf("runOutline() error = %v", err)
	}

	want := "- Guide  #guide\n  - Install  #install\n    - Linux  #linux\n"
	if got := env.stdout.String(); got != want {
		t.Errorf("outline =\n%s\nwant\n%s", got, want)
	}
}

func TestRunOutline_JSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "a.md", "# Alpha\n\n## Beta\n")

	env := newTestEnv(t, nil)
	if err := runOutline(context.Background(), []string{in, "--json"}, env.Environment); err != nil {
		t.Fatalf("runOutline() error = %v", err)
	}

	var got []headingRecord
	if err := json.Unmarshal(env.stdout.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[1].Text != "Beta" || got[1].Level != 2 || got[1].Line != 2 {
		t.Errorf("records = %+v", got)
	}
}

func TestRunOutline_Errors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	if err := runOutline(context.Background(), nil, env.Environment); !errors.Is(err, ErrNoInput) {
		t.Errorf("error = %v, want ErrNoInput", err)
	}
}

func TestPrintOutline_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printOutline(&buf, nil)
	if !strings.Contains(buf.String(), "no headings") {
		t.Errorf("output = %q", buf.String())
	}
}

// ---------------------------------------------------------------------------
// TestRunSearch
// ---------------------------------------------------------------------------

func TestRunSearch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "a.md",
		"# Installation\n\nDownload the package.\n\n# Configuration\n\nEdit config.yaml to change the port.\n")

	env := newTestEnv(t, nil)
	if err := runSearch(context.Background(), []string{in, "-q", "configuration"}, env.Environment); err != nil {
		t.Fatalf("runSearch() error = %v", err)
	}

	out := env.stdout.String()
	if !strings.HasPrefix(out, "1. Configuration  #configuration") {
		t.Errorf("output = %q, want Configuration ranked first", out)
	}
	if !strings.Contains(out, "Edit config.yaml") {
		t.Errorf("output = %q, want preview", out)
	}
}

func TestRunSearch_JSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "a.md", "# Deploying\n\nShip it.\n")

	env := newTestEnv(t, nil)
	if err := runSearch(context.Background(), []string{in, "-q", "deploying", "--json"}, env.Environment); err != nil {
		t.Fatalf("runSearch() error = %v", err)
	}

	var got []searchRecord
	if err := json.Unmarshal(env.stdout.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != "deploying" || got[0].Score <= 0 {
		t.Errorf("records = %+v", got)
	}
}

func TestRunSearch_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "a.md", "# A\n")

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"missing query", []string{in}, ErrMissingQuery},
		{"blank query", []string{in, "-q", "  "}, ErrMissingQuery},
		{"no input", []string{"-q", "x"}, ErrNoInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, nil)
			if err := runSearch(context.Background(), tt.args, env.Environment); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPrintResults_NoHits(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printResults(&buf, "zebra", []mdview.SearchResult{})
	if got := buf.String(); got != "No results for \"zebra\"\n" {
		t.Errorf("output = %q", got)
	}
}
