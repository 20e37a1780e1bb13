package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGenerateCompletion - Script Generation
// ---------------------------------------------------------------------------

func TestGenerateCompletion_SupportedShells(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shell Shell
		want  []string
	}{
		{ShellBash, []string{"_mdview()", "complete -o default -F _mdview mdview", `"html pdf doc docx"`, "--format|-f)"}},
		{ShellZsh, []string{"#compdef mdview", "compdef _mdview mdview", "(html pdf doc docx)", `_files -g "*.yaml *.yml"`}},
		{ShellFish, []string{"complete -c mdview -f", "__fish_use_subcommand -a export", "-s f -l format -x -a 'html pdf doc docx'"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.shell), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, tt.shell); err != nil {
				t.Fatalf("GenerateCompletion() error = %v", err)
			}
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("%s script missing %q", tt.shell, want)
				}
			}
			for _, cmd := range getCommands() {
				if !strings.Contains(out, cmd.Name) {
					t.Errorf("%s script missing command %q", tt.shell, cmd.Name)
				}
			}
		})
	}
}

func TestGenerateCompletion_UnsupportedShell(t *testing.T) {
	t.Parallel()

	err := GenerateCompletion(&bytes.Buffer{}, Shell("tcsh"))
	if !errors.Is(err, ErrUnsupportedShell) {
		t.Fatalf("error = %v, want ErrUnsupportedShell", err)
	}
	if !strings.Contains(err.Error(), "tcsh") {
		t.Errorf("error %q should name the shell", err)
	}
}

// ---------------------------------------------------------------------------
// TestGetCommands - Registry From FlagSets
// ---------------------------------------------------------------------------

func TestGetCommands_FlagsFromFlagSets(t *testing.T) {
	t.Parallel()

	byName := map[string]commandDef{}
	for _, c := range getCommands() {
		byName[c.Name] = c
	}

	export, ok := byName["export"]
	if !ok || !export.TakesFiles {
		t.Fatalf("export command = %+v, want file arguments", export)
	}

	flags := map[string]flagDef{}
	for _, f := range export.Flags {
		flags[f.Long] = f
	}

	format := flags["format"]
	if format.Short != "f" || strings.Join(format.Values, ",") != "html,pdf,doc,docx" {
		t.Errorf("--format = %+v", format)
	}
	if flags["quiet"].TakesArg {
		t.Error("--quiet is a boolean flag")
	}
	if !flags["output"].File || !flags["output"].TakesArg {
		t.Errorf("--output = %+v, want a path argument", flags["output"])
	}
	if flags["config"].FileGlob != "*.yaml,*.yml" {
		t.Errorf("--config glob = %q", flags["config"].FileGlob)
	}

	for _, f := range byName["search"].Flags {
		if f.Long == "quiet" {
			t.Error("search must not offer --quiet")
		}
	}
	if got := strings.Join(byName["completion"].Args, " "); got != "bash zsh fish" {
		t.Errorf("completion args = %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestRunCompletion - Command Entry Point
// ---------------------------------------------------------------------------

func TestRunCompletion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{"no shell prints usage", []string{"completion"}, ExitSuccess, "Usage: mdview completion"},
		{"bash", []string{"completion", "bash"}, ExitSuccess, "_mdview"},
		{"fish", []string{"completion", "fish"}, ExitSuccess, "complete -c mdview"},
		{"unknown shell", []string{"completion", "tcsh"}, ExitUsage, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, nil)
			if code := run(tt.args, env.Environment); code != tt.wantCode {
				t.Fatalf("run() = %d, want %d (stderr: %s)", code, tt.wantCode, env.stderr)
			}
			if !strings.Contains(env.stdout.String(), tt.wantOut) {
				t.Errorf("stdout missing %q", tt.wantOut)
			}
		})
	}
}
