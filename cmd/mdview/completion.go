package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	mdview "github.com/alnah/go-mdview"
)

// Shell is a shell with a completion script.
type Shell string

// Supported shells.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// shells lists the supported shells in help order.
var shells = []Shell{ShellBash, ShellZsh, ShellFish}

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string
	Short    string
	Desc     string
	TakesArg bool     // false for booleans
	Values   []string // fixed choices
	FileGlob string   // comma separated globs
	File     bool     // any path
}

// commandDef describes a command for completion.
type commandDef struct {
	Name       string
	Desc       string
	Flags      []flagDef
	TakesFiles bool     // accepts Markdown file arguments
	Args       []string // fixed positional choices
}

// completionMeta adds hints a FlagSet cannot carry.
type completionMeta struct {
	Values   []string
	FileGlob string
	File     bool
}

// flagCompletionMeta maps flag names to completion hints. Names, shorthands
// and descriptions come from the FlagSets.
func flagCompletionMeta() map[string]completionMeta {
	return map[string]completionMeta{
		"format":     {Values: mdview.FormatNames()},
		"diagrams":   {Values: []string{mdview.EngineBrowser, mdview.EngineCLI, mdview.EngineOff}},
		"log-format": {Values: []string{"text", "json"}},
		"config":     {FileGlob: "*.yaml,*.yml"},
		"output":     {File: true},
	}
}

// extractFlags lists the flags of fs enriched with completion hints.
func extractFlags(fs *flag.FlagSet) []flagDef {
	meta := flagCompletionMeta()
	var flags []flagDef
	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:     f.Name,
			Short:    f.Shorthand,
			Desc:     f.Usage,
			TakesArg: f.Value.Type() != "bool",
		}
		if m, ok := meta[f.Name]; ok {
			fd.Values = m.Values
			fd.FileGlob = m.FileGlob
			fd.File = m.File
		}
		flags = append(flags, fd)
	})
	return flags
}

// getCommands returns the command registry, built from the real FlagSets.
func getCommands() []commandDef {
	return []commandDef{
		{Name: "serve", Desc: "Open the browser viewer", Flags: extractFlags(newServeFlagSet(&serveFlags{}, io.Discard))},
		{Name: "export", Desc: "Export Markdown files", Flags: extractFlags(newExportFlagSet(&exportFlags{}, io.Discard)), TakesFiles: true},
		{Name: "outline", Desc: "Print the heading outline", Flags: extractFlags(newOutlineFlagSet(&queryFlags{}, io.Discard)), TakesFiles: true},
		{Name: "search", Desc: "Search document sections", Flags: extractFlags(newSearchFlagSet(&queryFlags{}, io.Discard)), TakesFiles: true},
		{Name: "doctor", Desc: "Check system dependencies", Flags: extractFlags(newDoctorFlagSet(&doctorFlags{}, io.Discard))},
		{Name: "completion", Desc: "Generate shell completion script", Args: shellNames()},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command", Args: commandNames()},
	}
}

func shellNames() []string {
	names := make([]string, len(shells))
	for i, s := range shells {
		names[i] = string(s)
	}
	return names
}

func commandNames() []string {
	return []string{"serve", "export", "outline", "search", "doctor", "completion", "version", "help"}
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var script string
	switch shell {
	case ShellBash:
		script = bashScript(getCommands())
	case ShellZsh:
		script = zshScript(getCommands())
	case ShellFish:
		script = fishScript(getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedShell, shell, strings.Join(shellNames(), ", "))
	}
	_, err := io.WriteString(w, script)
	return err
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func bashScript(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# bash completion for mdview\n")
	b.WriteString("_mdview() {\n")
	b.WriteString("    local cur prev\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")
	b.WriteString("    if [[ $COMP_CWORD -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(commandNames(), " "))
	b.WriteString("        return\n    fi\n\n")
	b.WriteString("    case \"${COMP_WORDS[1]}\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(c.Args, " "))
			b.WriteString("        ;;\n")
			continue
		}

		b.WriteString("        case \"$prev\" in\n")
		var words []string
		for _, f := range c.Flags {
			names := "--" + f.Long
			words = append(words, "--"+f.Long)
			if f.Short != "" {
				names += "|-" + f.Short
				words = append(words, "-"+f.Short)
			}
			switch {
			case len(f.Values) > 0:
				fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -W %q -- \"$cur\")); return ;;\n", names, strings.Join(f.Values, " "))
			case f.FileGlob != "" || f.File:
				fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -f -- \"$cur\")); return ;;\n", names)
			case f.TakesArg:
				fmt.Fprintf(&b, "        %s) return ;;\n", names)
			}
		}
		b.WriteString("        esac\n")
		b.WriteString("        if [[ \"$cur\" == -* ]]; then\n")
		fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(words, " "))
		b.WriteString("        fi\n")
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n}\n\n")
	b.WriteString("complete -o default -F _mdview mdview\n")
	return b.String()
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

var zshEscaper = strings.NewReplacer("'", "'\\''", "[", "\\[", "]", "\\]", ":", "\\:")

func zshScript(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("#compdef mdview\n\n")
	b.WriteString("_mdview() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscaper.Replace(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n    fi\n\n")
	b.WriteString("    local cmd=\"${words[2]}\"\n")
	b.WriteString("    shift words\n")
	b.WriteString("    (( CURRENT-- ))\n\n")
	b.WriteString("    case \"$cmd\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		b.WriteString("        _arguments -s")
		for _, f := range c.Flags {
			fmt.Fprintf(&b, " \\\n            %s", zshFlagSpec(f))
		}
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(&b, " \\\n            '1:%s:(%s)'", c.Name, strings.Join(c.Args, " "))
		case c.TakesFiles:
			b.WriteString(" \\\n            '*:markdown file:_files -g \"*.md *.markdown\"'")
		}
		b.WriteString("\n        ;;\n")
	}

	b.WriteString("    esac\n}\n\n")
	b.WriteString("compdef _mdview mdview\n")
	return b.String()
}

func zshFlagSpec(f flagDef) string {
	desc := "[" + zshEscaper.Replace(f.Desc) + "]"

	action := ""
	switch {
	case len(f.Values) > 0:
		action = ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case f.FileGlob != "":
		action = ":" + f.Long + `:_files -g "` + strings.ReplaceAll(f.FileGlob, ",", " ") + `"`
	case f.File:
		action = ":" + f.Long + ":_files"
	case f.TakesArg:
		action = ":" + f.Long + ": "
	}

	if f.Short == "" {
		return "'--" + f.Long + desc + action + "'"
	}
	return "'(-" + f.Short + " --" + f.Long + ")'{-" + f.Short + ",--" + f.Long + "}'" + desc + action + "'"
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

var fishEscaper = strings.NewReplacer("'", "\\'")

func fishScript(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# fish completion for mdview\n")
	b.WriteString("complete -c mdview -f\n\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c mdview -n __fish_use_subcommand -a %s -d '%s'\n", c.Name, fishEscaper.Replace(c.Desc))
	}

	for _, c := range cmds {
		cond := "'__fish_seen_subcommand_from " + c.Name + "'"
		b.WriteString("\n")
		for _, f := range c.Flags {
			line := "complete -c mdview -n " + cond
			if f.Short != "" {
				line += " -s " + f.Short
			}
			line += " -l " + f.Long
			switch {
			case len(f.Values) > 0:
				line += " -x -a '" + strings.Join(f.Values, " ") + "'"
			case f.FileGlob != "" || f.File:
				line += " -r -F"
			case f.TakesArg:
				line += " -x"
			}
			line += " -d '" + fishEscaper.Replace(f.Desc) + "'"
			b.WriteString(line + "\n")
		}
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "complete -c mdview -n %s -a '%s'\n", cond, strings.Join(c.Args, " "))
		case c.TakesFiles:
			fmt.Fprintf(&b, "complete -c mdview -n %s -a '(__fish_complete_suffix .md)'\n", cond)
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Command
// ---------------------------------------------------------------------------

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdview completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate a shell completion script.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(mdview completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(mdview completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    mdview completion fish > ~/.config/fish/completions/mdview.fish")
}
