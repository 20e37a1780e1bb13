package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdview <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Open the browser viewer on a local address")
	fmt.Fprintln(w, "  export     Export Markdown files as HTML, PDF, DOC or DOCX")
	fmt.Fprintln(w, "  outline    Print the heading outline of Markdown files")
	fmt.Fprintln(w, "  search     Search the sections of Markdown files")
	fmt.Fprintln(w, "  doctor     Check the browser, diagram engine and config")
	fmt.Fprintln(w, "  completion Generate a shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdview help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed progress")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdview serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve the viewer until interrupted. Uploaded files live in memory only.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default 127.0.0.1:8765)")
	fmt.Fprintln(w, "  -o, --open                Open the viewer in the default browser")
	fmt.Fprintln(w, "      --log-format <s>      Log format: text, json")
	printCommonUsage(w)
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdview export <file.md>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Validate and concatenate the files in order, then export the result.")
	fmt.Fprintln(w, "Rejected files are reported and skipped.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -f, --format <s>          Format: html, pdf, doc, docx (default html)")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -t, --timeout <d>         Export timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --diagrams <s>        Diagram engine: browser, cli, off")
	printCommonUsage(w)
}

// printOutlineUsage prints usage for the outline command.
func printOutlineUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdview outline <file.md>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the headings of the assembled document with their anchors.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Output as JSON")
	printCommonUsage(w)
}

// printSearchUsage prints usage for the search command.
func printSearchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdview search <file.md>... -q <query> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rank the sections (headings up to level 3) matching the query.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -q, --query <s>           Search query (required)")
	fmt.Fprintln(w, "      --json                Output as JSON")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed progress")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdview doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that the browser, diagram engine, config and temp directory are usable.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Output as JSON")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "export":
		printExportUsage(env.Stdout)
	case "outline":
		printOutlineUsage(env.Stdout)
	case "search":
		printSearchUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdview version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdview help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
