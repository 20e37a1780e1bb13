package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common    commonFlags
	addr      string
	open      bool
	logFormat string
}

// exportFlags holds flags for the export command.
type exportFlags struct {
	common  commonFlags
	format  string
	output  string
	timeout string
	engine  string
}

// queryFlags holds flags for the outline and search commands.
type queryFlags struct {
	common commonFlags
	query  string
	json   bool
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	config string
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed progress")
}

// newFlagSet returns a FlagSet that prints usage to w on error.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parse runs fs.Parse and wraps failures as usage errors.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

func newServeFlagSet(f *serveFlags, w io.Writer) *flag.FlagSet {
	fs := newFlagSet("serve", w, printServeUsage)
	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default from config)")
	fs.BoolVarP(&f.open, "open", "o", false, "open the viewer in the default browser")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
	return fs
}

func newExportFlagSet(f *exportFlags, w io.Writer) *flag.FlagSet {
	fs := newFlagSet("export", w, printExportUsage)
	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.format, "format", "f", "html", "export format: html, pdf, doc, docx")
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "export timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.engine, "diagrams", "", "diagram engine: browser, cli, off")
	return fs
}

func newOutlineFlagSet(f *queryFlags, w io.Writer) *flag.FlagSet {
	fs := newFlagSet("outline", w, printOutlineUsage)
	addCommonFlags(fs, &f.common)
	fs.BoolVar(&f.json, "json", false, "output as JSON")
	return fs
}

// newSearchFlagSet leaves out --quiet: -q is the query.
func newSearchFlagSet(f *queryFlags, w io.Writer) *flag.FlagSet {
	fs := newFlagSet("search", w, printSearchUsage)
	fs.StringVarP(&f.common.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.common.verbose, "verbose", "v", false, "show detailed progress")
	fs.StringVarP(&f.query, "query", "q", "", "search query")
	fs.BoolVar(&f.json, "json", false, "output as JSON")
	return fs
}

func newDoctorFlagSet(f *doctorFlags, w io.Writer) *flag.FlagSet {
	fs := newFlagSet("doctor", w, printDoctorUsage)
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVar(&f.json, "json", false, "output as JSON")
	return fs
}

func parseServeFlags(args []string, w io.Writer) (*serveFlags, error) {
	f := &serveFlags{}
	fs := newServeFlagSet(f, w)
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: serve takes no arguments, got %v", ErrUsage, fs.Args())
	}
	return f, nil
}

func parseExportFlags(args []string, w io.Writer) (*exportFlags, []string, error) {
	f := &exportFlags{}
	fs := newExportFlagSet(f, w)
	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func parseOutlineFlags(args []string, w io.Writer) (*queryFlags, []string, error) {
	f := &queryFlags{}
	fs := newOutlineFlagSet(f, w)
	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func parseSearchFlags(args []string, w io.Writer) (*queryFlags, []string, error) {
	f := &queryFlags{}
	fs := newSearchFlagSet(f, w)
	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func parseDoctorFlags(args []string, w io.Writer) (*doctorFlags, error) {
	f := &doctorFlags{}
	fs := newDoctorFlagSet(f, w)
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return f, nil
}
