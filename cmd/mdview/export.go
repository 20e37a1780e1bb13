package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	mdview "github.com/alnah/go-mdview"
	"github.com/alnah/go-mdview/internal/config"
	"github.com/alnah/go-mdview/internal/diagram"
	"github.com/alnah/go-mdview/internal/hints"
	"github.com/alnah/go-mdview/internal/yamlutil"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// runExport validates and assembles the input files, then writes one export.
func runExport(ctx context.Context, args []string, env *Environment) error {
	flags, paths, err := parseExportFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	format, err := mdview.ParseFormat(flags.format)
	if err != nil {
		return fmt.Errorf("%w%s", err, hints.ForUnsupportedFormat(mdview.FormatNames()))
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if err := applyExportFlags(flags, cfg); err != nil {
		return err
	}

	log, err := newLogger(config.LogConfig{Level: quietLevel(flags.common), Format: "text"}, env.Stderr)
	if err != nil {
		return err
	}

	var pool *mdview.BrowserPool
	if format == mdview.FormatPDF {
		pool = mdview.NewBrowserPool(1, cfg.Browser.Bin)
		defer func() { _ = pool.Close() }()
	}

	viewer, err := newViewer(cfg, pool, log, env)
	if err != nil {
		return err
	}
	defer func() { _ = viewer.Close() }()

	sess, err := loadFiles(ctx, viewer, paths, env)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	start := env.Now()
	art, err := viewer.Export(ctx, mdview.ExportRequest{
		Format:   format,
		Document: sess.Document(),
		Name:     sess.ExportName(),
		BaseDir:  filepath.Dir(paths[0]), // relative images resolve against the first file
	})
	if err != nil {
		return exportError(err, cfg.Diagram.Engine)
	}

	out, err := resolveOutputPath(flags.output, art.Name)
	if err != nil {
		return err
	}
	if err := writeArtifact(out, art.Data); err != nil {
		return err
	}

	if !flags.common.quiet {
		if flags.common.verbose {
			fmt.Fprintf(env.Stdout, "Created %s (%d bytes, %v)\n", out, len(art.Data), env.Now().Sub(start).Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", out)
		}
	}
	return nil
}

// applyExportFlags overlays export flags on cfg.
func applyExportFlags(flags *exportFlags, cfg *config.Config) error {
	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: invalid timeout %q", ErrUsage, flags.timeout)
		}
		cfg.Export.Timeout = yamlutil.Duration(d)
	}
	if flags.engine != "" {
		cfg.Diagram.Engine = flags.engine
	}
	return nil
}

// quietLevel maps output flags to a log level for library warnings.
func quietLevel(f commonFlags) string {
	switch {
	case f.verbose:
		return "debug"
	case f.quiet:
		return "error"
	}
	return "warn"
}

// exportError appends the hint matching err.
func exportError(err error, engine string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w%s", err, hints.ForTimeout())
	case errors.Is(err, diagram.ErrEngineUnavailable):
		return fmt.Errorf("%w%s", err, hints.ForDiagramEngine(engine))
	}
	return err
}

// resolveOutputPath places name under output when output is a directory,
// uses output as the file path otherwise, and the working directory when
// output is empty.
func resolveOutputPath(output, name string) (string, error) {
	if output == "" {
		return name, nil
	}
	info, err := os.Stat(output)
	if err == nil && info.IsDir() {
		return filepath.Join(output, name), nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return output, nil
}

// writeArtifact writes data to path, creating parent directories.
func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("%w: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory())
		}
	}
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
