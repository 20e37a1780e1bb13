package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	mdview "github.com/alnah/go-mdview"
	"github.com/alnah/go-mdview/internal/config"
)

// loadConfig resolves the configuration: the named file (or MDVIEW_CONFIG)
// over defaults, then MDVIEW_* variables. Flags are applied by callers.
func loadConfig(name string, env *Environment) (*config.Config, error) {
	ec := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())

	if name == "" {
		name = ec.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(ec, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from cfg.Log.
func newLogger(lc config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := lc.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch lc.Format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("%w: %q (must be text or json)", ErrInvalidFormat, lc.Format)
}

// viewerOptions maps cfg onto Viewer options.
func viewerOptions(cfg *config.Config, log *slog.Logger) []mdview.Option {
	return []mdview.Option{
		mdview.WithMaxFileSize(cfg.Upload.MaxFileSize),
		mdview.WithDiagramEngine(cfg.Diagram.Engine),
		mdview.WithDiagramOptions(mdview.DiagramOptions{
			Command:     cfg.Diagram.Command,
			ScriptURL:   cfg.Diagram.ScriptURL,
			Timeout:     cfg.Diagram.Timeout.Std(),
			Concurrency: cfg.Diagram.Concurrency,
			FontFamily:  cfg.Diagram.Theme.FontFamily,
			Variables:   cfg.Diagram.Theme.Variables,
		}),
		mdview.WithSanitize(cfg.Render.Sanitize),
		mdview.WithHighlightStyle(cfg.Render.HighlightStyle),
		mdview.WithLineNumbers(cfg.Render.LineNumbers),
		mdview.WithRunnableLanguages(cfg.Render.RunnableLanguages),
		mdview.WithSearchOptions(mdview.SearchOptions{
			MaxResults:    cfg.Search.MaxResults,
			Fuzziness:     cfg.Search.Fuzziness,
			PreviewLength: cfg.Search.PreviewLength,
		}),
		mdview.WithExportOptions(mdview.ExportOptions{
			Footer:      cfg.Export.Footer,
			Attribution: cfg.Export.Attribution,
			Date:        cfg.Export.Date,
			DefaultName: cfg.Export.DefaultName,
			Scale:       cfg.Export.Scale,
			Timeout:     cfg.Export.Timeout.Std(),
		}),
		mdview.WithAssetPath(cfg.Assets.Path),
		mdview.WithBrowserBin(cfg.Browser.Bin),
		mdview.WithLogger(log),
	}
}

// newViewer builds a Viewer sharing pool for PDF exports. The caller closes
// both.
func newViewer(cfg *config.Config, pool *mdview.BrowserPool, log *slog.Logger, env *Environment) (*mdview.Viewer, error) {
	opts := viewerOptions(cfg, log)
	if pool != nil {
		opts = append(opts, mdview.WithBrowserPool(pool))
	}
	opts = append(opts, env.Options...)
	return mdview.New(opts...)
}

// loadFiles uploads paths into a new session as one batch and reports
// rejections on env.Stderr.
func loadFiles(ctx context.Context, v *mdview.Viewer, paths []string, env *Environment) (*mdview.Session, error) {
	if len(paths) == 0 {
		return nil, ErrNoInput
	}

	candidates := make([]mdview.UploadCandidate, 0, len(paths))
	for _, p := range paths {
		candidates = append(candidates, mdview.CandidateFromPath(p))
	}

	sess := v.NewSession()
	res, err := sess.Upload(ctx, candidates)
	if err != nil {
		_ = sess.Close()
		return nil, err
	}
	for _, r := range res.Rejected {
		fmt.Fprintf(env.Stderr, "skipped %s: %s\n", r.Name, r.Message)
	}
	if len(res.Accepted) == 0 {
		_ = sess.Close()
		return nil, fmt.Errorf("%w: %d file(s)", ErrAllRejected, len(res.Rejected))
	}
	return sess, nil
}
