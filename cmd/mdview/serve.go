package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	mdview "github.com/alnah/go-mdview"
	"github.com/alnah/go-mdview/internal/hints"
	"github.com/alnah/go-mdview/internal/server"
)

// runServe serves the viewer until ctx ends.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	if flags.common.verbose {
		cfg.Log.Level = "debug"
	}

	log, err := newLogger(cfg.Log, env.Stderr)
	if err != nil {
		return err
	}

	pool := mdview.NewBrowserPool(mdview.ResolvePoolSize(cfg.Browser.Workers), cfg.Browser.Bin)
	defer func() { _ = pool.Close() }()

	viewer, err := newViewer(cfg, pool, log, env)
	if err != nil {
		return err
	}
	defer func() { _ = viewer.Close() }()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("listen %s: %w%s", cfg.Server.Addr, err, hints.ForAddressInUse(cfg.Server.Addr))
		}
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
	}

	url := "http://" + ln.Addr().String() + "/"
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "mdview serving at %s (Ctrl+C to stop)\n", url)
	}
	if flags.open {
		if err := env.OpenURL(url); err != nil {
			fmt.Fprintf(env.Stderr, "warning: could not open browser: %v\n", err)
		}
	}

	return server.New(viewer, cfg, log).Serve(ctx, ln)
}
