package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	mdview "github.com/alnah/go-mdview"
	"github.com/alnah/go-mdview/internal/config"
)

// runOutline prints the heading tree of the assembled document.
func runOutline(ctx context.Context, args []string, env *Environment) error {
	flags, paths, err := parseOutlineFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	sess, closeAll, err := openDocument(ctx, flags.common, paths, env)
	if err != nil {
		return err
	}
	defer closeAll()

	headings := sess.Headings()
	if flags.json {
		return writeJSONTo(env.Stdout, headingRecords(headings))
	}
	printOutline(env.Stdout, headings)
	return nil
}

// openDocument loads paths into a session of a fresh Viewer. Outline and
// search never render, so the diagram engine is left off.
func openDocument(ctx context.Context, common commonFlags, paths []string, env *Environment) (*mdview.Session, func(), error) {
	cfg, err := loadConfig(common.config, env)
	if err != nil {
		return nil, nil, err
	}
	cfg.Diagram.Engine = config.EngineOff

	log, err := newLogger(config.LogConfig{Level: quietLevel(common), Format: "text"}, env.Stderr)
	if err != nil {
		return nil, nil, err
	}

	viewer, err := newViewer(cfg, nil, log, env)
	if err != nil {
		return nil, nil, err
	}
	sess, err := loadFiles(ctx, viewer, paths, env)
	if err != nil {
		_ = viewer.Close()
		return nil, nil, err
	}
	return sess, func() {
		_ = sess.Close()
		_ = viewer.Close()
	}, nil
}

type headingRecord struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
	Line  int    `json:"line"`
}

func headingRecords(hs []mdview.Heading) []headingRecord {
	out := make([]headingRecord, 0, len(hs))
	for _, h := range hs {
		out = append(out, headingRecord{Level: h.Level, Text: h.Text, ID: h.ID, Line: h.Line})
	}
	return out
}

// printOutline writes one line per heading, indented by level.
func printOutline(w io.Writer, hs []mdview.Heading) {
	if len(hs) == 0 {
		fmt.Fprintln(w, "(no headings)")
		return
	}
	for _, h := range hs {
		fmt.Fprintf(w, "%s- %s  #%s\n", strings.Repeat("  ", h.Level-1), h.Text, h.ID)
	}
}

func writeJSONTo(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
