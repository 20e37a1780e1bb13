package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	mdview "github.com/alnah/go-mdview"
)

// runSearch prints the ranked sections matching the query.
func runSearch(ctx context.Context, args []string, env *Environment) error {
	flags, paths, err := parseSearchFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if strings.TrimSpace(flags.query) == "" {
		return fmt.Errorf("%w: use -q QUERY", ErrMissingQuery)
	}

	sess, closeAll, err := openDocument(ctx, flags.common, paths, env)
	if err != nil {
		return err
	}
	defer closeAll()

	results, err := sess.Search(ctx, flags.query)
	if err != nil {
		return err
	}
	if flags.json {
		return writeJSONTo(env.Stdout, searchRecords(results))
	}
	printResults(env.Stdout, flags.query, results)
	return nil
}

type searchRecord struct {
	Heading string  `json:"heading"`
	ID      string  `json:"id"`
	Level   int     `json:"level"`
	Preview string  `json:"preview"`
	Score   float64 `json:"score"`
}

func searchRecords(rs []mdview.SearchResult) []searchRecord {
	out := make([]searchRecord, 0, len(rs))
	for _, r := range rs {
		out = append(out, searchRecord{
			Heading: r.Heading,
			ID:      r.ID,
			Level:   r.Level,
			Preview: r.Preview,
			Score:   r.Score,
		})
	}
	return out
}

// printResults writes one numbered block per hit.
func printResults(w io.Writer, query string, rs []mdview.SearchResult) {
	if len(rs) == 0 {
		fmt.Fprintf(w, "No results for %q\n", query)
		return
	}
	for i, r := range rs {
		fmt.Fprintf(w, "%d. %s  #%s\n", i+1, r.Heading, r.ID)
		if r.Preview != "" {
			fmt.Fprintf(w, "   %s\n", r.Preview)
		}
	}
}
