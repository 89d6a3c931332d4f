// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source implements the paper source adapters: RSS journal feeds,
// NBER working-paper feeds, OpenAlex venue and discovery queries, and the
// curated job-market-paper candidate list. Each adapter maps its raw entries
// to draft records; identity assignment and dedup happen downstream.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/litscout/pkg/types"
)

// Window bounds one fetch run. Start is inclusive, End exclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window. A zero t is treated
// as inside: sources with unparseable dates are included, never dropped.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return true
	}
	return !t.Before(w.Start) && t.Before(w.End)
}

// LastDays returns a window covering the given number of days up to now.
func LastDays(days int) Window {
	end := time.Now().UTC()
	return Window{Start: end.AddDate(0, 0, -days), End: end}
}

// Adapter fetches drafts from one configured source.
type Adapter interface {
	// Name returns the configured source label.
	Name() string

	// Fetch returns all drafts the source produced for the window.
	Fetch(ctx context.Context, w Window) ([]types.Draft, error)
}

// New builds the adapter for a source configuration entry.
func New(src types.SourceConfig, cfg types.FetchConfig, client *http.Client) (Adapter, error) {
	switch src.Kind {
	case types.SourceRSS, types.SourceNBER:
		if src.URL == "" {
			return nil, fmt.Errorf("source %q: %s source requires a feed URL", src.Name, src.Kind)
		}
		return newRSSAdapter(src, cfg, client), nil
	case types.SourceOpenAlex:
		if src.OpenAlexID == "" && len(src.Keywords) == 0 {
			return nil, fmt.Errorf("source %q: openalex source requires openalex_id or keywords", src.Name)
		}
		return newOpenAlexAdapter(src, cfg, client), nil
	case types.SourceJMP:
		return newJMPAdapter(src, cfg, client), nil
	default:
		return nil, fmt.Errorf("source %q: unknown kind %q", src.Name, src.Kind)
	}
}

// FetchSummary reports the outcome of a full fetch pass.
type FetchSummary struct {
	// Sources is the number of configured sources attempted.
	Sources int

	// Failed is the number of sources that errored and were skipped.
	Failed int

	// Drafts is the total number of drafts produced by working sources.
	Drafts int
}

// FetchAll runs every configured source in order and collects their drafts.
// A failing source is reported on w and skipped; partial results from the
// remaining sources still flow through. Only context cancellation aborts
// the pass.
func FetchAll(ctx context.Context, out io.Writer, cfg types.FetchConfig, window Window) ([]types.Draft, FetchSummary, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.Timeout <= 0 {
		client.Timeout = 30 * time.Second
	}

	delay := cfg.SourceDelay
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}

	var all []types.Draft
	var sum FetchSummary

	for i, src := range cfg.Sources {
		if err := ctx.Err(); err != nil {
			return all, sum, err
		}
		if i > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return all, sum, ctx.Err()
			}
		}

		sum.Sources++
		adapter, err := New(src, cfg, client)
		if err != nil {
			sum.Failed++
			fmt.Fprintf(out, "  %s: skipped: %v\n", src.Name, err)
			continue
		}

		drafts, err := adapter.Fetch(ctx, window)
		if err != nil {
			sum.Failed++
			fmt.Fprintf(out, "  %s: failed: %v\n", src.Name, err)
			continue
		}

		fmt.Fprintf(out, "  %s: %d entries\n", src.Name, len(drafts))
		sum.Drafts += len(drafts)
		all = append(all, drafts...)
	}

	return all, sum, nil
}

// truncateRunes caps s at n runes. Abstracts from feeds and APIs are
// occasionally full-text dumps; downstream storage and matching only need
// the opening passage.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// maxAbstractRunes bounds stored abstract length.
const maxAbstractRunes = 2000
