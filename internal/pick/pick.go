// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pick ranks scored papers and partitions them into the selected
// top-K and runner-up sets.
package pick

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/litscout/internal/identity"
	"github.com/pdiddy/litscout/pkg/types"
)

// Selection holds the outcome of a pick run.
type Selection struct {
	// Selected is the ordered top-K list.
	Selected []types.Paper

	// RunnerUp is the ordered next-K list, truncated when fewer papers
	// are available, never padded.
	RunnerUp []types.Paper
}

// Select ranks papers by total score descending, breaking ties by more
// recent first-seen timestamp, then identity string ascending for
// determinism. Cross-source near-duplicates that derived different
// identities are collapsed by normalized title, keeping the higher-ranked
// entry. The input slice is not modified.
func Select(papers []types.Paper, cfg types.PickConfig) Selection {
	selectedK := cfg.Selected
	if selectedK <= 0 {
		selectedK = 7
	}
	runnerUpK := cfg.RunnerUp
	if runnerUpK <= 0 {
		runnerUpK = 7
	}

	ranked := make([]types.Paper, len(papers))
	copy(ranked, papers)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].FirstSeen.Equal(ranked[j].FirstSeen) {
			return ranked[i].FirstSeen.After(ranked[j].FirstSeen)
		}
		return ranked[i].ID < ranked[j].ID
	})

	// Title-level dedup guard: identity dedup already ran at commit time,
	// but the same work can arrive with different identities (e.g. a feed
	// without DOI and an OpenAlex record with one).
	seenTitles := make(map[string]bool)
	unique := ranked[:0]
	for _, p := range ranked {
		key := identity.Normalize(p.Title)
		if key != "" && seenTitles[key] {
			continue
		}
		seenTitles[key] = true
		unique = append(unique, p)
	}

	var sel Selection
	if len(unique) > selectedK {
		sel.Selected = unique[:selectedK]
		rest := unique[selectedK:]
		if len(rest) > runnerUpK {
			rest = rest[:runnerUpK]
		}
		sel.RunnerUp = rest
	} else {
		sel.Selected = unique
	}
	return sel
}

// FormatTable writes the selection as a human-readable table.
func FormatTable(sel Selection, cfg types.ScoringConfig, tagsFor func(*types.Paper, types.ScoringConfig) []string, w io.Writer) {
	if len(sel.Selected) == 0 {
		fmt.Fprintln(w, "No papers selected.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-34s  %-6s  %s\n", "Rank", "Title", "Journal", "Score", "Tags")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, p := range sel.Selected {
		tags := ""
		if tagsFor != nil {
			tags = strings.Join(tagsFor(&p, cfg), ", ")
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-34s  %-6.1f  %s\n",
			i+1, truncate(p.Title, 60), truncate(p.Journal, 34), p.Score, tags)
	}

	if len(sel.RunnerUp) > 0 {
		fmt.Fprintln(w, "\nAlso worth a look:")
		for _, p := range sel.RunnerUp {
			fmt.Fprintf(w, "  - %s (%s, %.1f)\n", truncate(p.Title, 80), p.Journal, p.Score)
		}
	}
}

// FormatJSON writes the selection as indented JSON.
func FormatJSON(sel Selection, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sel)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
