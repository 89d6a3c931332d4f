// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litscout/internal/score"
	"github.com/pdiddy/litscout/internal/source"
	"github.com/pdiddy/litscout/internal/store"
	"github.com/pdiddy/litscout/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Pull new papers from all configured sources",
	Long: `Fetch runs every configured source adapter (journal RSS feeds, OpenAlex
venue and discovery queries, NBER feeds, the job-market candidate list) for
the lookback window and commits new papers to the database. A failing
source is skipped; the run continues with the rest.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Int("days", 0, "lookback window in days (default from config, 7)")
	fetchCmd.Flags().String("only", "", "run only sources of this kind (rss, openalex, nber, jmp)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadPipelineConfig()
	if err != nil {
		return err
	}
	if len(cfg.Fetch.Sources) == 0 {
		return fmt.Errorf("no sources configured; add a sources list under fetch in the config file")
	}

	days, _ := cmd.Flags().GetInt("days")
	only, _ := cmd.Flags().GetString("only")
	if only != "" {
		cfg.Fetch.Sources = filterSources(cfg.Fetch.Sources, types.SourceKind(only))
		if len(cfg.Fetch.Sources) == 0 {
			return fmt.Errorf("no configured sources of kind %q", only)
		}
	}

	window := source.LastDays(lookbackDays(days, cfg))

	db, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintln(os.Stdout, "Fetching sources...")
	drafts, fetchSum, err := source.FetchAll(cmd.Context(), os.Stdout, cfg.Fetch, window)
	if err != nil {
		return err
	}

	fresh, commitSum, err := db.CommitAll(cmd.Context(), drafts, os.Stdout)
	if err != nil {
		return fmt.Errorf("committing papers: %w", err)
	}

	// Score at commit time so the store never holds unscored rows; a later
	// picks run refreshes scores against the then-current weights.
	for i := range fresh {
		total, breakdown := score.Score(&fresh[i], cfg.Scoring)
		if err := db.SetScore(cmd.Context(), fresh[i].ID, total, breakdown); err != nil {
			return fmt.Errorf("saving score: %w", err)
		}
	}

	fmt.Fprintf(os.Stdout, "\nFetch summary: %d sources (%d failed), %d fetched, %d new, %d duplicate\n",
		fetchSum.Sources, fetchSum.Failed, commitSum.Fetched, commitSum.New, commitSum.Duplicate)
	return nil
}

func filterSources(sources []types.SourceConfig, kind types.SourceKind) []types.SourceConfig {
	var kept []types.SourceConfig
	for _, s := range sources {
		if s.Kind == kind {
			kept = append(kept, s)
		}
	}
	return kept
}
