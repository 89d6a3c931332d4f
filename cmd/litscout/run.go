// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litscout/internal/pick"
	"github.com/pdiddy/litscout/internal/score"
	"github.com/pdiddy/litscout/internal/source"
	"github.com/pdiddy/litscout/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the whole pipeline: fetch, picks, resolve",
	Long: `Run executes the full weekly pipeline in order: fetch new papers from
every configured source, score and select the top picks, then resolve
open-access PDFs for the selection. Equivalent to running fetch, picks,
and resolve back to back on the same window.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().Int("days", 0, "lookback window in days (default from config, 7)")
	runCmd.Flags().Bool("download", false, "download resolved PDFs")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadPipelineConfig()
	if err != nil {
		return err
	}
	if len(cfg.Fetch.Sources) == 0 {
		return fmt.Errorf("no sources configured; add a sources list under fetch in the config file")
	}

	days, _ := cmd.Flags().GetInt("days")
	download, _ := cmd.Flags().GetBool("download")
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
	_, commitSum, err := db.CommitAll(cmd.Context(), drafts, os.Stdout)
	if err != nil {
		return fmt.Errorf("committing papers: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Fetched %d from %d sources (%d failed): %d new\n\n",
		commitSum.Fetched, fetchSum.Sources, fetchSum.Failed, commitSum.New)

	sel, err := scoreAndSelect(cmd.Context(), db, cfg, window)
	if err != nil {
		return err
	}
	pick.FormatTable(sel, cfg.Scoring, score.Tags, os.Stdout)
	fmt.Fprintln(os.Stdout)

	return resolveSelection(cmd.Context(), db, cfg, sel.Selected, window, download)
}
