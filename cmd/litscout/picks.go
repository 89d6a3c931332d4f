// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litscout/internal/pick"
	"github.com/pdiddy/litscout/internal/score"
	"github.com/pdiddy/litscout/internal/source"
	"github.com/pdiddy/litscout/internal/store"
	"github.com/pdiddy/litscout/pkg/types"
)

var picksCmd = &cobra.Command{
	Use:   "picks",
	Short: "Score the window and show the top picks",
	Long: `Picks scores every paper first seen inside the lookback window against
the configured venue tiers and keyword dimensions, then selects the top
picks and runner-up list. Scores are recomputed from the current weights
on every run, so weight changes apply to already-stored papers.`,
	RunE: runPicks,
}

func init() {
	picksCmd.Flags().Int("days", 0, "lookback window in days (default from config, 7)")
	picksCmd.Flags().Int("k", 0, "number of top picks (default from config, 7)")
	picksCmd.Flags().Bool("json", false, "output the selection as JSON")

	rootCmd.AddCommand(picksCmd)
}

func runPicks(cmd *cobra.Command, args []string) error {
	cfg, err := loadPipelineConfig()
	if err != nil {
		return err
	}
	days, _ := cmd.Flags().GetInt("days")
	asJSON, _ := cmd.Flags().GetBool("json")
	if k, _ := cmd.Flags().GetInt("k"); k > 0 {
		cfg.Pick.Selected = k
	}

	db, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer db.Close()

	window := source.LastDays(lookbackDays(days, cfg))
	sel, err := scoreAndSelect(cmd.Context(), db, cfg, window)
	if err != nil {
		return err
	}

	if asJSON {
		return pick.FormatJSON(sel, os.Stdout)
	}
	pick.FormatTable(sel, cfg.Scoring, score.Tags, os.Stdout)
	return nil
}

// scoreAndSelect recomputes scores for every paper in the window, persists
// them, and runs selection. Shared by picks, resolve, and run.
func scoreAndSelect(ctx context.Context, db *store.Store, cfg types.PipelineConfig, window source.Window) (pick.Selection, error) {
	papers, err := db.QueryWindow(ctx, window.Start, window.End)
	if err != nil {
		return pick.Selection{}, fmt.Errorf("loading window: %w", err)
	}

	for i := range papers {
		total, breakdown := score.Score(&papers[i], cfg.Scoring)
		if err := db.SetScore(ctx, papers[i].ID, total, breakdown); err != nil {
			return pick.Selection{}, fmt.Errorf("saving score: %w", err)
		}
		papers[i].Scored = true
		papers[i].Score = total
		papers[i].ScoreBreakdown = breakdown
	}

	return pick.Select(papers, cfg.Pick), nil
}
