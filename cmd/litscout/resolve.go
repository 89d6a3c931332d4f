// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litscout/internal/resolve"
	"github.com/pdiddy/litscout/internal/source"
	"github.com/pdiddy/litscout/internal/store"
	"github.com/pdiddy/litscout/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Find open-access PDFs for the selected papers",
	Long: `Resolve runs the open-access lookup chain (OpenAlex, Unpaywall, Semantic
Scholar, NBER direct) for each selected paper in the window. Papers with no
discoverable PDF are flagged for manual download; a later run with
--retry-manual tries them again, since embargoes lift over time. With
--download the resolved PDFs are fetched into the papers directory.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().Int("days", 0, "lookback window in days (default from config, 7)")
	resolveCmd.Flags().Bool("retry-manual", false, "retry papers previously flagged for manual download")
	resolveCmd.Flags().Bool("all-unresolved", false, "resolve every stored paper without a PDF, not just the current selection")
	resolveCmd.Flags().Bool("download", false, "download resolved PDFs")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadPipelineConfig()
	if err != nil {
		return err
	}
	days, _ := cmd.Flags().GetInt("days")
	retryManual, _ := cmd.Flags().GetBool("retry-manual")
	allUnresolved, _ := cmd.Flags().GetBool("all-unresolved")
	download, _ := cmd.Flags().GetBool("download")
	cfg.Resolve.RetryManual = cfg.Resolve.RetryManual || retryManual

	db, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer db.Close()

	window := source.LastDays(lookbackDays(days, cfg))

	if allUnresolved {
		papers, err := db.Unresolved(cmd.Context(), cfg.Resolve.RetryManual)
		if err != nil {
			return fmt.Errorf("loading unresolved papers: %w", err)
		}
		return resolveSelection(cmd.Context(), db, cfg, papers, window, download)
	}

	sel, err := scoreAndSelect(cmd.Context(), db, cfg, window)
	if err != nil {
		return err
	}

	return resolveSelection(cmd.Context(), db, cfg, sel.Selected, window, download)
}

// resolveSelection runs the resolver over papers that still need a PDF,
// persists the outcomes, and optionally downloads the results.
func resolveSelection(ctx context.Context, db *store.Store, cfg types.PipelineConfig, selected []types.Paper, window source.Window, download bool) error {
	var pending []types.Paper
	for _, p := range selected {
		if p.PDFURL != "" {
			continue
		}
		if p.ManualDownload && !cfg.Resolve.RetryManual {
			continue
		}
		pending = append(pending, p)
	}

	if len(pending) > 0 {
		client := &http.Client{Timeout: cfg.Resolve.Timeout}
		resolver := resolve.New(cfg.Resolve, client)

		fmt.Fprintln(os.Stdout, "Resolving PDFs...")
		outcomes, sum := resolver.ResolveBatch(ctx, pending, os.Stdout)
		for _, o := range outcomes {
			if err := db.SetResolution(ctx, o.ID, o.PDFURL, o.Strategy, o.Manual); err != nil {
				return fmt.Errorf("saving resolution: %w", err)
			}
		}
		fmt.Fprintf(os.Stdout, "\nResolution summary: %d resolved, %d manual\n", sum.Resolved, sum.Manual)
	} else {
		fmt.Fprintln(os.Stdout, "Nothing to resolve.")
	}

	if !download {
		return nil
	}

	// Re-read so downloads see both fresh and previously resolved URLs.
	papers := make([]types.Paper, 0, len(selected))
	for _, p := range selected {
		stored, err := db.Get(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("loading %s: %w", p.ID, err)
		}
		papers = append(papers, stored)
	}

	label := window.End.Format(time.DateOnly)
	client := &http.Client{Timeout: cfg.Resolve.Timeout}
	fmt.Fprintln(os.Stdout, "Downloading PDFs...")
	sum, err := resolve.DownloadAll(ctx, client, papers, cfg.Resolve, label, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\nDownload summary: %d downloaded, %d skipped, %d failed\n",
		sum.Downloaded, sum.Skipped, sum.Failed)
	return nil
}
