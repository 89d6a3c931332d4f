// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/litscout/pkg/types"
)

// browserUserAgent mimics a desktop browser. Publisher CDNs return 403 to
// obvious non-browser agents even for open-access files.
const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var pdfMagic = []byte("%PDF-")

var (
	filenamePattern = regexp.MustCompile(`[^a-z0-9\s-]`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

// DownloadSummary reports the outcome of a download pass.
type DownloadSummary struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// DownloadAll fetches the resolved PDFs into dir/<label>/ and writes a
// manual_downloads.md listing for papers without a resolved URL. Files
// already on disk are skipped; a URL that serves something other than a
// PDF counts as failed and the paper joins the manual list.
func DownloadAll(ctx context.Context, client *http.Client, papers []types.Paper, cfg types.ResolveConfig, label string, w io.Writer) (DownloadSummary, error) {
	dir := cfg.PapersDir
	if dir == "" {
		dir = "output/papers"
	}
	dest := filepath.Join(dir, label)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return DownloadSummary{}, fmt.Errorf("creating download directory: %w", err)
	}

	var sum DownloadSummary
	var manual []types.Paper

	for i, p := range papers {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		name := fmt.Sprintf("%02d_%s.pdf", i+1, sanitizeFilename(p.Title))
		path := filepath.Join(dest, name)

		if p.PDFURL == "" {
			manual = append(manual, p)
			continue
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(w, "  skipped: %s (already exists)\n", name)
			sum.Skipped++
			continue
		}

		if err := downloadPDF(ctx, client, p.PDFURL, path); err != nil {
			fmt.Fprintf(w, "  failed: %s: %v\n", name, err)
			sum.Failed++
			manual = append(manual, p)
			continue
		}
		fmt.Fprintf(w, "  saved: %s\n", name)
		sum.Downloaded++

		if i < len(papers)-1 {
			select {
			case <-time.After(500 * time.Millisecond):
			case <-ctx.Done():
				return sum, ctx.Err()
			}
		}
	}

	if len(manual) > 0 {
		if err := writeManualList(filepath.Join(dest, "manual_downloads.md"), manual); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

// downloadPDF fetches url to path through a temp file, verifying the
// response starts with the PDF magic bytes before keeping it. OA links
// frequently serve HTML landing pages with HTTP 200.
func downloadPDF(ctx context.Context, client *http.Client, rawURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/pdf,*/*")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(resp.Body, head); err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if !bytes.Equal(head, pdfMagic) {
		return fmt.Errorf("response is not a PDF")
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := tmpFile.Write(head)
	if copyErr == nil {
		_, copyErr = io.Copy(tmpFile, resp.Body)
	}
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// writeManualList produces a checklist of papers needing credentialed
// download.
func writeManualList(path string, papers []types.Paper) error {
	var b strings.Builder
	b.WriteString("# Papers Requiring Manual Download\n\n")
	b.WriteString("These papers had no freely available PDF.\n\n")
	for _, p := range papers {
		fmt.Fprintf(&b, "- **%s** (*%s*)\n", p.Title, p.Journal)
		link := p.URL
		if link == "" && p.DOI != "" {
			link = "https://doi.org/" + p.DOI
		}
		if link != "" {
			fmt.Fprintf(&b, "  [Download link](%s)\n", link)
		}
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing manual download list: %w", err)
	}
	return nil
}

// sanitizeFilename turns a paper title into a safe, readable filename stem.
func sanitizeFilename(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = filenamePattern.ReplaceAllString(s, "")
	s = strings.Trim(spacePattern.ReplaceAllString(s, "_"), "_")
	if len(s) > 80 {
		s = s[:80]
	}
	if s == "" {
		return "untitled"
	}
	return s
}
