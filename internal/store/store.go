// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists papers in a single-table SQLite database keyed by
// identity. It is the single source of truth across runs: commits are
// idempotent under identity, and scoring/resolution state is written back
// into the same row.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/litscout/internal/identity"
	"github.com/pdiddy/litscout/pkg/types"
)

// ErrNotFound is returned by Get for an unknown identity.
var ErrNotFound = errors.New("paper not found")

// Store manages the papers SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at cfg.Path and ensures the schema
// exists. The parent directory is created if missing.
func Open(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = filepath.Join("data", "papers.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			authors TEXT,
			abstract TEXT,
			journal TEXT,
			source TEXT NOT NULL,
			url TEXT,
			doi TEXT,
			openalex_id TEXT,
			nber_number TEXT,
			oa_url TEXT,
			published TEXT,
			first_seen TEXT NOT NULL,
			scored INTEGER NOT NULL DEFAULT 0,
			score REAL NOT NULL DEFAULT 0,
			score_breakdown TEXT,
			pdf_url TEXT,
			pdf_source TEXT,
			manual_download INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_first_seen ON papers(first_seen)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_journal ON papers(journal)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IsNew reports whether no paper with the given identity has been committed.
func (s *Store) IsNew(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM papers WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking identity %s: %w", id, err)
	}
	return false, nil
}

// Commit derives the draft's identity and inserts it if new, assigning the
// first-seen timestamp. Committing an identity twice is a no-op: the stored
// record is returned unchanged and created is false.
func (s *Store) Commit(ctx context.Context, d types.Draft) (paper types.Paper, created bool, err error) {
	id := identity.Derive(d)

	authorsJSON, err := json.Marshal(d.Authors)
	if err != nil {
		return types.Paper{}, false, fmt.Errorf("encoding authors: %w", err)
	}

	firstSeen := time.Now().UTC()
	published := ""
	if !d.Published.IsZero() {
		published = d.Published.UTC().Format("2006-01-02")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO papers
			(id, title, authors, abstract, journal, source, url, doi,
			 openalex_id, nber_number, oa_url, published, first_seen)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		id, d.Title, string(authorsJSON), d.Abstract, d.Journal, string(d.Source),
		d.URL, identity.CleanDOI(d.DOI), identity.CleanOpenAlexID(d.OpenAlexID),
		d.NBERNumber, d.OAURL, published, firstSeen.Format(time.RFC3339))
	if err != nil {
		return types.Paper{}, false, fmt.Errorf("committing %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return types.Paper{}, false, fmt.Errorf("committing %s: %w", id, err)
	}

	stored, err := s.Get(ctx, id)
	if err != nil {
		return types.Paper{}, false, fmt.Errorf("reading back %s: %w", id, err)
	}
	return stored, n > 0, nil
}

// CommitSummary holds counts from a batch commit.
type CommitSummary struct {
	Fetched   int
	New       int
	Duplicate int
}

// CommitAll commits drafts in order and returns only the newly created
// papers; previously seen identities are counted as duplicates and dropped.
// Any persistence failure aborts the batch: downstream stages must not run
// against a partially committed set.
func (s *Store) CommitAll(ctx context.Context, drafts []types.Draft, w io.Writer) ([]types.Paper, CommitSummary, error) {
	var summary CommitSummary
	var fresh []types.Paper

	for _, d := range drafts {
		summary.Fetched++
		p, created, err := s.Commit(ctx, d)
		if err != nil {
			return nil, summary, err
		}
		if created {
			summary.New++
			fresh = append(fresh, p)
		} else {
			summary.Duplicate++
			// Backfill the OA hint when a later source learned one.
			if p.OAURL == "" && d.OAURL != "" {
				if err := s.setOAURL(ctx, p.ID, d.OAURL); err != nil {
					return nil, summary, err
				}
			}
		}
	}

	fmt.Fprintf(w, "committed: %d fetched, %d new, %d already seen\n",
		summary.Fetched, summary.New, summary.Duplicate)
	return fresh, summary, nil
}

func (s *Store) setOAURL(ctx context.Context, id, oaURL string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE papers SET oa_url = ? WHERE id = ? AND (oa_url IS NULL OR oa_url = '')`,
		oaURL, id)
	if err != nil {
		return fmt.Errorf("backfilling oa_url for %s: %w", id, err)
	}
	return nil
}

// Get returns the stored paper for an identity, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (types.Paper, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Paper{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, err
}

// QueryWindow returns all papers first seen in [start, end), ordered by
// first_seen then identity for determinism.
func (s *Store) QueryWindow(ctx context.Context, start, end time.Time) ([]types.Paper, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE first_seen >= ? AND first_seen < ? ORDER BY first_seen, id`,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("querying window: %w", err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// Unresolved returns papers with no resolved PDF. Papers already flagged
// manual_download are included only when retryManual is set.
func (s *Store) Unresolved(ctx context.Context, retryManual bool) ([]types.Paper, error) {
	query := selectColumns + ` WHERE (pdf_url IS NULL OR pdf_url = '')`
	if !retryManual {
		query += ` AND manual_download = 0`
	}
	query += ` ORDER BY first_seen, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying unresolved: %w", err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// SetScore records a scoring result for a paper.
func (s *Store) SetScore(ctx context.Context, id string, total float64, breakdown types.Breakdown) error {
	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("encoding breakdown: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE papers SET scored = 1, score = ?, score_breakdown = ? WHERE id = ?`,
		total, string(breakdownJSON), id)
	if err != nil {
		return fmt.Errorf("storing score for %s: %w", id, err)
	}
	return nil
}

// SetResolution records a PDF resolution outcome. A successful resolution
// clears any earlier manual_download flag.
func (s *Store) SetResolution(ctx context.Context, id, pdfURL, pdfSource string, manual bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE papers SET pdf_url = ?, pdf_source = ?, manual_download = ? WHERE id = ?`,
		pdfURL, pdfSource, boolInt(manual), id)
	if err != nil {
		return fmt.Errorf("storing resolution for %s: %w", id, err)
	}
	return nil
}

const selectColumns = `SELECT id, title, authors, abstract, journal, source, url, doi,
	openalex_id, nber_number, oa_url, published, first_seen,
	scored, score, score_breakdown, pdf_url, pdf_source, manual_download
	FROM papers`

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(row scanner) (types.Paper, error) {
	var p types.Paper
	var authorsJSON, breakdownJSON, published, firstSeen sql.NullString
	var source string
	var scored, manual int
	var url, doi, openAlexID, nberNumber, oaURL, pdfURL, pdfSource sql.NullString

	err := row.Scan(&p.ID, &p.Title, &authorsJSON, &p.Abstract, &p.Journal, &source,
		&url, &doi, &openAlexID, &nberNumber, &oaURL, &published, &firstSeen,
		&scored, &p.Score, &breakdownJSON, &pdfURL, &pdfSource, &manual)
	if err != nil {
		return types.Paper{}, err
	}

	p.Source = types.SourceKind(source)
	p.URL = url.String
	p.DOI = doi.String
	p.OpenAlexID = openAlexID.String
	p.NBERNumber = nberNumber.String
	p.OAURL = oaURL.String
	p.PDFURL = pdfURL.String
	p.PDFSource = pdfSource.String
	p.Scored = scored != 0
	p.ManualDownload = manual != 0

	if authorsJSON.Valid && authorsJSON.String != "" {
		if err := json.Unmarshal([]byte(authorsJSON.String), &p.Authors); err != nil {
			return types.Paper{}, fmt.Errorf("decoding authors for %s: %w", p.ID, err)
		}
	}
	if breakdownJSON.Valid && breakdownJSON.String != "" {
		if err := json.Unmarshal([]byte(breakdownJSON.String), &p.ScoreBreakdown); err != nil {
			return types.Paper{}, fmt.Errorf("decoding breakdown for %s: %w", p.ID, err)
		}
	}
	if published.Valid && published.String != "" {
		if t, err := time.Parse("2006-01-02", published.String); err == nil {
			p.Published = t
		}
	}
	if firstSeen.Valid && firstSeen.String != "" {
		if t, err := time.Parse(time.RFC3339, firstSeen.String); err == nil {
			p.FirstSeen = t
		}
	}
	return p, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
