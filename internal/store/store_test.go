// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litscout/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "papers.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCommitAssignsIdentityAndFirstSeen(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	d := types.Draft{
		Title:   "Minimum Wages and Firm Dynamics",
		Authors: []string{"A. Smith", "B. Jones"},
		Journal: "American Economic Review",
		Source:  types.SourceRSS,
		DOI:     "https://doi.org/10.1257/aer.20211234",
	}

	p, created, err := s.Commit(ctx, d)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "10.1257/aer.20211234", p.ID)
	assert.Equal(t, "10.1257/aer.20211234", p.DOI)
	assert.False(t, p.FirstSeen.IsZero())
	assert.Equal(t, []string{"A. Smith", "B. Jones"}, p.Authors)
	assert.False(t, p.Scored)
	assert.False(t, p.ManualDownload)
}

func TestCommitIdempotentUnderIdentity(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	d := types.Draft{Title: "Some Paper", Journal: "Econometrica", Source: types.SourceRSS, DOI: "10.1/abc"}

	first, created, err := s.Commit(ctx, d)
	require.NoError(t, err)
	require.True(t, created)

	// Second commit of the same identity is a no-op returning the stored row.
	d2 := d
	d2.Title = "Some Paper (revised listing)"
	second, created, err := s.Commit(ctx, d2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Some Paper", second.Title)
	assert.Equal(t, first.FirstSeen, second.FirstSeen)

	papers, err := s.QueryWindow(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, papers, 1)
}

// Two drafts from different sources describing the same DOI store exactly
// one paper.
func TestCommitAllSameDOIAcrossFeeds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	drafts := []types.Draft{
		{Title: "Paper A", Journal: "AER", Source: types.SourceRSS, DOI: "10.1/abc"},
		{Title: "Paper A", Journal: "QJE feed mirror", Source: types.SourceRSS, DOI: "https://doi.org/10.1/abc"},
	}

	fresh, summary, err := s.CommitAll(ctx, drafts, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Fetched)
	assert.Equal(t, 1, summary.New)
	assert.Equal(t, 1, summary.Duplicate)
	require.Len(t, fresh, 1)
	assert.Equal(t, "10.1/abc", fresh[0].ID)
}

func TestCommitAllBackfillsOAURL(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, _, err := s.CommitAll(ctx, []types.Draft{
		{Title: "P", Journal: "AER", Source: types.SourceRSS, DOI: "10.1/abc"},
	}, io.Discard)
	require.NoError(t, err)

	// The same work arrives again via OpenAlex, this time with an OA hint.
	_, _, err = s.CommitAll(ctx, []types.Draft{
		{Title: "P", Journal: "AER", Source: types.SourceOpenAlex, DOI: "10.1/abc", OAURL: "https://repo.example.org/p.pdf"},
	}, io.Discard)
	require.NoError(t, err)

	p, err := s.Get(ctx, "10.1/abc")
	require.NoError(t, err)
	assert.Equal(t, "https://repo.example.org/p.pdf", p.OAURL)
}

func TestSetScoreRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, _, err := s.Commit(ctx, types.Draft{Title: "P", Journal: "AER", Source: types.SourceRSS, DOI: "10.1/abc"})
	require.NoError(t, err)

	breakdown := types.Breakdown{"journal_top5": 30, "structural": 20}
	require.NoError(t, s.SetScore(ctx, "10.1/abc", breakdown.Total(), breakdown))

	p, err := s.Get(ctx, "10.1/abc")
	require.NoError(t, err)
	assert.True(t, p.Scored)
	assert.Equal(t, 50.0, p.Score)
	assert.Equal(t, breakdown, p.ScoreBreakdown)
}

func TestSetResolution(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, _, err := s.Commit(ctx, types.Draft{Title: "P", Journal: "AER", Source: types.SourceRSS, DOI: "10.1/abc"})
	require.NoError(t, err)

	// Exhausted chain flags manual download with no URL.
	require.NoError(t, s.SetResolution(ctx, "10.1/abc", "", "", true))
	p, err := s.Get(ctx, "10.1/abc")
	require.NoError(t, err)
	assert.True(t, p.ManualDownload)
	assert.Empty(t, p.PDFURL)

	// A later successful resolution clears the flag.
	require.NoError(t, s.SetResolution(ctx, "10.1/abc", "https://oa.example.org/p.pdf", "unpaywall", false))
	p, err = s.Get(ctx, "10.1/abc")
	require.NoError(t, err)
	assert.False(t, p.ManualDownload)
	assert.Equal(t, "https://oa.example.org/p.pdf", p.PDFURL)
	assert.Equal(t, "unpaywall", p.PDFSource)
}

func TestUnresolvedFiltersManual(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, d := range []types.Draft{
		{Title: "Open", Journal: "AER", Source: types.SourceRSS, DOI: "10.1/open"},
		{Title: "Manual", Journal: "AER", Source: types.SourceRSS, DOI: "10.1/manual"},
		{Title: "Done", Journal: "AER", Source: types.SourceRSS, DOI: "10.1/done"},
	} {
		_, _, err := s.Commit(ctx, d)
		require.NoError(t, err)
	}
	require.NoError(t, s.SetResolution(ctx, "10.1/manual", "", "", true))
	require.NoError(t, s.SetResolution(ctx, "10.1/done", "https://x.example.org/p.pdf", "openalex", false))

	papers, err := s.Unresolved(ctx, false)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "10.1/open", papers[0].ID)

	papers, err = s.Unresolved(ctx, true)
	require.NoError(t, err)
	assert.Len(t, papers, 2)
}

func TestQueryWindowBounds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, _, err := s.Commit(ctx, types.Draft{Title: "P", Journal: "AER", Source: types.SourceRSS, DOI: "10.1/abc"})
	require.NoError(t, err)

	past, err := s.QueryWindow(ctx, time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, past)

	current, err := s.QueryWindow(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, current, 1)
}

func TestGetUnknownIdentity(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "10.1/nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}
