// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/time/rate"

	"github.com/pdiddy/litscout/pkg/types"
)

func TestOpenAlexStrategyUsesHintWithoutAPICall(t *testing.T) {
	var called bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	old := openAlexWorkBase
	openAlexWorkBase = ts.URL + "/"
	defer func() { openAlexWorkBase = old }()

	s := &openAlexStrategy{client: ts.Client()}
	got, err := s.Resolve(context.Background(), types.Paper{OAURL: "https://example.org/hint.pdf"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "https://example.org/hint.pdf" {
		t.Errorf("Resolve() = %q, want the stored OA hint", got)
	}
	if called {
		t.Error("API was called despite a stored OA URL")
	}
}

func TestOpenAlexStrategyLooksUpByDOI(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "doi.org") {
			t.Errorf("path = %q, want DOI-addressed work", r.URL.Path)
		}
		w.Write([]byte(`{"best_oa_location": {"pdf_url": "https://example.org/best.pdf"},
			"open_access": {"oa_url": "https://example.org/landing"}}`))
	}))
	defer ts.Close()

	old := openAlexWorkBase
	openAlexWorkBase = ts.URL + "/"
	defer func() { openAlexWorkBase = old }()

	s := &openAlexStrategy{client: ts.Client(), email: "reader@example.org"}
	got, err := s.Resolve(context.Background(), types.Paper{DOI: "10.1257/aer.20261111"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "https://example.org/best.pdf" {
		t.Errorf("Resolve() = %q, want best_oa_location pdf_url preferred", got)
	}
}

func TestOpenAlexStrategyNoIdentifiers(t *testing.T) {
	s := &openAlexStrategy{client: http.DefaultClient}
	got, err := s.Resolve(context.Background(), types.Paper{Title: "untracked"})
	if err != nil || got != "" {
		t.Errorf("Resolve() = %q, %v; want no match without identifiers", got, err)
	}
}

func TestUnpaywallStrategy(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("email"); got != "reader@example.org" {
			t.Errorf("email = %q", got)
		}
		w.Write([]byte(`{"is_oa": true,
			"best_oa_location": {"url": "https://example.org/landing"},
			"oa_locations": [
				{"url": "https://example.org/other-landing"},
				{"url_for_pdf": "https://example.org/repo.pdf"}
			]}`))
	}))
	defer ts.Close()

	old := unpaywallBase
	unpaywallBase = ts.URL + "/"
	defer func() { unpaywallBase = old }()

	s := &unpaywallStrategy{client: ts.Client(), email: "reader@example.org"}
	got, err := s.Resolve(context.Background(), types.Paper{DOI: "10.1086/700000"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// A direct PDF link anywhere beats every landing page.
	if got != "https://example.org/repo.pdf" {
		t.Errorf("Resolve() = %q, want url_for_pdf preferred over landing pages", got)
	}
}

func TestUnpaywallStrategySkipsWithoutDOI(t *testing.T) {
	s := &unpaywallStrategy{client: http.DefaultClient}
	got, err := s.Resolve(context.Background(), types.Paper{Title: "no doi"})
	if err != nil || got != "" {
		t.Errorf("Resolve() = %q, %v; want skip without DOI", got, err)
	}
}

func TestSemanticScholarStrategyDOIThenTitle(t *testing.T) {
	var paths []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if strings.Contains(r.URL.Path, "DOI:") {
			// DOI record exists but has no OA PDF.
			w.Write([]byte(`{"openAccessPdf": null}`))
			return
		}
		w.Write([]byte(`{"data": [{"openAccessPdf": {"url": "https://example.org/s2.pdf"}}]}`))
	}))
	defer ts.Close()

	old := semanticScholarPaperBase
	semanticScholarPaperBase = ts.URL
	defer func() { semanticScholarPaperBase = old }()

	s := &semanticScholarStrategy{
		client:  ts.Client(),
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
	got, err := s.Resolve(context.Background(), types.Paper{
		DOI:   "10.1086/700000",
		Title: "Housing Supply Elasticities",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "https://example.org/s2.pdf" {
		t.Errorf("Resolve() = %q, want the title-search result", got)
	}
	if len(paths) != 2 {
		t.Errorf("paths = %v, want DOI lookup then title search", paths)
	}
}

func TestSemanticScholarStrategySendsAPIKey(t *testing.T) {
	var gotKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		w.Write([]byte(`{"openAccessPdf": {"url": "https://example.org/k.pdf"}}`))
	}))
	defer ts.Close()

	old := semanticScholarPaperBase
	semanticScholarPaperBase = ts.URL
	defer func() { semanticScholarPaperBase = old }()

	s := &semanticScholarStrategy{
		client:  ts.Client(),
		apiKey:  "secret-key",
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
	if _, err := s.Resolve(context.Background(), types.Paper{DOI: "10.1/x"}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if gotKey != "secret-key" {
		t.Errorf("X-Api-Key = %q", gotKey)
	}
}
