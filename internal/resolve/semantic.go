// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/pdiddy/litscout/internal/httputil"
	"github.com/pdiddy/litscout/pkg/types"
)

// semanticScholarPaperBase is the Semantic Scholar Graph API paper
// endpoint. Declared as a var so tests can substitute an httptest server.
var semanticScholarPaperBase = "https://api.semanticscholar.org/graph/v1/paper"

// semanticScholarStrategy reads the openAccessPdf field from Semantic
// Scholar, looking the paper up by DOI when one exists and falling back to
// a title search. Every request waits on the shared limiter: the public
// API budget is about 100 requests per 5 minutes across all callers.
type semanticScholarStrategy struct {
	client    *http.Client
	apiKey    string
	userAgent string
	limiter   *rate.Limiter
}

func (s *semanticScholarStrategy) Name() string { return "semantic_scholar" }

func (s *semanticScholarStrategy) Resolve(ctx context.Context, p types.Paper) (string, error) {
	if p.DOI != "" {
		pdfURL, err := s.lookupDOI(ctx, p.DOI)
		if err == nil && pdfURL != "" {
			return pdfURL, nil
		}
	}
	if p.Title != "" {
		return s.searchTitle(ctx, p.Title)
	}
	return "", nil
}

func (s *semanticScholarStrategy) lookupDOI(ctx context.Context, doi string) (string, error) {
	reqURL := semanticScholarPaperBase + "/DOI:" + url.PathEscape(doi) + "?fields=openAccessPdf"

	var rec semanticScholarRecord
	if err := s.get(ctx, reqURL, &rec); err != nil {
		return "", err
	}
	return rec.OpenAccessPDF.URL, nil
}

func (s *semanticScholarStrategy) searchTitle(ctx context.Context, title string) (string, error) {
	if len(title) > 200 {
		title = title[:200]
	}
	params := url.Values{
		"query":  {title},
		"limit":  {"1"},
		"fields": {"openAccessPdf"},
	}
	reqURL := semanticScholarPaperBase + "/search?" + params.Encode()

	var resp semanticScholarSearchRecord
	if err := s.get(ctx, reqURL, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "", nil
	}
	return resp.Data[0].OpenAccessPDF.URL, nil
}

func (s *semanticScholarStrategy) get(ctx context.Context, reqURL string, v any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	var header http.Header
	if s.apiKey != "" {
		header = http.Header{"X-Api-Key": {s.apiKey}}
	}
	return httputil.GetJSON(ctx, s.client, reqURL, s.userAgent, header, v)
}

type semanticScholarRecord struct {
	OpenAccessPDF struct {
		URL string `json:"url"`
	} `json:"openAccessPdf"`
}

type semanticScholarSearchRecord struct {
	Data []semanticScholarRecord `json:"data"`
}
