// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/litscout/internal/httputil"
	"github.com/pdiddy/litscout/pkg/types"
)

// openAlexWorkBase is the OpenAlex single-work endpoint. Declared as a var
// so tests can substitute an httptest server.
var openAlexWorkBase = "https://api.openalex.org/works/"

// openAlexStrategy resolves through OpenAlex's reported open-access
// location. A fetch-time OA URL hint on the paper short-circuits the API
// call; otherwise the work record is looked up by DOI or OpenAlex ID.
type openAlexStrategy struct {
	client    *http.Client
	email     string
	userAgent string
}

func (s *openAlexStrategy) Name() string { return "openalex" }

func (s *openAlexStrategy) Resolve(ctx context.Context, p types.Paper) (string, error) {
	if p.OAURL != "" {
		return p.OAURL, nil
	}

	var workID string
	switch {
	case p.DOI != "":
		workID = "https://doi.org/" + p.DOI
	case p.OpenAlexID != "":
		workID = p.OpenAlexID
	default:
		return "", nil
	}

	reqURL := openAlexWorkBase + url.PathEscape(workID)
	if s.email != "" {
		reqURL += "?mailto=" + url.QueryEscape(s.email)
	}

	var work openAlexWorkRecord
	if err := httputil.GetJSON(ctx, s.client, reqURL, s.userAgent, nil, &work); err != nil {
		return "", fmt.Errorf("OpenAlex work lookup: %w", err)
	}

	if work.BestOALocation.PDFURL != "" {
		return work.BestOALocation.PDFURL, nil
	}
	if work.OpenAccess.OAURL != "" {
		return work.OpenAccess.OAURL, nil
	}
	return "", nil
}

type openAlexWorkRecord struct {
	BestOALocation struct {
		PDFURL string `json:"pdf_url"`
		URL    string `json:"landing_page_url"`
	} `json:"best_oa_location"`
	OpenAccess struct {
		OAURL string `json:"oa_url"`
	} `json:"open_access"`
}
