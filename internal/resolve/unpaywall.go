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

// unpaywallBase is the Unpaywall DOI lookup endpoint. Declared as a var so
// tests can substitute an httptest server.
var unpaywallBase = "https://api.unpaywall.org/v2/"

// unpaywallStrategy looks the DOI up in Unpaywall, which has the broadest
// legal open-access coverage. Papers without a DOI skip this strategy.
type unpaywallStrategy struct {
	client    *http.Client
	email     string
	userAgent string
}

func (s *unpaywallStrategy) Name() string { return "unpaywall" }

func (s *unpaywallStrategy) Resolve(ctx context.Context, p types.Paper) (string, error) {
	if p.DOI == "" {
		return "", nil
	}

	reqURL := unpaywallBase + url.PathEscape(p.DOI) + "?email=" + url.QueryEscape(s.email)
	var rec unpaywallRecord
	if err := httputil.GetJSON(ctx, s.client, reqURL, s.userAgent, nil, &rec); err != nil {
		return "", fmt.Errorf("Unpaywall lookup: %w", err)
	}

	// Direct PDF links beat landing pages; the best location beats the rest.
	locations := append([]unpaywallLocation{rec.BestOALocation}, rec.OALocations...)
	for _, loc := range locations {
		if loc.URLForPDF != "" {
			return loc.URLForPDF, nil
		}
	}
	for _, loc := range locations {
		if loc.URL != "" {
			return loc.URL, nil
		}
	}
	return "", nil
}

type unpaywallRecord struct {
	IsOA           bool                `json:"is_oa"`
	BestOALocation unpaywallLocation   `json:"best_oa_location"`
	OALocations    []unpaywallLocation `json:"oa_locations"`
}

type unpaywallLocation struct {
	URL       string `json:"url"`
	URLForPDF string `json:"url_for_pdf"`
}
