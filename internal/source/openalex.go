// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/litscout/internal/httputil"
	"github.com/pdiddy/litscout/internal/identity"
	"github.com/pdiddy/litscout/pkg/types"
)

// openAlexWorksBase is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexWorksBase = "https://api.openalex.org/works"

// openAlexMaxPages bounds cursor pagination per query.
const openAlexMaxPages = 10

// openAlexAdapter queries the OpenAlex Works API. With a venue ID it lists
// that venue's recent publications; with keywords it runs a broad discovery
// search instead, batching keywords three per query to keep free-text
// queries focused.
type openAlexAdapter struct {
	name       string
	venueID    string
	keywords   []string
	email      string
	userAgent  string
	maxResults int
	client     *http.Client
}

func newOpenAlexAdapter(src types.SourceConfig, cfg types.FetchConfig, client *http.Client) *openAlexAdapter {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}
	if maxResults > 200 {
		maxResults = 200
	}
	return &openAlexAdapter{
		name:       src.Name,
		venueID:    strings.TrimPrefix(src.OpenAlexID, "https://openalex.org/"),
		keywords:   src.Keywords,
		email:      cfg.Email,
		userAgent:  cfg.UserAgent,
		maxResults: maxResults,
		client:     client,
	}
}

func (a *openAlexAdapter) Name() string { return a.name }

func (a *openAlexAdapter) Fetch(ctx context.Context, w Window) ([]types.Draft, error) {
	if a.venueID != "" {
		filter := fmt.Sprintf("primary_location.source.id:%s,from_publication_date:%s,to_publication_date:%s",
			a.venueID, w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
		return a.query(ctx, filter, "")
	}

	// Discovery mode: batch keywords into OR queries.
	filter := fmt.Sprintf("from_publication_date:%s,to_publication_date:%s,type:article",
		w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
	var drafts []types.Draft
	for i := 0; i < len(a.keywords); i += 3 {
		batch := a.keywords[i:min(i+3, len(a.keywords))]
		page, err := a.query(ctx, filter, strings.Join(batch, " OR "))
		if err != nil {
			return drafts, err
		}
		drafts = append(drafts, page...)
	}
	return drafts, nil
}

// query pages through results with cursor pagination until the API reports
// no further cursor or the page cap is reached.
func (a *openAlexAdapter) query(ctx context.Context, filter, search string) ([]types.Draft, error) {
	var drafts []types.Draft
	cursor := "*"

	for page := 0; page < openAlexMaxPages && cursor != ""; page++ {
		params := url.Values{
			"filter":   {filter},
			"sort":     {"publication_date:desc"},
			"per_page": {fmt.Sprintf("%d", a.maxResults)},
			"cursor":   {cursor},
		}
		if search != "" {
			params.Set("search", search)
		}
		if a.email != "" {
			params.Set("mailto", a.email)
		}

		var resp openAlexWorksResponse
		if err := httputil.GetJSON(ctx, a.client, openAlexWorksBase+"?"+params.Encode(), a.userAgent, nil, &resp); err != nil {
			return nil, fmt.Errorf("OpenAlex query: %w", err)
		}
		if len(resp.Results) == 0 {
			break
		}

		for _, work := range resp.Results {
			if d, ok := a.workToDraft(work); ok {
				drafts = append(drafts, d)
			}
		}
		cursor = resp.Meta.NextCursor
	}
	return drafts, nil
}

func (a *openAlexAdapter) workToDraft(work openAlexWork) (types.Draft, bool) {
	title := strings.TrimSpace(work.Title)
	if title == "" {
		return types.Draft{}, false
	}

	d := types.Draft{
		Title:      title,
		Abstract:   truncateRunes(reconstructAbstract(work.AbstractInvertedIndex), maxAbstractRunes),
		Source:     types.SourceOpenAlex,
		DOI:        identity.CleanDOI(work.DOI),
		OpenAlexID: identity.CleanOpenAlexID(work.ID),
		OAURL:      work.OpenAccess.OAURL,
		RawSource:  a.name,
	}

	// Venue queries label drafts with the configured journal name; discovery
	// results identify their own venue.
	if a.venueID != "" {
		d.Journal = a.name
	} else if work.PrimaryLocation.Source.DisplayName != "" {
		d.Journal = work.PrimaryLocation.Source.DisplayName
	} else {
		d.Journal = "Unknown"
	}

	for i, authorship := range work.Authorships {
		if i >= 10 {
			break
		}
		if authorship.Author.DisplayName != "" {
			d.Authors = append(d.Authors, authorship.Author.DisplayName)
		}
	}

	if work.PublicationDate != "" {
		if t, err := time.Parse("2006-01-02", work.PublicationDate); err == nil {
			d.Published = t
		}
	}

	d.URL = work.PrimaryLocation.LandingPageURL
	if d.URL == "" && d.DOI != "" {
		d.URL = "https://doi.org/" + d.DOI
	}
	return d, true
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The index maps each word to the positions where it appears.
func reconstructAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range index {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex Works API JSON structures.
type openAlexWorksResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count      int    `json:"count"`
	NextCursor string `json:"next_cursor"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationDate       string               `json:"publication_date"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	PrimaryLocation       openAlexLocation     `json:"primary_location"`
	OpenAccess            openAlexOpenAccess   `json:"open_access"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexLocation struct {
	LandingPageURL string         `json:"landing_page_url"`
	Source         openAlexSource `json:"source"`
	IsOA           bool           `json:"is_oa"`
	PDFURL         string         `json:"pdf_url"`
}

type openAlexSource struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexOpenAccess struct {
	IsOA     bool   `json:"is_oa"`
	OAStatus string `json:"oa_status"`
	OAURL    string `json:"oa_url"`
}
