// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litscout/internal/httputil"
	"github.com/pdiddy/litscout/internal/identity"
	"github.com/pdiddy/litscout/pkg/types"
)

// semanticScholarSearchBase is the Semantic Scholar paper search endpoint.
// Declared as a var so tests can substitute an httptest server.
var semanticScholarSearchBase = "https://api.semanticscholar.org/graph/v1/paper/search"

// defaultCandidateFile is where the curated candidate list lives.
const defaultCandidateFile = "data/jmp_candidates.yaml"

// jmpAdapter turns the curated job-market-paper candidate list into drafts.
// Candidates whose list entry already names the paper are used as-is;
// for the rest the adapter searches Semantic Scholar and then OpenAlex by
// author name, accepting a hit only when the author name overlaps and the
// paper plausibly belongs to economics.
type jmpAdapter struct {
	name      string
	path      string
	email     string
	userAgent string
	delay     time.Duration
	client    *http.Client
}

func newJMPAdapter(src types.SourceConfig, cfg types.FetchConfig, client *http.Client) *jmpAdapter {
	path := src.CandidateFile
	if path == "" {
		path = defaultCandidateFile
	}
	delay := cfg.SourceDelay
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	return &jmpAdapter{
		name:      src.Name,
		path:      path,
		email:     cfg.Email,
		userAgent: cfg.UserAgent,
		delay:     delay,
		client:    client,
	}
}

func (a *jmpAdapter) Name() string { return a.name }

type candidateList struct {
	Candidates []types.JMPCandidate `yaml:"candidates"`
}

// Fetch reads the candidate list and produces one draft per candidate with
// a resolvable paper. The window is ignored: job-market papers are current
// by construction, the list itself is the season filter.
func (a *jmpAdapter) Fetch(ctx context.Context, _ Window) ([]types.Draft, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		return nil, fmt.Errorf("reading candidate list: %w", err)
	}
	var list candidateList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing candidate list %s: %w", a.path, err)
	}

	var drafts []types.Draft
	for i, c := range list.Candidates {
		if c.Name == "" {
			continue
		}
		if i > 0 {
			select {
			case <-time.After(a.delay):
			case <-ctx.Done():
				return drafts, ctx.Err()
			}
		}

		d, ok := a.resolveCandidate(ctx, c)
		if ok {
			drafts = append(drafts, d)
		}
	}
	return drafts, nil
}

// resolveCandidate builds the draft for one candidate. A curated paper
// title short-circuits the API search; otherwise Semantic Scholar is tried
// first, then OpenAlex. A candidate with no curated title and no API match
// yields no draft.
func (a *jmpAdapter) resolveCandidate(ctx context.Context, c types.JMPCandidate) (types.Draft, bool) {
	if c.PaperTitle != "" {
		return a.draftFromCurated(c), true
	}

	if d, ok := a.searchSemanticScholar(ctx, c); ok {
		return d, true
	}
	if d, ok := a.searchOpenAlex(ctx, c); ok {
		return d, true
	}
	return types.Draft{}, false
}

func (a *jmpAdapter) draftFromCurated(c types.JMPCandidate) types.Draft {
	d := types.Draft{
		Title:     c.PaperTitle,
		Authors:   []string{c.Name},
		Journal:   "Job Market Paper",
		Source:    types.SourceJMP,
		URL:       c.PaperURL,
		RawSource: c.School,
	}
	if d.URL == "" {
		d.URL = c.Website
	}
	if looksLikePDF(c.PaperURL) {
		d.OAURL = c.PaperURL
	}
	return d
}

func (a *jmpAdapter) searchSemanticScholar(ctx context.Context, c types.JMPCandidate) (types.Draft, bool) {
	year := time.Now().Year()
	params := url.Values{
		"query":  {c.Name},
		"limit":  {"5"},
		"fields": {"title,authors,abstract,venue,url,openAccessPdf,externalIds,year"},
		"year":   {fmt.Sprintf("%d-%d", year-1, year)},
	}

	var resp semanticScholarSearchResponse
	if err := httputil.GetJSON(ctx, a.client, semanticScholarSearchBase+"?"+params.Encode(), a.userAgent, nil, &resp); err != nil {
		return types.Draft{}, false
	}

	for _, paper := range resp.Data {
		if !authorMatches(c.Name, s2AuthorNames(paper.Authors)) {
			continue
		}
		if paper.Title == "" || !plausiblyEconomics(paper.Title, paper.Venue) {
			continue
		}

		d := types.Draft{
			Title:     paper.Title,
			Authors:   []string{c.Name},
			Abstract:  truncateRunes(paper.Abstract, maxAbstractRunes),
			Journal:   "Job Market Paper",
			Source:    types.SourceJMP,
			URL:       paper.URL,
			DOI:       identity.CleanDOI(paper.ExternalIDs.DOI),
			OAURL:     paper.OpenAccessPDF.URL,
			RawSource: c.School,
		}
		if d.URL == "" {
			d.URL = c.Website
		}
		return d, true
	}
	return types.Draft{}, false
}

func (a *jmpAdapter) searchOpenAlex(ctx context.Context, c types.JMPCandidate) (types.Draft, bool) {
	since := fmt.Sprintf("%d-01-01", time.Now().Year()-1)
	params := url.Values{
		"filter":   {fmt.Sprintf("raw_author_name.search:%s,from_publication_date:%s", c.Name, since)},
		"sort":     {"publication_date:desc"},
		"per_page": {"5"},
	}
	if a.email != "" {
		params.Set("mailto", a.email)
	}

	var resp openAlexWorksResponse
	if err := httputil.GetJSON(ctx, a.client, openAlexWorksBase+"?"+params.Encode(), a.userAgent, nil, &resp); err != nil {
		return types.Draft{}, false
	}

	for _, work := range resp.Results {
		var names []string
		for _, authorship := range work.Authorships {
			names = append(names, authorship.Author.DisplayName)
		}
		if !authorMatches(c.Name, names) {
			continue
		}
		if work.Title == "" || !plausiblyEconomics(work.Title, work.PrimaryLocation.Source.DisplayName) {
			continue
		}

		d := types.Draft{
			Title:     work.Title,
			Authors:   []string{c.Name},
			Abstract:  truncateRunes(reconstructAbstract(work.AbstractInvertedIndex), maxAbstractRunes),
			Journal:   "Job Market Paper",
			Source:    types.SourceJMP,
			URL:       work.PrimaryLocation.LandingPageURL,
			DOI:       identity.CleanDOI(work.DOI),
			OAURL:     work.OpenAccess.OAURL,
			RawSource: c.School,
		}
		if d.URL == "" {
			d.URL = c.Website
		}
		return d, true
	}
	return types.Draft{}, false
}

// authorMatches requires at least two name words in common, so "Wei Chen"
// does not match every Chen the search returns.
func authorMatches(candidate string, authors []string) bool {
	want := nameWords(candidate)
	for _, author := range authors {
		overlap := 0
		for word := range nameWords(author) {
			if want[word] {
				overlap++
			}
		}
		if overlap >= 2 {
			return true
		}
	}
	return false
}

func nameWords(name string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(name)) {
		words[w] = true
	}
	return words
}

// nonEconTerms flags papers that are clearly from another discipline.
// Author-name search hits the whole literature, and a common name is more
// likely to match a biologist than the candidate.
var nonEconTerms = []string{
	"protein", "gene", "genome", "molecular", "clinical", "patient",
	"diagnosis", "therapy", "surgical", "cancer", "tumor", "neuron",
	"cortex", "patholog", "symptom", "virus", "bacteria", "phylogen",
	"species", "ecosystem", "lattice", "quantum", "photon", "magnetic",
	"spectroscop", "chemical", "polymer", "alloy", "crystal",
	"nanoparticle", "enzyme", "amino acid", "morpholog", "murine",
	"transcriptom", "deep learning", "neural network", "pre-training",
}

func plausiblyEconomics(title, venue string) bool {
	if len(title) < 15 {
		return false
	}
	text := strings.ToLower(title + " " + venue)
	for _, term := range nonEconTerms {
		if strings.Contains(text, term) {
			return false
		}
	}
	return true
}

func looksLikePDF(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), "pdf")
}

// Semantic Scholar search API JSON structures.
type semanticScholarSearchResponse struct {
	Total int                    `json:"total"`
	Data  []semanticScholarPaper `json:"data"`
}

type semanticScholarPaper struct {
	PaperID       string                    `json:"paperId"`
	Title         string                    `json:"title"`
	Abstract      string                    `json:"abstract"`
	Venue         string                    `json:"venue"`
	URL           string                    `json:"url"`
	Year          int                       `json:"year"`
	Authors       []semanticScholarAuthor   `json:"authors"`
	OpenAccessPDF semanticScholarOpenAccess `json:"openAccessPdf"`
	ExternalIDs   semanticScholarExternal   `json:"externalIds"`
}

type semanticScholarAuthor struct {
	Name string `json:"name"`
}

type semanticScholarOpenAccess struct {
	URL string `json:"url"`
}

type semanticScholarExternal struct {
	DOI string `json:"DOI"`
}

func s2AuthorNames(authors []semanticScholarAuthor) []string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.Name
	}
	return names
}
