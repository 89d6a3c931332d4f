// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/litscout/internal/identity"
	"github.com/pdiddy/litscout/pkg/types"
)

// htmlTagPattern strips markup from feed summaries, which commonly embed
// the abstract inside paragraph and emphasis tags.
var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// rssAdapter fetches a journal or NBER working-paper feed. The two kinds
// share feed mechanics; NBER entries additionally carry a working-paper
// number in their link, which becomes part of the draft for identity
// derivation and direct PDF construction.
type rssAdapter struct {
	name    string
	kind    types.SourceKind
	feedURL string
	parser  *gofeed.Parser
}

func newRSSAdapter(src types.SourceConfig, cfg types.FetchConfig, client *http.Client) *rssAdapter {
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = cfg.UserAgent
	return &rssAdapter{
		name:    src.Name,
		kind:    src.Kind,
		feedURL: src.URL,
		parser:  parser,
	}
}

func (a *rssAdapter) Name() string { return a.name }

// Fetch parses the feed and maps entries published inside the window.
// Entries without a parseable date are included rather than dropped: feeds
// that omit dates tend to be current-issue listings.
func (a *rssAdapter) Fetch(ctx context.Context, w Window) ([]types.Draft, error) {
	feed, err := a.parser.ParseURLWithContext(a.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", a.feedURL, err)
	}

	var drafts []types.Draft
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}

		published := itemDate(item)
		if !w.Contains(published) {
			continue
		}

		d := types.Draft{
			Title:     title,
			Authors:   itemAuthors(item),
			Abstract:  truncateRunes(stripHTML(item.Description), maxAbstractRunes),
			Journal:   a.name,
			Source:    a.kind,
			URL:       item.Link,
			DOI:       itemDOI(item),
			Published: published,
			RawSource: a.feedURL,
		}
		if a.kind == types.SourceNBER {
			d.NBERNumber = identity.NBERNumber(item.Link)
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

func itemDate(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return time.Time{}
}

// itemAuthors prefers the Dublin Core creator list: journal feeds emit one
// dc:creator per author, while the plain author field holds at most one name.
func itemAuthors(item *gofeed.Item) []string {
	var authors []string
	if item.DublinCoreExt != nil {
		for _, name := range item.DublinCoreExt.Creator {
			if name != "" {
				authors = append(authors, name)
			}
		}
	}
	if len(authors) > 0 {
		return authors
	}
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			authors = append(authors, a.Name)
		}
	}
	return authors
}

// itemDOI extracts a DOI from the publisher extension namespaces. Journal
// feeds use prism:doi; some carry it as dc:identifier instead.
func itemDOI(item *gofeed.Item) string {
	if prism, ok := item.Extensions["prism"]; ok {
		for _, e := range prism["doi"] {
			if doi := identity.CleanDOI(e.Value); doi != "" {
				return doi
			}
		}
	}
	if item.DublinCoreExt != nil {
		for _, id := range item.DublinCoreExt.Identifier {
			if doi := identity.CleanDOI(id); doi != "" {
				return doi
			}
		}
	}
	return ""
}

func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}
