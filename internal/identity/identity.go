// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identity derives the stable deduplication key for a paper and
// provides the identifier normalization helpers shared by the store and
// the PDF resolver.
package identity

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/litscout/pkg/types"
)

// nberPattern matches NBER working-paper URLs like
// "https://www.nber.org/papers/w34862".
var nberPattern = regexp.MustCompile(`/papers/(w\d+)`)

// openAlexIDPattern matches bare OpenAlex work IDs ("W2741809807").
var openAlexIDPattern = regexp.MustCompile(`^W\d+$`)

// spacePattern collapses runs of whitespace during normalization.
var spacePattern = regexp.MustCompile(`\s+`)

// Derive returns the deduplication identity for a draft, in priority order:
// DOI, OpenAlex ID, NBER working-paper number, then a hash of the
// normalized title plus first author. The result is deterministic across
// repeated fetches of the same work from different sources.
func Derive(d types.Draft) string {
	if doi := CleanDOI(d.DOI); doi != "" {
		return doi
	}
	if id := CleanOpenAlexID(d.OpenAlexID); id != "" {
		return id
	}
	if d.NBERNumber != "" {
		return strings.ToLower(d.NBERNumber)
	}
	if n := NBERNumber(d.URL); n != "" {
		return n
	}
	first := ""
	if len(d.Authors) > 0 {
		first = d.Authors[0]
	}
	return TitleHash(d.Title, first)
}

// CleanDOI returns the bare, lowercased DOI, stripping any doi.org URL
// prefix. It returns "" for empty or non-DOI input.
func CleanDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range []string{
		"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:",
	} {
		if rest, ok := strings.CutPrefix(doi, prefix); ok {
			doi = rest
			break
		}
	}
	if !strings.HasPrefix(doi, "10.") {
		return ""
	}
	return strings.ToLower(doi)
}

// CleanOpenAlexID returns the bare OpenAlex work ID, stripping the
// openalex.org URL prefix. It returns "" for input that is not a work ID.
func CleanOpenAlexID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "https://openalex.org/")
	if !openAlexIDPattern.MatchString(id) {
		return ""
	}
	return id
}

// NBERNumber extracts the working-paper number ("w34862") from an NBER
// paper URL, or "" when the URL is not an NBER paper page.
func NBERNumber(rawURL string) string {
	if rawURL == "" || !strings.Contains(rawURL, "nber.org") {
		return ""
	}
	m := nberPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// TitleHash returns a deterministic fallback identity from the normalized
// title and first author name.
func TitleHash(title, firstAuthor string) string {
	raw := Normalize(title + " " + firstAuthor)
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", sum[:8])
}

// Normalize lowercases, trims, and collapses whitespace.
func Normalize(s string) string {
	return spacePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}
