// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the litscout pipeline:
// source drafts, persisted papers, score breakdowns, and the configuration
// blocks consumed by each stage.
package types

import "time"

// SourceKind identifies which adapter produced a draft.
type SourceKind string

const (
	SourceRSS      SourceKind = "rss"
	SourceOpenAlex SourceKind = "openalex"
	SourceNBER     SourceKind = "nber"
	SourceJMP      SourceKind = "jmp"
)

// Draft is an unpersisted paper record as produced by a source adapter,
// before identity derivation and dedup filtering. Optional fields are left
// empty when the source does not supply them.
type Draft struct {
	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists author names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract, plain text, possibly empty.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Journal is the venue label. For RSS sources this comes from static
	// configuration, not the feed, since feeds rarely self-identify reliably.
	Journal string `json:"journal" yaml:"journal"`

	// Source identifies the adapter kind that produced this draft.
	Source SourceKind `json:"source" yaml:"source"`

	// URL is the landing page or paper URL.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// DOI is the bare DOI (no https://doi.org/ prefix) when known.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// OpenAlexID is the OpenAlex work ID (e.g. "W2741809807") when known.
	OpenAlexID string `json:"openalex_id,omitempty" yaml:"openalex_id,omitempty"`

	// NBERNumber is the NBER working-paper number (e.g. "w34862") when known.
	NBERNumber string `json:"nber_number,omitempty" yaml:"nber_number,omitempty"`

	// OAURL is an open-access URL hint reported by the source itself
	// (OpenAlex works carry one). The resolver verifies it before use.
	OAURL string `json:"oa_url,omitempty" yaml:"oa_url,omitempty"`

	// Published is the publication date when the source supplied a
	// parseable one; zero otherwise.
	Published time.Time `json:"published,omitempty" yaml:"published,omitempty"`

	// RawSource is an opaque label describing the concrete source entry
	// (feed name, OpenAlex query, school), kept for diagnostics.
	RawSource string `json:"raw_source,omitempty" yaml:"raw_source,omitempty"`
}

// Breakdown maps scoring dimension names to the points each contributed.
// Dimensions are independent and additive.
type Breakdown map[string]float64

// Total returns the sum of all dimension contributions.
func (b Breakdown) Total() float64 {
	var sum float64
	for _, v := range b {
		sum += v
	}
	return sum
}

// Paper is the canonical persisted record. Identity is assigned before the
// first commit and never changes; score and resolution fields are filled in
// by later stages on the same or subsequent runs.
type Paper struct {
	// ID is the stable dedup identity: DOI, else OpenAlex ID, else NBER
	// number, else a normalized title+first-author hash.
	ID string `json:"id" yaml:"id"`

	Title    string     `json:"title" yaml:"title"`
	Authors  []string   `json:"authors" yaml:"authors"`
	Abstract string     `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Journal  string     `json:"journal" yaml:"journal"`
	Source   SourceKind `json:"source" yaml:"source"`

	URL        string `json:"url,omitempty" yaml:"url,omitempty"`
	DOI        string `json:"doi,omitempty" yaml:"doi,omitempty"`
	OpenAlexID string `json:"openalex_id,omitempty" yaml:"openalex_id,omitempty"`
	NBERNumber string `json:"nber_number,omitempty" yaml:"nber_number,omitempty"`
	OAURL      string `json:"oa_url,omitempty" yaml:"oa_url,omitempty"`

	// Published is the source-reported publication date, zero if unknown.
	Published time.Time `json:"published,omitempty" yaml:"published,omitempty"`

	// FirstSeen is the commit timestamp assigned by the store.
	FirstSeen time.Time `json:"first_seen" yaml:"first_seen"`

	// Scored reports whether the scorer has run for this paper.
	Scored bool `json:"scored" yaml:"scored"`

	// Score is the total relevance score; meaningful only when Scored.
	Score float64 `json:"score,omitempty" yaml:"score,omitempty"`

	// ScoreBreakdown records the per-dimension contributions behind Score.
	ScoreBreakdown Breakdown `json:"score_breakdown,omitempty" yaml:"score_breakdown,omitempty"`

	// PDFURL is the resolved open-access PDF URL, empty until resolution
	// succeeds.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// PDFSource names the resolution strategy that produced PDFURL
	// (e.g. "openalex", "unpaywall", "semantic_scholar", "nber").
	PDFSource string `json:"pdf_source,omitempty" yaml:"pdf_source,omitempty"`

	// ManualDownload is set when every resolution strategy was exhausted
	// without finding an open-access PDF. A later run may clear it.
	ManualDownload bool `json:"manual_download" yaml:"manual_download"`
}

// Text returns the title and abstract joined for keyword matching.
func (p *Paper) Text() string {
	if p.Abstract == "" {
		return p.Title
	}
	return p.Title + " " + p.Abstract
}

// JMPCandidate is one entry from the curated job-market-paper candidate list.
type JMPCandidate struct {
	// Name is the candidate's full name.
	Name string `json:"name" yaml:"name"`

	// School is the granting institution.
	School string `json:"school" yaml:"school"`

	// Fields lists the candidate's research fields.
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`

	// PaperTitle is the job market paper title when the list supplies it.
	PaperTitle string `json:"paper_title,omitempty" yaml:"paper_title,omitempty"`

	// PaperURL is a direct paper link when the list supplies one.
	PaperURL string `json:"paper_url,omitempty" yaml:"paper_url,omitempty"`

	// Website is the candidate's personal page.
	Website string `json:"website,omitempty" yaml:"website,omitempty"`
}
