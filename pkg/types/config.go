// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "litscout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourceConfig describes one configured paper source.
type SourceConfig struct {
	// Name is the human-readable source label (journal name, feed name).
	Name string `json:"name" yaml:"name"`

	// Kind selects the adapter: rss, openalex, nber, or jmp.
	Kind SourceKind `json:"kind" yaml:"kind"`

	// URL is the feed URL for rss/nber sources.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// OpenAlexID is the OpenAlex source ID for openalex sources
	// (e.g. "https://openalex.org/S23254222" or bare "S23254222").
	OpenAlexID string `json:"openalex_id,omitempty" yaml:"openalex_id,omitempty"`

	// Keywords enables free-text discovery mode for openalex sources:
	// when set and OpenAlexID is empty, the adapter searches these terms
	// instead of filtering by venue.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// CandidateFile is the curated candidate list path for jmp sources.
	CandidateFile string `json:"candidate_file,omitempty" yaml:"candidate_file,omitempty"`
}

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Sources lists the configured adapters, run in order.
	Sources []SourceConfig `json:"sources" yaml:"sources"`

	// LookbackDays is the default window length for a run (default 7).
	LookbackDays int `json:"lookback_days" yaml:"lookback_days"`

	// SourceDelay is the pause between consecutive sources (default 300ms),
	// a politeness measure toward shared publisher infrastructure.
	SourceDelay time.Duration `json:"source_delay" yaml:"source_delay"`

	// Email is sent as the OpenAlex mailto parameter for polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// MaxResults caps results per OpenAlex query page (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ScoringConfig holds the weight and keyword configuration for the scorer.
// Every dimension is all-or-nothing: a triggered dimension contributes its
// full weight, an untriggered one contributes zero.
type ScoringConfig struct {
	// Weights maps dimension names to point values. Known dimensions:
	// journal_top5, journal_top_field, journal_field, nber, jmp,
	// field_match, structural, novel_data, novel_measurement,
	// keyword_relevant. Missing entries default to zero.
	Weights map[string]float64 `json:"weights" yaml:"weights"`

	// Top5Journals, TopFieldJournals, and FieldJournals are the venue tier
	// sets matched exactly against a paper's journal label.
	Top5Journals     []string `json:"top5_journals" yaml:"top5_journals"`
	TopFieldJournals []string `json:"top_field_journals" yaml:"top_field_journals"`
	FieldJournals    []string `json:"field_journals" yaml:"field_journals"`

	// FieldKeywords maps field names (e.g. "labor") to trigger keyword
	// lists for the field_match dimension.
	FieldKeywords map[string][]string `json:"field_keywords" yaml:"field_keywords"`

	// StructuralKeywords triggers the structural dimension.
	StructuralKeywords []string `json:"structural_keywords" yaml:"structural_keywords"`

	// NovelDataKeywords triggers the novel_data dimension.
	NovelDataKeywords []string `json:"novel_data_keywords" yaml:"novel_data_keywords"`

	// NovelMeasurementKeywords triggers the novel_measurement dimension.
	NovelMeasurementKeywords []string `json:"novel_measurement_keywords" yaml:"novel_measurement_keywords"`

	// RelevanceKeywords triggers the keyword_relevant dimension.
	RelevanceKeywords []string `json:"relevance_keywords" yaml:"relevance_keywords"`
}

// Weight returns the configured weight for a dimension, zero if absent.
func (c ScoringConfig) Weight(dimension string) float64 {
	return c.Weights[dimension]
}

// PickConfig holds settings for selection.
type PickConfig struct {
	// Selected is the size of the top pick list (default 7).
	Selected int `json:"selected" yaml:"selected"`

	// RunnerUp is the size of the runner-up list (default 7).
	RunnerUp int `json:"runner_up" yaml:"runner_up"`
}

// ResolveConfig holds settings for the PDF resolution stage.
type ResolveConfig struct {
	HTTPConfig `yaml:",inline"`

	// StrategyTimeout bounds each individual lookup call (default 30s).
	StrategyTimeout time.Duration `json:"strategy_timeout" yaml:"strategy_timeout"`

	// Workers caps concurrent per-paper resolutions (default 3). Strategies
	// within one paper's chain always run sequentially.
	Workers int `json:"workers" yaml:"workers"`

	// SemanticScholarRate is requests per second against Semantic Scholar
	// (default 0.3, roughly the documented 100 requests per 5 minutes).
	SemanticScholarRate float64 `json:"semantic_scholar_rate" yaml:"semantic_scholar_rate"`

	// SemanticScholarAPIKey raises the Semantic Scholar rate limit when set.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// Email is sent to Unpaywall and OpenAlex as the contact parameter.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// RetryManual re-attempts papers previously flagged manual_download.
	// Open-access embargoes lift over time, so a failed chain is retryable.
	RetryManual bool `json:"retry_manual" yaml:"retry_manual"`

	// PapersDir is the directory PDFs are downloaded into when download
	// is requested (default "output/papers").
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`
}

// StoreConfig holds settings for the dedup store.
type StoreConfig struct {
	// Path is the SQLite database file (default "data/papers.db").
	Path string `json:"path" yaml:"path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
	Scoring ScoringConfig `json:"scoring" yaml:"scoring"`
	Pick    PickConfig    `json:"pick" yaml:"pick"`
	Resolve ResolveConfig `json:"resolve" yaml:"resolve"`
	Store   StoreConfig   `json:"store" yaml:"store"`
}
