// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score computes the multi-dimensional relevance score for a paper.
// The model is a transparent additive one: each dimension is a boolean
// trigger that contributes its full configured weight or nothing, and the
// per-dimension breakdown is retained so a reader can audit why a paper
// scored as it did.
package score

import (
	"sort"
	"strings"

	"github.com/pdiddy/litscout/pkg/types"
)

// Dimension names. Weights for each come from ScoringConfig; a missing
// weight means the dimension contributes zero even when triggered.
const (
	DimJournalTop5      = "journal_top5"
	DimJournalTopField  = "journal_top_field"
	DimJournalField     = "journal_field"
	DimNBER             = "nber"
	DimJMP              = "jmp"
	DimFieldMatch       = "field_match"
	DimStructural       = "structural"
	DimNovelData        = "novel_data"
	DimNovelMeasurement = "novel_measurement"
	DimKeywordRelevant  = "keyword_relevant"
)

// Score evaluates every dimension against the paper and returns the total
// and the per-dimension breakdown. Only triggered dimensions appear in the
// breakdown. A paper with no title or abstract still scores on the
// structural dimensions (venue tier, source kind).
func Score(p *types.Paper, cfg types.ScoringConfig) (float64, types.Breakdown) {
	breakdown := types.Breakdown{}
	text := strings.ToLower(p.Text())

	// Venue tier: tiers are exclusive, highest wins.
	switch {
	case containsExact(cfg.Top5Journals, p.Journal):
		add(breakdown, DimJournalTop5, cfg)
	case containsExact(cfg.TopFieldJournals, p.Journal):
		add(breakdown, DimJournalTopField, cfg)
	case containsExact(cfg.FieldJournals, p.Journal):
		add(breakdown, DimJournalField, cfg)
	}

	// Source kind.
	if p.Source == types.SourceNBER {
		add(breakdown, DimNBER, cfg)
	}
	if p.Source == types.SourceJMP {
		add(breakdown, DimJMP, cfg)
	}

	// Text dimensions degrade to untriggered when no text is available.
	if text != "" {
		if anyFieldKeyword(text, cfg.FieldKeywords) {
			add(breakdown, DimFieldMatch, cfg)
		}
		if anyKeyword(text, cfg.StructuralKeywords) {
			add(breakdown, DimStructural, cfg)
		}
		if anyKeyword(text, cfg.NovelDataKeywords) {
			add(breakdown, DimNovelData, cfg)
		}
		if anyKeyword(text, cfg.NovelMeasurementKeywords) {
			add(breakdown, DimNovelMeasurement, cfg)
		}
		if anyKeyword(text, cfg.RelevanceKeywords) {
			add(breakdown, DimKeywordRelevant, cfg)
		}
	}

	return breakdown.Total(), breakdown
}

// Tags returns human-readable labels for the paper's triggered dimensions,
// used in selection output. Field tags list the individual matched fields.
func Tags(p *types.Paper, cfg types.ScoringConfig) []string {
	var tags []string
	text := strings.ToLower(p.Text())

	var fields []string
	for name, keywords := range cfg.FieldKeywords {
		if text != "" && anyKeyword(text, keywords) {
			fields = append(fields, prettyField(name))
		}
	}
	sort.Strings(fields)
	tags = append(tags, fields...)

	if text != "" && anyKeyword(text, cfg.StructuralKeywords) {
		tags = append(tags, "Structural")
	}
	if text != "" && anyKeyword(text, cfg.NovelDataKeywords) {
		tags = append(tags, "Novel Data")
	}
	if text != "" && anyKeyword(text, cfg.NovelMeasurementKeywords) {
		tags = append(tags, "Novel Measurement")
	}
	if containsExact(cfg.Top5Journals, p.Journal) {
		tags = append(tags, "Top 5")
	}
	if p.Source == types.SourceNBER {
		tags = append(tags, "NBER")
	}
	if p.Source == types.SourceJMP {
		tags = append(tags, "JMP")
	}
	return tags
}

func add(b types.Breakdown, dimension string, cfg types.ScoringConfig) {
	if w := cfg.Weight(dimension); w > 0 {
		b[dimension] = w
	}
}

func containsExact(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}

// anyKeyword reports whether any keyword occurs in text. Text is already
// lowercased; keywords are lowercased here.
func anyKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func anyFieldKeyword(text string, fields map[string][]string) bool {
	for _, keywords := range fields {
		if anyKeyword(text, keywords) {
			return true
		}
	}
	return false
}

func prettyField(name string) string {
	words := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
