package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/JingYue2000/ChainForge/internal/domain"
	"github.com/JingYue2000/ChainForge/internal/ports"
)

var (
	_ ports.ItemFilter = (*SubstringFilter)(nil)
	_ ports.ItemFilter = (*FuzzyFilter)(nil)

	// foldCaser is a package-level Unicode case folder for performance.
	foldCaser = cases.Fold()
)

// SubstringFilter keeps items whose text contains the query, preserving
// item order. Matching is Unicode case-folded unless case sensitivity is
// requested. Image items match against their encoded payload.
type SubstringFilter struct {
	query         string
	foldedQuery   string
	caseSensitive bool
}

// NewSubstringFilter creates a substring filter for the given query.
// Returns ErrEmptyQuery if the query is empty.
func NewSubstringFilter(query string, caseSensitive bool) (*SubstringFilter, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	return &SubstringFilter{
		query:         query,
		foldedQuery:   foldCaser.String(query),
		caseSensitive: caseSensitive,
	}, nil
}

// Filter returns the matching items in their original order.
// The input slice is never modified.
func (f *SubstringFilter) Filter(items []domain.ResponseItem) []domain.ResponseItem {
	matched := make([]domain.ResponseItem, 0, len(items))
	for _, item := range items {
		if f.matches(item.Text) {
			matched = append(matched, item)
		}
	}
	return matched
}

func (f *SubstringFilter) matches(text string) bool {
	if f.caseSensitive {
		return strings.Contains(text, f.query)
	}
	return strings.Contains(foldCaser.String(text), f.foldedQuery)
}

// FuzzyFilterConfig defines the configuration for a FuzzyFilter.
type FuzzyFilterConfig struct {
	// Query is the search text items are compared against.
	Query string `yaml:"query" json:"query" validate:"required"`

	// Threshold is the minimum similarity (0.0-1.0) for an item to pass.
	Threshold float64 `yaml:"threshold" json:"threshold" validate:"min=0.0,max=1.0"`

	// CaseSensitive determines whether comparison is case-sensitive.
	// When false, both strings are case-folded before comparison.
	CaseSensitive bool `yaml:"case_sensitive" json:"case_sensitive"`
}

// DefaultFuzzyFilterConfig returns a FuzzyFilterConfig with sensible
// defaults: case-insensitive matching at a 0.8 similarity threshold.
func DefaultFuzzyFilterConfig() FuzzyFilterConfig {
	return FuzzyFilterConfig{Threshold: 0.8}
}

// FuzzyFilter keeps items whose text is similar to the query under the
// Levenshtein distance, preserving item order. Similarity is normalized
// edit distance: 1 - distance/maxRuneLen.
//
// The filter is stateless and safe for concurrent use.
type FuzzyFilter struct {
	config      FuzzyFilterConfig
	foldedQuery string
}

// NewFuzzyFilter creates a fuzzy filter with validated configuration.
func NewFuzzyFilter(config FuzzyFilterConfig) (*FuzzyFilter, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &FuzzyFilter{
		config:      config,
		foldedQuery: foldCaser.String(config.Query),
	}, nil
}

// Filter returns the items whose similarity to the query meets the
// threshold, in their original order. The input slice is never modified.
func (f *FuzzyFilter) Filter(items []domain.ResponseItem) []domain.ResponseItem {
	matched := make([]domain.ResponseItem, 0, len(items))
	for _, item := range items {
		if f.similarity(item.Text) >= f.config.Threshold {
			matched = append(matched, item)
		}
	}
	return matched
}

// similarity computes the normalized Levenshtein similarity between the
// query and the given text. Returns a value between 0.0 and 1.0 where
// 1.0 indicates identical strings.
func (f *FuzzyFilter) similarity(text string) float64 {
	query := f.config.Query
	if !f.config.CaseSensitive {
		query = f.foldedQuery
		text = foldCaser.String(text)
	}

	if query == text {
		return 1.0
	}

	// The levenshtein library operates on runes, so the maximum possible
	// distance must use rune counts for consistency.
	distance := levenshtein.ComputeDistance(query, text)
	maxLen := utf8.RuneCountInString(query)
	if n := utf8.RuneCountInString(text); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}

	similarity := 1.0 - float64(distance)/float64(maxLen)
	if similarity < 0 {
		similarity = 0
	}
	return similarity
}
