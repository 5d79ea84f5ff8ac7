package service

import (
	"context"
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/rx"
	"github.com/pmezard/go-difflib/difflib"
)

const (
	// FuzzyMatchThreshold is the minimum SequenceMatcher ratio for a fuzzy match.
	FuzzyMatchThreshold = 0.85
	// TermOverlapThreshold is the share of claimed terms that must appear in a
	// supported value.
	TermOverlapThreshold = 0.7
)

const (
	MethodSynonym     = "synonym"
	MethodExact       = "exact"
	MethodFuzzy       = "fuzzy"
	MethodSubstring   = "substring"
	MethodTermOverlap = "term_overlap"
	MethodEmbedding   = "embedding"
)

var articleWords = rx.I(`\b(?:a|an|the)\b`)

// normalizeValue lowercases a value and drops articles so "The Stanford" and
// "stanford" compare equal.
func normalizeValue(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	v = rx.Replace(articleWords, v, "")
	return rx.CollapseSpace(v)
}

// fuzzyRatio is difflib's SequenceMatcher ratio computed over runes.
func fuzzyRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	return difflib.NewMatcher(runeStrings(a), runeStrings(b)).Ratio()
}

func runeStrings(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// termOverlap returns |claimed ∩ supported| / |claimed| over whitespace terms.
func termOverlap(claimed, supported string) float64 {
	claimedTerms := uniqueTerms(claimed)
	if len(claimedTerms) == 0 {
		return 0
	}
	supportedTerms := uniqueTerms(supported)
	shared := 0
	for t := range claimedTerms {
		if supportedTerms[t] {
			shared++
		}
	}
	return float64(shared) / float64(len(claimedTerms))
}

func uniqueTerms(s string) map[string]bool {
	out := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		out[t] = true
	}
	return out
}

// LexicalMatcher is the default ValueMatcher. It never fails and needs no
// external service.
type LexicalMatcher struct{}

func NewLexicalMatcher() *LexicalMatcher {
	return &LexicalMatcher{}
}

// IsMatch tries, per supported value: exact, substring in either direction,
// term overlap, then fuzzy ratio.
func (LexicalMatcher) IsMatch(_ context.Context, claimed string, supported []string, _ string) (domain.MatchResult, error) {
	return lexicalMatch(claimed, supported), nil
}

func lexicalMatch(claimed string, supported []string) domain.MatchResult {
	c := normalizeValue(claimed)
	if c == "" {
		return domain.MatchResult{}
	}
	for _, raw := range supported {
		s := normalizeValue(raw)
		if s == "" {
			continue
		}
		switch {
		case c == s:
			return domain.MatchResult{Matched: true, Method: MethodExact, Value: raw}
		case strings.Contains(s, c) || strings.Contains(c, s):
			return domain.MatchResult{Matched: true, Method: MethodSubstring, Value: raw}
		case termOverlap(c, s) >= TermOverlapThreshold:
			return domain.MatchResult{Matched: true, Method: MethodTermOverlap, Value: raw}
		case fuzzyRatio(c, s) >= FuzzyMatchThreshold:
			return domain.MatchResult{Matched: true, Method: MethodFuzzy, Value: raw}
		}
	}
	return domain.MatchResult{}
}
