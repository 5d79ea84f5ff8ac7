package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/embedding"
	"github.com/Harshitk-cp/groundcheck/internal/rx"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultEmbeddingThreshold is the cosine similarity an embedding match needs.
	DefaultEmbeddingThreshold = 0.85
	// semanticTermOverlap is looser than the lexical threshold because
	// normalization already removed most filler words.
	semanticTermOverlap = 0.67
)

type rewrite struct {
	re   *rx.Regexp
	repl string
}

// Paraphrase templates fold equivalent phrasings onto one canonical form.
var paraphraseRewrites = []rewrite{
	{rx.C(`\b(?:employed by|employed at|works for|working for|working at|works at|job at|employee of|employed with)\b`), "work at"},
	{rx.C(`\b(?:resides in|based in|located in|living in|moved to|relocated to)\b`), "live in"},
	{rx.C(`\b(?:graduated from|graduate from|studied at|study at|attended|went to|alumni of|alumnus of)\b`), "study at"},
	{rx.C(`\b(?:named|called|known as|goes by|my name is|name is)\b`), "named"},
	{rx.C(`\b(?:works as|working as|employed as|job is|role is|position is|title is)\b`), "role"},
	{rx.C(`\b(?:years old|year old|aged)\b`), "years old"},
	{rx.C(`\b(?:my|your|his|her|their|our|its)\b`), ""},
	{rx.C(`\b(?:a|an|the)\b`), ""},
	{rx.C(`\buniversity\b`), ""},
}

var abbreviations = []rewrite{
	{rx.C(`\bnyc\b`), "new york city"},
	{rx.C(`\bla\b`), "los angeles"},
	{rx.C(`\bsf\b`), "san francisco"},
	{rx.C(`\bdc\b`), "washington dc"},
	{rx.C(`\buk\b`), "united kingdom"},
	{rx.C(`\bus\b`), "united states"},
	{rx.C(`\busa\b`), "united states"},
	{rx.C(`\bml\b`), "machine learning"},
	{rx.C(`\bai\b`), "artificial intelligence"},
	{rx.C(`\bjs\b`), "javascript"},
	{rx.C(`\bts\b`), "typescript"},
	{rx.C(`\bpy\b`), "python"},
	{rx.C(`\bswe\b`), "software engineer"},
	{rx.C(`\bpm\b`), "product manager"},
	{rx.C(`\bds\b`), "data scientist"},
	{rx.C(`\bphd\b`), "doctorate"},
	{rx.C(`\bmit\b`), "massachusetts institute of technology"},
}

var nonAlphanumeric = rx.C(`[^a-z0-9\s]`)

// synonymGroups lists, per slot, a base phrase followed by its variants.
var synonymGroups = map[string][][]string{
	"employer": {
		{"works at", "employed by", "employed at", "job at", "works for", "working at", "working for", "employee of"},
	},
	"location": {
		{"lives in", "resides in", "based in", "located in", "living in", "moved to", "relocated to"},
		{"from", "originally from", "comes from", "hometown", "grew up in", "native of"},
	},
	"occupation": {
		{"software engineer", "swe", "software developer", "programmer", "coder", "dev"},
		{"data scientist", "ds", "ml engineer", "machine learning engineer"},
		{"product manager", "pm", "product lead"},
		{"teacher", "instructor", "educator", "professor", "lecturer"},
		{"doctor", "physician", "md", "medical doctor"},
		{"lawyer", "attorney", "legal counsel"},
	},
	"school": {
		{"studied at", "graduated from", "attended", "went to", "alumni of", "alumnus of"},
	},
	"degree": {
		{"bachelors", "ba", "bs", "b.a.", "b.s.", "bachelor of arts", "bachelor of science", "undergraduate degree"},
		{"masters", "ma", "ms", "m.a.", "m.s.", "master of arts", "master of science", "graduate degree"},
		{"phd", "ph.d.", "doctorate", "doctoral degree"},
	},
}

// SemanticMatcher is a ValueMatcher that understands paraphrases,
// abbreviations and per-slot synonyms. With an embedding client it also
// accepts values whose embeddings are close enough.
type SemanticMatcher struct {
	embeddings domain.EmbeddingClient
	threshold  float64
	synonyms   map[string][]map[string]bool
}

// NewSemanticMatcher builds a matcher. ec may be nil, which disables the
// embedding strategy.
func NewSemanticMatcher(ec domain.EmbeddingClient, threshold float64) *SemanticMatcher {
	if threshold <= 0 {
		threshold = DefaultEmbeddingThreshold
	}
	m := &SemanticMatcher{
		embeddings: ec,
		threshold:  threshold,
		synonyms:   make(map[string][]map[string]bool, len(synonymGroups)),
	}
	for slot, groups := range synonymGroups {
		for _, forms := range groups {
			set := make(map[string]bool, len(forms))
			for _, f := range forms {
				set[semanticNormalize(f)] = true
			}
			m.synonyms[slot] = append(m.synonyms[slot], set)
		}
	}
	return m
}

// semanticNormalize maps a phrase onto its canonical comparison form.
func semanticNormalize(text string) string {
	if text == "" {
		return ""
	}
	t := strings.ToLower(strings.TrimSpace(norm.NFKC.String(text)))
	for _, r := range paraphraseRewrites {
		t = rx.Replace(r.re, t, r.repl)
	}
	for _, r := range abbreviations {
		t = rx.Replace(r.re, t, r.repl)
	}
	t = rx.Replace(nonAlphanumeric, t, " ")
	return rx.CollapseSpace(t)
}

func (m *SemanticMatcher) synonymMatch(claimedNorm, supportedNorm, slot string) bool {
	for _, set := range m.synonyms[slot] {
		if set[claimedNorm] && set[supportedNorm] {
			return true
		}
	}
	return false
}

// IsMatch checks claimed against each supported value with synonym, exact,
// fuzzy, substring and term-overlap strategies, and only then tries
// embeddings. An embedding failure is returned as an error together with a
// negative result.
func (m *SemanticMatcher) IsMatch(ctx context.Context, claimed string, supported []string, slot string) (domain.MatchResult, error) {
	c := semanticNormalize(claimed)
	if c == "" {
		return domain.MatchResult{}, nil
	}
	slot = strings.ToLower(slot)

	for _, raw := range supported {
		s := semanticNormalize(raw)
		if s == "" {
			continue
		}
		if slot != "" && m.synonymMatch(c, s, slot) {
			return domain.MatchResult{Matched: true, Method: MethodSynonym, Value: raw}, nil
		}
		if c == s {
			return domain.MatchResult{Matched: true, Method: MethodExact, Value: raw}, nil
		}
		if fuzzyRatio(c, s) >= FuzzyMatchThreshold {
			return domain.MatchResult{Matched: true, Method: MethodFuzzy, Value: raw}, nil
		}
		if strings.Contains(s, c) || strings.Contains(c, s) {
			return domain.MatchResult{Matched: true, Method: MethodSubstring, Value: raw}, nil
		}
		if termOverlap(c, s) >= semanticTermOverlap {
			return domain.MatchResult{Matched: true, Method: MethodTermOverlap, Value: raw}, nil
		}
	}

	if m.embeddings == nil || len(supported) == 0 {
		return domain.MatchResult{}, nil
	}
	vecs, err := embedding.EmbedAll(ctx, m.embeddings, append([]string{claimed}, supported...))
	if err != nil {
		return domain.MatchResult{}, fmt.Errorf("embed values: %w", err)
	}
	for i, raw := range supported {
		if sim, ok := cosine(vecs[0], vecs[i+1]); ok && sim >= m.threshold {
			return domain.MatchResult{Matched: true, Method: MethodEmbedding, Value: raw}, nil
		}
	}
	return domain.MatchResult{}, nil
}

// Similarity scores two texts in [0, 1]: embedding cosine when a client is
// configured and answers, otherwise the fuzzy ratio of the normalized forms.
func (m *SemanticMatcher) Similarity(ctx context.Context, a, b string) float64 {
	if m.embeddings != nil {
		if vecs, err := embedding.EmbedAll(ctx, m.embeddings, []string{a, b}); err == nil {
			if sim, ok := cosine(vecs[0], vecs[1]); ok {
				return sim
			}
		}
	}
	return fuzzyRatio(semanticNormalize(a), semanticNormalize(b))
}

// cosine returns false for zero or mismatched vectors.
func cosine(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}
