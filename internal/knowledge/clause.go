package knowledge

import (
	"strings"
	"unicode/utf8"

	"github.com/Harshitk-cp/groundcheck/internal/rx"
)

const minClauseLen = 5

var (
	clauseSplitter = rx.I(`(?:\.\s+)` +
		`|(?:;\s*)` +
		`|(?:,\s*(?:and|but|so|then|also|plus)\s+)` +
		`|(?:\s+(?:but|however|although|though|except)\s+)` +
		`|(?:\s+after\s+)` +
		`|(?:\s+before\s+)` +
		`|(?:\s+since\s+)` +
		`|(?:\n+)`)

	commaSplitter = rx.I(`,\s+`)

	skipPattern = rx.I(`^\s*(?:` +
		`(?:what|why|how|when|where|which|who|whose|whom)\s` +
		`|(?:i\s+(?:don'?t|do\s+not)\s+(?:know|think|remember|recall))` +
		`|(?:not\s+sure\s+(?:if|about|whether))` +
		`|(?:i\s+wonder)` +
		`|(?:maybe\s+we\s+should)` +
		`)`)

	negativeContext = rx.I(`\b(?:disaster|nightmare|mess|terrible|horrible|awful|broken|` +
		`fiasco|catastrophe|problem|problems|issue|issues|trouble|troubles|` +
		`pain|painful|buggy|unstable|unreliable|slow|bloated)\b`)
)

// SplitClauses breaks text into independent clauses. Sentence ends,
// semicolons, conjunctions after commas, contrastive and temporal connectives
// and newlines split first; bare commas split second. Fragments shorter than
// five characters are dropped. If nothing survives, the trimmed text is
// returned as the only clause.
func SplitClauses(text string) []string {
	var out []string
	for _, part := range rx.Split(clauseSplitter, text, -1) {
		for _, piece := range rx.Split(commaSplitter, part, -1) {
			piece = strings.TrimSpace(piece)
			if utf8.RuneCountInString(piece) >= minClauseLen {
				out = append(out, piece)
			}
		}
	}
	if len(out) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	return out
}

// IsSkipClause reports whether a clause is a question or a hedge that must
// not produce facts.
func IsSkipClause(clause string) bool {
	m, ok := rx.Find(skipPattern, clause)
	return ok && m.Start == 0
}

func hasNegativeContext(clause string) bool {
	return rx.Test(negativeContext, clause)
}
