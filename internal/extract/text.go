package extract

import (
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/rx"
)

var (
	memoryClaimPhrases = []string{
		"i remember",
		"i recall",
		"i have a memory",
		"i have it noted",
		"i have you down",
		"i have stored",
		"in my memory",
		"in my notes",
		"i've got it stored",
		"i've got you stored",
		"i've got it noted",
		"i've got you down",
	}

	memoryClaimLine = rx.I(`\b(i\s+(remember|recall)|i\s+have\s+(a\s+)?memory|i\s+have\s+it\s+noted|` +
		`i\s+have\s+you\s+down|i\s+have\s+stored|in\s+my\s+(memory|notes)|` +
		`i'?ve\s+got\s+(it|you)\s+(stored|noted|down))\b`)

	memoryFactLine = rx.I(`^\s*fact:\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*=\s*(.+?)\s*$`)

	questionPrefixes = []string{
		"what ", "where ", "when ", "why ", "how ", "who ", "which ",
		"do ", "does ", "did ", "can ", "could ", "should ", "would ",
		"is ", "are ", "am ", "was ", "were ", "tell me ",
	}
)

// NormalizeText lowercases text and folds whitespace runs into single spaces.
func NormalizeText(text string) string {
	return strings.ToLower(rx.CollapseSpace(text))
}

func normText(value string) string {
	return NormalizeText(value)
}

// HasMemoryClaim reports whether text asserts that something was remembered,
// e.g. "I remember you work at Google".
func HasMemoryClaim(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, p := range memoryClaimPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// IsMemoryClaimLine is the line-level variant of HasMemoryClaim used when
// stripping memory claims from a draft.
func IsMemoryClaimLine(line string) bool {
	return rx.Test(memoryClaimLine, line)
}

// ParseMemoryFact parses a structured "FACT: slot = value" memory. The slot
// is lowercased.
func ParseMemoryFact(text string) (slot, value string, ok bool) {
	m, found := rx.Find(memoryFactLine, text)
	if !found {
		return "", "", false
	}
	slot = strings.ToLower(strings.TrimSpace(m.Group(1)))
	value = strings.TrimSpace(m.Group(2))
	if slot == "" || value == "" {
		return "", "", false
	}
	return slot, value, true
}

// IsQuestion is a cheap interrogative check: any question mark or a leading
// question word.
func IsQuestion(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if strings.Contains(text, "?") {
		return true
	}
	lower := strings.ToLower(text)
	for _, p := range questionPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
