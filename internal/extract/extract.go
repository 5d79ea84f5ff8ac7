// Package extract pulls slot facts ("employer", "location", "database", ...)
// out of free text with a battery of surface patterns. Specific extractors
// run first and a generic "X is Y" pass fills in whatever slots remain.
package extract

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/rx"
)

// SourcePattern tags facts produced by Extract.
const SourcePattern = "pattern"

var structuredFact = rx.I(`\b(?:FACT|PREF):\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*=\s*(.+?)\s*$`)

// Extract returns the facts found in text, keyed by slot in the order they
// were first set. A structured "FACT: slot = value" or "PREF: slot = value"
// line short-circuits everything else.
func Extract(text string) *domain.Facts {
	facts := domain.NewFacts()
	if strings.TrimSpace(text) == "" {
		return facts
	}

	if m, ok := rx.Find(structuredFact, strings.TrimSpace(text)); ok {
		slot := strings.ToLower(strings.TrimSpace(m.Group(1)))
		value := strings.TrimSpace(m.Group(2))
		if slot != "" && value != "" {
			put(facts, slot, value)
			return facts
		}
	}

	extractName(text, facts)
	extractIntroduction(text, facts)
	extractEmployer(text, facts)
	extractTitle(text, facts)
	extractLocation(text, facts)
	extractBackground(text, facts)

	extractEducation(text, facts)
	extractPersonal(text, facts)
	extractProfessional(text, facts)

	extractAgeAndDates(text, facts)
	extractQuantities(text, facts)
	extractPreferences(text, facts)
	extractTechnical(text, facts)
	extractGeneral(text, facts)

	return facts
}

func put(facts *domain.Facts, slot, value string) {
	facts.Set(domain.ExtractedFact{
		Slot:       slot,
		Value:      value,
		Normalized: normText(value),
		Source:     SourcePattern,
	})
}

// firstMatch tries each pattern in turn.
func firstMatch(text string, patterns ...*rx.Regexp) (*rx.Match, bool) {
	for _, p := range patterns {
		if m, ok := rx.Find(p, text); ok {
			return m, true
		}
	}
	return nil, false
}

// cutAt returns the part of s before the first match of re.
func cutAt(re *rx.Regexp, s string) string {
	return rx.Split(re, s, 1)[0]
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

var numberWords = map[string]string{
	"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4", "five": "5",
	"six": "6", "seven": "7", "eight": "8", "nine": "9", "ten": "10",
	"eleven": "11", "twelve": "12", "thirteen": "13", "fourteen": "14",
	"fifteen": "15", "sixteen": "16", "seventeen": "17", "eighteen": "18",
	"nineteen": "19", "twenty": "20", "thirty": "30", "forty": "40",
	"fifty": "50", "sixty": "60", "seventy": "70", "eighty": "80",
	"ninety": "90", "hundred": "100",
}

// numberWordAlternation lists number words longest first so the regexp
// alternation never stops on a prefix.
const numberWordAlternation = `seventeen|thirteen|fourteen|eighteen|nineteen|fifteen|sixteen|` +
	`hundred|seventy|twelve|eleven|twenty|thirty|ninety|eighty|` +
	`forty|fifty|sixty|three|seven|eight|zero|four|five|nine|one|two|six|ten`

// toNumber maps a spelled-out number to digits and leaves anything else as is.
func toNumber(s string) string {
	if n, ok := numberWords[strings.ToLower(s)]; ok {
		return n
	}
	return s
}

func atoiString(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	return strconv.Itoa(n)
}
