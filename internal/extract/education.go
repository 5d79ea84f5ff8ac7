package extract

import (
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/rx"
)

var (
	bothDegreesRe    = rx.I(`\bboth\s+my\s+(?:undergrad|undergraduate)(?:\s+degree)?\s+and\s+(?:my\s+)?master'?s(?:\s+degree)?\s+(?:were|was)?\s*(?:from|at)\s+([A-Z][A-Za-z .'-]{2,60})\b`)
	undergradRe      = rx.I(`\bundergraduate (?:degree )?was from\s+([A-Z][A-Za-z .'-]{2,60})\b`)
	mastersRe        = rx.I(`\bmaster'?s (?:degree )?.*?from\s+([A-Z][A-Za-z .'-]{2,60})\b`)
	graduationYearRe = rx.I(`\b(?:i\s+)?graduated\s+(?:from.*)?(?:in|from.*in)\s+(19\d{2}|20\d{2})\b`)
	graduatedFromRe  = rx.I(`\b(?:i\s+|you\s+)?graduated from\s+([A-Z][A-Za-z\s.'-]{1,50}?)(?:\s+in\s+\d{4}|\s+with|\.|,|;|\s+and|\s*$)`)
	studiedAtRe      = rx.I(`\b(?:i\s+|you\s+)?studied(?:\s+(?!at\b)[A-Za-z][A-Za-z\s]{0,40})?\s+at\s+([A-Z][A-Za-z\s.'-]{1,50}?)(?:\s+and|\.|,|;|\s*$)`)
	majorRe          = rx.I(`\b(?:degree|major)\s+in\s+([A-Z][A-Za-z\s]{2,40}?)(?:\s+from|\s+and|\s+with|\.|,|;|\s*$)`)
	studiedSubjectRe = rx.I(`\bstudied\s+(?!at\b)([A-Z][A-Za-z\s]{2,40}?)(?:\s+at|\s*$)`)
	minorRe          = rx.I(`\bminor\s+in\s+([A-Z][A-Za-z\s]{2,40}?)(?:\.|,|;|\s+and|\s*$)`)

	institutionWords = map[string]bool{
		"university": true, "college": true, "school": true, "institute": true,
	}
)

func extractEducation(text string, facts *domain.Facts) {
	// "both my undergrad and Master's were from MIT"
	if m, ok := rx.Find(bothDegreesRe, text); ok {
		if school := strings.TrimSpace(m.Group(1)); school != "" {
			put(facts, "undergrad_school", school)
			put(facts, "masters_school", school)
		}
	}
	if m, ok := rx.Find(undergradRe, text); ok {
		put(facts, "undergrad_school", strings.TrimSpace(m.Group(1)))
	}
	if m, ok := rx.Find(mastersRe, text); ok {
		put(facts, "masters_school", strings.TrimSpace(m.Group(1)))
	}

	if m, ok := rx.Find(graduationYearRe, text); ok {
		put(facts, "graduation_year", strings.TrimSpace(m.Group(1)))
	}

	if !facts.Has("school") {
		if m, ok := firstMatch(text, graduatedFromRe, studiedAtRe); ok {
			put(facts, "school", strings.TrimSpace(m.Group(1)))
		}
	}

	if m, ok := firstMatch(text, majorRe, studiedSubjectRe); ok {
		major := strings.TrimSpace(m.Group(1))
		if strings.HasPrefix(strings.ToLower(major), "at ") {
			major = strings.TrimSpace(major[3:])
		}
		if major != "" && !institutionWords[strings.ToLower(major)] {
			put(facts, "major", major)
		}
	}

	if m, ok := rx.Find(minorRe, text); ok {
		put(facts, "minor", strings.TrimSpace(m.Group(1)))
	}
}
