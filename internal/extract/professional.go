package extract

import (
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/rx"
)

var (
	projectRes = []*rx.Regexp{
		rx.I(`\bmy (?:current )?project\s+(?:is\s+called|'?s\s+name\s+is|name\s+is|is\s+building)\s+(?:a\s+)?([A-Za-z][A-Za-z0-9+_.#\s-]{1,60}?)(?:\.|,|;|\s+for|\s+that|\s+to|\s*$)`),
		rx.I(`\bmy project focus\s+(?:has\s+)?shifted to\s+([A-Za-z][A-Za-z0-9+_.#\s-]{1,60}?)(?:\.|,|;|\s*$)`),
	}
	favoriteLanguageRes = []*rx.Regexp{
		rx.I(`\bmy favorite (?:programming )?language is\s+([A-Z][A-Za-z0-9+#]{1,20})\b`),
		rx.I(`\b([A-Z][A-Za-z0-9+#]{1,20})\s+is (?:actually )?my favorite (?:programming )?language`),
		rx.I(`\bi prefer\s+([A-Z][A-Za-z0-9+#]{1,20})\b`),
	}
	languageListRe = rx.I(`\b(?:(?:i|you|user|he|she|they) (?:use|uses|know|knows|works? with)|user knows)\s+([A-Z][A-Za-z0-9+#,\s&-]+?)(?:\s*$|\.|\!)`)
	previousJobRe  = rx.I(`\b(?:previously|formerly)\s+(?:at|worked at|employed by)\s+([A-Z][A-Za-z0-9\s&\-.]+?)(?:\s+and|\s+before|\.|,|;|\s*$)`)
	promotedRe     = rx.I(`\bpromoted to\s+([A-Z][A-Za-z\s]{2,40}?)(?:\.|,|;|\s+at|\s*$)`)
	proficiencyRe  = rx.I(`\b(?:expert|proficient|skilled|experienced)\s+(?:in|with)\s+([A-Z][A-Za-z0-9+#,\s&-]+?)(?:\s*$|\.|\!|,\s+and)`)
)

func extractProfessional(text string, facts *domain.Facts) {
	if m, ok := firstMatch(text, projectRes...); ok {
		put(facts, "project", strings.TrimSpace(m.Group(1)))
	}

	if m, ok := firstMatch(text, favoriteLanguageRes...); ok {
		put(facts, "programming_language", strings.TrimSpace(m.Group(1)))
	}

	// Lists such as "You use Python, JavaScript, and Go" stay one value; the
	// verifier splits them.
	if !facts.Has("programming_language") {
		if m, ok := rx.Find(languageListRe, text); ok {
			put(facts, "programming_language", strings.TrimSpace(m.Group(1)))
		}
	}

	if m, ok := rx.Find(previousJobRe, text); ok {
		put(facts, "previous_employer", strings.TrimSpace(m.Group(1)))
	}

	if m, ok := rx.Find(promotedRe, text); ok && !facts.Has("title") {
		put(facts, "title", strings.TrimSpace(m.Group(1)))
	}

	if m, ok := rx.Find(proficiencyRe, text); ok {
		put(facts, "skill", strings.TrimSpace(m.Group(1)))
	}
}
