package extract

import (
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/rx"
)

var (
	siblingsRe  = rx.I(`\bi have\s+(\d+|one|two|three|four|five|six|seven|eight|nine|ten)\s+sibling`)
	spokenRe    = rx.I(`\bi speak\s+(\d+|one|two|three|four|five|six|seven|eight|nine|ten)\s+language`)
	petNamedRe  = rx.I(`\bi have a\s+([a-z]+(?:\s+[a-z]+)?)\s+named\s+([A-Z][a-z]+)`)
	coffeeRes   = []*rx.Regexp{
		rx.I(`\bi prefer\s+(dark|light|medium)\s+roast`),
		rx.I(`\bmy coffee preference is\s+(dark|light|medium)\s+roast`),
		rx.I(`\bswitched to\s+(dark|light|medium)\s+roast`),
	}
	hobbyRes = []*rx.Regexp{
		rx.I(`\bmy (?:weekend )?hobby is\s+([a-z][a-z\s-]{2,40}?)(?:\.|,|;|\s*$)`),
		rx.I(`\b(?:you|user|i) (?:enjoy|love|like)(?:s)?\s+([a-z][a-z\s,\-]+?)(?:\s+and\s+you|\.|,\s+and\s+you|$)`),
		rx.I(`\bi enjoy\s+([a-z][a-z\s-]{2,40}?)(?:\.|,|;|\s*$)`),
		rx.I(`\btaken up\s+([a-z][a-z\s-]{2,40}?)(?:\s+instead|\.|,|;|\s*$)`),
	}
	bookRes = []*rx.Regexp{
		rx.I(`\bi'?m reading ['"]([^'"]{5,80})['"]`),
		rx.I(`\bnow reading ['"]([^'"]{5,80})['"]`),
	}
	childrenRe     = rx.I(`\b(?:with|have|has)\s+(\d+|one|two|three|four|five)\s+(?:kid|child|children)s?`)
	relationshipRe = rx.I(`\b(?:my|married to|with my)\s+(wife|husband|partner|spouse)`)
	phoneRe        = rx.I(`\b(?:phone number|phone|cell|mobile)(?:\s+is|\s+:)?\s+([0-9\-\(\)\s]{7,20})`)
	emailRe        = rx.I(`\b(?:email|e-mail)(?:\s+is|\s+:)?\s+([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)
)

func extractPersonal(text string, facts *domain.Facts) {
	if m, ok := rx.Find(siblingsRe, text); ok {
		put(facts, "siblings", toNumber(strings.TrimSpace(m.Group(1))))
	}
	if m, ok := rx.Find(spokenRe, text); ok {
		put(facts, "languages_spoken", toNumber(strings.TrimSpace(m.Group(1))))
	}

	if m, ok := rx.Find(petNamedRe, text); ok {
		put(facts, "pet", strings.TrimSpace(m.Group(1)))
		put(facts, "pet_name", strings.TrimSpace(m.Group(2)))
	}

	if m, ok := firstMatch(text, coffeeRes...); ok {
		put(facts, "coffee", strings.TrimSpace(m.Group(1))+" roast")
	}

	if m, ok := firstMatch(text, hobbyRes...); ok {
		put(facts, "hobby", strings.TrimSpace(m.Group(1)))
	}

	if m, ok := firstMatch(text, bookRes...); ok {
		put(facts, "book", strings.TrimSpace(m.Group(1)))
	}

	if m, ok := rx.Find(childrenRe, text); ok {
		put(facts, "children", toNumber(strings.TrimSpace(m.Group(1))))
	}

	if m, ok := rx.Find(relationshipRe, text); ok {
		put(facts, "relationship", strings.TrimSpace(m.Group(1)))
	}

	if m, ok := rx.Find(phoneRe, text); ok {
		put(facts, "phone", strings.TrimSpace(m.Group(1)))
	}

	if !facts.Has("email") {
		if m, ok := rx.Find(emailRe, text); ok {
			put(facts, "email", strings.TrimSpace(m.Group(1)))
		}
	}
}
