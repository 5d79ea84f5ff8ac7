package extract

import (
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/rx"
)

const monthPrefix = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*`

var (
	ageRe         = rx.I(`\b(?:i'?m|i am|you are|you're|he is|she is|they are|user is|my age is|age[:\s]+is?)\s+(\d{1,3})\s*(?:years?\s*old)?(?:\b|$)`)
	birthdayRe    = rx.I(`\b(?:my birthday is|born on|date of birth[:\s]+is?|dob[:\s]+is?)\s+([A-Za-z0-9,\s/-]{4,30}?)(?:\.|;|\s+and|\s+in\s+[A-Z]|\s*$)`)
	birthYearRe   = rx.I(`\b(?:i was born|born)\s+in\s+(19\d{2}|20[0-2]\d)\b`)
	anniversaryRe = rx.I(`\b(?:our anniversary is|anniversary[:\s]+is?|married since|married in)\s+([A-Za-z0-9,\s/-]{3,30}?)(?:\.|;|\s*$)`)
	startDateRe   = rx.I(`\b(?:i |we )?(?:started|joined|began|commenced)\s+(?:the\s+)?(?:\w+\s+)?in\s+(` + monthPrefix + `\s+\d{4}|(?:19|20)\d{2})\b`)
	endDateRe     = rx.I(`\b(?:deadline|due date|end date|expires?|expir(?:es|ation)|ends)\s+(?:is\s+|on\s+|:?\s*)` +
		`(` + monthPrefix + `\s+\d{1,2}(?:,?\s*\d{4})?|\d{4}[-/]\d{2}[-/]\d{2}|\d{1,2}[-/]\d{1,2}[-/]\d{2,4})\b`)
	durationRe = rx.I(`\b(?:i'?ve been|been|i have been)\s+\w+(?:\s+\w+)?\s+for\s+(\d{1,3})\s+(years?|months?|weeks?|days?)\b`)

	salaryRe = rx.I(`\b(?:salary|income|pay|compensation|wage|i make|i earn)\s*(?:is|:|of)?\s*` +
		`[\$€£]?\s*(\d[\d,]*\.?\d*)\s*[kK]?(?:\s*(?:/\s*(?:year|yr|month|mo|hour|hr|annum))|` +
		`\s*(?:per|a)\s*(?:year|month|hour))?\b`)
	salaryAmount = rx.C(`[\$€£]?\s*\d[\d,]*\.?\d*\s*[kK]?`)
	budgetRe     = rx.I(`\bbudget\s*(?:is|:)\s*([\$€£]?\s*\d[\d,]*\.?\d*\s*[kKmMbB]?)\b`)
	heightRe     = rx.I(`\b(?:height\s*(?:is|:)\s*|i'?m\s+)(\d{1,2}'\d{1,2}"?|\d{1,3}\s*(?:cm|ft|feet|inches?))\b`)
	feetInchesRe = rx.C(`\b(\d)'(\d{1,2})"?\s*(?:tall)?\b`)
	weightRe     = rx.I(`\b(?:weight\s*(?:is|:)\s*|i?\s*weigh\s+)(\d{2,3})\s*(lbs?|kg|kilos?|pounds?|stone)?\b`)
	countRe      = rx.I(`\b(?:i|we)\s+have\s+(\d{1,4}|` + numberWordAlternation + `)\s+([a-z][a-z\s]{1,30}?)(?:\s+(?:and|but|in|on|at|that|which|running)|\.|,|;|\s*$)`)

	countedElsewhere = map[string]bool{
		"sibling": true, "child": true, "children": true, "kid": true, "language": true,
	}
	slotSpaces  = rx.C(`\s+`)
	slotInvalid = rx.C(`[^a-z0-9_]`)

	favoriteRe = rx.I(`\b(?:my|your|user'?s?|his|her|their)\s+favou?rite\s+([a-z][a-z\s]{0,20}?)\s+is\s+([^\n\r\.;,!\?]{2,60})`)
	reasonTail = rx.I(`\b(?:and|but|though|however|because)\b`)
	likesRe    = rx.I(`\bi (?:like|love|enjoy|am into|am a fan of)\s+([^\n\r\.;!\?]{2,60}?)(?:\.|;|!|\s*$)`)
	infinitive = rx.I(`^to\s+`)
	preferRe   = rx.I(`\bi prefer\s+([^\n\r\.;!\?]{2,60}?)(?:\s+over\s+([^\n\r\.;!\?]{2,60}))?(?:\.|;|!|\s*$)`)
	opinionRe  = rx.I(`\b(?:i think|i believe|in my opinion|i feel that|my view is)\s+([^\n\r\.;!\?]{5,120}?)(?:\.|;|!|\?|\s*$)`)
	goalRe     = rx.I(`\b(?:my goal is|i(?:'m| am) (?:trying|planning|working|aiming) to|` +
		`i plan to|i want to|my plan is to|i aim to|working towards?)\s+([^\n\r\.;!\?]{3,120}?)(?:\.|;|!|\s*$)`)
	dislikeRe = rx.I(`\b(?:i (?:don'?t|do not) like|i hate|i avoid|i can'?t stand|` +
		`i'm allergic to|allergic to|i'?m intolerant to)\s+([^\n\r\.;!\?]{2,80}?)(?:\.|;|!|\s*$)`)
	dietRe = rx.I(`\b(?:i'?m|i am|i eat)\s+(vegan|vegetarian|pescatarian|keto|paleo|` +
		`halal|kosher|gluten[- ]?free|dairy[- ]?free|lactose[- ]?free)\b`)
)

// slotName turns a free-form subject into a slot identifier.
func slotName(subject string) string {
	s := rx.Replace(slotSpaces, strings.ToLower(subject), "_")
	return rx.Replace(slotInvalid, s, "")
}

func extractAgeAndDates(text string, facts *domain.Facts) {
	if !facts.Has("age") {
		if m, ok := rx.Find(ageRe, text); ok {
			put(facts, "age", m.Group(1))
		}
	}

	if !facts.Has("birthday") {
		if m, ok := rx.Find(birthdayRe, text); ok {
			put(facts, "birthday", strings.TrimRight(strings.TrimSpace(m.Group(1)), ","))
		}
	}

	if !facts.Has("birth_year") {
		if m, ok := rx.Find(birthYearRe, text); ok {
			put(facts, "birth_year", m.Group(1))
		}
	}

	if !facts.Has("anniversary") {
		if m, ok := rx.Find(anniversaryRe, text); ok {
			put(facts, "anniversary", strings.TrimRight(strings.TrimSpace(m.Group(1)), ","))
		}
	}

	if !facts.Has("start_date") {
		if m, ok := rx.Find(startDateRe, text); ok {
			put(facts, "start_date", strings.TrimSpace(m.Group(1)))
		}
	}

	if !facts.Has("end_date") {
		if m, ok := rx.Find(endDateRe, text); ok {
			put(facts, "end_date", strings.TrimSpace(m.Group(1)))
		}
	}

	if !facts.Has("duration") {
		if m, ok := rx.Find(durationRe, text); ok {
			put(facts, "duration", m.Group(1)+" "+m.Group(2))
		}
	}
}

func extractQuantities(text string, facts *domain.Facts) {
	if !facts.Has("salary") {
		if m, ok := rx.Find(salaryRe, text); ok {
			if amount, ok := rx.Find(salaryAmount, strings.TrimSpace(m.Text)); ok {
				put(facts, "salary", strings.TrimSpace(amount.Text))
			}
		}
	}

	if !facts.Has("budget") {
		if m, ok := rx.Find(budgetRe, text); ok {
			put(facts, "budget", strings.TrimSpace(m.Group(1)))
		}
	}

	if !facts.Has("height") {
		if m, ok := firstMatch(text, heightRe, feetInchesRe); ok {
			put(facts, "height", strings.TrimSpace(m.Text))
		}
	}

	if !facts.Has("weight") {
		if m, ok := rx.Find(weightRe, text); ok {
			unit := m.Group(2)
			if unit == "" {
				unit = "lbs"
			}
			put(facts, "weight", strings.TrimSpace(m.Group(1)+" "+unit))
		}
	}

	// "I have 3 monitors", "we have five servers"
	for _, m := range rx.FindAll(countRe, text) {
		thing := strings.TrimSpace(m.Group(2))
		singular := strings.TrimRight(thing, "s")
		if countedElsewhere[singular] {
			continue
		}
		slot := slotName(strings.TrimSpace(singular))
		if slot == "" || facts.Has(slot) {
			continue
		}
		put(facts, slot, toNumber(strings.TrimSpace(m.Group(1)))+" "+thing)
	}
}

func extractPreferences(text string, facts *domain.Facts) {
	for _, m := range rx.FindAll(favoriteRe, text) {
		subject := strings.TrimSpace(m.Group(1))
		value := strings.TrimSpace(cutAt(reasonTail, strings.TrimSpace(m.Group(2))))
		slot := slotName("favorite_" + subject)
		if value != "" && !facts.Has(slot) {
			put(facts, slot, value)
		}
	}

	if !facts.Has("likes") {
		if m, ok := rx.Find(likesRe, text); ok {
			val := strings.TrimSpace(m.Group(1))
			if !rx.Test(infinitive, val) {
				put(facts, "likes", val)
			}
		}
	}

	if !facts.Has("preference") {
		if m, ok := rx.Find(preferRe, text); ok {
			preferred := strings.TrimSpace(m.Group(1))
			if !strings.Contains(strings.ToLower(preferred), "roast") {
				if m.Has(2) {
					preferred += " over " + strings.TrimSpace(m.Group(2))
				}
				put(facts, "preference", preferred)
			}
		}
	}

	if !facts.Has("opinion") {
		if m, ok := rx.Find(opinionRe, text); ok {
			put(facts, "opinion", strings.TrimSpace(m.Group(1)))
		}
	}

	if !facts.Has("goal") {
		if m, ok := rx.Find(goalRe, text); ok {
			put(facts, "goal", strings.TrimSpace(m.Group(1)))
		}
	}

	if !facts.Has("dislike") {
		if m, ok := rx.Find(dislikeRe, text); ok {
			put(facts, "dislike", strings.TrimSpace(m.Group(1)))
		}
	}

	if !facts.Has("diet") {
		if m, ok := rx.Find(dietRe, text); ok {
			put(facts, "diet", strings.TrimSpace(m.Group(1)))
		}
	}
}
