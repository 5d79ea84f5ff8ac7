package extract

import (
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/rx"
)

const (
	namePattern      = `([A-Za-z][A-Za-z'-]{1,40}(?:\s+[A-Za-z][A-Za-z'-]{1,40}){0,2})(?:(?:\s+and|\s+or|,|\.|;)|\s*$)`
	titleNamePattern = `([A-Z][A-Za-z'-]{1,40}(?:\s+[A-Z][A-Za-z'-]{1,40}){0,2})(?:(?:\s+and|\s+or|,|\.|;)|\s*$)`
	greetingWindow   = 80
)

var (
	nameStopwords = map[string]bool{
		"a": true, "an": true, "the": true, "ai": true, "back": true, "building": true,
		"build": true, "busy": true, "fine": true, "good": true, "great": true, "here": true,
		"help": true, "okay": true, "ok": true, "ready": true, "sorry": true, "sure": true,
		"tired": true, "trying": true, "working": true, "going": true, "to": true,
	}

	greetingFillers = map[string]bool{
		"there": true, "all": true, "everyone": true, "everybody": true,
		"folks": true, "team": true, "guys": true, "dear": true,
	}

	commonCompanies = map[string]bool{
		"microsoft": true, "google": true, "amazon": true, "apple": true,
		"facebook": true, "meta": true, "netflix": true,
	}

	otherNameRe = rx.I(`\b(?:your|user'?s) name is\s+` + titleNamePattern)
	greetingRe  = rx.C(`(?:^|\.\s+)(?:Hi|Hey|Hello|Yo|Howdy|Sup|Greetings)\s+([A-Z][A-Za-z'-]{1,40})(?:\s*[!,.\s]|$)`)
	callMeRe    = rx.I(`\bcall me\s+` + namePattern)
	notNameRe   = rx.C(`^\s*([A-Z][A-Za-z'-]{1,40})\s+not\s+([A-Z][A-Za-z'-]{1,40})\s*[\.!?]?\s*$`)
	myNameRe    = rx.I(`\bmy name is\s+` + namePattern + `\b`)
	imNameRe    = rx.C(`\bi\s*'?m\s+` + titleNamePattern)
	iAmNameRe   = rx.I(`\bi\s+am\s+` + titleNamePattern)
	bareImRe    = rx.I(`^\s*i\s*'?m\s+([a-z][a-z'-]{1,40})\s*[\.!?]?\s*$`)

	introRe          = rx.I(`\bI (?:am|'m) (?:a |an )?([^,]+?)\s+(?:from|in)\s+(.+?)(?:\.|$|,)`)
	introNonOccupied = []string{"going", "coming", "person", "student", "happy", "sad"}

	selfEmployedRe = rx.I(`\b(?:i work for myself|i'm self[- ]?employed|i am self[- ]?employed)`)
	runBusinessRe  = rx.I(`\bi run (?:a |an )?([^\n\r\.;,]+?)(?:\s+(?:called|and|but|,|\.|;)|\s*$)`)
	calledRe       = rx.C(`called\s+([A-Z][A-Za-z0-9\s&\-\.]+?)(?:\s+(?:and|but|,|\.|;\()|\s*$)`)

	employerPatterns = []*rx.Regexp{
		rx.I(`\b(?:i|you|user|he|she|they) (?:currently )?(?:work(?:s)? (?:at|for)|(?:is|am|are) employed by)\s+([A-Z][A-Za-z0-9\s&\-\.]+?)(?:(?:\s+as|\s+and|\s+but|\s+in|\s+on|\s+for|\s+with|\s+where|\s*,|\.|;|\s+previously)|\s*$)`),
		rx.I(`\band\s+work(?:s)? (?:at|for)\s+([A-Z][A-Za-z0-9\s&\-\.]+?)(?:(?:\s+as|\s+and|\s+but|\s+in|,|\.|;)|\s*$)`),
		rx.I(`\byou're working (?:at|for)\s+([A-Z][A-Za-z0-9\s&\-\.]+?)(?:(?:\s+as|\s+and|\s+but|,|\.|;)|\s*$)`),
		rx.I(`\b(?:user|he|she|they|i|you)\s+(?:is|am|are|was|were)\s+a\s+[A-Z][A-Za-z\s]+?\s+at\s+([A-Z][A-Za-z0-9\s&\-\.]+?)(?:\s+and|\s+in|,|\.|;|\s*$)`),
		rx.I(`\b[A-Z][a-z]+\s+(?:is|was)\s+a\s+[A-Z][A-Za-z\s]+?\s+at\s+([A-Z][A-Za-z0-9\s&\-\.]+?)(?:\s+and|\s+in|,|\.|;|\s*$)`),
		rx.I(`\b(?:my|your|the|their|his|her)\s+(?:role|position|job|career|work|time|gig|stint|things)\s+at\s+([A-Z][A-Za-z0-9\s&\-\.]+?)(?:\s+and|\s+but|\s+in|\s+is|\s+was|\s+has|,|\.|;|\?|!|\s*$)`),
		rx.I(`\b(?:started|joined|left|quit|resigned from|hired at|employed at|interning at|interned at)\s+([A-Z][A-Za-z0-9\s&\-\.]+?)(?:\s+and|\s+but|\s+in|\s+as|,|\.|;|\s*$)`),
	}
	employerTail = rx.I(`\b(?:as|and|but|in|though|however|previously)\b|[,\.;]`)

	asTitleRe    = rx.I(`\bas\s+(?:a\s+)?([A-Z][A-Za-z\s]+?)(?:\s+(?:and|but|in|at|graduated)|\s*$)`)
	myRoleRe     = rx.I(`\bmy (?:role|job title|title) is\s+([^\n\r\.;,]+)`)
	iAmARe       = rx.C(`\b(?:i am a|i'm a)\s+([A-Z][A-Za-z\s]+?)(?:\s+(?:by|at|for|and)|\s*$)`)
	thirdTitleRe = rx.I(`\b(?:user|he|she|they)\s+(?:is|was)\s+a\s+([A-Z][A-Za-z\s]+?)(?:\s+(?:at|for|in|and|with)|\.|,|;|\s*$)`)
	byTradeRe    = rx.C(`\b([A-Z][A-Za-z\s]+?)\s+by\s+(?:degree|trade|profession)`)
	titleTail    = rx.I(`\b(?:at|for|in|by)\b`)

	locationPatterns = []*rx.Regexp{
		rx.I(`\b(?:i|you|user|he|she|they) (?:lives?|resides?|moved to) in\s+(?:a\s+)?(?:\d+-bedroom\s+apartment\s+in\s+)?([A-Z][a-zA-Z .'-]+?)(?:\s+near|\s+with|\s+and|\.|,|;|\s*$)`),
		rx.I(`\b(?:i|you|user|he|she|they) moved to\s+([A-Z][a-zA-Z .'-]+?)(?:\s+near|\s+with|\s+and|\.|,|;|\s*$)`),
		rx.I(`\b(?:life|based|living|located|settling|settled)\s+in\s+([A-Z][a-zA-Z .'-]+?)(?:\s+near|\s+with|\s+and|\s+is|\s+has|\.|,|;|\?|!|\s*$)`),
	}
	workplaceLocationRe = rx.I(`\bworks? (?:at|for)\s+[A-Za-z0-9\s&\-\.]+?\s+in\s+([A-Z][a-zA-Z .'-]+?)(?:\s+near|\s+with|\s+and|\.|,|;|\s*$)`)
	leadingIn           = rx.I(`^\s*in\s+`)
	spatialTail         = rx.I(`\s+(?:near|with)\s+`)
	temporalTail        = rx.C(`\s+(?:and|last|this|on|during)\s+|\.|,`)

	programmingYearsRe = rx.I(`\b(?:i'?ve been programming for|i have been programming for)\s+(\d{1,3})\s+years\b`)
	firstLanguageRe    = rx.I(`\b(?:starting with|started with|my first (?:programming )?language was)\s+([A-Z][A-Za-z0-9+_.#-]{1,40})\b`)
	teamOfRe           = rx.I(`\bteam of\s+(\d{1,3})\b`)
	teamIsRe           = rx.I(`\bteam is\s+(\d{1,3})\b`)
	favoriteColorRe    = rx.I(`\bmy\s+favou?rite\s+colou?r\s+is\s+([^\n\r\.;,!\?]{2,60})`)
	continuationTail   = rx.I(`\b(?:and|but|though|however)\b`)
)

func hasStopword(name string) bool {
	for _, tok := range strings.Fields(name) {
		if nameStopwords[strings.ToLower(tok)] {
			return true
		}
	}
	return false
}

func extractName(text string, facts *domain.Facts) {
	if m, ok := rx.Find(otherNameRe, text); ok {
		name := strings.TrimSpace(m.Group(1))
		if name != "" && !nameStopwords[strings.ToLower(name)] {
			put(facts, "name", name)
		}
	}

	if !facts.Has("name") {
		if m, ok := rx.Find(greetingRe, rx.Slice(text, 0, greetingWindow)); ok {
			name := strings.TrimSpace(m.Group(1))
			lower := strings.ToLower(name)
			if !nameStopwords[lower] && !greetingFillers[lower] {
				put(facts, "name", name)
			}
		}
	}

	if !facts.Has("name") {
		if m, ok := rx.Find(callMeRe, text); ok {
			name := strings.TrimSpace(m.Group(1))
			if name != "" && !hasStopword(name) {
				put(facts, "name", name)
			}
		}
	}

	// "Nick not Ben"
	if !facts.Has("name") {
		if m, ok := rx.Find(notNameRe, text); ok {
			name := strings.TrimSpace(m.Group(1))
			if name != "" && !nameStopwords[strings.ToLower(name)] {
				put(facts, "name", name)
			}
		}
	}

	m, ok := firstMatch(text, myNameRe, imNameRe, iAmNameRe, bareImRe)
	if !ok {
		return
	}
	name := strings.TrimSpace(m.Group(1))
	trailing := strings.ToLower(strings.TrimLeft(rx.Slice(text, m.End, runeLen(text)), " \t\r\n"))
	if name != "" && !hasStopword(name) && !strings.HasPrefix(trailing, "to ") {
		put(facts, "name", name)
	}
}

// extractIntroduction handles "I am a Web Developer from Milwaukee".
func extractIntroduction(text string, facts *domain.Facts) {
	m, ok := rx.Find(introRe, text)
	if !ok {
		return
	}
	occ := strings.TrimSpace(m.Group(1))
	loc := strings.TrimSpace(m.Group(2))
	if runeLen(occ) > 2 && !containsAny(strings.ToLower(occ), introNonOccupied) {
		facts.Set(domain.ExtractedFact{Slot: "occupation", Value: occ, Normalized: strings.ToLower(occ), Source: SourcePattern})
	}
	if runeLen(loc) > 2 {
		facts.Set(domain.ExtractedFact{Slot: "location", Value: loc, Normalized: strings.ToLower(loc), Source: SourcePattern})
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func extractEmployer(text string, facts *domain.Facts) {
	if rx.Test(selfEmployedRe, text) {
		facts.Set(domain.ExtractedFact{Slot: "employer", Value: "self-employed", Normalized: "self-employed", Source: SourcePattern})
	}

	if m, ok := rx.Find(runBusinessRe, text); ok && !facts.Has("employer") {
		business := strings.TrimSpace(m.Group(1))
		if called, ok := rx.Find(calledRe, text); ok {
			business = strings.TrimSpace(called.Group(1))
		}
		if business != "" {
			facts.Set(domain.ExtractedFact{
				Slot:       "employer",
				Value:      "self-employed (" + business + ")",
				Normalized: normText(business),
				Source:     SourcePattern,
			})
		}
	}

	if facts.Has("employer") {
		return
	}
	m, ok := firstMatch(text, employerPatterns...)
	if !ok {
		return
	}
	if employer := strings.TrimSpace(cutAt(employerTail, m.Group(1))); employer != "" {
		put(facts, "employer", employer)
	}
}

func extractTitle(text string, facts *domain.Facts) {
	if m, ok := rx.Find(asTitleRe, text); ok {
		title := strings.TrimSpace(m.Group(1))
		if wordCount(title) <= 4 && !commonCompanies[strings.ToLower(title)] {
			put(facts, "title", title)
		}
	}
	if facts.Has("title") {
		return
	}

	m, ok := firstMatch(text, myRoleRe, iAmARe, thirdTitleRe, byTradeRe)
	if !ok {
		return
	}
	title := strings.TrimSpace(cutAt(titleTail, strings.TrimSpace(m.Group(1))))
	if title != "" && wordCount(title) <= 4 {
		put(facts, "title", title)
	}
}

func extractLocation(text string, facts *domain.Facts) {
	patterns := locationPatterns
	if facts.Has("employer") {
		patterns = append(patterns[:len(patterns):len(patterns)], workplaceLocationRe)
	}
	m, ok := firstMatch(text, patterns...)
	if !ok {
		return
	}
	loc := strings.TrimSpace(m.Group(1))
	loc = strings.TrimSpace(rx.Replace(leadingIn, loc, ""))
	loc = strings.TrimSpace(cutAt(spatialTail, loc))
	loc = strings.TrimSpace(cutAt(temporalTail, loc))
	if loc != "" {
		put(facts, "location", loc)
	}
}

// extractBackground covers programming history, team size and favourite
// colour.
func extractBackground(text string, facts *domain.Facts) {
	if m, ok := rx.Find(programmingYearsRe, text); ok {
		put(facts, "programming_years", atoiString(m.Group(1)))
	}

	if m, ok := rx.Find(firstLanguageRe, text); ok {
		put(facts, "first_language", strings.TrimSpace(m.Group(1)))
	}

	if m, ok := firstMatch(text, teamOfRe, teamIsRe); ok {
		put(facts, "team_size", atoiString(m.Group(1)))
	}

	if m, ok := rx.Find(favoriteColorRe, text); ok {
		color := strings.TrimSpace(cutAt(continuationTail, strings.TrimSpace(m.Group(1))))
		if color != "" {
			put(facts, "favorite_color", color)
		}
	}
}
