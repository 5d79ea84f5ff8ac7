package extract

import (
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/rx"
)

const (
	// Values may contain periods ("99.9%", "api.example.com").
	valueChars = `[^\n\r;!\?]`
	// A period ends a value unless it follows a digit.
	valueEnd = `(?:(?<!\d)\.|;|!|\?|\s*$)`
)

var (
	subjectBlocklist = map[string]bool{
		"thing": true, "stuff": true, "problem": true, "issue": true, "point": true,
		"question": true, "answer": true, "fact": true, "truth": true, "reason": true,
		"way": true, "idea": true,
		"it": true, "this": true, "that": true, "he": true, "she": true, "they": true,
		"we": true, "you": true,
		"name": true, "age": true, "job": true, "role": true,
		"how": true, "what": true, "where": true, "when": true, "why": true, "who": true, "which": true,
	}

	declarativeClauseSplit = rx.I(`[;]|\s*,\s+(?=[a-z])`)
	subjectDeterminer      = rx.I(`^(?:my|your|our|his|her|their|the)\s+`)
	subjectSeparators      = rx.C(`['\s]+`)
	weakValueStart         = rx.I(`^(?:that|not|also|just|still|always|never|really|very)\b`)
	valueTail              = rx.I(`\b(?:and|but|so|though|because|however|which)\b`)

	// Each pattern captures (subject, value).
	subjectValuePatterns = []*rx.Regexp{
		// "the frontend is React"
		rx.I(`\b(?:my|the|our|his|her|their)\s+([a-z][a-z\s']{0,30}?)\s+(?:is|are|was|were)\s+(` + valueChars + `{1,80}?)` + valueEnd),
		// "Deployment is manual"
		rx.I(`(?:^|\.\s+)([A-Za-z][a-z]+(?:\s+[a-z]+){0,2})\s+(?:is|are|was|were)\s+(` + valueChars + `{1,80}?)` + valueEnd),
		// "the gateway handles auth"
		rx.I(`\b(?:the|our|my|their)?\s*([a-z][a-z\s']{0,30}?)\s+` +
			`(?:uses?|handles?|supports?|runs?|provides?|utilizes?|leverages?|relies on|is powered by|is built (?:with|on|using))\s+` +
			`(` + valueChars + `{1,80}?)` + valueEnd),
		// "the service requires Python 3.11"
		rx.I(`\b(?:the|our|my|their)?\s*([a-z][a-z\s']{0,30}?)\s+(?:requires?|needs?|demands?|mandates?|expects?)\s+` +
			`(` + valueChars + `{1,80}?)` + valueEnd),
	}

	decisionRe = rx.I(`\b(?:we|they|the team|I)\s+(?:agreed|decided|chose|committed|opted)\s+` +
		`(?:to\s+)?(?:use\s+|go with\s+|adopt\s+|implement\s+|switch to\s+)?` +
		`(` + valueChars + `{1,80}?)` + valueEnd)
	apiStyleHint     = rx.I(`REST|GraphQL|SOAP|gRPC`)
	architectureHint = rx.I(`arch|pattern|micro|mono`)

	settingPatterns = []*rx.Regexp{
		// "timeout should be 30s"
		rx.I(`\b(?:the|our|my|their)?\s*([a-z][a-z_\s]{1,25}?)\s+` +
			`(?:should\s+be|must\s+be|needs?\s+to\s+be|has\s+to\s+be|ought\s+to\s+be)\s+` +
			`(` + valueChars + `{1,60}?)` + valueEnd),
		// "log level is set to debug"
		rx.I(`\b([a-z][a-z_\s]{1,25}?)\s+is\s+(?:set to|configured (?:as|to)|currently)\s+(` + valueChars + `{1,60}?)` + valueEnd),
		// "auth is handled by Auth0"
		rx.I(`\b([a-z][a-z\s']{0,30}?)\s+is\s+(?:handled|managed|done|performed|implemented|achieved|provided)\s+` +
			`(?:via|by|through|using|with)\s+(` + valueChars + `{1,80}?)` + valueEnd),
		// "replicas = 3"
		rx.I(`\b([a-z][a-z_\s]{1,25}?)\s+(?:equals?|==?)\s+(` + valueChars + `{1,60}?)` + valueEnd),
	}
)

// extractGeneral is the catch-all pass for declarative claims. It only fills
// slots no specific extractor claimed. Compound sentences are split on
// semicolons and on commas followed by a new clause, so "the frontend is
// React, backend is FastAPI" yields two facts.
func extractGeneral(text string, facts *domain.Facts) {
	for _, clause := range rx.Split(declarativeClauseSplit, text, -1) {
		clause = strings.TrimSpace(clause)
		if runeLen(clause) < 5 {
			continue
		}

		for _, re := range subjectValuePatterns {
			for _, m := range rx.FindAll(re, clause) {
				storeDeclarative(facts, strings.TrimSpace(m.Group(1)), strings.TrimSpace(m.Group(2)))
			}
		}

		if m, ok := rx.Find(decisionRe, clause); ok {
			value := strings.TrimSpace(m.Group(1))
			switch {
			case rx.Test(apiStyleHint, value):
				storeDeclarative(facts, "api_style", value)
			case rx.Test(architectureHint, value):
				storeDeclarative(facts, "architecture", value)
			default:
				storeDeclarative(facts, "decision", value)
			}
		}

		for _, re := range settingPatterns {
			for _, m := range rx.FindAll(re, clause) {
				storeDeclarative(facts, strings.TrimSpace(m.Group(1)), strings.TrimSpace(m.Group(2)))
			}
		}
	}
}

func storeDeclarative(facts *domain.Facts, subject, value string) {
	subject = rx.Replace(subjectDeterminer, subject, "")
	slot := strings.Trim(rx.Replace(subjectSeparators, strings.ToLower(subject), "_"), "_")
	slot = rx.Replace(slotInvalid, slot, "")

	if value == "" || len(slot) < 2 {
		return
	}
	if facts.Has(slot) || subjectBlocklist[slot] {
		return
	}
	if rx.Test(weakValueStart, value) {
		return
	}
	if value = strings.TrimSpace(cutAt(valueTail, value)); value != "" {
		put(facts, slot, value)
	}
}
