package knowledge

import (
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/rx"
)

const (
	copularHintConfidence     = 0.85
	copularFallbackConfidence = 0.75
)

type slotHint struct {
	slot     string
	patterns []*rx.Regexp
}

func hint(slot string, words ...string) slotHint {
	h := slotHint{slot: slot}
	for _, w := range words {
		h.patterns = append(h.patterns, rx.WordPattern(w))
	}
	return h
}

// Checked in order; the first hint word found before the copula wins.
var slotHints = []slotHint{
	hint("database", "database", "db", "data store", "datastore"),
	hint("backend_framework", "backend", "server", "api server", "web server"),
	hint("frontend_framework", "frontend", "front-end", "client", "ui framework"),
	hint("language", "language", "lang", "programming language"),
	hint("cloud_provider", "cloud", "hosting", "infrastructure", "infra"),
	hint("orchestration", "orchestration", "container orchestration"),
	hint("ci_cd", "ci", "cd", "ci/cd", "pipeline", "build system"),
	hint("message_queue", "queue", "message queue", "message broker", "broker"),
	hint("monitoring", "monitoring", "observability", "alerting", "logging"),
	hint("os", "os", "operating system", "distro", "distribution"),
	hint("auth", "auth", "authentication", "identity", "sso"),
	hint("editor", "editor", "ide"),
	hint("testing", "testing", "test framework", "test runner"),
	hint("vcs", "repo", "repository", "version control"),
	hint("api_style", "api", "api style"),
	hint("package_manager", "package manager"),
}

var (
	copulaPattern = rx.I(`\b(?:is|are|was|will\s+be)\b`)

	multiSlotTriggers = []string{
		"stack", "tech stack", "setup", "toolchain",
		"architecture", "infrastructure", "environment",
	}
)

// copularFacts handles verbless clauses such as "our database is Postgres".
// The first entity after the copula takes the hinted slot. Remaining
// entities keep their taxonomy slot, but only when a hint matched or the
// clause describes a whole stack; "your goal is to learn Rust" yields
// nothing.
func copularFacts(clause string, entities []Entity) []domain.KnowledgeFact {
	lower := string(lowerRunes(clause))
	var facts []domain.KnowledgeFact
	matched := make(map[int]bool)

	if cop, ok := rx.Find(copulaPattern, lower); ok {
		first := -1
		for i, ent := range entities {
			if ent.Start < cop.End-3 {
				continue
			}
			if first < 0 || ent.Start < entities[first].Start {
				first = i
			}
		}
		if first >= 0 {
			if slot, ok := hintedSlot(lower, cop.Start); ok {
				facts = append(facts, domain.KnowledgeFact{
					Slot:         slot,
					Value:        entities[first].Canonical,
					Confidence:   copularHintConfidence,
					VerbCategory: domain.VerbCopular,
					Temporal:     domain.TemporalCurrent,
					Clause:       clause,
				})
				matched[first] = true
			}
		}
	}

	if len(matched) == 0 && !hasStackTrigger(lower) {
		return facts
	}
	for i, ent := range entities {
		if matched[i] {
			continue
		}
		facts = append(facts, domain.KnowledgeFact{
			Slot:         ent.Slot,
			Value:        ent.Canonical,
			Confidence:   copularFallbackConfidence,
			VerbCategory: domain.VerbCopular,
			Temporal:     domain.TemporalCurrent,
			Clause:       clause,
		})
	}
	return facts
}

func hintedSlot(lower string, copulaStart int) (string, bool) {
	for _, h := range slotHints {
		for _, p := range h.patterns {
			if m, ok := rx.Find(p, lower); ok && m.Start < copulaStart {
				return h.slot, true
			}
		}
	}
	return "", false
}

func hasStackTrigger(lower string) bool {
	for _, t := range multiSlotTriggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
