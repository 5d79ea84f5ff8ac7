package knowledge

import (
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
)

const (
	// MinFactConfidence is the cutoff applied by ExtractFacts.
	MinFactConfidence = 0.40

	// SourceKnowledge tags facts produced by ExtractFacts.
	SourceKnowledge = "knowledge"

	negativeConfidence    = 0.60
	bareMentionConfidence = 0.50
)

// Infer runs the clause-by-clause inference pass and returns every fact it
// derives, low-confidence ones included.
func (e *Engine) Infer(text string) []domain.KnowledgeFact {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var all []domain.KnowledgeFact
	var prev *Verb

	for _, clause := range SplitClauses(text) {
		if IsSkipClause(clause) {
			prev = nil
			continue
		}

		verbs := e.FindVerbs(clause)
		entities := dropVerbOverlaps(e.FindEntities(clause), verbs)

		if len(entities) == 0 {
			if len(verbs) > 0 {
				v := verbs[0]
				prev = &v
			}
			continue
		}

		if len(verbs) == 0 {
			if hasNegativeContext(clause) {
				all = append(all, deprecatedFacts(clause, entities)...)
				prev = nil
				continue
			}
			all = append(all, inferVerbless(clause, entities, prev)...)
			continue
		}

		all = append(all, inferWithVerbs(clause, entities, verbs)...)
		v := verbs[0]
		prev = &v
	}
	return all
}

// ExtractFacts filters Infer's output to confident facts and keeps one per
// slot, preferring the most confident. Ties keep the earlier fact.
func (e *Engine) ExtractFacts(text string) *domain.Facts {
	out := domain.NewFacts()
	best := make(map[string]float64)
	for _, kf := range e.Infer(text) {
		if kf.Confidence < MinFactConfidence {
			continue
		}
		if c, ok := best[kf.Slot]; ok && kf.Confidence <= c {
			continue
		}
		best[kf.Slot] = kf.Confidence
		conf := kf.Confidence
		out.Set(domain.ExtractedFact{
			Slot:       kf.Slot,
			Value:      kf.Value,
			Normalized: strings.ToLower(kf.Value),
			Confidence: &conf,
			Source:     SourceKnowledge,
		})
	}
	return out
}

// deprecatedFacts marks every entity of a verbless negative clause as
// deprecated. The clause also breaks verb inheritance for what follows.
func deprecatedFacts(clause string, entities []Entity) []domain.KnowledgeFact {
	facts := make([]domain.KnowledgeFact, 0, len(entities))
	for _, ent := range entities {
		facts = append(facts, domain.KnowledgeFact{
			Slot:         ent.Slot,
			Value:        ent.Canonical,
			Confidence:   negativeConfidence,
			VerbCategory: domain.VerbDeprecation,
			Temporal:     domain.TemporalPast,
			Clause:       clause,
		})
	}
	return facts
}

func inferVerbless(clause string, entities []Entity, prev *Verb) []domain.KnowledgeFact {
	if facts := copularFacts(clause, entities); len(facts) > 0 {
		return facts
	}

	if prev != nil {
		return standardFacts(clause, *prev, entities)
	}

	facts := make([]domain.KnowledgeFact, 0, len(entities))
	for _, ent := range entities {
		facts = append(facts, domain.KnowledgeFact{
			Slot:         ent.Slot,
			Value:        ent.Canonical,
			Confidence:   bareMentionConfidence,
			VerbCategory: domain.VerbAssertion,
			Temporal:     domain.TemporalCurrent,
			Clause:       clause,
		})
	}
	return facts
}

func inferWithVerbs(clause string, entities []Entity, verbs []Verb) []domain.KnowledgeFact {
	var tentative *Verb
	var others []Verb
	for i := range verbs {
		if verbs[i].Category == domain.VerbTentative {
			if tentative == nil {
				tentative = &verbs[i]
			}
			continue
		}
		others = append(others, verbs[i])
	}

	// "considering switching to X": the other verb decides the mechanics,
	// the tentative verb decides confidence, tense and category.
	if tentative != nil && len(others) > 0 {
		var out []domain.KnowledgeFact
		for _, v := range others {
			override := v
			override.Confidence = tentative.Confidence
			override.Temporal = tentative.Temporal

			var facts []domain.KnowledgeFact
			if v.Category == domain.VerbMigration {
				facts = migrationFacts(clause, override, entities)
			} else {
				facts = standardFacts(clause, override, entities)
			}
			for i := range facts {
				facts[i].VerbCategory = domain.VerbTentative
				facts[i].Temporal = tentative.Temporal
			}
			out = append(out, facts...)
		}
		return out
	}

	var facts []domain.KnowledgeFact
	if len(verbs) > 1 {
		groups := make([][]Entity, len(verbs))
		for _, ent := range entities {
			best, bestGap := 0, -1
			for vi, v := range verbs {
				if g := v.gap(ent); bestGap < 0 || g < bestGap {
					best, bestGap = vi, g
				}
			}
			groups[best] = append(groups[best], ent)
		}
		for vi, v := range verbs {
			if len(groups[vi]) == 0 {
				continue
			}
			facts = append(facts, factsForVerb(clause, v, groups[vi])...)
		}
	} else {
		facts = factsForVerb(clause, verbs[0], entities)
	}
	return dedupeClause(facts)
}

func factsForVerb(clause string, v Verb, entities []Entity) []domain.KnowledgeFact {
	switch v.Category {
	case domain.VerbMigration:
		return migrationFacts(clause, v, entities)
	case domain.VerbDeprecation:
		return deprecationFacts(clause, v, entities)
	default:
		return standardFacts(clause, v, entities)
	}
}

// migrationFacts resolves source and target. One entity is the target.
// With more, "from" or "to" inside the verb phrase anchors the entity
// nearest the verb; otherwise the first entity after the verb is the target
// and the first one before it the source.
func migrationFacts(clause string, v Verb, entities []Entity) []domain.KnowledgeFact {
	var from, to *Entity

	switch {
	case len(entities) == 1:
		to = &entities[0]
	case len(entities) >= 2:
		switch {
		case strings.Contains(v.Phrase, "from"):
			from = nearestTo(entities, v)
			to = firstOther(entities, from)
		case strings.Contains(v.Phrase, "to"):
			to = nearestTo(entities, v)
			from = firstOther(entities, to)
		default:
			for i := range entities {
				if entities[i].Start > v.End {
					to = &entities[i]
					break
				}
			}
			if to == nil {
				to = &entities[len(entities)-1]
			}
			for i := range entities {
				if entities[i].End < v.Start && &entities[i] != to {
					from = &entities[i]
					break
				}
			}
		}
	}

	var facts []domain.KnowledgeFact
	if to != nil {
		f := domain.KnowledgeFact{
			Slot:         to.Slot,
			Value:        to.Canonical,
			Confidence:   v.Confidence,
			VerbCategory: v.Category,
			Temporal:     domain.TemporalCurrent,
			Clause:       clause,
		}
		if from != nil {
			f.DeprecatedValue = from.Canonical
		}
		facts = append(facts, f)
	}
	if from != nil {
		facts = append(facts, domain.KnowledgeFact{
			Slot:         from.Slot,
			Value:        from.Canonical,
			Confidence:   v.Confidence,
			VerbCategory: domain.VerbDeprecation,
			Temporal:     domain.TemporalPast,
			Clause:       clause,
		})
	}
	return facts
}

func nearestTo(entities []Entity, v Verb) *Entity {
	best := 0
	bestDist := absInt(entities[0].Start - v.End)
	for i := 1; i < len(entities); i++ {
		if d := absInt(entities[i].Start - v.End); d < bestDist {
			best, bestDist = i, d
		}
	}
	return &entities[best]
}

func firstOther(entities []Entity, not *Entity) *Entity {
	for i := range entities {
		if &entities[i] != not {
			return &entities[i]
		}
	}
	return nil
}

func deprecationFacts(clause string, v Verb, entities []Entity) []domain.KnowledgeFact {
	facts := make([]domain.KnowledgeFact, 0, len(entities))
	for _, ent := range entities {
		facts = append(facts, domain.KnowledgeFact{
			Slot:         ent.Slot,
			Value:        ent.Canonical,
			Confidence:   v.Confidence,
			VerbCategory: v.Category,
			Temporal:     domain.TemporalPast,
			Clause:       clause,
		})
	}
	return facts
}

func standardFacts(clause string, v Verb, entities []Entity) []domain.KnowledgeFact {
	facts := make([]domain.KnowledgeFact, 0, len(entities))
	for _, ent := range entities {
		facts = append(facts, domain.KnowledgeFact{
			Slot:         ent.Slot,
			Value:        ent.Canonical,
			Confidence:   v.Confidence,
			VerbCategory: v.Category,
			Temporal:     v.Temporal,
			Clause:       clause,
		})
	}
	return facts
}

// dedupeClause drops standalone deprecation and adoption facts that a
// migration fact in the same clause already covers.
func dedupeClause(facts []domain.KnowledgeFact) []domain.KnowledgeFact {
	targets := make(map[string]bool)
	deprecated := make(map[string]bool)
	for _, f := range facts {
		if f.VerbCategory != domain.VerbMigration {
			continue
		}
		targets[f.Value] = true
		if f.DeprecatedValue != "" {
			deprecated[f.DeprecatedValue] = true
		}
	}
	if len(targets) == 0 && len(deprecated) == 0 {
		return facts
	}

	out := facts[:0:0]
	for _, f := range facts {
		switch f.VerbCategory {
		case domain.VerbDeprecation:
			if deprecated[f.Value] || targets[f.Value] {
				continue
			}
		case domain.VerbAdoption:
			if targets[f.Value] {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
