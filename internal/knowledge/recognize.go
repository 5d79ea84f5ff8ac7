package knowledge

import "github.com/Harshitk-cp/groundcheck/internal/domain"

// Entity is a taxonomy entity recognized in a clause.
type Entity struct {
	Canonical string
	Slot      string
	Exclusive bool
	Start     int
	End       int
}

// Verb is an ontology verb phrase recognized in a clause.
type Verb struct {
	Phrase     string
	Category   domain.VerbCategory
	Confidence float64
	Temporal   domain.Temporal
	Start      int
	End        int
}

func (v Verb) overlaps(start, end int) bool {
	return !(end <= v.Start || start >= v.End)
}

// gap is the number of runes between an entity and a verb, 0 if they touch
// or overlap.
func (v Verb) gap(e Entity) int {
	switch {
	case e.Start >= v.End:
		return e.Start - v.End
	case e.End <= v.Start:
		return v.Start - e.End
	default:
		return 0
	}
}

// Engine runs entity and verb recognition and fact inference over the
// injected tables.
type Engine struct {
	tables *Tables
}

func NewEngine(tables *Tables) *Engine {
	return &Engine{tables: tables}
}

// FindEntities returns the taxonomy entities in text in acceptance order.
func (e *Engine) FindEntities(text string) []Entity {
	matches := e.tables.entities.Match(text)
	out := make([]Entity, 0, len(matches))
	for _, m := range matches {
		out = append(out, Entity{
			Canonical: m.Value.Canonical,
			Slot:      m.Value.Slot,
			Exclusive: m.Value.Exclusive,
			Start:     m.Start,
			End:       m.End,
		})
	}
	return out
}

// FindVerbs returns the ontology verb phrases in text in acceptance order.
func (e *Engine) FindVerbs(text string) []Verb {
	matches := e.tables.verbs.Match(text)
	out := make([]Verb, 0, len(matches))
	for _, m := range matches {
		out = append(out, Verb{
			Phrase:     m.Phrase,
			Category:   m.Value.Category,
			Confidence: m.Value.Confidence,
			Temporal:   m.Value.Temporal,
			Start:      m.Start,
			End:        m.End,
		})
	}
	return out
}

// dropVerbOverlaps removes entities whose span overlaps any verb span, so
// "go" inside "go with" is not read as a language.
func dropVerbOverlaps(entities []Entity, verbs []Verb) []Entity {
	if len(verbs) == 0 {
		return entities
	}
	out := entities[:0:0]
	for _, ent := range entities {
		hit := false
		for _, v := range verbs {
			if v.overlaps(ent.Start, ent.End) {
				hit = true
				break
			}
		}
		if !hit {
			out = append(out, ent)
		}
	}
	return out
}
