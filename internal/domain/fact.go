package domain

import (
	"bytes"
	"encoding/json"
)

// ExtractedFact is a single slot assertion pulled from free text.
type ExtractedFact struct {
	Slot       string   `json:"slot"`
	Value      string   `json:"value"`
	Normalized string   `json:"normalized"`
	Confidence *float64 `json:"confidence,omitempty"`
	Source     string   `json:"source,omitempty"`
}

// Facts is a slot-keyed fact set that remembers insertion order so that
// every consumer iterates it deterministically.
type Facts struct {
	order []string
	index map[string]ExtractedFact
}

func NewFacts() *Facts {
	return &Facts{index: make(map[string]ExtractedFact)}
}

// Set stores f under its slot. Replacing an existing slot keeps its position.
func (fs *Facts) Set(f ExtractedFact) {
	if fs.index == nil {
		fs.index = make(map[string]ExtractedFact)
	}
	if _, ok := fs.index[f.Slot]; !ok {
		fs.order = append(fs.order, f.Slot)
	}
	fs.index[f.Slot] = f
}

// SetIfAbsent stores f only when its slot is not present yet.
func (fs *Facts) SetIfAbsent(f ExtractedFact) bool {
	if fs.Has(f.Slot) {
		return false
	}
	fs.Set(f)
	return true
}

func (fs *Facts) Get(slot string) (ExtractedFact, bool) {
	if fs == nil || fs.index == nil {
		return ExtractedFact{}, false
	}
	f, ok := fs.index[slot]
	return f, ok
}

func (fs *Facts) Has(slot string) bool {
	_, ok := fs.Get(slot)
	return ok
}

func (fs *Facts) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.order)
}

func (fs *Facts) Slots() []string {
	if fs == nil {
		return nil
	}
	out := make([]string, len(fs.order))
	copy(out, fs.order)
	return out
}

// All returns the facts in insertion order.
func (fs *Facts) All() []ExtractedFact {
	if fs == nil {
		return nil
	}
	out := make([]ExtractedFact, 0, len(fs.order))
	for _, slot := range fs.order {
		out = append(out, fs.index[slot])
	}
	return out
}

// Merge copies facts from other whose slots are not yet present.
func (fs *Facts) Merge(other *Facts) {
	for _, f := range other.All() {
		fs.SetIfAbsent(f)
	}
}

// Values maps slot to raw value.
func (fs *Facts) Values() map[string]string {
	out := make(map[string]string, fs.Len())
	for _, f := range fs.All() {
		out[f.Slot] = f.Value
	}
	return out
}

func (fs *Facts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fs.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Slot)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type VerbCategory string

const (
	VerbAdoption    VerbCategory = "adoption"
	VerbMigration   VerbCategory = "migration"
	VerbDeprecation VerbCategory = "deprecation"
	VerbTentative   VerbCategory = "tentative"
	VerbPreference  VerbCategory = "preference"
	VerbCapability  VerbCategory = "capability"
	VerbPlanning    VerbCategory = "planning"
	VerbCopular     VerbCategory = "copular"
	VerbAssertion   VerbCategory = "assertion"
)

type Temporal string

const (
	TemporalCurrent    Temporal = "current"
	TemporalPast       Temporal = "past"
	TemporalFuture     Temporal = "future"
	TemporalTransition Temporal = "transition"
)

func ValidTemporal(s string) bool {
	switch Temporal(s) {
	case TemporalCurrent, TemporalPast, TemporalFuture, TemporalTransition:
		return true
	}
	return false
}

// KnowledgeFact is a fact produced by the inference engine, before it is
// filtered and collapsed into ExtractedFacts.
type KnowledgeFact struct {
	Slot            string       `json:"slot"`
	Value           string       `json:"value"`
	Confidence      float64      `json:"confidence"`
	VerbCategory    VerbCategory `json:"verb_category"`
	Temporal        Temporal     `json:"temporal"`
	Clause          string       `json:"clause"`
	DeprecatedValue string       `json:"deprecated_value,omitempty"`
}
