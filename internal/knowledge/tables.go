package knowledge

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
)

//go:embed data/taxonomy.yaml data/ontology.yaml
var dataFS embed.FS

var (
	ErrDuplicateEntity = errors.New("entity listed in more than one taxonomy category")
	ErrDuplicateVerb   = errors.New("verb listed in more than one ontology category")
	ErrInvalidTable    = errors.New("invalid knowledge table")
)

const (
	defaultVerbConfidence = 0.80
	metaKey               = "_meta"
)

// EntityInfo is the taxonomy metadata attached to a recognized entity.
type EntityInfo struct {
	Canonical string
	Slot      string
	Exclusive bool
	Category  string
}

// VerbInfo is the ontology metadata attached to a recognized verb phrase.
type VerbInfo struct {
	Category   domain.VerbCategory
	Confidence float64
	Temporal   domain.Temporal
}

type taxonomyCategory struct {
	Slot      string   `yaml:"slot"`
	Exclusive *bool    `yaml:"exclusive"`
	Entities  []string `yaml:"entities"`
}

type ontologyCategory struct {
	Confidence *float64 `yaml:"confidence"`
	Temporal   string   `yaml:"temporal"`
	Verbs      []string `yaml:"verbs"`
}

// Tables holds the compiled entity taxonomy and verb ontology. Build it once
// and share it; it is never mutated after Load returns.
type Tables struct {
	entities *SpanMatcher[EntityInfo]
	verbs    *SpanMatcher[VerbInfo]
}

// Load compiles a taxonomy and an ontology document.
func Load(taxonomy, ontology []byte) (*Tables, error) {
	var tax map[string]taxonomyCategory
	if err := yaml.Unmarshal(taxonomy, &tax); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	var ont map[string]ontologyCategory
	if err := yaml.Unmarshal(ontology, &ont); err != nil {
		return nil, fmt.Errorf("parse ontology: %w", err)
	}

	entities, err := buildEntityPhrases(tax)
	if err != nil {
		return nil, err
	}
	verbs, err := buildVerbPhrases(ont)
	if err != nil {
		return nil, err
	}

	return &Tables{
		entities: NewSpanMatcher(entities),
		verbs:    NewSpanMatcher(verbs),
	}, nil
}

// LoadFiles reads the tables from disk. An empty path selects the embedded
// default for that table.
func LoadFiles(taxonomyPath, ontologyPath string) (*Tables, error) {
	tax, err := readTable(taxonomyPath, "data/taxonomy.yaml")
	if err != nil {
		return nil, err
	}
	ont, err := readTable(ontologyPath, "data/ontology.yaml")
	if err != nil {
		return nil, err
	}
	return Load(tax, ont)
}

// Default compiles the embedded tables.
func Default() (*Tables, error) {
	return LoadFiles("", "")
}

// MustLoad is Default for program start-up and tests.
func MustLoad() *Tables {
	t, err := Default()
	if err != nil {
		panic(fmt.Sprintf("load knowledge tables: %v", err))
	}
	return t
}

func (t *Tables) EntityCount() int { return t.entities.Len() }
func (t *Tables) VerbCount() int   { return t.verbs.Len() }

func readTable(path, embedded string) ([]byte, error) {
	if path == "" {
		b, err := dataFS.ReadFile(embedded)
		if err != nil {
			return nil, fmt.Errorf("read embedded %s: %w", embedded, err)
		}
		return b, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k == metaKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func buildEntityPhrases(tax map[string]taxonomyCategory) ([]Phrase[EntityInfo], error) {
	seen := make(map[string]string)
	var out []Phrase[EntityInfo]
	for _, name := range sortedKeys(tax) {
		cat := tax[name]
		if cat.Slot == "" {
			return nil, fmt.Errorf("%w: taxonomy category %q has no slot", ErrInvalidTable, name)
		}
		exclusive := true
		if cat.Exclusive != nil {
			exclusive = *cat.Exclusive
		}
		for _, e := range cat.Entities {
			e = strings.TrimSpace(e)
			if e == "" {
				continue
			}
			key := strings.ToLower(e)
			if prev, ok := seen[key]; ok {
				return nil, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateEntity, e, prev, name)
			}
			seen[key] = name
			out = append(out, Phrase[EntityInfo]{
				Text:  e,
				Value: EntityInfo{Canonical: e, Slot: cat.Slot, Exclusive: exclusive, Category: name},
			})
		}
	}
	return out, nil
}

func buildVerbPhrases(ont map[string]ontologyCategory) ([]Phrase[VerbInfo], error) {
	seen := make(map[string]string)
	var out []Phrase[VerbInfo]
	for _, name := range sortedKeys(ont) {
		cat := ont[name]
		confidence := defaultVerbConfidence
		if cat.Confidence != nil {
			confidence = *cat.Confidence
		}
		if confidence < 0 || confidence > 1 {
			return nil, fmt.Errorf("%w: ontology category %q confidence %v out of range", ErrInvalidTable, name, confidence)
		}
		temporal := domain.TemporalCurrent
		if cat.Temporal != "" {
			if !domain.ValidTemporal(cat.Temporal) {
				return nil, fmt.Errorf("%w: ontology category %q temporal %q", ErrInvalidTable, name, cat.Temporal)
			}
			temporal = domain.Temporal(cat.Temporal)
		}
		for _, v := range cat.Verbs {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" {
				continue
			}
			if prev, ok := seen[v]; ok {
				return nil, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateVerb, v, prev, name)
			}
			seen[v] = name
			out = append(out, Phrase[VerbInfo]{
				Text:  v,
				Value: VerbInfo{Category: domain.VerbCategory(name), Confidence: confidence, Temporal: temporal},
			})
		}
	}
	return out, nil
}
