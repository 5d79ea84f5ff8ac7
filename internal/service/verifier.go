package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/extract"
	"github.com/Harshitk-cp/groundcheck/internal/knowledge"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBatchConcurrency caps parallel Verify calls in VerifyBatch.
	DefaultBatchConcurrency = 4
	// findSupportFuzzyRatio is the text-level similarity FindSupport accepts
	// when no slot fact matches.
	findSupportFuzzyRatio = 0.6
)

// Verifier checks generated text against trust-scored memories. It holds no
// per-call state and is safe for concurrent use.
type Verifier struct {
	engine    *knowledge.Engine
	matcher   domain.ValueMatcher
	confirmer domain.ContradictionConfirmer
	timeout   time.Duration
	logger    *zap.Logger
}

// NewVerifier builds a verifier. engine may be nil, in which case only the
// pattern extractor is used.
func NewVerifier(engine *knowledge.Engine, logger *zap.Logger) *Verifier {
	return &Verifier{
		engine:  engine,
		timeout: DefaultCollaboratorTimeout,
		logger:  logger,
	}
}

// SetMatcher replaces the lexical matching chain. The lexical chain is still
// used whenever the matcher errors or times out.
func (v *Verifier) SetMatcher(m domain.ValueMatcher) {
	v.matcher = m
}

func (v *Verifier) SetConfirmer(c domain.ContradictionConfirmer) {
	v.confirmer = c
}

func (v *Verifier) SetCollaboratorTimeout(d time.Duration) {
	if d > 0 {
		v.timeout = d
	}
}

// extractFacts runs the pattern extractor and fills slots it missed from the
// knowledge engine.
func (v *Verifier) extractFacts(text string) *domain.Facts {
	facts := extract.Extract(text)
	if v.engine != nil {
		facts.Merge(v.engine.ExtractFacts(text))
	}
	return facts
}

// ExtractClaims returns the facts Verify would check for text.
func (v *Verifier) ExtractClaims(text string) *domain.Facts {
	return v.extractFacts(text)
}

// Extraction breaks the extracted facts of a text down by source.
type Extraction struct {
	Pattern           *domain.Facts          `json:"pattern"`
	Knowledge         *domain.Facts          `json:"knowledge"`
	KnowledgeDetailed []domain.KnowledgeFact `json:"knowledge_detailed"`
}

// Explain runs each extractor separately so callers can see where a fact
// came from.
func (v *Verifier) Explain(text string) *Extraction {
	out := &Extraction{
		Pattern:           extract.Extract(text),
		Knowledge:         domain.NewFacts(),
		KnowledgeDetailed: []domain.KnowledgeFact{},
	}
	if v.engine != nil {
		out.Knowledge = v.engine.ExtractFacts(text)
		if detailed := v.engine.Infer(text); detailed != nil {
			out.KnowledgeDetailed = detailed
		}
	}
	return out
}

// valueIndex maps normalized memory values of one slot to the memory that
// last stated them, remembering first-seen order.
type valueIndex struct {
	values []string
	ids    map[string]string
}

func (vi *valueIndex) add(norm, memoryID string) {
	if _, ok := vi.ids[norm]; !ok {
		vi.values = append(vi.values, norm)
	}
	vi.ids[norm] = memoryID
}

type memoryIndex map[string]*valueIndex

func (idx memoryIndex) add(slot, norm, memoryID string) {
	vi, ok := idx[slot]
	if !ok {
		vi = &valueIndex{ids: make(map[string]string)}
		idx[slot] = vi
	}
	vi.add(norm, memoryID)
}

func (idx memoryIndex) values(slot string) []string {
	if vi, ok := idx[slot]; ok {
		return vi.values
	}
	return nil
}

func (v *Verifier) buildIndex(memories []domain.Memory) memoryIndex {
	idx := make(memoryIndex)
	for _, m := range memories {
		if slot, value, ok := extract.ParseMemoryFact(m.Text); ok {
			idx.add(slot, extract.NormalizeText(value), m.ID)
		}
		for _, f := range v.extractFacts(m.Text).All() {
			for _, part := range extract.SplitCompoundValues(f.Value) {
				if norm := normalizeValue(part); norm != "" {
					idx.add(f.Slot, norm, m.ID)
				}
			}
		}
	}
	return idx
}

// memoryFor finds the memory that backs value among the supported values of a
// slot. Exact normalized keys win, then substring matches, then any memory
// of the slot.
func memoryFor(value string, vi *valueIndex) (string, bool) {
	if vi == nil || len(vi.values) == 0 {
		return "", false
	}
	norm := normalizeValue(value)
	if id, ok := vi.ids[norm]; ok {
		return id, true
	}
	for _, s := range vi.values {
		sn := normalizeValue(s)
		if norm == sn || strings.Contains(sn, norm) || strings.Contains(norm, sn) {
			if id, ok := vi.ids[sn]; ok {
				return id, true
			}
		}
	}
	return vi.ids[vi.values[0]], true
}

// isSupported asks the configured matcher, falling back to the lexical chain
// when it fails.
func (v *Verifier) isSupported(ctx context.Context, claim string, supported []string, slot string) bool {
	if len(supported) == 0 {
		return false
	}
	if v.matcher == nil {
		return lexicalMatch(claim, supported).Matched
	}
	if _, ok := v.matcher.(*LexicalMatcher); ok {
		return lexicalMatch(claim, supported).Matched
	}
	res, err := callWithTimeout(ctx, v.timeout, func(ctx context.Context) (domain.MatchResult, error) {
		return v.matcher.IsMatch(ctx, claim, supported, slot)
	})
	if err != nil {
		v.logger.Debug("value matcher failed, using lexical match",
			zap.String("slot", slot),
			zap.String("claim", claim),
			zap.Error(err))
		return lexicalMatch(claim, supported).Matched
	}
	return res.Matched
}

// Verify checks every fact stated in text against memories. It never fails:
// collaborator errors degrade to lexical matching.
func (v *Verifier) Verify(ctx context.Context, text string, memories []domain.Memory, mode domain.Mode) *domain.VerificationReport {
	report := domain.NewVerificationReport(text)
	if strings.TrimSpace(text) == "" {
		return report
	}

	contradictions := v.DetectContradictions(ctx, memories)
	report.ContradictionDetails = contradictions
	report.FactsExtracted = v.extractFacts(text)

	idx := v.buildIndex(memories)
	trustByID := make(map[string]float64, len(memories))
	for _, m := range memories {
		trustByID[m.ID] = m.Trust
	}

	for _, fact := range report.FactsExtracted.All() {
		slot := strings.ToLower(fact.Slot)
		supportSlot := slot
		supported := idx.values(supportSlot)
		if len(supported) == 0 {
			if canonical, ok := domain.CanonicalSlot(supportSlot); ok {
				if _, exists := idx[canonical]; exists {
					supportSlot = canonical
					supported = idx.values(canonical)
				}
			}
		}

		claims := extract.SplitCompoundValues(fact.Value)
		allSupported := true
		for _, claim := range claims {
			claimNorm := normalizeValue(claim)
			if claimNorm == "" {
				continue
			}
			if !v.isSupported(ctx, claim, supported, slot) {
				report.Hallucinations = append(report.Hallucinations, claim)
				allSupported = false
				continue
			}

			memoryID, found := memoryFor(claim, idx[supportSlot])
			supportingTrust := 1.0
			if found {
				if t, ok := trustByID[memoryID]; ok {
					supportingTrust = t
				}
			}

			c := contradictionForSlot(contradictions, supportSlot)
			contradicted := c != nil && c.HasValue(claimNorm)
			if contradicted && v.outweighed(claimNorm, supportingTrust, idx[supportSlot], trustByID) {
				v.logger.Debug("grounding rejected by higher-trust memory",
					zap.String("slot", supportSlot),
					zap.String("claim", claim),
					zap.Float64("supporting_trust", supportingTrust))
				report.Hallucinations = append(report.Hallucinations, claim)
				allSupported = false
				continue
			}
			if found {
				report.GroundingMap[claim] = memoryID
			}
			if contradicted {
				report.ContradictedClaims = append(report.ContradictedClaims, claim)
			}
		}
		if allSupported && len(claims) > 0 {
			report.FactsSupported.Set(fact)
		}
	}

	unsupported := domain.NewFacts()
	for _, f := range report.FactsExtracted.All() {
		if !report.FactsSupported.Has(f.Slot) {
			unsupported.Set(f)
		}
	}

	for _, claim := range report.ContradictedClaims {
		slot, ok := slotOfClaim(report.FactsExtracted, claim)
		if !ok {
			continue
		}
		c := contradictionForSlot(contradictions, slot)
		if c == nil || !requiresDisclosure(c) {
			continue
		}
		if !hasDisclosure(text, c) {
			expected := disclosureText(claim, c)
			report.RequiresDisclosure = true
			report.ExpectedDisclosure = &expected
			break
		}
	}

	report.Passed = len(report.Hallucinations) == 0 && !report.RequiresDisclosure
	report.Confidence = confidence(report, trustByID)

	if mode == domain.ModeStrict && !report.Passed {
		corrected := v.correct(correctionInput{
			text:               text,
			unsupported:        unsupported,
			supported:          report.FactsSupported,
			memories:           memories,
			contradictedClaims: report.ContradictedClaims,
			contradictions:     contradictions,
		})
		report.Corrected = &corrected
	}

	v.logger.Debug("verification complete",
		zap.Bool("passed", report.Passed),
		zap.Int("facts", report.FactsExtracted.Len()),
		zap.Int("hallucinations", len(report.Hallucinations)),
		zap.Int("contradictions", len(contradictions)))
	return report
}

// outweighed reports whether another value of the slot is held by a memory
// trusted at least TrustDifferenceThreshold more than the supporting one.
func (v *Verifier) outweighed(claimNorm string, supportingTrust float64, vi *valueIndex, trustByID map[string]float64) bool {
	if vi == nil {
		return false
	}
	for _, other := range vi.values {
		if other == claimNorm {
			continue
		}
		otherTrust, ok := trustByID[vi.ids[other]]
		if !ok {
			otherTrust = 1.0
		}
		if otherTrust-supportingTrust >= TrustDifferenceThreshold {
			return true
		}
	}
	return false
}

func slotOfClaim(facts *domain.Facts, claim string) (string, bool) {
	for _, f := range facts.All() {
		if f.Value == claim {
			return strings.ToLower(f.Slot), true
		}
		for _, part := range extract.SplitCompoundValues(f.Value) {
			if part == claim {
				return strings.ToLower(f.Slot), true
			}
		}
	}
	return "", false
}

// confidence averages the supported-fact ratio with the mean trust of the
// memories in the grounding map.
func confidence(r *domain.VerificationReport, trustByID map[string]float64) float64 {
	total := r.FactsExtracted.Len()
	if total == 0 {
		return 1.0
	}
	ratio := float64(r.FactsSupported.Len()) / float64(total)
	if len(r.GroundingMap) == 0 || len(trustByID) == 0 {
		return ratio
	}
	var sum float64
	n := 0
	for _, id := range r.GroundingMap {
		if t, ok := trustByID[id]; ok {
			sum += t
			n++
		}
	}
	if n == 0 {
		return ratio
	}
	return (ratio + sum/float64(n)) / 2.0
}

// FindSupport returns the first memory backing claim: a structured fact for
// the same slot, an extracted fact for the same slot, or text that contains
// or closely resembles the claimed value.
func (v *Verifier) FindSupport(ctx context.Context, claim domain.ExtractedFact, memories []domain.Memory) (*domain.Memory, bool) {
	claimNorm := normalizeValue(claim.Value)
	for i := range memories {
		m := &memories[i]
		if slot, value, ok := extract.ParseMemoryFact(m.Text); ok && slot == claim.Slot {
			if v.isSupported(ctx, claim.Value, []string{value}, slot) {
				return m, true
			}
		}
		if f, ok := v.extractFacts(m.Text).Get(claim.Slot); ok {
			if v.isSupported(ctx, claim.Value, extract.SplitCompoundValues(f.Value), claim.Slot) {
				return m, true
			}
		}
		if claimNorm == "" {
			continue
		}
		memNorm := normalizeValue(m.Text)
		if strings.Contains(memNorm, claimNorm) || fuzzyRatio(claimNorm, memNorm) > findSupportFuzzyRatio {
			return m, true
		}
	}
	return nil, false
}

// BuildGroundingMap maps each claim value to the id of its supporting memory.
// Claims without support are left out.
func (v *Verifier) BuildGroundingMap(ctx context.Context, claims *domain.Facts, memories []domain.Memory) map[string]string {
	out := make(map[string]string)
	for _, claim := range claims.All() {
		if m, ok := v.FindSupport(ctx, claim, memories); ok {
			out[claim.Value] = m.ID
		}
	}
	return out
}

// BatchItem is one independent verification request.
type BatchItem struct {
	Text     string          `json:"text"`
	Memories []domain.Memory `json:"memories"`
}

// VerifyBatch verifies items concurrently, at most concurrency at a time.
// Reports come back in input order. It only fails when ctx is cancelled.
func (v *Verifier) VerifyBatch(ctx context.Context, items []BatchItem, mode domain.Mode, concurrency int) ([]*domain.VerificationReport, error) {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	reports := make([]*domain.VerificationReport, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("verify item %d: %w", i, err)
			}
			reports[i] = v.Verify(gctx, item.Text, item.Memories, mode)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
