package service

import (
	"context"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"go.uber.org/zap"
)

type slotContribution struct {
	value     string
	memoryID  string
	timestamp *int64
	trust     float64
}

// DetectContradictions groups the facts of every memory by slot and reports
// the slots holding more than one distinct value. Additive slots never
// conflict. Slots outside the known vocabulary are confirmed with the
// configured ContradictionConfirmer when there is one; if it fails the slot
// is still reported.
func (v *Verifier) DetectContradictions(ctx context.Context, memories []domain.Memory) []domain.ContradictionDetail {
	var order []string
	bySlot := make(map[string][]slotContribution)
	seen := make(map[string]map[[2]string]bool)

	for _, m := range memories {
		for _, f := range v.extractFacts(m.Text).All() {
			norm := normalizeValue(f.Value)
			if norm == "" {
				continue
			}
			key := [2]string{m.ID, norm}
			if seen[f.Slot] == nil {
				seen[f.Slot] = make(map[[2]string]bool)
				order = append(order, f.Slot)
			}
			if seen[f.Slot][key] {
				continue
			}
			seen[f.Slot][key] = true
			bySlot[f.Slot] = append(bySlot[f.Slot], slotContribution{
				value:     norm,
				memoryID:  m.ID,
				timestamp: m.Timestamp,
				trust:     m.Trust,
			})
		}
	}

	contradictions := []domain.ContradictionDetail{}
	for _, slot := range order {
		kind := domain.SlotKindOf(slot)
		if kind == domain.SlotAdditive {
			continue
		}
		entries := bySlot[slot]
		unique := uniqueValues(entries)
		if len(unique) < 2 {
			continue
		}
		if kind != domain.SlotExclusive && v.confirmer != nil && !v.confirm(ctx, unique[0], unique[1], slot) {
			continue
		}

		detail := domain.ContradictionDetail{Slot: slot}
		for _, e := range entries {
			detail.Values = append(detail.Values, e.value)
			detail.MemoryIDs = append(detail.MemoryIDs, e.memoryID)
			detail.Timestamps = append(detail.Timestamps, e.timestamp)
			detail.TrustScores = append(detail.TrustScores, e.trust)
		}
		if err := detail.Validate(); err != nil {
			panic(err)
		}
		v.logger.Debug("contradiction detected",
			zap.String("slot", slot),
			zap.Strings("values", unique),
			zap.Strings("memory_ids", detail.MemoryIDs))
		contradictions = append(contradictions, detail)
	}
	return contradictions
}

// confirm returns true unless the confirmer answers, in time, that the two
// values are compatible.
func (v *Verifier) confirm(ctx context.Context, a, b, slot string) bool {
	contradicts, err := callWithTimeout(ctx, v.timeout, func(ctx context.Context) (bool, error) {
		return v.confirmer.Check(ctx, a, b, slot)
	})
	if err != nil {
		v.logger.Debug("contradiction confirmer unavailable, keeping contradiction",
			zap.String("slot", slot),
			zap.Error(err))
		return true
	}
	return contradicts
}

func uniqueValues(entries []slotContribution) []string {
	seen := make(map[string]bool, len(entries))
	var out []string
	for _, e := range entries {
		if seen[e.value] {
			continue
		}
		seen[e.value] = true
		out = append(out, e.value)
	}
	return out
}

func contradictionForSlot(contradictions []domain.ContradictionDetail, slot string) *domain.ContradictionDetail {
	for i := range contradictions {
		if contradictions[i].Slot == slot {
			return &contradictions[i]
		}
	}
	return nil
}
