package service

import (
	"fmt"
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/extract"
	"github.com/Harshitk-cp/groundcheck/internal/rx"
)

// correctionInput carries what Verify learned about the text.
type correctionInput struct {
	text               string
	unsupported        *domain.Facts
	supported          *domain.Facts
	memories           []domain.Memory
	contradictedClaims []string
	contradictions     []domain.ContradictionDetail
}

// correct rewrites text so it only states what memories support, then marks
// contradicted claims with the conflicting values.
func (v *Verifier) correct(in correctionInput) string {
	corrected := in.text
	if in.unsupported.Len() > 0 {
		if extract.HasMemoryClaim(in.text) {
			corrected = sanitizeMemoryClaims(corrected, in.unsupported)
		} else {
			corrected = v.replaceUnsupported(corrected, in.unsupported, in.supported, in.memories)
		}
	}

	for _, claim := range in.contradictedClaims {
		norm := normalizeValue(claim)
		for i := range in.contradictions {
			c := &in.contradictions[i]
			if c.HasValue(norm) {
				corrected = strings.ReplaceAll(corrected, claim, disclosureText(claim, c))
				break
			}
		}
	}
	return corrected
}

// replaceUnsupported swaps each unsupported value for the supported value of
// the same slot, taken from the text itself or from the first memory that
// states that slot.
func (v *Verifier) replaceUnsupported(text string, unsupported, supported *domain.Facts, memories []domain.Memory) string {
	for _, bad := range unsupported.All() {
		if good, ok := supported.Get(bad.Slot); ok {
			text = strings.ReplaceAll(text, bad.Value, good.Value)
			continue
		}
		for _, m := range memories {
			if good, ok := v.extractFacts(m.Text).Get(bad.Slot); ok {
				text = strings.ReplaceAll(text, bad.Value, good.Value)
				break
			}
		}
	}
	return text
}

// sanitizeMemoryClaims drops every line that claims to remember something or
// repeats an unsupported value, and appends a disclaimer for the first
// unsupported slot.
func sanitizeMemoryClaims(text string, unsupported *domain.Facts) string {
	var bad []*rx.Regexp
	for _, f := range unsupported.All() {
		if f.Value != "" {
			bad = append(bad, rx.I(rx.Escape(f.Value)))
		}
	}

	var kept []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if extract.IsMemoryClaimLine(line) || matchesAny(bad, line) {
			continue
		}
		kept = append(kept, line)
	}
	cleaned := strings.TrimSpace(strings.Join(kept, "\n"))

	disclaimer := fmt.Sprintf(
		"I don't have reliable stored information for your %s yet. If you tell me, I can store it going forward.",
		unsupported.Slots()[0])
	if cleaned == "" {
		return disclaimer
	}
	return cleaned + "\n\n" + disclaimer
}

func matchesAny(res []*rx.Regexp, s string) bool {
	for _, re := range res {
		if rx.Test(re, s) {
			return true
		}
	}
	return false
}
