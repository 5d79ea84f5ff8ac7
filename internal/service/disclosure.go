package service

import (
	"fmt"
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/rx"
)

const (
	// TrustDifferenceThreshold is the trust gap at which the weaker side of a
	// contradiction is treated as noise.
	TrustDifferenceThreshold = 0.3
	// MinTrustForDisclosure is the trust both sides need before a
	// contradiction has to be disclosed.
	MinTrustForDisclosure = 0.75
)

var disclosureKeywords = func() []*rx.Regexp {
	words := []string{
		"changed from", "updated from", "previously", "was", "used to", "formerly",
		"switched from", "moved from", "before", "most recent", "latest", "now",
	}
	out := make([]*rx.Regexp, len(words))
	for i, w := range words {
		out[i] = rx.WordPattern(w)
	}
	return out
}()

var disclosureStructures = []*rx.Regexp{
	rx.I(`\(changed from .+?\)`),
	rx.I(`\(updated from .+?\)`),
	rx.I(`\(previously .+?\)`),
	rx.I(`, previously .+?[,.]`),
	rx.I(`used to be .+?[,.]`),
	rx.I(`was .+?, now`),
	rx.I(`formerly .+?[,.]`),
}

// requiresDisclosure reports whether both sides of c are credible enough that
// an answer using one of them must mention the conflict.
func requiresDisclosure(c *domain.ContradictionDetail) bool {
	lo, hi := c.TrustRange()
	if hi-lo >= TrustDifferenceThreshold {
		return false
	}
	return lo >= MinTrustForDisclosure
}

// hasDisclosure reports whether text acknowledges c, through a keyword, a
// structural cue such as "(changed from X)", or by naming two of the
// conflicting values.
func hasDisclosure(text string, c *domain.ContradictionDetail) bool {
	lower := strings.ToLower(text)
	for _, re := range disclosureKeywords {
		if rx.Test(re, lower) {
			return true
		}
	}
	for _, re := range disclosureStructures {
		if rx.Test(re, text) {
			return true
		}
	}

	var unique []string
	seen := make(map[string]bool)
	for _, v := range c.Values {
		n := normalizeValue(v)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		unique = append(unique, n)
	}
	if len(unique) < 2 {
		return false
	}
	mentioned := 0
	for _, v := range unique {
		if rx.Test(rx.C(`\b`+rx.Escape(v)+`\b`), lower) {
			mentioned++
		}
	}
	return mentioned >= 2
}

// disclosureText rewrites claim so it names the conflicting values, e.g.
// "Amazon (changed from microsoft)".
func disclosureText(claim string, c *domain.ContradictionDetail) string {
	claimLower := strings.ToLower(claim)
	var others []string
	for _, v := range c.Values {
		if v != claimLower {
			others = append(others, v)
		}
	}
	if len(others) == 0 {
		return claim
	}

	switch {
	case c.HasTimestamps() && c.MostRecentValue() == claimLower:
		return fmt.Sprintf("%s (changed from %s)", claim, others[0])
	case c.HasTimestamps(), len(others) == 1:
		return fmt.Sprintf("%s (previously %s)", claim, others[0])
	default:
		return fmt.Sprintf("%s (conflicting information: %s)", claim, strings.Join(others, ", "))
	}
}
