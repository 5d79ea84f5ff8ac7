package domain

import "fmt"

// ContradictionDetail records the memories that disagree on one slot. The
// four slices are parallel: index i describes a single memory's contribution.
type ContradictionDetail struct {
	Slot        string    `json:"slot"`
	Values      []string  `json:"values"`
	MemoryIDs   []string  `json:"memory_ids"`
	Timestamps  []*int64  `json:"timestamps"`
	TrustScores []float64 `json:"trust_scores"`
}

func (c *ContradictionDetail) Validate() error {
	n := len(c.Values)
	if len(c.MemoryIDs) != n || len(c.Timestamps) != n || len(c.TrustScores) != n {
		return fmt.Errorf("contradiction %q: parallel slices differ in length (values=%d ids=%d timestamps=%d trust=%d)",
			c.Slot, n, len(c.MemoryIDs), len(c.Timestamps), len(c.TrustScores))
	}
	return nil
}

// MostTrustedValue returns the value held by the most trusted memory. Ties go
// to the earliest contributor.
func (c *ContradictionDetail) MostTrustedValue() string {
	if len(c.Values) == 0 {
		return ""
	}
	best := 0
	for i := 1; i < len(c.TrustScores) && i < len(c.Values); i++ {
		if c.TrustScores[i] > c.TrustScores[best] {
			best = i
		}
	}
	return c.Values[best]
}

// MostRecentValue returns the value with the newest timestamp, falling back
// to MostTrustedValue when no contributor carries a timestamp.
func (c *ContradictionDetail) MostRecentValue() string {
	best := -1
	for i, ts := range c.Timestamps {
		if ts == nil || i >= len(c.Values) {
			continue
		}
		if best < 0 || *ts > *c.Timestamps[best] {
			best = i
		}
	}
	if best < 0 {
		return c.MostTrustedValue()
	}
	return c.Values[best]
}

// HasTimestamps reports whether any contributor carries a timestamp.
func (c *ContradictionDetail) HasTimestamps() bool {
	for _, ts := range c.Timestamps {
		if ts != nil {
			return true
		}
	}
	return false
}

// HasValue reports whether normalized is one of the contradicting values.
func (c *ContradictionDetail) HasValue(normalized string) bool {
	for _, v := range c.Values {
		if v == normalized {
			return true
		}
	}
	return false
}

func (c *ContradictionDetail) TrustRange() (lo, hi float64) {
	for i, t := range c.TrustScores {
		if i == 0 || t < lo {
			lo = t
		}
		if i == 0 || t > hi {
			hi = t
		}
	}
	return lo, hi
}
