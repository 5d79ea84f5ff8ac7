package extract

import (
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/rx"
)

var (
	oxfordAnd  = rx.I(`,\s+and\s+`)
	oxfordOr   = rx.I(`,\s+or\s+`)
	bareAnd    = rx.I(`\s+and\s+`)
	bareOr     = rx.I(`\s+or\s+`)
	bulletMark = rx.C(`[•\-\*]\s*`)

	listArtifacts = map[string]bool{
		"and": true, "or": true, "&": true, "the": true, "a": true, "an": true,
	}
)

// SplitCompoundValues breaks a list-like value ("Python, Go, and Rust",
// "AWS/GCP", bulleted lines) into its items. A value with no separators
// comes back as a single item; blank input yields nil.
func SplitCompoundValues(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if strings.Contains(text, "\n") {
		var out []string
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, SplitCompoundValues(line)...)
			}
		}
		return out
	}

	s := rx.Replace(oxfordAnd, text, ", ")
	s = rx.Replace(oxfordOr, s, ", ")
	s = rx.Replace(bareAnd, s, ", ")
	s = rx.Replace(bareOr, s, ", ")
	s = strings.ReplaceAll(s, "/", ", ")
	s = strings.ReplaceAll(s, ";", ", ")
	s = rx.Replace(bulletMark, s, "")

	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" || listArtifacts[strings.ToLower(part)] {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}
