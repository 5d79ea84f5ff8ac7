// Package rx wraps github.com/dlclark/regexp2 with the small set of helpers
// the extractors need. regexp2 supports lookaround and backreferences and its
// \w, \d, \s and \b classes are Unicode aware. All offsets reported here are
// rune offsets.
package rx

import (
	"strings"

	"github.com/dlclark/regexp2"
)

type Regexp = regexp2.Regexp

// I compiles a case-insensitive expression and panics on error. It is meant
// for package-level pattern tables.
func I(expr string) *Regexp {
	return regexp2.MustCompile(expr, regexp2.IgnoreCase)
}

// C compiles a case-sensitive expression and panics on error.
func C(expr string) *Regexp {
	return regexp2.MustCompile(expr, regexp2.None)
}

// Match is a flattened regexp2 match.
type Match struct {
	Text   string
	Start  int
	End    int
	groups []group
}

type group struct {
	text  string
	start int
	ok    bool
}

// Group returns the text captured by group i, or "" when the group did not
// participate in the match.
func (m *Match) Group(i int) string {
	if i < 0 || i >= len(m.groups) {
		return ""
	}
	return m.groups[i].text
}

// Has reports whether group i participated in the match.
func (m *Match) Has(i int) bool {
	return i >= 0 && i < len(m.groups) && m.groups[i].ok
}

// GroupStart returns the rune offset of group i, or -1.
func (m *Match) GroupStart(i int) int {
	if !m.Has(i) {
		return -1
	}
	return m.groups[i].start
}

func flatten(m *regexp2.Match) *Match {
	out := &Match{Text: m.String(), Start: m.Index, End: m.Index + m.Length}
	gs := m.Groups()
	out.groups = make([]group, len(gs))
	for i := range gs {
		g := &gs[i]
		if len(g.Captures) == 0 {
			continue
		}
		out.groups[i] = group{text: g.String(), start: g.Index, ok: true}
	}
	return out
}

// Find returns the first match of re in s.
func Find(re *Regexp, s string) (*Match, bool) {
	m, err := re.FindStringMatch(s)
	if err != nil || m == nil {
		return nil, false
	}
	return flatten(m), true
}

// Test reports whether re matches anywhere in s.
func Test(re *Regexp, s string) bool {
	ok, err := re.MatchString(s)
	return err == nil && ok
}

// FindAll returns every non-overlapping match of re in s.
func FindAll(re *Regexp, s string) []*Match {
	var out []*Match
	m, err := re.FindStringMatch(s)
	for err == nil && m != nil {
		out = append(out, flatten(m))
		m, err = re.FindNextMatch(m)
	}
	return out
}

// Split slices s around matches of re. n < 0 means no limit, otherwise at
// most n splits are made. Captured groups are not included in the result.
func Split(re *Regexp, s string, n int) []string {
	runes := []rune(s)
	var out []string
	last := 0
	splits := 0
	m, err := re.FindStringMatch(s)
	for err == nil && m != nil {
		if n >= 0 && splits >= n {
			break
		}
		out = append(out, string(runes[last:m.Index]))
		last = m.Index + m.Length
		splits++
		m, err = re.FindNextMatch(m)
	}
	out = append(out, string(runes[last:]))
	return out
}

// Replace substitutes every match of re in s with repl. repl may refer to
// groups as $1 or ${name}.
func Replace(re *Regexp, s, repl string) string {
	out, err := re.Replace(s, repl, -1, -1)
	if err != nil {
		return s
	}
	return out
}

// ReplaceFunc substitutes every match of re in s with the result of fn.
func ReplaceFunc(re *Regexp, s string, fn func(*Match) string) string {
	out, err := re.ReplaceFunc(s, func(m regexp2.Match) string {
		return fn(flatten(&m))
	}, -1, -1)
	if err != nil {
		return s
	}
	return out
}

// Escape quotes every regexp metacharacter in s.
func Escape(s string) string {
	return regexp2.Escape(s)
}

// WordPattern compiles a case-insensitive \b-delimited literal.
func WordPattern(literal string) *Regexp {
	return I(`\b` + Escape(literal) + `\b`)
}

// Slice returns the runes of s in [start, end) as a string.
func Slice(s string, start, end int) string {
	runes := []rune(s)
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if start >= end {
		return ""
	}
	return string(runes[start:end])
}

// CollapseSpace trims s and folds every whitespace run into one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
