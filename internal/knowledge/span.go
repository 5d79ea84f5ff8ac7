package knowledge

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

// Phrase is a dictionary entry for a SpanMatcher.
type Phrase[T any] struct {
	Text  string
	Value T
}

// SpanMatch is one accepted occurrence. Start and End are rune offsets into
// the scanned text.
type SpanMatch[T any] struct {
	Phrase string
	Start  int
	End    int
	Value  T
}

func (m SpanMatch[T]) overlaps(start, end int) bool {
	return !(end <= m.Start || start >= m.End)
}

type spanEntry[T any] struct {
	runes []rune
	text  string
	value T
}

// SpanMatcher finds non-overlapping, case-insensitive, word-bounded
// occurrences of a fixed phrase set. Longer phrases claim text first.
// It is immutable after construction and safe for concurrent use.
type SpanMatcher[T any] struct {
	entries []spanEntry[T]
}

func NewSpanMatcher[T any](phrases []Phrase[T]) *SpanMatcher[T] {
	entries := make([]spanEntry[T], 0, len(phrases))
	for _, p := range phrases {
		if p.Text == "" {
			continue
		}
		entries = append(entries, spanEntry[T]{runes: lowerRunes(p.Text), text: p.Text, value: p.Value})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].runes) > len(entries[j].runes)
	})
	return &SpanMatcher[T]{entries: entries}
}

func (sm *SpanMatcher[T]) Len() int {
	return len(sm.entries)
}

// Match scans text and returns the accepted spans in acceptance order:
// longest phrase first, and by position within one phrase.
func (sm *SpanMatcher[T]) Match(text string) []SpanMatch[T] {
	if text == "" || len(sm.entries) == 0 {
		return nil
	}
	hay := lowerRunes(text)
	var found []SpanMatch[T]

	for _, e := range sm.entries {
		n := len(e.runes)
		for idx := 0; idx+n <= len(hay); {
			pos := indexRunes(hay, e.runes, idx)
			if pos < 0 {
				break
			}
			end := pos + n
			idx = pos + 1

			if overlapsAny(found, pos, end) {
				continue
			}
			if !isBoundary(hay, pos-1) || !isBoundary(hay, end) {
				continue
			}
			found = append(found, SpanMatch[T]{Phrase: e.text, Start: pos, End: end, Value: e.value})
		}
	}
	return found
}

func overlapsAny[T any](found []SpanMatch[T], start, end int) bool {
	for _, f := range found {
		if f.overlaps(start, end) {
			return true
		}
	}
	return false
}

// isBoundary reports whether position i is outside the text or holds a
// character that is neither a letter nor a digit.
func isBoundary(r []rune, i int) bool {
	if i < 0 || i >= len(r) {
		return true
	}
	return !isAlnum(r[i])
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// lowerRunes lowercases rune by rune so offsets stay aligned with the input.
func lowerRunes(s string) []rune {
	out := make([]rune, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, unicode.ToLower(r))
	}
	return out
}

func indexRunes(hay, needle []rune, from int) int {
	n := len(needle)
	for i := from; i+n <= len(hay); i++ {
		if hay[i] != needle[0] {
			continue
		}
		match := true
		for j := 1; j < n; j++ {
			if hay[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
