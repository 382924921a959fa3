package domain

import "strings"

// Span is the byte range of text owned by a field label.
type Span struct {
	Start int
	End   int
}

// Text returns the slice of s covered by the span.
func (sp Span) Text(s string) string {
	return s[sp.Start:sp.End]
}

// IndexAfter returns the smallest position >= from at which any of labels
// occurs in text, or -1 when none does.
func IndexAfter(text string, from int, labels []string) int {
	if from < 0 {
		from = 0
	}
	if from > len(text) {
		return -1
	}
	best := -1
	for _, l := range labels {
		if l == "" {
			continue
		}
		i := strings.Index(text[from:], l)
		if i < 0 {
			continue
		}
		if pos := from + i; best < 0 || pos < best {
			best = pos
		}
	}
	return best
}

// LocateSpan finds the first occurrence of f's canonical label in text and
// returns the span from just after the label up to the next label of any
// other catalog field, or to the end of text.
func (c Catalog) LocateSpan(text string, f Field) (Span, bool) {
	i := strings.Index(text, f.Canonical)
	if i < 0 {
		return Span{}, false
	}
	start := i + len(f.Canonical)

	others := make([]string, 0, len(c))
	for _, o := range c {
		if o.Canonical != f.Canonical {
			others = append(others, o.Canonical)
		}
	}

	end := IndexAfter(text, start, others)
	if end < 0 {
		end = len(text)
	}
	return Span{Start: start, End: end}, true
}
