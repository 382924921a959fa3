package domain

import (
	"regexp"
	"strings"
)

// Punctuation that trails an emphasized span is pulled inside the markers,
// so "**Label**:" becomes "**Label:**" for any label, known or not.
var (
	colonOutsideRe    = regexp.MustCompile(`\*\*(.*?)\*\*:`)
	questionOutsideRe = regexp.MustCompile(`\*\*(.*?)\*\*\?`)
)

type foldRule struct {
	re        *regexp.Regexp
	canonical string
}

type exactRule struct {
	alias     string
	canonical string
}

// Normalizer rewrites report text into the catalog's canonical label form.
// It is safe for concurrent use.
type Normalizer struct {
	folds  []foldRule
	exacts []exactRule
}

// NewNormalizer compiles the alias table of c. Case-insensitive aliases are
// applied before literal ones, each group in catalog order.
func NewNormalizer(c Catalog) *Normalizer {
	n := &Normalizer{}
	for _, f := range c {
		for _, a := range f.Aliases {
			if a.FoldCase {
				n.folds = append(n.folds, foldRule{
					re:        regexp.MustCompile(`(?i)` + regexp.QuoteMeta(a.Text)),
					canonical: f.Canonical,
				})
				continue
			}
			n.exacts = append(n.exacts, exactRule{alias: a.Text, canonical: f.Canonical})
		}
	}
	return n
}

// Normalize returns raw with punctuation relocated and every alias replaced
// by its canonical label. Text without matches is returned unchanged.
func (n *Normalizer) Normalize(raw string) string {
	s := relocatePunctuation(raw)
	for _, r := range n.folds {
		s = r.re.ReplaceAllLiteralString(s, r.canonical)
	}
	for _, r := range n.exacts {
		s = strings.ReplaceAll(s, r.alias, r.canonical)
	}
	return s
}

// relocatePunctuation repeats the rewrite until nothing moves, so runs such
// as "**Label**::" settle in one call.
func relocatePunctuation(s string) string {
	for {
		next := colonOutsideRe.ReplaceAllString(s, "**$1:**")
		next = questionOutsideRe.ReplaceAllString(next, "**$1?**")
		if next == s {
			return s
		}
		s = next
	}
}

var defaultNormalizer = NewNormalizer(DefaultCatalog())

// Normalize rewrites raw using the default catalog.
func Normalize(raw string) string {
	return defaultNormalizer.Normalize(raw)
}
