// Package slug turns stack names into file names and identifiers.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// fold NFD-normalizes s and drops combining marks, so "Café" becomes "Cafe".
func fold(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Filename converts a stack name into a file name stem. Letters, digits,
// underscores and dashes are kept with their case; runs of whitespace become
// one underscore; everything else is dropped.
func Filename(name string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.TrimSpace(fold(name)) {
		switch {
		case unicode.IsSpace(r):
			space = true
		case r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte('_')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Slug converts a name into a lowercase, dash-separated identifier.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range fold(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '/':
			dash = true
		}
	}
	return b.String()
}
