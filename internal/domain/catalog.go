// Package domain holds the report field catalog and the pure validation core.
package domain

import (
	"fmt"
	"strings"
)

// Alias is a historical alternative spelling of a field label.
// FoldCase aliases are matched case-insensitively; all others are exact.
type Alias struct {
	Text     string
	FoldCase bool
}

// Field describes one labeled field every service report must carry.
type Field struct {
	Canonical string
	Plain     string
	Aliases   []Alias
}

// Catalog is the ordered set of required report fields.
type Catalog []Field

// PlainName strips emphasis markers and label punctuation from a label.
func PlainName(label string) string {
	return strings.NewReplacer("**", "", ":", "", "?", "").Replace(label)
}

// exact builds literal aliases.
func exact(texts ...string) []Alias {
	out := make([]Alias, len(texts))
	for i, t := range texts {
		out[i] = Alias{Text: t}
	}
	return out
}

// folded builds case-insensitive aliases.
func folded(texts ...string) []Alias {
	out := make([]Alias, len(texts))
	for i, t := range texts {
		out[i] = Alias{Text: t, FoldCase: true}
	}
	return out
}

func newField(canonical string, aliases ...[]Alias) Field {
	f := Field{Canonical: canonical, Plain: PlainName(canonical)}
	for _, a := range aliases {
		f.Aliases = append(f.Aliases, a...)
	}
	return f
}

// DefaultCatalog returns the seven fields of a service-visit report, in
// reporting order. Each call returns a fresh value.
func DefaultCatalog() Catalog {
	return Catalog{
		newField("**Date of service:**",
			exact(
				"**Service date:**",
				"**Date:**",
				"**Date of visit:**",
				"**Date of service**:",
				"**Service date**:",
				"**Date**:",
				"**Date of visit**:",
			),
		),
		newField("**Technician name:**",
			exact(
				"**Technician:**",
				"**Tech name:**",
				"**Service technician:**",
				"**Technician name**:",
				"**Technician**:",
				"**Tech name**:",
				"**Service technician**:",
			),
		),
		newField("**Customer point of contact:**",
			exact(
				"**Customer points of contact:**",
				"**Client contact:**",
				"**Contact person:**",
				"**Point of contact:**",
				"**Customer contact:**",
				"**Customer point of contact**:",
				"**Customer points of contact**:",
				"**Client contact**:",
				"**Contact person**:",
				"**Point of contact**:",
				"**Customer contact**:",
			),
		),
		newField("**Description of problem:**",
			folded(
				"**Description of problems:**",
				"**Descriptions of problems:**",
			),
			exact(
				"**Description of problems/requests:**",
				"**Problems and requests:**",
				"**Issues reported:**",
				"**Problems encountered:**",
				"**Service request:**",
				"**Reported issue(s):**",
				"**Description of problem**:",
				"**Description of problems**:",
				"**Description of problems/requests**:",
				"**Problems and requests**:",
				"**Issues reported**:",
				"**Problems encountered**:",
				"**Service request**:",
				"**Reported issue(s)**:",
			),
		),
		newField("**Description of work performed:**",
			folded(
				"**Description of Work Performed:**",
			),
			exact(
				"**Work performed:**",
				"**Service performed:**",
				"**Actions taken:**",
				"**Work completed:**",
				"**Description of work performed**:",
				"**Work performed**:",
				"**Service performed**:",
				"**Actions taken**:",
				"**Work completed**:",
			),
		),
		newField("**Issue resolved?**",
			folded(
				"**Issue Resolved?**",
				"**Issue resolved:**",
				"**Issues resolved:**",
				"**Issues resolved?**",
			),
			exact(
				"**Issue(s) resolved?**",
				"**Problem resolved?**",
				"**Resolution status:**",
				"**Resolved?**",
				"**Issue resolved**?",
				"**Issues resolved**?",
				"**Issue(s) resolved**?",
				"**Problem resolved**?",
			),
		),
		newField("**Next steps?**",
			folded(
				"**Next Steps?**",
				"**Next steps:**",
			),
			exact(
				"**Future actions:**",
				"**Follow-up required:**",
				"**Follow-up actions:**",
				"**Recommended next steps:**",
				"**Future actions?**",
				"**Follow-up required?**",
				"**Follow-up actions?**",
				"**Recommended next steps?**",
				"**Next steps**?",
				"**Future actions**?",
				"**Follow-up required**?",
				"**Follow-up actions**?",
				"**Recommended next steps**?",
			),
		),
	}
}

// Canonicals returns every canonical label in catalog order.
func (c Catalog) Canonicals() []string {
	out := make([]string, len(c))
	for i, f := range c {
		out[i] = f.Canonical
	}
	return out
}

// Lookup returns the field whose plain name matches plain.
func (c Catalog) Lookup(plain string) (Field, bool) {
	for _, f := range c {
		if f.Plain == plain {
			return f, true
		}
	}
	return Field{}, false
}

// Check reports catalog entries that would make normalization order-dependent:
// a field listing its own canonical label as an alias, or an alias that occurs
// inside another field's canonical label.
func (c Catalog) Check() error {
	for i, f := range c {
		for _, a := range f.Aliases {
			if a.Text == f.Canonical {
				return fmt.Errorf("field %q lists its canonical label as an alias", f.Plain)
			}
			for j, other := range c {
				if i == j {
					continue
				}
				if containsAlias(other.Canonical, a) {
					return fmt.Errorf("alias %q of %q overlaps canonical label of %q", a.Text, f.Plain, other.Plain)
				}
			}
		}
	}
	return nil
}

func containsAlias(s string, a Alias) bool {
	if a.FoldCase {
		return strings.Contains(strings.ToLower(s), strings.ToLower(a.Text))
	}
	return strings.Contains(s, a.Text)
}
