package domain

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"no markup", "just words", "just words"},
		{"canonical untouched", "**Next steps?** none", "**Next steps?** none"},
		{"colon moved inside any emphasis", "**Parts used**: filter", "**Parts used:** filter"},
		{"question moved inside any emphasis", "**Warranty**? no", "**Warranty?** no"},
		{"repeated trailing punctuation settles", "**Note**::", "**Note::**"},
		{"colon outside then alias", "**Tech name**: Sam", "**Technician name:** Sam"},
		{"question outside canonical", "**Issue resolved**? yes", "**Issue resolved?** yes"},
		{"case-insensitive next steps", "**NEXT STEPS:** call back", "**Next steps?** call back"},
		{"case-insensitive issue resolved", "**Issues Resolved?** yes", "**Issue resolved?** yes"},
		{"case-insensitive work performed", "**Description of Work Performed:** x", "**Description of work performed:** x"},
		{"literal alias is case-sensitive", "**client contact:** Lee", "**client contact:** Lee"},
		{"literal alias", "**Client contact:** Lee", "**Customer point of contact:** Lee"},
		{"relocated follow-up", "**Follow-up required**? yes", "**Next steps?** yes"},
		{"date short form", "**Date**: 3/1", "**Date of service:** 3/1"},
		{"recommended next steps keeps its own alias", "**Recommended next steps:** x", "**Next steps?** x"},
		{"multiple fields on separate lines", "**Date:** a\n**Technician:** b", "**Date of service:** a\n**Technician name:** b"},
		{"emphasis does not span lines", "**a\nb**: c", "**a\nb**: c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Some notes with no recognizable fields at all.",
		"**Date**: today\n**Tech name**: Sam\n**Next Steps:** none",
		"**Issue(s) resolved**? partially\n**Resolution status:** open",
		"**Note**::?? trailing",
		"**Date of service:** **Date**: **Service date**:",
		"**Description of problems/requests**: leak\n**Problems encountered:** more",
		"***bold italic***: text",
		"** **: ** **?",
	}
	for _, s := range inputs {
		once := Normalize(s)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q:\nonce:  %q\ntwice: %q", s, once, twice)
		}
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	in := "**Date**: today"
	_ = Normalize(in)
	if in != "**Date**: today" {
		t.Errorf("input changed to %q", in)
	}
}

func TestNormalizer_CustomCatalog(t *testing.T) {
	cat := Catalog{newField("**Site:**", exact("**Location:**"), folded("**Site name:**"))}
	n := NewNormalizer(cat)

	got := n.Normalize("**SITE NAME:** north\n**Location:** south")

	want := "**Site:** north\n**Site:** south"
	if got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}
