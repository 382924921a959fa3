package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// reportWith builds a report from label/content pairs in the given order.
func reportWith(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(pairs[i])
		b.WriteString(" ")
		b.WriteString(pairs[i+1])
		b.WriteString("\n\n")
	}
	return b.String()
}

func wellFormedPairs() []string {
	return []string{
		"**Date of service:**", "2024-03-01",
		"**Technician name:**", "Sam Ortiz",
		"**Customer point of contact:**", "Lee at front desk",
		"**Description of problem:**", "Walk-in cooler not holding temperature.",
		"**Description of work performed:**", "Replaced the evaporator fan motor.",
		"**Issue resolved?**", "Yes",
		"**Next steps?**", "Check again in two weeks.",
	}
}

// replacePair swaps the label at index i (an even index) for label.
func replacePair(pairs []string, i int, label string) []string {
	out := append([]string(nil), pairs...)
	out[i] = label
	return out
}

func TestValidate_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantCodes []string
	}{
		{
			name:      "plain notes are unstructured",
			input:     "Some notes with no recognizable fields at all.",
			wantCodes: []string{"UNSTRUCTURED_DOCUMENT"},
		},
		{
			name:      "empty input is unstructured",
			input:     "",
			wantCodes: []string{"UNSTRUCTURED_DOCUMENT"},
		},
		{
			name:      "well formed report is valid",
			input:     reportWith(wellFormedPairs()...),
			wantValid: true,
		},
		{
			name:      "plural problem alias is normalized",
			input:     reportWith(replacePair(wellFormedPairs(), 6, "**Description of problems:**")...),
			wantValid: true,
		},
		{
			name:      "problem alias matches regardless of case",
			input:     reportWith(replacePair(wellFormedPairs(), 6, "**Descriptions Of Problems:**")...),
			wantValid: true,
		},
		{
			name:      "colon outside emphasis is relocated",
			input:     reportWith(replacePair(wellFormedPairs(), 0, "**Date of service**:")...),
			wantValid: true,
		},
		{
			name:      "plain technician label is unbolded",
			input:     reportWith(replacePair(wellFormedPairs(), 2, "Technician name:")...),
			wantCodes: []string{"UNBOLDED_FIELD:Technician name"},
		},
		{
			name:      "absent field is missing",
			input:     reportWith(wellFormedPairs()[:12]...),
			wantCodes: []string{"MISSING_FIELD:Next steps"},
		},
		{
			name:  "single field reports the rest as missing",
			input: "**Date:** yesterday",
			wantCodes: []string{
				"MISSING_FIELD:Technician name",
				"MISSING_FIELD:Customer point of contact",
				"MISSING_FIELD:Description of problem",
				"MISSING_FIELD:Description of work performed",
				"MISSING_FIELD:Issue resolved",
				"MISSING_FIELD:Next steps",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.input)

			if got.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (codes %v)", got.Valid, tt.wantValid, got.Strings())
			}
			want := tt.wantCodes
			if want == nil {
				want = []string{}
			}
			if diff := cmp.Diff(want, got.Strings()); diff != "" {
				t.Errorf("codes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_DuplicateTechnician(t *testing.T) {
	pairs := wellFormedPairs()
	pairs = append(pairs[:4], append([]string{"**Technician name:**", "Pat Kim"}, pairs[4:]...)...)

	got := Validate(reportWith(pairs...))

	want := []string{"DUPLICATE_FIELD:Technician name"}
	if diff := cmp.Diff(want, got.Strings()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_EmptyNextStepsIndependentOfOrder(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name: "next steps first, newline before date",
			input: "**Next steps?**\n**Date of service:** 2024-03-01\n" +
				reportWith(wellFormedPairs()[2:12]...),
		},
		{
			name: "next steps directly against date label",
			input: reportWith(wellFormedPairs()[2:12]...) +
				"**Next steps?****Date of service:** 2024-03-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.input)

			want := []string{"EMPTY_FIELD:Next steps"}
			if diff := cmp.Diff(want, got.Strings()); diff != "" {
				t.Errorf("codes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_CodesAreNotExclusive(t *testing.T) {
	input := "**Next steps?**\n" + reportWith(wellFormedPairs()...)

	got := Validate(input)

	want := []string{"DUPLICATE_FIELD:Next steps", "EMPTY_FIELD:Next steps"}
	if diff := cmp.Diff(want, got.Strings()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_PresenceBeforeDuplicateAndEmpty(t *testing.T) {
	// Date duplicated and empty, technician missing.
	input := "**Date of service:**\n" + reportWith(wellFormedPairs()[4:]...) +
		"**Date of service:** again\n"

	got := Validate(input)

	want := []string{
		"MISSING_FIELD:Technician name",
		"DUPLICATE_FIELD:Date of service",
		"EMPTY_FIELD:Date of service",
	}
	if diff := cmp.Diff(want, got.Strings()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_AliasCompleteness(t *testing.T) {
	cat := DefaultCatalog()
	for _, f := range cat {
		for _, a := range f.Aliases {
			t.Run(a.Text, func(t *testing.T) {
				doc := a.Text + " some content"

				if !strings.Contains(Normalize(doc), f.Canonical) {
					t.Fatalf("Normalize(%q) = %q, want it to contain %q", doc, Normalize(doc), f.Canonical)
				}
				for _, c := range Validate(doc).Codes {
					if c.Field == f.Plain {
						t.Errorf("unexpected code %s for the aliased field", c)
					}
					if c.Kind != KindMissing {
						t.Errorf("unexpected non-missing code %s", c)
					}
				}
			})
		}
	}
}

func TestValidator_StrictSkipsNormalization(t *testing.T) {
	input := reportWith(replacePair(wellFormedPairs(), 6, "**Description of problems:**")...)
	v := NewValidator(DefaultCatalog(), WithStrict(true))

	got := v.Validate(input)

	want := []string{"UNBOLDED_FIELD:Description of problem"}
	if diff := cmp.Diff(want, got.Strings()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		input   string
		want    Code
		wantErr bool
	}{
		{"UNSTRUCTURED_DOCUMENT", Code{Kind: KindUnstructured}, false},
		{"MISSING_FIELD:Next steps", Code{Kind: KindMissing, Field: "Next steps"}, false},
		{"EMPTY_FIELD:Date of service", Code{Kind: KindEmpty, Field: "Date of service"}, false},
		{"ERROR:open x.md: permission denied", Code{Kind: KindIOFailure, Detail: "open x.md: permission denied"}, false},
		{"MISSING_FIELD:", Code{}, true},
		{"BOGUS:thing", Code{}, true},
		{"nonsense", Code{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCode(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCode) {
					t.Fatalf("error = %v, want ErrInvalidCode", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseCode(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if got.String() != tt.input {
				t.Errorf("String() = %q, want %q", got.String(), tt.input)
			}
		})
	}
}

func TestFailed(t *testing.T) {
	got := Failed(errors.New("invalid UTF-8"))

	if got.Valid {
		t.Error("Failed result should not be valid")
	}
	if diff := cmp.Diff([]string{"ERROR:invalid UTF-8"}, got.Strings()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
	if Classify(got) != CategoryInvalid {
		t.Errorf("Classify = %q, want %q", Classify(got), CategoryInvalid)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  Category
	}{
		{"nothing here", CategoryUnstructured},
		{reportWith(wellFormedPairs()...), CategoryValid},
		{"**Date:** today", CategoryInvalid},
	}
	for _, tt := range tests {
		if got := Classify(Validate(tt.input)); got != tt.want {
			t.Errorf("Classify(Validate(%q)) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
