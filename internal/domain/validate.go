package domain

import (
	"errors"
	"strings"
)

// CodeKind identifies the category of a validation code.
type CodeKind string

const (
	// KindUnstructured means no field was recognized anywhere in the document.
	KindUnstructured CodeKind = "UNSTRUCTURED_DOCUMENT"
	// KindMissing means a field is absent even in plain form.
	KindMissing CodeKind = "MISSING_FIELD"
	// KindUnbolded means a field's plain text is present without emphasis.
	KindUnbolded CodeKind = "UNBOLDED_FIELD"
	// KindDuplicate means a canonical label occurs more than once.
	KindDuplicate CodeKind = "DUPLICATE_FIELD"
	// KindEmpty means a canonical label owns only whitespace.
	KindEmpty CodeKind = "EMPTY_FIELD"
	// KindIOFailure is produced by callers that could not read a document.
	KindIOFailure CodeKind = "ERROR"
)

// ErrInvalidCode is returned by ParseCode for unrecognized input.
var ErrInvalidCode = errors.New("invalid validation code")

// Code is one validation finding. Field holds the plain field name for field
// kinds; Detail holds the failure description for KindIOFailure.
type Code struct {
	Kind   CodeKind
	Field  string
	Detail string
}

// String renders the code as KIND or KIND:<field or detail>.
func (c Code) String() string {
	switch {
	case c.Field != "":
		return string(c.Kind) + ":" + c.Field
	case c.Detail != "":
		return string(c.Kind) + ":" + c.Detail
	case c.Kind == KindIOFailure:
		return string(c.Kind) + ":"
	}
	return string(c.Kind)
}

// MarshalText renders the code for JSON and CSV output.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// IOFailure wraps a read or decode failure as a validation code.
func IOFailure(err error) Code {
	return Code{Kind: KindIOFailure, Detail: err.Error()}
}

// ParseCode parses the rendered form produced by Code.String.
func ParseCode(s string) (Code, error) {
	if s == string(KindUnstructured) {
		return Code{Kind: KindUnstructured}, nil
	}
	kind, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Code{}, ErrInvalidCode
	}
	switch CodeKind(kind) {
	case KindMissing, KindUnbolded, KindDuplicate, KindEmpty:
		if rest == "" {
			return Code{}, ErrInvalidCode
		}
		return Code{Kind: CodeKind(kind), Field: rest}, nil
	case KindIOFailure:
		return Code{Kind: KindIOFailure, Detail: rest}, nil
	}
	return Code{}, ErrInvalidCode
}

// Result is the outcome of validating one document.
type Result struct {
	Valid bool
	Codes []Code
}

// Strings returns the rendered codes in order.
func (r Result) Strings() []string {
	out := make([]string, len(r.Codes))
	for i, c := range r.Codes {
		out[i] = c.String()
	}
	return out
}

// Failed builds the result reported for a document that could not be read.
func Failed(err error) Result {
	return Result{Codes: []Code{IOFailure(err)}}
}

// Validator classifies report text against a catalog.
type Validator struct {
	catalog    Catalog
	normalizer *Normalizer
	strict     bool
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithStrict disables normalization, so only exact canonical labels count.
func WithStrict(strict bool) ValidatorOption {
	return func(v *Validator) { v.strict = strict }
}

// NewValidator creates a Validator over c.
func NewValidator(c Catalog, opts ...ValidatorOption) *Validator {
	v := &Validator{catalog: c, normalizer: NewNormalizer(c)}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Catalog returns the catalog the validator checks against.
func (v *Validator) Catalog() Catalog { return v.catalog }

// Validate normalizes raw and reports every problem found. The unstructured
// gate is the only check that stops the others from running.
func (v *Validator) Validate(raw string) Result {
	text := raw
	if !v.strict {
		text = v.normalizer.Normalize(raw)
	}

	if !v.hasAnyField(text) {
		return Result{Codes: []Code{{Kind: KindUnstructured}}}
	}

	var codes []Code
	for _, f := range v.catalog {
		if strings.Contains(text, f.Canonical) {
			continue
		}
		kind := KindMissing
		if strings.Contains(text, f.Plain) {
			kind = KindUnbolded
		}
		codes = append(codes, Code{Kind: kind, Field: f.Plain})
	}

	for _, f := range v.catalog {
		if strings.Count(text, f.Canonical) > 1 {
			codes = append(codes, Code{Kind: KindDuplicate, Field: f.Plain})
		}
	}

	for _, f := range v.catalog {
		span, ok := v.catalog.LocateSpan(text, f)
		if !ok {
			continue
		}
		if strings.TrimSpace(span.Text(text)) == "" {
			codes = append(codes, Code{Kind: KindEmpty, Field: f.Plain})
		}
	}

	return Result{Valid: len(codes) == 0, Codes: codes}
}

func (v *Validator) hasAnyField(text string) bool {
	for _, f := range v.catalog {
		if strings.Contains(text, f.Plain) {
			return true
		}
	}
	return false
}

var defaultValidator = NewValidator(DefaultCatalog())

// Validate checks raw against the default catalog with normalization.
func Validate(raw string) Result {
	return defaultValidator.Validate(raw)
}
