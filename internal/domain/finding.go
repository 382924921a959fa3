package domain

import "fmt"

// FindingSeverity indicates how severe a finding is.
type FindingSeverity string

const (
	// SeverityError indicates a finding that must be resolved.
	SeverityError FindingSeverity = "error"
	// SeverityWarning indicates a finding that should be reviewed.
	SeverityWarning FindingSeverity = "warning"
)

// FindingType identifies the kind of issue found.
type FindingType string

const (
	// FindingUnstructured indicates a document with no recognized field.
	FindingUnstructured FindingType = "unstructured_document"
	// FindingMissingField indicates a field absent from the document.
	FindingMissingField FindingType = "missing_field"
	// FindingUnboldedField indicates a field written without emphasis.
	FindingUnboldedField FindingType = "unbolded_field"
	// FindingDuplicateField indicates a field labeled more than once.
	FindingDuplicateField FindingType = "duplicate_field"
	// FindingEmptyField indicates a field with no content.
	FindingEmptyField FindingType = "empty_field"
	// FindingUnreadableFile indicates a file that could not be read or decoded.
	FindingUnreadableFile FindingType = "unreadable_file"
	// FindingUnknown indicates a code with no finding type.
	FindingUnknown FindingType = "unknown"
)

// Finding represents a validation issue discovered during a check operation.
type Finding struct {
	Type     FindingType
	Severity FindingSeverity
	Message  string
	Path     string
	Code     string
}

// FindingFromCode converts a validation code for the file at path into a Finding.
// Formatting problems the normalizer could not heal are warnings; anything
// that leaves a field unusable is an error.
func FindingFromCode(path string, c Code) Finding {
	f := Finding{Path: path, Code: c.String(), Severity: SeverityError}
	switch c.Kind {
	case KindUnstructured:
		f.Type = FindingUnstructured
		f.Message = "no recognized report fields"
	case KindMissing:
		f.Type = FindingMissingField
		f.Message = fmt.Sprintf("field %q is missing", c.Field)
	case KindUnbolded:
		f.Type = FindingUnboldedField
		f.Severity = SeverityWarning
		f.Message = fmt.Sprintf("field %q is present but not bold", c.Field)
	case KindDuplicate:
		f.Type = FindingDuplicateField
		f.Message = fmt.Sprintf("field %q appears more than once", c.Field)
	case KindEmpty:
		f.Type = FindingEmptyField
		f.Severity = SeverityWarning
		f.Message = fmt.Sprintf("field %q has no content", c.Field)
	case KindIOFailure:
		f.Type = FindingUnreadableFile
		f.Message = c.Detail
	default:
		f.Type = FindingUnknown
		f.Message = c.String()
	}
	return f
}

// Findings converts every code of r into findings for path.
func Findings(path string, r Result) []Finding {
	out := make([]Finding, 0, len(r.Codes))
	for _, c := range r.Codes {
		out = append(out, FindingFromCode(path, c))
	}
	return out
}
