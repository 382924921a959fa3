package domain

// Category is the output folder a report is sorted into.
type Category string

const (
	CategoryValid        Category = "valid"
	CategoryInvalid      Category = "invalid"
	CategoryUnstructured Category = "unstructured"
	// CategoryPM marks preventive-maintenance reports, which follow a
	// different template and are never validated.
	CategoryPM Category = "pm"
)

// Categories lists every category in reporting order.
func Categories() []Category {
	return []Category{CategoryValid, CategoryInvalid, CategoryUnstructured, CategoryPM}
}

// Classify maps a validation result to its output category.
func Classify(r Result) Category {
	if r.Valid {
		return CategoryValid
	}
	if len(r.Codes) == 1 && r.Codes[0].Kind == KindUnstructured {
		return CategoryUnstructured
	}
	return CategoryInvalid
}
