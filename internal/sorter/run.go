package sorter

import (
	"time"

	"github.com/eykd/svcrpt/internal/domain"
)

// Run is the result of one validation batch.
type Run struct {
	Outcomes   []Outcome `json:"outcomes"`
	Skipped    int       `json:"skipped"`
	ReportOnly bool      `json:"report_only"`
	Move       bool      `json:"move"`
	Started    time.Time `json:"started"`
	Finished   time.Time `json:"finished"`
}

// Total is the number of documents processed.
func (r *Run) Total() int { return len(r.Outcomes) }

// Count returns how many documents fell into c.
func (r *Run) Count(c domain.Category) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Category == c {
			n++
		}
	}
	return n
}

// NeedsAttention reports whether any document is invalid or unstructured.
func (r *Run) NeedsAttention() bool {
	return r.Count(domain.CategoryInvalid)+r.Count(domain.CategoryUnstructured) > 0
}

// Words returns the word statistics of category c.
func (r *Run) Words(c domain.Category) domain.WordStats {
	var counts []int
	for _, o := range r.Outcomes {
		if o.Category == c {
			counts = append(counts, o.Words)
		}
	}
	return domain.Summarize(counts)
}

// ErrorFrequency tallies validation codes across all documents, keyed by
// relative path.
func (r *Run) ErrorFrequency() []domain.CodeCount {
	byFile := make(map[string][]domain.Code, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if codes := o.Validation.Codes; len(codes) > 0 {
			byFile[o.Document.RelPath] = codes
		}
	}
	return domain.Tally(byFile)
}

// Summary is the aggregate view of a run used for JSON output.
type Summary struct {
	Total      int                                  `json:"total"`
	Skipped    int                                  `json:"skipped"`
	Categories map[domain.Category]int              `json:"categories"`
	Words      map[domain.Category]domain.WordStats `json:"words"`
	Errors     []domain.CodeCount                   `json:"errors"`
}

// Summarize aggregates the run.
func (r *Run) Summarize() Summary {
	s := Summary{
		Total:      r.Total(),
		Skipped:    r.Skipped,
		Categories: map[domain.Category]int{},
		Words:      map[domain.Category]domain.WordStats{},
		Errors:     r.ErrorFrequency(),
	}
	for _, c := range domain.Categories() {
		s.Categories[c] = r.Count(c)
		s.Words[c] = r.Words(c)
	}
	return s
}
