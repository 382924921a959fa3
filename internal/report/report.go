// Package report renders the artifacts written after a validation run.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/eykd/svcrpt/internal/domain"
	"github.com/eykd/svcrpt/internal/sorter"
)

// Artifact file names.
const (
	SummaryFile      = "summary.txt"
	ErrorSummaryFile = "error_summary.csv"
	RareErrorsFile   = "rare_errors.txt"
	WordCountsFile   = "word_counts.csv"
)

// FileWriter writes one named artifact.
type FileWriter interface {
	WriteFile(ctx context.Context, name, content string) error
}

var markers = map[domain.Category]string{
	domain.CategoryValid:        "✅ VALID",
	domain.CategoryInvalid:      "❌ INVALID",
	domain.CategoryUnstructured: "⚠️ UNSTRUCTURED",
	domain.CategoryPM:           "🔧 PM",
}

// Marker returns the emoji-prefixed upper-case name of a category used in
// summaries, e.g. "✅ VALID".
func Marker(c domain.Category) string {
	return markers[c]
}

// Label returns the display name of a category, e.g. "Valid".
func Label(c domain.Category) string {
	switch c {
	case domain.CategoryPM:
		return "PM"
	case "":
		return ""
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

// WriteSummary writes the human-readable run summary.
func WriteSummary(w io.Writer, run *sorter.Run) error {
	var b strings.Builder
	b.WriteString("Report Validation Summary\n")
	b.WriteString("=========================\n")
	if !run.Started.IsZero() {
		fmt.Fprintf(&b, "Generated: %s\n", run.Started.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(&b, "Mode: %s\n\n", mode(run))

	for _, o := range run.Outcomes {
		fmt.Fprintf(&b, "%s: %s (%d words)\n", markers[o.Category], o.Document.RelPath, o.Words)
		if len(o.Codes) > 0 {
			fmt.Fprintf(&b, "  Errors: %s\n", strings.Join(o.Codes, ", "))
		}
		if o.PlaceError != "" {
			fmt.Fprintf(&b, "  Not placed: %s\n", o.PlaceError)
		}
	}

	b.WriteString("\n\nSummary Statistics\n")
	b.WriteString("==================\n")
	total := run.Total()
	fmt.Fprintf(&b, "Total files processed: %d\n", total)
	if total == 0 {
		b.WriteString("No files processed.\n")
	}
	for _, c := range domain.Categories() {
		n := run.Count(c)
		if total == 0 || (n == 0 && c == domain.CategoryPM) {
			continue
		}
		fmt.Fprintf(&b, "%s reports: %d (%.1f%%)\n", Label(c), n, float64(n)/float64(total)*100)
		if n == 0 {
			continue
		}
		st := run.Words(c)
		fmt.Fprintf(&b, "  Average length: %.1f words\n", st.Mean)
		fmt.Fprintf(&b, "  Median length: %s words\n", strconv.FormatFloat(st.Median, 'f', -1, 64))
		fmt.Fprintf(&b, "  Range: %d to %d words\n", st.Min, st.Max)
	}
	if run.Skipped > 0 {
		fmt.Fprintf(&b, "Files in ignored directories: %d\n", run.Skipped)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func mode(run *sorter.Run) string {
	switch {
	case run.ReportOnly:
		return "report only"
	case run.Move:
		return "move"
	default:
		return "copy"
	}
}

// WriteErrorSummary writes ERROR_CODE,COUNT,FILES rows, most frequent first.
// Files are joined with "; ".
func WriteErrorSummary(w io.Writer, freq []domain.CodeCount) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ERROR_CODE", "COUNT", "FILES"}); err != nil {
		return err
	}
	for _, row := range freq {
		rec := []string{row.Code, strconv.Itoa(row.Count), strings.Join(row.Files, "; ")}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRareErrors lists codes seen at most threshold times together with
// the files they occur in.
func WriteRareErrors(w io.Writer, freq []domain.CodeCount, threshold int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Rare Errors (occurring %d or fewer times)\n", threshold)
	b.WriteString("==========================================\n\n")

	rare := 0
	for _, row := range freq {
		if row.Count > threshold {
			continue
		}
		rare++
		fmt.Fprintf(&b, "%s (%d)\n", row.Code, row.Count)
		for _, f := range row.Files {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
		b.WriteString("\n")
	}
	if rare == 0 {
		b.WriteString("None.\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteWordCounts writes FILENAME,WORD_COUNT,CATEGORY rows, longest first.
func WriteWordCounts(w io.Writer, run *sorter.Run) error {
	rows := append([]sorter.Outcome(nil), run.Outcomes...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Words != rows[j].Words {
			return rows[i].Words > rows[j].Words
		}
		return rows[i].Document.RelPath < rows[j].Document.RelPath
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"FILENAME", "WORD_COUNT", "CATEGORY"}); err != nil {
		return err
	}
	for _, o := range rows {
		if err := cw.Write([]string{o.Document.RelPath, strconv.Itoa(o.Words), Label(o.Category)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Artifacts renders all four artifacts and hands them to fw.
func Artifacts(ctx context.Context, fw FileWriter, run *sorter.Run, rareThreshold int) error {
	freq := run.ErrorFrequency()
	render := []struct {
		name string
		fn   func(io.Writer) error
	}{
		{SummaryFile, func(w io.Writer) error { return WriteSummary(w, run) }},
		{ErrorSummaryFile, func(w io.Writer) error { return WriteErrorSummary(w, freq) }},
		{RareErrorsFile, func(w io.Writer) error { return WriteRareErrors(w, freq, rareThreshold) }},
		{WordCountsFile, func(w io.Writer) error { return WriteWordCounts(w, run) }},
	}
	for _, r := range render {
		var b strings.Builder
		if err := r.fn(&b); err != nil {
			return fmt.Errorf("rendering %s: %w", r.name, err)
		}
		if err := fw.WriteFile(ctx, r.name, b.String()); err != nil {
			return fmt.Errorf("writing %s: %w", r.name, err)
		}
	}
	return nil
}
