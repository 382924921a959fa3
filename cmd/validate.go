package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/eykd/svcrpt/internal/config"
	"github.com/eykd/svcrpt/internal/domain"
	"github.com/eykd/svcrpt/internal/report"
	"github.com/eykd/svcrpt/internal/sorter"
)

// topIssues is how many error codes the console summary lists.
const topIssues = 5

// ValidateFlags holds the validate flags the user set explicitly. Nil fields
// keep the configured value.
type ValidateFlags struct {
	Input      *string
	Output     *string
	Move       *bool
	ReportOnly *bool
	Strict     *bool
	Recursive  *bool
	ShowValid  *bool
	Workers    *int
}

// Apply overlays the flags onto cfg. --move without an explicit
// --report-only turns placement on.
func (f ValidateFlags) Apply(cfg *config.Config) {
	setString(&cfg.Source, f.Input)
	setString(&cfg.Output, f.Output)
	setBool(&cfg.Move, f.Move)
	setBool(&cfg.Strict, f.Strict)
	setBool(&cfg.Recursive, f.Recursive)
	setBool(&cfg.ShowValid, f.ShowValid)
	if f.Workers != nil {
		cfg.Workers = *f.Workers
	}
	if f.ReportOnly != nil {
		cfg.ReportOnly = *f.ReportOnly
	} else if cfg.Move {
		cfg.ReportOnly = false
	}
}

// ValidateResult holds the outcome of a validate run.
type ValidateResult struct {
	Run       *sorter.Run
	ReportDir string
	ShowValid bool
}

// ValidateRunner defines the interface for running a validation batch.
type ValidateRunner interface {
	Validate(ctx context.Context, flags ValidateFlags) (*ValidateResult, error)
}

// validateJSONResponse is the JSON output structure for the validate command.
type validateJSONResponse struct {
	Summary   sorter.Summary   `json:"summary"`
	Outcomes  []sorter.Outcome `json:"outcomes"`
	ReportDir string           `json:"report_dir"`
	Placed    bool             `json:"placed"`
}

// NewValidateCmd creates the validate command with the given runner.
func NewValidateCmd(runner ValidateRunner) *cobra.Command {
	var input, output string
	var move, reportOnly, strict, noRecursive, showVal bool
	var workers int
	var failOnInvalid, jsonFlag bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate every report and sort it into a category folder",
		Long: "validate checks every report under the input folder, writes summary.txt, error_summary.csv, " +
			"rare_errors.txt and word_counts.csv to <output>/validated, and, unless --report-only is set, " +
			"copies or moves each report into valid, invalid, unstructured or pm.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fl := cmd.Flags()
			flags := ValidateFlags{
				Input:      changedString(fl, "input", input),
				Output:     changedString(fl, "output", output),
				Move:       changedBool(fl, "move", move),
				ReportOnly: changedBool(fl, "report-only", reportOnly),
				Strict:     changedBool(fl, "strict", strict),
				ShowValid:  changedBool(fl, "show-valid", showVal),
				Workers:    changedInt(fl, "workers", workers),
			}
			if fl.Changed("no-recursive") {
				recursive := !noRecursive
				flags.Recursive = &recursive
			}

			result, err := runner.Validate(cmd.Context(), flags)
			if err != nil {
				return err
			}

			if jsonFlag || GetJSON() {
				writeJSON(cmd.OutOrStdout(), validateJSONResponse{
					Summary:   result.Run.Summarize(),
					Outcomes:  result.Run.Outcomes,
					ReportDir: result.ReportDir,
					Placed:    !result.Run.ReportOnly,
				})
			} else {
				formatValidateHuman(cmd.OutOrStdout(), result)
			}

			if failOnInvalid && result.Run.NeedsAttention() {
				return &ReportsNeedAttentionError{
					Invalid:      result.Run.Count(domain.CategoryInvalid),
					Unstructured: result.Run.Count(domain.CategoryUnstructured),
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Folder holding the reports (default from config)")
	cmd.Flags().StringVar(&output, "output", "", "Base output folder (default from config)")
	cmd.Flags().BoolVar(&move, "move", false, "Move reports instead of copying them")
	cmd.Flags().BoolVar(&reportOnly, "report-only", true, "Write the reports without sorting files")
	cmd.Flags().BoolVar(&strict, "strict", false, "Require exact canonical labels (skip normalization)")
	cmd.Flags().BoolVar(&noRecursive, "no-recursive", false, "Only look at the top of the input folder")
	cmd.Flags().BoolVar(&showVal, "show-valid", false, "List valid reports in the console summary")
	cmd.Flags().IntVar(&workers, "workers", 0, "Reports read in parallel (default from config)")
	cmd.Flags().BoolVar(&failOnInvalid, "fail-on-invalid", false, "Exit with status 2 when any report is not valid")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Output results as JSON")

	return cmd
}

// formatValidateHuman writes the console summary of a run.
func formatValidateHuman(w io.Writer, result *ValidateResult) {
	run := result.Run
	for _, o := range run.Outcomes {
		if o.Category == domain.CategoryValid && !result.ShowValid {
			continue
		}
		fmt.Fprintf(w, "%s %s", report.Marker(o.Category), o.Document.RelPath)
		if len(o.Codes) > 0 {
			fmt.Fprintf(w, " (%s)", strings.Join(o.Codes, ", "))
		}
		if o.PlaceError != "" {
			fmt.Fprintf(w, " [not placed: %s]", o.PlaceError)
		}
		fmt.Fprintln(w)
	}

	total := run.Total()
	fmt.Fprintf(w, "\nProcessed %d reports", total)
	if run.Skipped > 0 {
		fmt.Fprintf(w, " (%d skipped in ignored folders)", run.Skipped)
	}
	fmt.Fprintln(w)
	for _, c := range domain.Categories() {
		n := run.Count(c)
		if c == domain.CategoryPM && n == 0 {
			continue
		}
		fmt.Fprintf(w, "  %s: %d (%.1f%%)\n", report.Marker(c), n, percent(n, total))
	}

	if ws := run.Words(domain.CategoryValid); ws.Count > 0 {
		fmt.Fprintf(w, "Valid report words: mean %.1f, median %.1f, range %d-%d\n", ws.Mean, ws.Median, ws.Min, ws.Max)
	}

	freq := run.ErrorFrequency()
	if len(freq) > 0 {
		fmt.Fprintln(w, "Top issues:")
		for i, cc := range freq {
			if i == topIssues {
				break
			}
			fmt.Fprintf(w, "  %s (%d)\n", cc.Code, cc.Count)
		}
	}

	if run.ReportOnly {
		fmt.Fprintf(w, "Reports written to %s (files not sorted)\n", result.ReportDir)
	} else {
		fmt.Fprintf(w, "Reports written and files sorted into %s\n", result.ReportDir)
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

func changedString(fl *pflag.FlagSet, name, v string) *string {
	if !fl.Changed(name) {
		return nil
	}
	return &v
}

func changedBool(fl *pflag.FlagSet, name string, v bool) *bool {
	if !fl.Changed(name) {
		return nil
	}
	return &v
}

func changedInt(fl *pflag.FlagSet, name string, v int) *int {
	if !fl.Changed(name) {
		return nil
	}
	return &v
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
