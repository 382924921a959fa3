package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NormalizeResult holds the outcome of normalizing one report.
type NormalizeResult struct {
	Path       string   `json:"path"`
	Normalized string   `json:"normalized"`
	Changed    bool     `json:"changed"`
	Applied    bool     `json:"applied"`
	Codes      []string `json:"codes"`
}

// NormalizeRunner defines the interface for normalizing a report file.
type NormalizeRunner interface {
	Normalize(ctx context.Context, path string, apply bool) (*NormalizeResult, error)
}

// NewNormalizeCmd creates the normalize command with the given runner.
func NewNormalizeCmd(runner NormalizeRunner) *cobra.Command {
	var applyFlag bool
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "normalize <file>",
		Short: "Rewrite known label variants of a report to the canonical labels",
		Long: "normalize prints the report with every known field label variant replaced by its canonical label. " +
			"With --apply the file is rewritten in place.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runner.Normalize(cmd.Context(), args[0], applyFlag)
			if err != nil {
				return &ContextError{Op: "normalize", Path: args[0], Err: err}
			}

			w := cmd.OutOrStdout()
			switch {
			case jsonFlag || GetJSON():
				writeJSON(w, result)
			case !applyFlag:
				fmt.Fprint(w, result.Normalized)
			case result.Applied:
				fmt.Fprintf(w, "Normalized %s\n", result.Path)
			default:
				fmt.Fprintf(w, "%s is already normalized\n", result.Path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&applyFlag, "apply", false, "Rewrite the file in place")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Output results as JSON")

	return cmd
}
