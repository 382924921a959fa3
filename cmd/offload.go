package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// OffloadRequest holds the offload flags the user set explicitly. Empty
// fields fall back to the configured folders.
type OffloadRequest struct {
	Input        string
	Unstructured string
	Offload      string
}

// OffloadResult holds the outcome of an offload run.
type OffloadResult struct {
	Moved     []string          `json:"moved"`
	Missing   []string          `json:"missing"`
	Failed    map[string]string `json:"failed"`
	Remaining int               `json:"remaining"`
	Target    string            `json:"target"`
}

// OffloadRunner defines the interface for moving unstructured reports out
// of the input folder.
type OffloadRunner interface {
	Offload(ctx context.Context, req OffloadRequest) (*OffloadResult, error)
}

// NewOffloadCmd creates the offload command with the given runner.
func NewOffloadCmd(runner OffloadRunner) *cobra.Command {
	var req OffloadRequest
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "offload",
		Short: "Move reports sorted as unstructured out of the input folder",
		Long: "offload looks at the file names in the unstructured folder of the last validate run and " +
			"moves the input reports with those names into the offload folder.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runner.Offload(cmd.Context(), req)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if jsonFlag || GetJSON() {
				writeJSON(w, result)
				return nil
			}
			for _, name := range result.Missing {
				fmt.Fprintf(w, "not in input folder: %s\n", name)
			}
			names := make([]string, 0, len(result.Failed))
			for name := range result.Failed {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(w, "could not move %s: %s\n", name, result.Failed[name])
			}
			fmt.Fprintf(w, "Moved %d reports to %s; %d reports remain in the input folder\n",
				len(result.Moved), result.Target, result.Remaining)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Input, "input", "", "Folder holding the reports (default from config)")
	cmd.Flags().StringVar(&req.Unstructured, "unstructured", "", "Folder listing the unstructured reports (default <output>/validated/unstructured)")
	cmd.Flags().StringVar(&req.Offload, "offload", "", "Destination folder (default <output>/offload)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Output results as JSON")

	return cmd
}
