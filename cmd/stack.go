package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eykd/svcrpt/internal/config"
	"github.com/eykd/svcrpt/internal/stack"
)

// StackFlags holds the stack flags the user set explicitly.
type StackFlags struct {
	Input    *string
	Output   *string
	Manifest *string
	// ConfigBased groups by the configured manifest instead of by folder.
	ConfigBased bool
	DryRun      bool
}

// Apply overlays the flags onto cfg.
func (f StackFlags) Apply(cfg *config.Config) {
	setString(&cfg.Source, f.Input)
	setString(&cfg.Stack.Output, f.Output)
	setString(&cfg.Stack.Manifest, f.Manifest)
}

// UsesManifest reports whether the run groups reports by manifest.
func (f StackFlags) UsesManifest() bool {
	return f.ConfigBased || f.Manifest != nil
}

// StackResult holds the outcome of a stack run.
type StackResult struct {
	*stack.Result
	OutputDir string `json:"output_dir"`
}

// StackRunner defines the interface for building stacks.
type StackRunner interface {
	Stack(ctx context.Context, flags StackFlags) (*StackResult, error)
}

// NewStackCmd creates the stack command with the given runner.
func NewStackCmd(runner StackRunner) *cobra.Command {
	var input, output, manifestPath string
	var configBased, dryRun, jsonFlag bool

	cmd := &cobra.Command{
		Use:   "stack",
		Short: "Concatenate reports into one Markdown document per stack",
		Long: "stack groups reports by folder, or by a manifest of ### headings and - file lists with " +
			"--config-based, and writes one combined document per group plus concat_log.txt.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fl := cmd.Flags()
			flags := StackFlags{
				Input:       changedString(fl, "input", input),
				Output:      changedString(fl, "output", output),
				Manifest:    changedString(fl, "manifest", manifestPath),
				ConfigBased: configBased,
				DryRun:      dryRun,
			}

			result, err := runner.Stack(cmd.Context(), flags)
			if err != nil {
				return err
			}

			if jsonFlag || GetJSON() {
				writeJSON(cmd.OutOrStdout(), result)
			} else {
				formatStackHuman(cmd.OutOrStdout(), result)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Folder holding the reports (default from config)")
	cmd.Flags().StringVar(&output, "output", "", "Folder for the stacks (default from config)")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Manifest file defining the stacks (implies --config-based)")
	cmd.Flags().BoolVar(&configBased, "config-based", false, "Group reports by the configured manifest")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be written without writing")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Output results as JSON")

	return cmd
}

// formatStackHuman writes one summary line per stack and a closing total.
func formatStackHuman(w io.Writer, result *StackResult) {
	for _, s := range result.Stacks {
		fmt.Fprintln(w, s.Summary)
		if len(s.Missing) > 0 {
			fmt.Fprintf(w, "  missing: %s\n", strings.Join(s.Missing, ", "))
		}
		if len(s.Failed) > 0 {
			fmt.Fprintf(w, "  unreadable: %s\n", strings.Join(s.Failed, ", "))
		}
	}
	for _, name := range result.Empty {
		fmt.Fprintf(w, "Skipped empty stack: %s\n", name)
	}
	if result.DryRun {
		fmt.Fprintf(w, "Dry run: would create %d stacks from %d files in %s\n", len(result.Stacks), result.Files, result.OutputDir)
		return
	}
	fmt.Fprintf(w, "Created %d stacks from %d files in %s\n", len(result.Stacks), result.Files, result.OutputDir)
}
