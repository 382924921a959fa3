package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// FindingType represents the kind of check finding.
type FindingType string

// Severity represents the severity level of a check finding.
type Severity string

const (
	// SeverityError represents an error-level finding.
	SeverityError Severity = "error"
	// SeverityWarning represents a warning-level finding.
	SeverityWarning Severity = "warning"
)

// CheckFinding represents a single finding from the check command.
type CheckFinding struct {
	Type     FindingType `json:"type"`
	Severity Severity    `json:"severity"`
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Path     string      `json:"path"`
}

// CheckResult holds all findings from a check run.
type CheckResult struct {
	Files    int            `json:"files"`
	Findings []CheckFinding `json:"findings"`
}

// CheckRequest selects what to check. An empty Paths checks the configured
// input folder.
type CheckRequest struct {
	Paths  []string
	Strict *bool
}

// CheckRunner defines the interface for checking reports without writing.
type CheckRunner interface {
	Check(ctx context.Context, req CheckRequest) (*CheckResult, error)
}

// checkJSONResponse is the JSON output structure for the check command.
type checkJSONResponse struct {
	Files    int            `json:"files"`
	Findings []CheckFinding `json:"findings"`
	Summary  struct {
		Errors   int `json:"errors"`
		Warnings int `json:"warnings"`
	} `json:"summary"`
}

// countBySeverity counts errors and warnings in a slice of findings.
func countBySeverity(findings []CheckFinding) (errCount, warnCount int) {
	for _, f := range findings {
		if f.Severity == SeverityError {
			errCount++
		} else {
			warnCount++
		}
	}
	return
}

// formatCheckJSON writes findings as JSON to w.
func formatCheckJSON(w io.Writer, result *CheckResult, errCount, warnCount int) {
	findings := result.Findings
	if findings == nil {
		findings = []CheckFinding{}
	}
	out := checkJSONResponse{Files: result.Files, Findings: findings}
	out.Summary.Errors = errCount
	out.Summary.Warnings = warnCount
	writeJSON(w, out)
}

// formatCheckHuman writes findings as human-readable text to w.
func formatCheckHuman(w io.Writer, result *CheckResult, errCount, warnCount int) {
	for _, f := range result.Findings {
		fmt.Fprintf(w, "%s [%s] %s: %s\n", f.Path, f.Severity, f.Type, f.Message)
	}
	if errCount > 0 || warnCount > 0 {
		fmt.Fprintf(w, "\n%d file(s) checked: %d error(s), %d warning(s)\n", result.Files, errCount, warnCount)
		return
	}
	fmt.Fprintf(w, "%d file(s) checked: no issues\n", result.Files)
}

// runCheckAndReport runs the checker and formats findings as JSON or human-readable text.
// It returns a FindingsDetectedError if any findings are present.
func runCheckAndReport(cmd *cobra.Command, runner CheckRunner, req CheckRequest, jsonOutput bool) error {
	result, err := runner.Check(cmd.Context(), req)
	if err != nil {
		return err
	}

	errCount, warnCount := countBySeverity(result.Findings)

	if jsonOutput {
		formatCheckJSON(cmd.OutOrStdout(), result, errCount, warnCount)
	} else {
		formatCheckHuman(cmd.OutOrStdout(), result, errCount, warnCount)
	}

	if len(result.Findings) > 0 {
		return &FindingsDetectedError{Errors: errCount, Warnings: warnCount}
	}
	return nil
}

// NewCheckCmd creates the check command with the given runner.
func NewCheckCmd(runner CheckRunner) *cobra.Command {
	var jsonFlag bool
	var strict bool

	cmd := &cobra.Command{
		Use:          "check [paths...]",
		Short:        "Check report files and folders without sorting anything",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := CheckRequest{Paths: args, Strict: changedBool(cmd.Flags(), "strict", strict)}
			return runCheckAndReport(cmd, runner, req, jsonFlag || GetJSON())
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "Require exact canonical labels (skip normalization)")

	return cmd
}
