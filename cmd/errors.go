package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// ContextError adds operation and path context to an underlying error.
type ContextError struct {
	Op   string
	Path string
	Err  error
}

// Error returns the formatted error string with context.
func (e *ContextError) Error() string {
	if e.Op != "" && e.Path != "" {
		return e.Op + ": " + e.Path + ": " + e.Err.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + e.Err.Error()
	}
	if e.Path != "" {
		return e.Path + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ContextError) Unwrap() error {
	return e.Err
}

// ExitCoder is implemented by errors that carry a specific process exit code.
type ExitCoder interface {
	ExitCode() int
}

// FindingsDetectedError is returned when check detects findings.
type FindingsDetectedError struct {
	Errors   int
	Warnings int
}

// Error implements the error interface.
func (e *FindingsDetectedError) Error() string {
	return fmt.Sprintf("check found %d errors, %d warnings", e.Errors, e.Warnings)
}

// ExitCode returns the exit code for findings (always 2).
func (e *FindingsDetectedError) ExitCode() int {
	return 2
}

// ReportsNeedAttentionError is returned by validate --fail-on-invalid when
// any report was not valid.
type ReportsNeedAttentionError struct {
	Invalid      int
	Unstructured int
}

// Error implements the error interface.
func (e *ReportsNeedAttentionError) Error() string {
	return fmt.Sprintf("%d invalid and %d unstructured reports", e.Invalid, e.Unstructured)
}

// ExitCode returns 2.
func (e *ReportsNeedAttentionError) ExitCode() int {
	return 2
}

// ExitCodeFromError returns the appropriate exit code for an error.
// nil returns 0, ExitCoder errors return their code, all others return 1.
func ExitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

// FormatError formats an error with the "svcrpt: " prefix and trailing newline.
func FormatError(err error) string {
	return fmt.Sprintf("svcrpt: %s\n", err.Error())
}

// RunCLI executes the command with the given args, writing output to stdout
// and errors to stderr. It returns the appropriate exit code.
func RunCLI(cmd *cobra.Command, args []string, stdout io.Writer, stderr io.Writer) int {
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err != nil {
		fmt.Fprint(stderr, FormatError(err))
		return ExitCodeFromError(err)
	}
	return 0
}
