// Package cmd contains the CLI commands for the svcrpt application.
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd *cobra.Command

// Global flag state shared by every subcommand.
var (
	verbose    bool
	jsonOutput bool
	configPath string
	logFile    string
)

func init() {
	rootCmd = BuildCommandTree(newEnvironment(os.Getwd, os.Stderr))
}

// GetVerbose returns the current verbose flag state.
// This is used by other packages to check if debug logging is enabled.
func GetVerbose() bool {
	return verbose
}

// GetJSON reports whether the global --json flag is set.
func GetJSON() bool {
	return jsonOutput
}

// GetConfigPath returns the --config flag value.
func GetConfigPath() string {
	return configPath
}

// GetLogFile returns the --log-file flag value.
func GetLogFile() string {
	return logFile
}

// NewRootCmd creates a new root command instance.
// This is useful for testing to get a fresh command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "svcrpt",
		Short:         "Validate, sort and stack service-visit reports",
		SilenceErrors: true,
		Long: "svcrpt checks service-visit report Markdown files for the required labeled fields, " +
			"sorts them into valid, invalid and unstructured folders, and stacks them into combined documents.",
	}

	// Add persistent flags (available to all subcommands)
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: nearest svcrpt.yaml)")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

// BuildCommandTree creates the root command with every subcommand wired to
// adapters over env.
func BuildCommandTree(env *environment) *cobra.Command {
	root := NewRootCmd()
	root.AddCommand(
		NewValidateCmd(&validateAdapter{env: env}),
		NewCheckCmd(&checkAdapter{env: env}),
		NewNormalizeCmd(&normalizeAdapter{env: env}),
		NewStackCmd(&stackAdapter{env: env}),
		NewOffloadCmd(&offloadAdapter{env: env}),
		NewFieldsCmd(catalogSource{}),
		NewInitCmd(env.getwd),
	)
	return root
}

// Execute runs the root command and returns any error.
// Deprecated: Use ExecuteContext instead for proper signal handling.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context.
// This enables graceful shutdown via context cancellation (e.g., on SIGINT).
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// Run executes the root command with args, printing errors the svcrpt way,
// and returns the process exit code.
func Run(ctx context.Context, args []string) int {
	rootCmd.SetContext(ctx)
	return RunCLI(rootCmd, args, os.Stdout, os.Stderr)
}
