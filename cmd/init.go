package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eykd/svcrpt/internal/config"
)

// NewInitCmd creates the init command. The getwd function returns the working
// directory where the project will be initialized.
func NewInitCmd(getwd func() (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:          "init",
		Short:        "Write a starter svcrpt.yaml and create the input folder",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := getwd()
			if err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}

			cfg := config.Default()
			input := filepath.Join(cwd, cfg.Source)
			if err := os.MkdirAll(input, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", cfg.Source, err)
			}

			path := filepath.Join(cwd, config.DefaultFile)
			err = config.Write(path, cfg)
			if errors.Is(err, os.ErrExist) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", config.DefaultFile)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized svcrpt project: wrote %s, put reports in %s/\n", config.DefaultFile, cfg.Source)
			return nil
		},
	}
}
