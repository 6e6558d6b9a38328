package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediahist/mdsl/internal/harness"
)

// NewTestCommand creates the test command, which runs a directory of
// YAML conformance scenarios through the whole pipeline.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:           "test",
		Short:         "Run conformance scenarios",
		Long:          "Loads YAML scenarios from the scenario directory and runs each through lex, parse, validate and the emitters.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := harness.LoadDir(dir)
			if err != nil {
				return WrapExitError(ExitFailure, "load scenarios", err)
			}
			if len(scenarios) == 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("no scenarios in %s", dir))
			}

			failed := 0
			for _, result := range harness.RunAll(scenarios) {
				if result.Pass {
					fmt.Fprintf(cmd.OutOrStdout(), "PASS %s\n", result.Name)
					continue
				}
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s\n", result.Name)
				for _, failure := range result.Failures {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", failure)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d scenario(s), %d failed\n", len(scenarios), failed)

			if failed > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "scenarios", "directory containing scenario YAML files")
	return cmd
}
