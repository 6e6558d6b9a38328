// Package cli implements the mdsl command-line driver. The core
// pipeline packages never touch the filesystem; every read, write
// and exit code lives here.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the root command for the mdsl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mdsl",
		Short: "mdsl - media history DSL compiler",
		Long: `Compiles mdsl sources describing media outlets, lifecycles,
relationships and market metrics into SQL and graph scripts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewLexCommand(opts))
	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewSQLANMICommand(opts))
	cmd.AddCommand(NewCypherCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))

	return cmd
}

// Execute runs the root command and returns a process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// formatter builds the output formatter for one command invocation,
// bound to the cobra writers so tests can capture it.
func (o *RootOptions) formatter(cmd *cobra.Command, format string) *OutputFormatter {
	return &OutputFormatter{
		Format:    format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// readSource loads an mdsl file for a command.
func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", WrapExitError(ExitFailure, "read source", err)
	}
	return string(data), nil
}
