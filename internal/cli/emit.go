package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mediahist/mdsl/internal/compiler"
	"github.com/mediahist/mdsl/internal/cyphergen"
	"github.com/mediahist/mdsl/internal/ir"
	"github.com/mediahist/mdsl/internal/parser"
	"github.com/mediahist/mdsl/internal/sqlgen"
)

// NewSQLCommand creates the sql command (generic schema).
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	return newEmitCommand(rootOpts, "sql", "Generate SQL for the generic relational schema", sqlgen.EmitGeneric)
}

// NewSQLANMICommand creates the sql-anmi command (graphv3 schema).
func NewSQLANMICommand(rootOpts *RootOptions) *cobra.Command {
	return newEmitCommand(rootOpts, "sql-anmi", "Generate SQL for the legacy ANMI graphv3 schema", sqlgen.EmitANMI)
}

// NewCypherCommand creates the cypher command.
func NewCypherCommand(rootOpts *RootOptions) *cobra.Command {
	return newEmitCommand(rootOpts, "cypher", "Generate a property-graph script", cyphergen.Emit)
}

// newEmitCommand builds one parse-lower-emit command. The emitters
// do not re-validate; a syntactically valid program always emits.
func newEmitCommand(rootOpts *RootOptions, name, short string, emit func(*ir.Program) string) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:           name + " <file>",
		Short:         short,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := compileScript(cmd, rootOpts, args[0], emit)
			if err != nil {
				return err
			}
			if outPath != "" {
				if err := os.WriteFile(outPath, []byte(script), 0o644); err != nil {
					return WrapExitError(ExitFailure, "write output", err)
				}
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), script)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the script to a file instead of stdout")
	return cmd
}

func compileScript(cmd *cobra.Command, rootOpts *RootOptions, path string, emit func(*ir.Program) string) (string, error) {
	src, err := readSource(path)
	if err != nil {
		return "", err
	}
	prog, err := parser.Parse(src)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
		return "", NewExitError(ExitFailure, "parse failed")
	}

	irProg := compiler.Lower(prog)
	if fp, err := ir.Fingerprint(irProg); err == nil {
		rootOpts.formatter(cmd, "text").VerboseLog("fingerprint: %s", fp)
	}
	return emit(irProg), nil
}
