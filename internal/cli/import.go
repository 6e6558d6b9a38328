package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediahist/mdsl/internal/compiler"
	"github.com/mediahist/mdsl/internal/ir"
	"github.com/mediahist/mdsl/internal/parser"
	"github.com/mediahist/mdsl/internal/sqlgen"
	"github.com/mediahist/mdsl/internal/store"
)

// NewImportCommand creates the import command: compile a source file
// to the generic schema and load it into a SQLite database in one
// transaction.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:           "import <file>",
		Short:         "Compile an mdsl file and import it into a SQLite database",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd, "text")

			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			prog, err := parser.Parse(src)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", args[0], err)
				return NewExitError(ExitFailure, "parse failed")
			}

			irProg := compiler.Lower(prog)
			fingerprint, err := ir.Fingerprint(irProg)
			if err != nil {
				return WrapExitError(ExitFailure, "fingerprint program", err)
			}
			f.VerboseLog("fingerprint: %s", fingerprint)
			script := sqlgen.EmitGeneric(irProg)

			db, err := store.Open(dbPath)
			if err != nil {
				return WrapExitError(ExitFailure, "open database", err)
			}
			defer db.Close()

			result, err := db.ImportScript(cmd.Context(), script, store.ImportMeta{
				SourceFile:  args[0],
				Fingerprint: fingerprint,
			})
			if err != nil {
				return WrapExitError(ExitFailure, "import script", err)
			}

			return f.Success(fmt.Sprintf("imported %d statement(s) as batch %s",
				result.Statements, result.BatchID))
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "mdsl.db", "SQLite database path")
	return cmd
}
