package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediahist/mdsl/internal/parser"
	"github.com/mediahist/mdsl/internal/validator"
)

var validateFormats = []string{"text", "json", "csv"}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var format string
	var noColor bool

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate an mdsl source file",
		Long: `Parses and validates an mdsl file, reporting every issue found.

Exit code is 0 when validation passes and 1 when parsing fails or
the program has at least one error.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !contains(validateFormats, format) {
				return NewExitError(ExitFailure,
					fmt.Sprintf("invalid format %q: must be one of %v", format, validateFormats))
			}
			return runValidate(cmd, args[0], format, noColor)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "report format (text|json|csv)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI colors in text output")
	return cmd
}

func runValidate(cmd *cobra.Command, path, format string, noColor bool) error {
	src, err := readSource(path)
	if err != nil {
		return err
	}

	prog, parseErr := parser.Parse(src)
	if parseErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, parseErr)
		return NewExitError(ExitFailure, "parse failed")
	}

	result := validator.Validate(prog)

	var out string
	switch format {
	case "json":
		out, err = validator.FormatJSON(result)
	case "csv":
		out, err = validator.FormatCSV(result)
	default:
		if noColor {
			out = validator.FormatText(result)
		} else {
			out = validator.FormatConsole(result)
		}
	}
	if err != nil {
		return WrapExitError(ExitFailure, "format report", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)

	if !result.Passed {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", result.Errors))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
