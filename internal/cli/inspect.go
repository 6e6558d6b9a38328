package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediahist/mdsl/internal/ast"
	"github.com/mediahist/mdsl/internal/compiler"
	"github.com/mediahist/mdsl/internal/ir"
	"github.com/mediahist/mdsl/internal/lexer"
	"github.com/mediahist/mdsl/internal/parser"
	"github.com/mediahist/mdsl/internal/token"
)

// NewLexCommand creates the lex command, which dumps the token
// stream one token per line.
func NewLexCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "lex <file>",
		Short:         "Tokenize an mdsl source file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			toks, err := lexer.Tokenize(src)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", args[0], err)
				return NewExitError(ExitFailure, "lex failed")
			}
			for _, tok := range toks {
				if tok.Kind == token.Newline {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", tok.Pos, tok.Kind, tok.Text)
			}
			return nil
		},
	}
}

// NewParseCommand creates the parse command, which prints a summary
// of the parsed program as text or as a JSON envelope.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:           "parse <file>",
		Short:         "Parse an mdsl source file and summarize its AST",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return NewExitError(ExitFailure, fmt.Sprintf("invalid format %q: must be one of [text json]", format))
			}
			f := rootOpts.formatter(cmd, format)

			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			prog, err := parser.Parse(src)
			if err != nil {
				f.Error("PARSE_FAILED", fmt.Sprintf("%s: %v", args[0], err), nil)
				return NewExitError(ExitFailure, "parse failed")
			}

			s := summarize(prog)
			f.VerboseLog("fingerprint: %s", s.Fingerprint)
			if format == "json" {
				return f.Success(s)
			}
			return f.Success(fmt.Sprintf(
				"parsed %d top-level item(s): %d unit(s), %d vocabular(ies), %d template(s), %d famil(ies), %d outlet(s)",
				s.Items, s.Units, s.Vocabularies, s.Templates, s.Families, s.Outlets))
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format (text, json)")
	return cmd
}

type parseSummary struct {
	Items        int    `json:"items"`
	Units        int    `json:"units"`
	Vocabularies int    `json:"vocabularies"`
	Templates    int    `json:"templates"`
	Families     int    `json:"families"`
	Outlets      int    `json:"outlets"`
	Fingerprint  string `json:"fingerprint"`
}

func summarize(prog *ast.Program) parseSummary {
	s := parseSummary{Items: len(prog.Items)}
	for _, item := range prog.Items {
		switch n := item.(type) {
		case *ast.Unit:
			s.Units++
		case *ast.Vocabulary:
			s.Vocabularies++
		case *ast.Template:
			s.Templates++
		case *ast.Family:
			s.Families++
			for _, member := range n.Members {
				if _, ok := member.(*ast.Outlet); ok {
					s.Outlets++
				}
			}
		}
	}
	if fp, err := ir.Fingerprint(compiler.Lower(prog)); err == nil {
		s.Fingerprint = fp
	}
	return s
}
