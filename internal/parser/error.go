package parser

import (
	"fmt"
	"strings"

	"github.com/mediahist/mdsl/internal/token"
)

// ErrorKind classifies syntax errors.
type ErrorKind int

const (
	UnexpectedToken ErrorKind = iota
	UnexpectedEOF
	MissingDelimiter
	InvalidSyntax
)

// Error is a syntax error with the offending token text and the set of
// token kinds the parser would have accepted.
type Error struct {
	Kind     ErrorKind
	Found    string
	Expected []string
	Message  string
	Pos      token.Position
}

func (e *Error) Error() string {
	switch e.Kind {
	case UnexpectedEOF:
		return fmt.Sprintf("%s: unexpected end of input: %s", e.Pos, e.Message)
	case MissingDelimiter:
		return fmt.Sprintf("%s: missing closing delimiter: %s", e.Pos, e.Message)
	case InvalidSyntax:
		return fmt.Sprintf("%s: invalid syntax: %s", e.Pos, e.Message)
	default:
		if len(e.Expected) > 0 {
			return fmt.Sprintf("%s: unexpected %q, expected %s",
				e.Pos, e.Found, strings.Join(e.Expected, " or "))
		}
		return fmt.Sprintf("%s: unexpected %q", e.Pos, e.Found)
	}
}
