package lexer

import (
	"fmt"

	"github.com/mediahist/mdsl/internal/token"
)

// ErrorKind classifies lexical failures.
type ErrorKind int

const (
	UnexpectedChar ErrorKind = iota
	UnterminatedString
	InvalidNumber
	InvalidEscape
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedChar:
		return "unexpected character"
	case UnterminatedString:
		return "unterminated string"
	case InvalidNumber:
		return "invalid number"
	case InvalidEscape:
		return "invalid escape sequence"
	default:
		return "lexical error"
	}
}

// Error is a fatal lexical error anchored to the exact source position
// where the offending token starts.
type Error struct {
	Kind    ErrorKind
	Message string
	Pos     token.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
}

func newError(kind ErrorKind, pos token.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}
