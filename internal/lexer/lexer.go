// Package lexer implements the single-pass scanner for mdsl source
// documents. It produces a flat token stream with exact source
// positions; newlines are kept as tokens so the parser can honor
// optional statement separation.
package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mediahist/mdsl/internal/token"
)

// Lexer scans a UTF-8 source string.
type Lexer struct {
	src    string
	offset int // byte offset of the next rune
	line   int
	column int
}

// New creates a Lexer over src.
func New(src string) *Lexer {
	return &Lexer{src: src, line: 1, column: 1}
}

// Tokenize scans the entire input and returns the token stream,
// terminated by an EOF token. The first lexical error aborts the scan.
func Tokenize(src string) ([]token.Token, error) {
	return New(src).Tokenize()
}

// Tokenize scans the remaining input.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var toks []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) pos() token.Position {
	return token.Position{Line: l.line, Column: l.column, Offset: l.offset}
}

func (l *Lexer) eof() bool { return l.offset >= len(l.src) }

// peek returns the next rune without consuming it.
func (l *Lexer) peek() rune {
	if l.eof() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
	return r
}

// peekAt returns the rune n bytes ahead of the cursor (ASCII lookahead).
func (l *Lexer) peekAt(n int) byte {
	if l.offset+n >= len(l.src) {
		return 0
	}
	return l.src[l.offset+n]
}

// advance consumes one rune, maintaining line/column counters.
func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.offset:])
	l.offset += size
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *Lexer) next() (token.Token, error) {
	l.skipSpaces()

	start := l.pos()
	if l.eof() {
		return token.Token{Kind: token.EOF, Pos: start}, nil
	}

	r := l.peek()
	switch {
	case r == '\n':
		l.advance()
		return token.Token{Kind: token.Newline, Text: "\n", Pos: start}, nil
	case r == '/' && l.peekAt(1) == '/':
		return l.scanLineComment(start), nil
	case r == '#':
		return l.scanLineComment(start), nil
	case r == '/' && l.peekAt(1) == '*':
		return l.scanBlockComment(start)
	case r == '@':
		return l.scanAnnotation(start)
	case r == '"':
		return l.scanString(start)
	case r >= '0' && r <= '9':
		return l.scanNumber(start)
	case isIdentStart(r):
		return l.scanIdentifier(start), nil
	}

	if kind, ok := punct[r]; ok {
		l.advance()
		return token.Token{Kind: kind, Text: string(r), Pos: start}, nil
	}

	return token.Token{}, newError(UnexpectedChar, start, "unexpected character %q", r)
}

// skipSpaces discards horizontal whitespace. Newlines are significant
// and become tokens.
func (l *Lexer) skipSpaces() {
	for !l.eof() {
		switch l.peek() {
		case ' ', '\t', '\r':
			l.advance()
		default:
			return
		}
	}
}

var punct = map[rune]token.Kind{
	'=': token.Assign,
	';': token.Semicolon,
	':': token.Colon,
	',': token.Comma,
	'.': token.Dot,
	'$': token.Dollar,
	'{': token.LBrace,
	'}': token.RBrace,
	'(': token.LParen,
	')': token.RParen,
	'[': token.LBracket,
	']': token.RBracket,
	'<': token.Less,
	'>': token.Greater,
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9') || r == '.'
}

func (l *Lexer) scanLineComment(start token.Position) token.Token {
	begin := l.offset
	for !l.eof() && l.peek() != '\n' {
		l.advance()
	}
	return token.Token{Kind: token.LineComment, Text: l.src[begin:l.offset], Pos: start}
}

// scanBlockComment consumes `/* ... */`. An unterminated block comment
// reports UnterminatedString with the open position; the error kind is
// reused on purpose.
func (l *Lexer) scanBlockComment(start token.Position) (token.Token, error) {
	begin := l.offset
	l.advance() // '/'
	l.advance() // '*'
	for !l.eof() {
		if l.peek() == '*' && l.peekAt(1) == '/' {
			l.advance()
			l.advance()
			return token.Token{Kind: token.BlockComment, Text: l.src[begin:l.offset], Pos: start}, nil
		}
		l.advance()
	}
	return token.Token{}, newError(UnterminatedString, start, "block comment is never closed")
}

// scanAnnotation consumes `@name` plus an optional payload given as a
// following string literal or `= "string"`.
func (l *Lexer) scanAnnotation(start token.Position) (token.Token, error) {
	l.advance() // '@'
	if !isIdentStart(l.peek()) {
		return token.Token{}, newError(UnexpectedChar, start, "annotation name expected after '@'")
	}
	nameBegin := l.offset
	for !l.eof() && isIdentPart(l.peek()) {
		l.advance()
	}
	name := l.src[nameBegin:l.offset]

	// Optional payload on the same line.
	save := *l
	l.skipSpaces()
	if l.peek() == '=' {
		l.advance()
		l.skipSpaces()
	}
	if l.peek() == '"' {
		strTok, err := l.scanString(l.pos())
		if err != nil {
			return token.Token{}, err
		}
		return token.Token{Kind: token.Annotation, Text: name, Str: strTok.Str, Pos: start}, nil
	}
	*l = save
	return token.Token{Kind: token.Annotation, Text: name, Str: "", Pos: start}, nil
}

func (l *Lexer) scanString(start token.Position) (token.Token, error) {
	begin := l.offset
	l.advance() // opening quote
	var b strings.Builder
	for {
		if l.eof() {
			return token.Token{}, newError(UnterminatedString, start, "string literal is never closed")
		}
		r := l.peek()
		switch r {
		case '"':
			l.advance()
			return token.Token{
				Kind: token.String,
				Text: l.src[begin:l.offset],
				Str:  b.String(),
				Pos:  start,
			}, nil
		case '\n':
			return token.Token{}, newError(UnterminatedString, start, "newline inside string literal")
		case '\\':
			escPos := l.pos()
			l.advance()
			if l.eof() {
				return token.Token{}, newError(UnterminatedString, start, "string literal is never closed")
			}
			esc := l.advance()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			default:
				return token.Token{}, newError(InvalidEscape, escPos, "unknown escape sequence '\\%c'", esc)
			}
		default:
			l.advance()
			b.WriteRune(r)
		}
	}
}

// scanNumber consumes an integer with an optional fractional part.
// A dot is only part of the number when a digit follows it, so `1.`
// lexes as number `1` followed by '.'.
func (l *Lexer) scanNumber(start token.Position) (token.Token, error) {
	begin := l.offset
	for !l.eof() && l.peek() >= '0' && l.peek() <= '9' {
		l.advance()
	}
	if l.peek() == '.' && l.peekAt(1) >= '0' && l.peekAt(1) <= '9' {
		l.advance()
		for !l.eof() && l.peek() >= '0' && l.peek() <= '9' {
			l.advance()
		}
	}
	text := l.src[begin:l.offset]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token.Token{}, newError(InvalidNumber, start, "cannot parse number %q", text)
	}
	return token.Token{Kind: token.Number, Text: text, Num: value, Pos: start}, nil
}

func (l *Lexer) scanIdentifier(start token.Position) token.Token {
	begin := l.offset
	for !l.eof() && isIdentPart(l.peek()) {
		l.advance()
	}
	text := l.src[begin:l.offset]

	switch strings.ToLower(text) {
	case "true":
		return token.Token{Kind: token.Boolean, Text: text, Bool: true, Pos: start}
	case "false":
		return token.Token{Kind: token.Boolean, Text: text, Bool: false, Pos: start}
	}
	if kind, ok := token.Lookup(text); ok {
		return token.Token{Kind: kind, Text: text, Pos: start}
	}
	return token.Token{Kind: token.Identifier, Text: text, Pos: start}
}
