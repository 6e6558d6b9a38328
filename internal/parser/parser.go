// Package parser implements the recursive-descent parser for mdsl.
// It consumes the lexer's token stream with a single token of
// lookahead and produces an ast.Program. On a syntax error the parser
// reports the offending token with its expected set, synchronizes to
// the next statement boundary, and keeps going; the public entry
// points return the first recorded error.
package parser

import (
	"fmt"

	"github.com/mediahist/mdsl/internal/ast"
	"github.com/mediahist/mdsl/internal/lexer"
	"github.com/mediahist/mdsl/internal/token"
)

// Parser holds the token cursor and the accumulated syntax errors.
type Parser struct {
	toks []token.Token
	pos  int
	errs []*Error
}

// Parse lexes and parses an mdsl source document. Lexer errors are
// fatal; parser errors are recovered from, and the first one is
// returned alongside the partial program.
func Parse(src string) (*ast.Program, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks)
}

// ParseTokens parses an already-lexed token stream.
func ParseTokens(toks []token.Token) (*ast.Program, error) {
	p := &Parser{toks: toks}
	prog := p.parseProgram()
	if len(p.errs) > 0 {
		return prog, p.errs[0]
	}
	return prog, nil
}

// Errors returns every syntax error recorded during the parse.
func (p *Parser) Errors() []*Error { return p.errs }

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		if len(p.toks) == 0 {
			return token.Token{Kind: token.EOF}
		}
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) next() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) at(kind token.Kind) bool { return p.cur().Kind == kind }

func (p *Parser) accept(kind token.Kind) (token.Token, bool) {
	if p.at(kind) {
		return p.next(), true
	}
	return token.Token{}, false
}

// expect consumes a token of the given kind or records an
// unexpected-token error and returns ok=false without advancing.
func (p *Parser) expect(kind token.Kind) (token.Token, bool) {
	if p.at(kind) {
		return p.next(), true
	}
	p.errorExpected(kind.String())
	return p.cur(), false
}

// errorExpected records an unexpected-token error at the cursor.
func (p *Parser) errorExpected(expected ...string) {
	cur := p.cur()
	kind := UnexpectedToken
	found := cur.Text
	if cur.Kind == token.EOF {
		kind = UnexpectedEOF
		found = "EOF"
	}
	p.errs = append(p.errs, &Error{
		Kind:     kind,
		Found:    found,
		Expected: expected,
		Message:  fmt.Sprintf("expected %v", expected),
		Pos:      cur.Pos,
	})
}

func (p *Parser) errorf(kind ErrorKind, pos token.Position, format string, args ...any) {
	p.errs = append(p.errs, &Error{
		Kind:    kind,
		Found:   p.cur().Text,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	})
}

// skipTrivia discards newlines and comments. Statement separators are
// optional between declarations, so callers invoke this freely.
func (p *Parser) skipTrivia() {
	for {
		switch p.cur().Kind {
		case token.Newline, token.LineComment, token.BlockComment:
			p.next()
		default:
			return
		}
	}
}

// skipSeparators discards newlines, comments and stray semicolons
// between statements.
func (p *Parser) skipSeparators() {
	for {
		switch p.cur().Kind {
		case token.Newline, token.LineComment, token.BlockComment, token.Semicolon:
			p.next()
		default:
			return
		}
	}
}

// sync advances to the next statement boundary after an error: a
// semicolon, or one of the top-level declaration keywords.
func (p *Parser) sync() {
	for !p.at(token.EOF) {
		switch p.cur().Kind {
		case token.Semicolon:
			p.next()
			return
		case token.KwImport, token.KwLet, token.KwUnit, token.KwVocabulary,
			token.KwFamily, token.KwTemplate, token.KwData:
			return
		}
		p.next()
	}
}

// skipBalanced consumes a brace-delimited region, balancing nested
// braces. Used for constructs the grammar records as empty shells.
// The cursor must be on '{'.
func (p *Parser) skipBalanced() bool {
	open, ok := p.expect(token.LBrace)
	if !ok {
		return false
	}
	depth := 1
	for depth > 0 {
		switch p.cur().Kind {
		case token.EOF:
			p.errorf(MissingDelimiter, open.Pos, "'{' is never closed")
			return false
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
		}
		p.next()
	}
	return true
}

// name consumes an identifier, accepting keywords as plain names where
// the grammar allows field names like "id" or "status".
func (p *Parser) name() (string, token.Position, bool) {
	cur := p.cur()
	if cur.Kind == token.Identifier || cur.Kind.IsKeyword() {
		p.next()
		return cur.Text, cur.Pos, true
	}
	p.errorExpected("identifier")
	return "", cur.Pos, false
}

// parseProgram is the top-level dispatch loop.
func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for {
		for p.at(token.Newline) || p.at(token.Semicolon) {
			p.next()
		}
		cur := p.cur()
		if cur.Kind == token.EOF {
			return prog
		}

		var item ast.Item
		switch cur.Kind {
		case token.LineComment, token.BlockComment:
			p.next()
			item = &ast.Comment{Text: cur.Text, Position: cur.Pos}
		case token.Annotation:
			p.next()
			item = &ast.Comment{Text: "@" + cur.Text + " " + cur.Str, Position: cur.Pos}
		case token.KwImport:
			item = p.parseImport()
		case token.KwLet:
			item = p.parseVariable()
		case token.KwUnit:
			item = p.parseUnit()
		case token.KwVocabulary:
			item = p.parseVocabulary()
		case token.KwFamily, token.KwGroup:
			item = p.parseFamily()
		case token.KwTemplate:
			item = p.parseTemplate()
		case token.KwData:
			item = p.parseData()
		case token.KwDiachronicLink:
			item = p.parseDiachronicLink()
		case token.KwSynchronousLink:
			item = p.parseSynchronousLink()
		case token.KwEvent:
			item = p.parseEvent()
		case token.KwCatalog:
			item = p.parseCatalog()
		case token.Identifier:
			item = p.parseBareVocabulary()
		default:
			p.errorExpected("declaration")
			p.sync()
			continue
		}

		if item != nil {
			prog.Items = append(prog.Items, item)
		} else {
			p.sync()
		}
	}
}

// parseImport parses `IMPORT "path" [;]`.
func (p *Parser) parseImport() ast.Item {
	kw := p.next()
	path, ok := p.expect(token.String)
	if !ok {
		return nil
	}
	p.accept(token.Semicolon)
	return &ast.Import{Path: path.Str, Position: kw.Pos}
}

// parseVariable parses `LET name = expr [;]`.
func (p *Parser) parseVariable() ast.Item {
	kw := p.next()
	name, _, ok := p.name()
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.Assign); !ok {
		return nil
	}
	value := p.parseExpr()
	if value == nil {
		return nil
	}
	p.accept(token.Semicolon)
	return &ast.Variable{Name: name, Value: value, Position: kw.Pos}
}
