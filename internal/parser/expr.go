package parser

import (
	"github.com/mediahist/mdsl/internal/ast"
	"github.com/mediahist/mdsl/internal/token"
)

// parseExpr parses an expression: `$ident`, string, number, boolean,
// object literal, or array literal.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseExprPromote(false)
}

// parseExprPromote parses an expression; with promotePeriod set, a
// string followed by TO is promoted to a period value. Promotion only
// applies inside object literals.
func (p *Parser) parseExprPromote(promotePeriod bool) ast.Expr {
	cur := p.cur()
	switch cur.Kind {
	case token.Dollar:
		p.next()
		name, pos, ok := p.name()
		if !ok {
			return nil
		}
		return &ast.VarRef{Name: name, Position: pos}
	case token.String:
		p.next()
		if promotePeriod && p.at(token.KwTo) {
			p.next()
			to, ok := p.parseDate()
			if !ok {
				return nil
			}
			return &ast.PeriodLit{
				From:     ast.DateValue{Literal: cur.Str, Position: cur.Pos},
				To:       to,
				Position: cur.Pos,
			}
		}
		return &ast.StringLit{Value: cur.Str, Position: cur.Pos}
	case token.Number:
		p.next()
		return &ast.NumberLit{Value: cur.Num, Position: cur.Pos}
	case token.Boolean:
		p.next()
		return &ast.BoolLit{Value: cur.Bool, Position: cur.Pos}
	case token.KwCurrent:
		// CURRENT appears as a bare value in free-form blocks.
		p.next()
		return &ast.StringLit{Value: "CURRENT", Position: cur.Pos}
	case token.LBrace:
		return p.parseObject()
	case token.LBracket:
		return p.parseArray()
	default:
		p.errorExpected("expression")
		return nil
	}
}

// parseObject parses `{ (name = expr;)* }`. Field values may be
// promoted periods (`"D" TO CURRENT`).
func (p *Parser) parseObject() ast.Expr {
	open := p.next()
	obj := &ast.ObjectLit{Position: open.Pos}
	for {
		p.skipSeparators()
		if _, ok := p.accept(token.RBrace); ok {
			return obj
		}
		if p.at(token.EOF) {
			p.errorf(MissingDelimiter, open.Pos, "object literal is never closed")
			return obj
		}

		name, pos, ok := p.name()
		if !ok {
			return obj
		}
		if _, ok := p.expect(token.Assign); !ok {
			return obj
		}
		value := p.parseExprPromote(true)
		if value == nil {
			return obj
		}
		obj.Fields = append(obj.Fields, ast.Assignment{Name: name, Value: value, Position: pos})
		p.accept(token.Semicolon)
		p.accept(token.Comma)
	}
}

// parseArray parses `[ expr, expr, ... ]`.
func (p *Parser) parseArray() ast.Expr {
	open := p.next()
	arr := &ast.ArrayLit{Position: open.Pos}
	for {
		p.skipSeparators()
		if _, ok := p.accept(token.RBracket); ok {
			return arr
		}
		if p.at(token.EOF) {
			p.errorf(MissingDelimiter, open.Pos, "array literal is never closed")
			return arr
		}

		elem := p.parseExpr()
		if elem == nil {
			return arr
		}
		arr.Elems = append(arr.Elems, elem)
		p.skipSeparators()
		p.accept(token.Comma)
	}
}

// parseDate parses a string literal or the CURRENT keyword.
func (p *Parser) parseDate() (ast.DateValue, bool) {
	cur := p.cur()
	switch cur.Kind {
	case token.String:
		p.next()
		return ast.DateValue{Literal: cur.Str, Position: cur.Pos}, true
	case token.KwCurrent:
		p.next()
		return ast.DateValue{Current: true, Position: cur.Pos}, true
	default:
		p.errorExpected("date string", "CURRENT")
		return ast.DateValue{}, false
	}
}
