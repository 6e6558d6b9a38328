package parser

import (
	"github.com/mediahist/mdsl/internal/ast"
	"github.com/mediahist/mdsl/internal/token"
)

// parseUnit parses `UNIT name { field,* }`. A trailing comma before
// '}' is permitted, as are repeated commas between fields.
func (p *Parser) parseUnit() ast.Item {
	kw := p.next()
	name, _, ok := p.name()
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.LBrace); !ok {
		return nil
	}

	unit := &ast.Unit{Name: name, Position: kw.Pos}
	for {
		p.skipTrivia()
		for p.at(token.Comma) {
			p.next()
			p.skipTrivia()
		}
		if _, ok := p.accept(token.RBrace); ok {
			return unit
		}
		if p.at(token.EOF) {
			p.errorf(MissingDelimiter, kw.Pos, "UNIT %s body is never closed", name)
			return unit
		}

		field, ok := p.parseUnitField()
		if !ok {
			p.sync()
			return unit
		}
		unit.Fields = append(unit.Fields, field)
	}
}

// parseUnitField parses `ident : type [PRIMARY KEY]`.
func (p *Parser) parseUnitField() (ast.UnitField, bool) {
	name, pos, ok := p.name()
	if !ok {
		return ast.UnitField{}, false
	}
	if _, ok := p.expect(token.Colon); !ok {
		return ast.UnitField{}, false
	}
	typ, ok := p.parseFieldType()
	if !ok {
		return ast.UnitField{}, false
	}

	field := ast.UnitField{Name: name, Type: typ, Position: pos}
	if _, ok := p.accept(token.KwPrimary); ok {
		if _, ok := p.expect(token.KwKey); !ok {
			return field, false
		}
		field.PrimaryKey = true
	}
	return field, true
}

// parseFieldType parses one of ID, TEXT[(n)], NUMBER, BOOLEAN,
// CATEGORY("a", "b", ...).
func (p *Parser) parseFieldType() (ast.FieldType, bool) {
	cur := p.cur()
	switch cur.Kind {
	case token.KwID:
		p.next()
		return ast.FieldType{Kind: ast.FieldID}, true
	case token.KwNumber:
		p.next()
		return ast.FieldType{Kind: ast.FieldNumber}, true
	case token.KwBoolean:
		p.next()
		return ast.FieldType{Kind: ast.FieldBoolean}, true
	case token.KwText:
		p.next()
		typ := ast.FieldType{Kind: ast.FieldText}
		if _, ok := p.accept(token.LParen); ok {
			num, ok := p.expect(token.Number)
			if !ok {
				return typ, false
			}
			length := int(num.Num)
			typ.Length = &length
			if _, ok := p.expect(token.RParen); !ok {
				return typ, false
			}
		}
		return typ, true
	case token.KwCategory:
		p.next()
		typ := ast.FieldType{Kind: ast.FieldCategory}
		if _, ok := p.expect(token.LParen); !ok {
			return typ, false
		}
		for {
			p.skipTrivia()
			if _, ok := p.accept(token.RParen); ok {
				return typ, true
			}
			val, ok := p.expect(token.String)
			if !ok {
				return typ, false
			}
			typ.Values = append(typ.Values, val.Str)
			p.skipTrivia()
			if _, ok := p.accept(token.Comma); !ok {
				if _, ok := p.expect(token.RParen); !ok {
					return typ, false
				}
				return typ, true
			}
		}
	default:
		p.errorExpected("ID", "TEXT", "NUMBER", "BOOLEAN", "CATEGORY")
		return ast.FieldType{}, false
	}
}
