package parser

import (
	"github.com/mediahist/mdsl/internal/ast"
	"github.com/mediahist/mdsl/internal/token"
)

// relationshipName accepts either an identifier or a string literal
// as the link name.
func (p *Parser) relationshipName() (string, bool) {
	cur := p.cur()
	switch {
	case cur.Kind == token.String:
		p.next()
		return cur.Str, true
	case cur.Kind == token.Identifier || cur.Kind.IsKeyword():
		p.next()
		return cur.Text, true
	default:
		p.errorExpected("relationship name")
		return "", false
	}
}

// parseDiachronicLink parses `DIACHRONIC_LINK name { field* }`.
// Fields stay loose; lowering extracts predecessor, successor, dates
// and relationship_type.
func (p *Parser) parseDiachronicLink() ast.Item {
	kw := p.next()
	name, ok := p.relationshipName()
	if !ok {
		return nil
	}
	fields, anns, ok := p.parseLooseBody(kw.Pos, name)
	link := &ast.DiachronicLink{Name: name, Fields: fields, Annotations: anns, Position: kw.Pos}
	if !ok {
		return link
	}
	return link
}

// parseSynchronousLink parses `SYNCHRONOUS_LINK[S] name { field* }`.
func (p *Parser) parseSynchronousLink() ast.Item {
	kw := p.next()
	name, ok := p.relationshipName()
	if !ok {
		return nil
	}
	fields, anns, ok := p.parseLooseBody(kw.Pos, name)
	link := &ast.SynchronousLink{Name: name, Fields: fields, Annotations: anns, Position: kw.Pos}
	if !ok {
		return link
	}
	return link
}

// parseEvent parses `EVENT name { field* }`. Entities, impact and
// metadata arrive as loose assignments with object or array values.
func (p *Parser) parseEvent() ast.Item {
	kw := p.next()
	name, ok := p.relationshipName()
	if !ok {
		return nil
	}
	fields, _, ok := p.parseLooseBody(kw.Pos, name)
	event := &ast.Event{Name: name, Fields: fields, Position: kw.Pos}
	if !ok {
		return event
	}
	return event
}

// parseCatalog parses `CATALOG name { ... }`. Inner source blocks
// (`name { ... }` without '=') are balance-skipped and recorded as
// empty shells; lowering treats the missing fields as not present.
func (p *Parser) parseCatalog() ast.Item {
	kw := p.next()
	name, ok := p.relationshipName()
	if !ok {
		return nil
	}
	catalog := &ast.Catalog{Name: name, Position: kw.Pos}
	if _, ok := p.expect(token.LBrace); !ok {
		return catalog
	}

	for {
		p.skipSeparators()
		cur := p.cur()
		switch cur.Kind {
		case token.RBrace:
			p.next()
			return catalog
		case token.EOF:
			p.errorf(MissingDelimiter, kw.Pos, "CATALOG %s body is never closed", name)
			return catalog
		case token.LineComment, token.BlockComment, token.Annotation:
			p.next()
			continue
		}

		fieldName, pos, ok := p.name()
		if !ok {
			p.sync()
			return catalog
		}
		if p.at(token.LBrace) {
			// Inner source: balance-count and move on.
			if !p.skipBalanced() {
				return catalog
			}
			continue
		}
		if _, ok := p.expect(token.Assign); !ok {
			p.sync()
			return catalog
		}
		value := p.parseExpr()
		if value == nil {
			p.sync()
			return catalog
		}
		catalog.Fields = append(catalog.Fields, ast.Assignment{Name: fieldName, Value: value, Position: pos})
		p.accept(token.Semicolon)
	}
}

// parseLooseBody parses `{ (name = expr;)* }` with annotations kept
// aside. Used by relationship and event bodies, whose grammar is
// deliberately permissive.
func (p *Parser) parseLooseBody(declPos token.Position, name string) ([]ast.Assignment, []ast.Annotation, bool) {
	if _, ok := p.expect(token.LBrace); !ok {
		return nil, nil, false
	}

	var fields []ast.Assignment
	var anns []ast.Annotation
	for {
		p.skipSeparators()
		cur := p.cur()
		switch cur.Kind {
		case token.RBrace:
			p.next()
			return fields, anns, true
		case token.EOF:
			p.errorf(MissingDelimiter, declPos, "%s body is never closed", name)
			return fields, anns, false
		case token.LineComment, token.BlockComment:
			p.next()
			continue
		case token.Annotation:
			p.next()
			anns = append(anns, ast.Annotation{Name: cur.Text, Value: cur.Str, Position: cur.Pos})
			continue
		}

		fieldName, pos, ok := p.name()
		if !ok {
			return fields, anns, false
		}
		if _, ok := p.expect(token.Assign); !ok {
			return fields, anns, false
		}
		value := p.parseExprPromote(true)
		if value == nil {
			return fields, anns, false
		}
		fields = append(fields, ast.Assignment{Name: fieldName, Value: value, Position: pos})
		p.accept(token.Semicolon)
		p.accept(token.Comma)
	}
}
