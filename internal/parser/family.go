package parser

import (
	"github.com/mediahist/mdsl/internal/ast"
	"github.com/mediahist/mdsl/internal/token"
)

// parseFamily parses `FAMILY "name" { member* }` (GROUP is a synonym).
func (p *Parser) parseFamily() ast.Item {
	kw := p.next()
	name, ok := p.expect(token.String)
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.LBrace); !ok {
		return nil
	}

	family := &ast.Family{Name: name.Str, Position: kw.Pos}
	for {
		p.skipSeparators()
		cur := p.cur()
		switch cur.Kind {
		case token.RBrace:
			p.next()
			return family
		case token.EOF:
			p.errorf(MissingDelimiter, kw.Pos, "FAMILY %q body is never closed", name.Str)
			return family
		case token.LineComment, token.BlockComment:
			p.next()
			family.Members = append(family.Members, &ast.Comment{Text: cur.Text, Position: cur.Pos})
		case token.Annotation:
			p.next()
			if cur.Text == "comment" && family.Comment == "" {
				family.Comment = cur.Str
			}
			family.Members = append(family.Members, &ast.Comment{
				Text:     "@" + cur.Text + " " + cur.Str,
				Position: cur.Pos,
			})
		case token.KwOutlet:
			member := p.parseOutletMember()
			if member == nil {
				p.sync()
				return family
			}
			family.Members = append(family.Members, member)
		case token.KwData:
			data := p.parseData()
			if data == nil {
				p.sync()
				return family
			}
			family.Members = append(family.Members, data.(*ast.Data))
		case token.KwDiachronicLink:
			link := p.parseDiachronicLink()
			if link == nil {
				p.sync()
				return family
			}
			family.Members = append(family.Members, link.(*ast.DiachronicLink))
		case token.KwSynchronousLink:
			link := p.parseSynchronousLink()
			if link == nil {
				p.sync()
				return family
			}
			family.Members = append(family.Members, link.(*ast.SynchronousLink))
		default:
			p.errorExpected("OUTLET", "DATA", "DIACHRONIC_LINK", "SYNCHRONOUS_LINK", "'}'")
			p.sync()
			return family
		}
	}
}

// parseOutletMember parses an outlet declaration or, when no body or
// inheritance clause follows the name, a bare outlet reference.
func (p *Parser) parseOutletMember() ast.FamilyMember {
	kw := p.next()
	name, ok := p.expect(token.String)
	if !ok {
		return nil
	}

	outlet := &ast.Outlet{Name: name.Str, Position: kw.Pos}
	switch p.cur().Kind {
	case token.KwExtends:
		p.next()
		if _, ok := p.expect(token.KwTemplate); !ok {
			return nil
		}
		ref, ok := p.expect(token.String)
		if !ok {
			return nil
		}
		outlet.TemplateRef = ref.Str
	case token.KwBasedOn:
		p.next()
		num, ok := p.expect(token.Number)
		if !ok {
			return nil
		}
		base := int(num.Num)
		outlet.BasedOn = &base
	}

	p.skipTrivia()
	if !p.at(token.LBrace) {
		if outlet.TemplateRef == "" && outlet.BasedOn == nil {
			p.accept(token.Semicolon)
			return &ast.OutletRef{Name: name.Str, Position: kw.Pos}
		}
		// Inheritance clause without a body keeps the declaration.
		p.accept(token.Semicolon)
		return outlet
	}

	blocks, ok := p.parseOutletBody(kw.Pos)
	outlet.Blocks = blocks
	if !ok {
		return outlet
	}
	return outlet
}

// parseOutletBody parses `{ block* }` for outlets and templates.
// A bare `id = n;` directly under the outlet is promoted to a
// single-field identity block.
func (p *Parser) parseOutletBody(declPos token.Position) ([]ast.OutletBlock, bool) {
	if _, ok := p.expect(token.LBrace); !ok {
		return nil, false
	}

	var blocks []ast.OutletBlock
	for {
		p.skipSeparators()
		cur := p.cur()
		switch cur.Kind {
		case token.RBrace:
			p.next()
			return blocks, true
		case token.EOF:
			p.errorf(MissingDelimiter, declPos, "outlet body is never closed")
			return blocks, false
		case token.LineComment, token.BlockComment, token.Annotation:
			p.next()
		case token.KwIdentity:
			p.next()
			fields, ok := p.parseAssignmentBlock(false)
			if !ok {
				return blocks, false
			}
			blocks = append(blocks, ast.OutletBlock{Kind: ast.BlockIdentity, Fields: fields, Position: cur.Pos})
		case token.KwLifecycle:
			p.next()
			entries, ok := p.parseLifecycleBody(cur.Pos)
			if !ok {
				return blocks, false
			}
			blocks = append(blocks, ast.OutletBlock{Kind: ast.BlockLifecycle, Lifecycle: entries, Position: cur.Pos})
		case token.KwCharacteristics:
			p.next()
			fields, ok := p.parseAssignmentBlock(true)
			if !ok {
				return blocks, false
			}
			blocks = append(blocks, ast.OutletBlock{Kind: ast.BlockCharacteristics, Fields: fields, Position: cur.Pos})
		case token.KwMetadata:
			p.next()
			fields, ok := p.parseAssignmentBlock(true)
			if !ok {
				return blocks, false
			}
			blocks = append(blocks, ast.OutletBlock{Kind: ast.BlockMetadata, Fields: fields, Position: cur.Pos})
		case token.KwID:
			// Free-form input: a bare `id = n;` becomes an identity
			// block of its own.
			p.next()
			if _, ok := p.expect(token.Assign); !ok {
				return blocks, false
			}
			value := p.parseExpr()
			if value == nil {
				return blocks, false
			}
			p.accept(token.Semicolon)
			blocks = append(blocks, ast.OutletBlock{
				Kind:     ast.BlockIdentity,
				Fields:   []ast.Assignment{{Name: cur.Text, Value: value, Position: cur.Pos}},
				Position: cur.Pos,
			})
		default:
			p.errorExpected("identity", "lifecycle", "characteristics", "metadata", "'}'")
			return blocks, false
		}
	}
}

// parseAssignmentBlock parses `{ (name = expr;)* }`. With
// opaqueObjects set (characteristics and metadata blocks), a nested
// object value is balance-skipped and recorded as the placeholder
// string "complex_object".
func (p *Parser) parseAssignmentBlock(opaqueObjects bool) ([]ast.Assignment, bool) {
	open, ok := p.expect(token.LBrace)
	if !ok {
		return nil, false
	}

	var fields []ast.Assignment
	for {
		p.skipSeparators()
		cur := p.cur()
		switch cur.Kind {
		case token.RBrace:
			p.next()
			return fields, true
		case token.EOF:
			p.errorf(MissingDelimiter, open.Pos, "block is never closed")
			return fields, false
		case token.LineComment, token.BlockComment, token.Annotation:
			p.next()
			continue
		}

		name, pos, ok := p.name()
		if !ok {
			return fields, false
		}
		if _, ok := p.expect(token.Assign); !ok {
			return fields, false
		}

		var value ast.Expr
		if opaqueObjects && p.at(token.LBrace) {
			valPos := p.cur().Pos
			if !p.skipBalanced() {
				return fields, false
			}
			value = &ast.StringLit{Value: "complex_object", Position: valPos}
		} else {
			value = p.parseExprPromote(true)
			if value == nil {
				return fields, false
			}
		}
		fields = append(fields, ast.Assignment{Name: name, Value: value, Position: pos})
		p.accept(token.Semicolon)
		p.accept(token.Comma)
	}
}

// parseLifecycleBody parses `{ (status "s" from D [to D] [{ attrs }])* }`.
func (p *Parser) parseLifecycleBody(blockPos token.Position) ([]ast.LifecycleEntry, bool) {
	if _, ok := p.expect(token.LBrace); !ok {
		return nil, false
	}

	var entries []ast.LifecycleEntry
	for {
		p.skipSeparators()
		cur := p.cur()
		switch cur.Kind {
		case token.RBrace:
			p.next()
			return entries, true
		case token.EOF:
			p.errorf(MissingDelimiter, blockPos, "lifecycle block is never closed")
			return entries, false
		case token.LineComment, token.BlockComment, token.Annotation:
			p.next()
			continue
		case token.KwStatus:
			entry, ok := p.parseLifecycleEntry()
			if !ok {
				return entries, false
			}
			entries = append(entries, entry)
		default:
			p.errorExpected("status", "'}'")
			return entries, false
		}
	}
}

func (p *Parser) parseLifecycleEntry() (ast.LifecycleEntry, bool) {
	kw := p.next() // status
	status, ok := p.expect(token.String)
	if !ok {
		return ast.LifecycleEntry{}, false
	}
	entry := ast.LifecycleEntry{Status: status.Str, Position: kw.Pos}

	if _, ok := p.accept(token.KwFrom); ok {
		from, ok := p.parseDate()
		if !ok {
			return entry, false
		}
		entry.From = &from
	}
	if _, ok := p.accept(token.KwTo); ok {
		to, ok := p.parseDate()
		if !ok {
			return entry, false
		}
		entry.To = &to
	}
	if p.at(token.LBrace) {
		attrs, ok := p.parseAssignmentBlock(false)
		if !ok {
			return entry, false
		}
		entry.Attrs = attrs
	}
	p.accept(token.Semicolon)
	return entry, true
}

// parseTemplate parses `TEMPLATE [OUTLET] "name" { block* }`.
func (p *Parser) parseTemplate() ast.Item {
	kw := p.next()
	p.accept(token.KwOutlet)
	name, ok := p.expect(token.String)
	if !ok {
		return nil
	}
	blocks, _ := p.parseOutletBody(kw.Pos)
	return &ast.Template{Name: name.Str, Blocks: blocks, Position: kw.Pos}
}
