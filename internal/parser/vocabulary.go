package parser

import (
	"github.com/mediahist/mdsl/internal/ast"
	"github.com/mediahist/mdsl/internal/token"
)

// parseVocabulary parses `VOCABULARY name { body+ }` where each body
// is `name { entry,* }`.
func (p *Parser) parseVocabulary() ast.Item {
	kw := p.next()
	name, _, ok := p.name()
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.LBrace); !ok {
		return nil
	}

	vocab := &ast.Vocabulary{Name: name, Position: kw.Pos}
	for {
		p.skipSeparators()
		if _, ok := p.accept(token.RBrace); ok {
			return vocab
		}
		if p.at(token.EOF) {
			p.errorf(MissingDelimiter, kw.Pos, "VOCABULARY %s body is never closed", name)
			return vocab
		}

		bodyName, bodyPos, ok := p.name()
		if !ok {
			p.sync()
			return vocab
		}
		body, ok := p.parseVocabularyBody(bodyName, bodyPos)
		if !ok {
			p.sync()
			return vocab
		}
		vocab.Bodies = append(vocab.Bodies, body)
	}
}

// parseBareVocabulary parses the top-level `name { entry,* }` form,
// which produces a vocabulary with a single body of the same name.
func (p *Parser) parseBareVocabulary() ast.Item {
	name, pos, ok := p.name()
	if !ok {
		return nil
	}
	body, ok := p.parseVocabularyBody(name, pos)
	if !ok {
		return nil
	}
	return &ast.Vocabulary{
		Name:     name,
		Bodies:   []ast.VocabularyBody{body},
		Position: pos,
	}
}

// parseVocabularyBody parses `{ entry,* }` where an entry is
// `(number|string) : string`. Trailing commas are permitted.
func (p *Parser) parseVocabularyBody(name string, pos token.Position) (ast.VocabularyBody, bool) {
	body := ast.VocabularyBody{Name: name, Position: pos}
	open, ok := p.expect(token.LBrace)
	if !ok {
		return body, false
	}

	for {
		p.skipSeparators()
		for p.at(token.Comma) {
			p.next()
			p.skipSeparators()
		}
		if _, ok := p.accept(token.RBrace); ok {
			return body, true
		}
		if p.at(token.EOF) {
			p.errorf(MissingDelimiter, open.Pos, "vocabulary body %s is never closed", name)
			return body, false
		}

		entry, ok := p.parseVocabularyEntry()
		if !ok {
			return body, false
		}
		body.Entries = append(body.Entries, entry)
	}
}

func (p *Parser) parseVocabularyEntry() (ast.VocabularyEntry, bool) {
	var key ast.VocabularyKey
	cur := p.cur()
	switch cur.Kind {
	case token.Number:
		p.next()
		key = ast.VocabularyKey{IsNumber: true, Number: cur.Num}
	case token.String:
		p.next()
		key = ast.VocabularyKey{Text: cur.Str}
	default:
		p.errorExpected("number", "string")
		return ast.VocabularyEntry{}, false
	}

	if _, ok := p.expect(token.Colon); !ok {
		return ast.VocabularyEntry{}, false
	}
	value, ok := p.expect(token.String)
	if !ok {
		return ast.VocabularyEntry{}, false
	}
	return ast.VocabularyEntry{Key: key, Value: value.Str, Position: cur.Pos}, true
}
