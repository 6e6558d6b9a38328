package parser

import (
	"github.com/mediahist/mdsl/internal/ast"
	"github.com/mediahist/mdsl/internal/token"
)

// parseData parses `DATA FOR n { ... }`. The body may contain an
// aggregation block, YEAR blocks, and annotations such as
// `@maps_to "…"`.
func (p *Parser) parseData() ast.Item {
	kw := p.next()
	if _, ok := p.expect(token.KwFor); !ok {
		return nil
	}
	target, ok := p.expect(token.Number)
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.LBrace); !ok {
		return nil
	}

	data := &ast.Data{TargetID: int(target.Num), Position: kw.Pos}
	for {
		p.skipSeparators()
		cur := p.cur()
		switch cur.Kind {
		case token.RBrace:
			p.next()
			return data
		case token.EOF:
			p.errorf(MissingDelimiter, kw.Pos, "DATA FOR %d body is never closed", data.TargetID)
			return data
		case token.LineComment, token.BlockComment:
			p.next()
		case token.Annotation:
			p.next()
			switch cur.Text {
			case "maps_to":
				data.MapsTo = cur.Str
			case "comment":
				data.Comment = cur.Str
			}
		case token.KwAggregation:
			p.next()
			p.accept(token.Assign)
			fields, ok := p.parseAssignmentBlock(false)
			if !ok {
				return data
			}
			data.Aggregation = append(data.Aggregation, fields...)
		case token.KwYear:
			year, ok := p.parseYearBlock()
			if !ok {
				return data
			}
			data.Years = append(data.Years, year)
		default:
			p.errorExpected("aggregation", "YEAR", "'}'")
			p.sync()
			return data
		}
	}
}

// parseYearBlock parses `YEAR n { metrics { ... } [comment = "…"] }`.
func (p *Parser) parseYearBlock() (ast.YearBlock, bool) {
	kw := p.next()
	num, ok := p.expect(token.Number)
	if !ok {
		return ast.YearBlock{}, false
	}
	year := ast.YearBlock{Year: int(num.Num), Position: kw.Pos}
	if _, ok := p.expect(token.LBrace); !ok {
		return year, false
	}

	for {
		p.skipSeparators()
		cur := p.cur()
		switch cur.Kind {
		case token.RBrace:
			p.next()
			return year, true
		case token.EOF:
			p.errorf(MissingDelimiter, kw.Pos, "YEAR %d body is never closed", year.Year)
			return year, false
		case token.LineComment, token.BlockComment:
			p.next()
		case token.Annotation:
			p.next()
			if cur.Text == "comment" {
				year.Comment = cur.Str
			}
		case token.KwMetrics:
			p.next()
			metrics, ok := p.parseMetricsBlock()
			if !ok {
				return year, false
			}
			year.Metrics = append(year.Metrics, metrics...)
		default:
			// `comment = "…"` and similar loose fields.
			name, _, ok := p.name()
			if !ok {
				return year, false
			}
			if _, ok := p.expect(token.Assign); !ok {
				return year, false
			}
			value := p.parseExpr()
			if value == nil {
				return year, false
			}
			if name == "comment" {
				if s, ok := value.(*ast.StringLit); ok {
					year.Comment = s.Value
				}
			}
			p.accept(token.Semicolon)
		}
	}
}

// parseMetricsBlock parses `{ (name = { value = n; unit = "…";
// source = "…"; [comment = "…";] };)* }`. Metric fields stay loose
// until lowering extracts the well-known keys.
func (p *Parser) parseMetricsBlock() ([]ast.Metric, bool) {
	open, ok := p.expect(token.LBrace)
	if !ok {
		return nil, false
	}

	var metrics []ast.Metric
	for {
		p.skipSeparators()
		cur := p.cur()
		switch cur.Kind {
		case token.RBrace:
			p.next()
			return metrics, true
		case token.EOF:
			p.errorf(MissingDelimiter, open.Pos, "metrics block is never closed")
			return metrics, false
		case token.LineComment, token.BlockComment, token.Annotation:
			p.next()
			continue
		}

		name, pos, ok := p.name()
		if !ok {
			return metrics, false
		}
		if _, ok := p.expect(token.Assign); !ok {
			return metrics, false
		}
		fields, ok := p.parseAssignmentBlock(false)
		if !ok {
			return metrics, false
		}
		metrics = append(metrics, ast.Metric{Name: name, Fields: fields, Position: pos})
		p.accept(token.Semicolon)
		p.accept(token.Comma)
	}
}
