package ast

import "github.com/mediahist/mdsl/internal/token"

// Expr is an mdsl expression: string, number, boolean, variable
// reference, object literal, array literal, or a promoted period.
type Expr interface {
	Node
	expr()
}

// StringLit is a decoded string literal.
type StringLit struct {
	Value    string
	Position token.Position
}

// NumberLit is an f64 number literal.
type NumberLit struct {
	Value    float64
	Position token.Position
}

// BoolLit is a true/false literal.
type BoolLit struct {
	Value    bool
	Position token.Position
}

// VarRef is a `$name` variable reference.
type VarRef struct {
	Name     string
	Position token.Position
}

// ObjectLit is `{ name = expr; ... }`.
type ObjectLit struct {
	Fields   []Assignment
	Position token.Position
}

// ArrayLit is `[ expr, expr, ... ]`.
type ArrayLit struct {
	Elems    []Expr
	Position token.Position
}

// PeriodLit is the promoted form of `"D" TO (CURRENT | "D")` inside
// object literals.
type PeriodLit struct {
	From     DateValue
	To       DateValue
	Position token.Position
}

func (e *StringLit) Pos() token.Position { return e.Position }
func (e *NumberLit) Pos() token.Position { return e.Position }
func (e *BoolLit) Pos() token.Position   { return e.Position }
func (e *VarRef) Pos() token.Position    { return e.Position }
func (e *ObjectLit) Pos() token.Position { return e.Position }
func (e *ArrayLit) Pos() token.Position  { return e.Position }
func (e *PeriodLit) Pos() token.Position { return e.Position }

func (*StringLit) expr() {}
func (*NumberLit) expr() {}
func (*BoolLit) expr()   {}
func (*VarRef) expr()    {}
func (*ObjectLit) expr() {}
func (*ArrayLit) expr()  {}
func (*PeriodLit) expr() {}
