package validator

import (
	"fmt"
	"strings"

	"github.com/mediahist/mdsl/internal/ast"
)

// ---------------------------------------------------------------
// Phase 3: cross-reference resolution.
//
// Variables referenced via $name, template names on EXTENDS clauses
// and base outlet IDs on BASED_ON must all resolve against the
// symbols collected in phase 1.

func (v *Validator) resolveReferences(prog *ast.Program) {
	for _, item := range prog.Items {
		switch n := item.(type) {
		case *ast.Variable:
			v.resolveExpr(n.Value)
		case *ast.Family:
			v.resolveFamily(n)
		case *ast.Data:
			v.resolveData(n)
		case *ast.DiachronicLink:
			v.resolveFields(n.Fields)
		case *ast.SynchronousLink:
			v.resolveFields(n.Fields)
		case *ast.Event:
			v.resolveFields(n.Fields)
		}
	}
}

func (v *Validator) resolveFamily(family *ast.Family) {
	v.push(fmt.Sprintf("Family(%s)", family.Name))
	defer v.pop()

	for _, member := range family.Members {
		switch m := member.(type) {
		case *ast.Outlet:
			v.resolveOutlet(m)
		case *ast.Data:
			v.resolveData(m)
		case *ast.DiachronicLink:
			v.resolveFields(m.Fields)
		case *ast.SynchronousLink:
			v.resolveFields(m.Fields)
		}
	}
}

func (v *Validator) resolveOutlet(outlet *ast.Outlet) {
	v.push(fmt.Sprintf("Outlet(%s)", outlet.Name))
	defer v.pop()

	if outlet.TemplateRef != "" {
		if _, ok := v.symbols.templates[outlet.TemplateRef]; !ok {
			v.report(Error, CodeTemplateNotFound, outlet.Position, "",
				"outlet %q extends undeclared template %q", outlet.Name, outlet.TemplateRef)
		}
	}
	if outlet.BasedOn != nil {
		if _, ok := v.symbols.outletIDs[*outlet.BasedOn]; !ok {
			v.report(Error, CodeOutletNotFound, outlet.Position, "",
				"outlet %q is based on undeclared outlet ID %d", outlet.Name, *outlet.BasedOn)
		}
	}
	for _, block := range outlet.Blocks {
		v.push(block.Kind.String())
		v.resolveFields(block.Fields)
		v.pop()
	}
}

func (v *Validator) resolveData(data *ast.Data) {
	v.push(fmt.Sprintf("Data(%d)", data.TargetID))
	defer v.pop()

	for _, year := range data.Years {
		for _, metric := range year.Metrics {
			v.resolveFields(metric.Fields)
		}
	}
}

func (v *Validator) resolveFields(fields []ast.Assignment) {
	for _, field := range fields {
		v.resolveExpr(field.Value)
	}
}

func (v *Validator) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.VarRef:
		if _, ok := v.symbols.variables[e.Name]; !ok {
			v.report(Error, CodeVariableNotFound, e.Position,
				fmt.Sprintf("declare `LET %s = ...;` before use", e.Name),
				"variable $%s is not declared", e.Name)
		}
	case *ast.ObjectLit:
		v.resolveFields(e.Fields)
	case *ast.ArrayLit:
		for _, elem := range e.Elems {
			v.resolveExpr(elem)
		}
	}
}

// ---------------------------------------------------------------
// Phase 4: business rules.
//
// Reserved for checks that need the whole program resolved first,
// such as lifecycle date ordering against relationship periods.
// Currently none are implemented.

func (v *Validator) applyBusinessRules(prog *ast.Program) {
	_ = prog
}

// describeCode returns the human-readable category for a code prefix,
// used by the CSV and text reporters when grouping output.
func describeCode(code string) string {
	switch {
	case strings.HasPrefix(code, "IMPORT_"):
		return "imports"
	case strings.HasPrefix(code, "VARIABLE_"):
		return "variables"
	case strings.HasPrefix(code, "UNIT_"), strings.HasPrefix(code, "FIELD_"):
		return "units"
	case strings.HasPrefix(code, "VOCAB_"):
		return "vocabularies"
	case strings.HasPrefix(code, "FAMILY_"):
		return "families"
	case strings.HasPrefix(code, "OUTLET_"), strings.HasPrefix(code, "IDENTITY_"),
		strings.HasPrefix(code, "LIFECYCLE_"), strings.HasPrefix(code, "CHARACTERISTICS_"):
		return "outlets"
	case strings.HasPrefix(code, "DATA_"):
		return "data"
	case strings.HasPrefix(code, "RELATIONSHIP_"), strings.HasPrefix(code, "TEMPLATE_"):
		return "relationships"
	default:
		return "general"
	}
}
