// Package compiler lowers the mdsl AST into the IR consumed by the
// code generators. The pass is a single tree walk: it flattens
// expression wrappers, extracts well-known keys out of loose blocks,
// records inheritance as references, and hoists top-level
// relationships into a family. Lowering never fails; unknown fields
// are dropped without diagnostics; the validator is the sole
// reporter of semantic issues.
package compiler

import (
	"strings"

	"github.com/mediahist/mdsl/internal/ast"
	"github.com/mediahist/mdsl/internal/ir"
)

// GlobalFamilyName is the synthetic family that receives top-level
// relationships when the document declares no concrete family.
const GlobalFamilyName = "Global Relationships"

// Lower converts a parsed program into IR.
func Lower(prog *ast.Program) *ir.Program {
	out := &ir.Program{}
	var hoisted []ir.Relationship
	var hoistedData []ir.DataBlock

	for _, item := range prog.Items {
		switch n := item.(type) {
		case *ast.Import:
			out.Imports = append(out.Imports, ir.Import{Path: n.Path, Pos: n.Position})
		case *ast.Variable:
			out.Variables = append(out.Variables, ir.Variable{
				Name:  n.Name,
				Value: lowerExpr(n.Value),
				Pos:   n.Position,
			})
		case *ast.Unit:
			out.Units = append(out.Units, lowerUnit(n))
		case *ast.Vocabulary:
			out.Vocabularies = append(out.Vocabularies, lowerVocabulary(n)...)
		case *ast.Template:
			out.Templates = append(out.Templates, lowerTemplate(n))
		case *ast.Family:
			out.Families = append(out.Families, lowerFamily(n))
		case *ast.Data:
			hoistedData = append(hoistedData, lowerData(n))
		case *ast.DiachronicLink:
			hoisted = append(hoisted, lowerDiachronic(n))
		case *ast.SynchronousLink:
			hoisted = append(hoisted, lowerSynchronous(n))
		case *ast.Event:
			out.Events = append(out.Events, lowerEvent(n))
		case *ast.Catalog, *ast.Comment:
			// Recorded in the AST only.
		}
	}

	if len(hoisted) > 0 || len(hoistedData) > 0 {
		if len(out.Families) > 0 {
			out.Families[0].Relationships = append(out.Families[0].Relationships, hoisted...)
			out.Families[0].DataBlocks = append(out.Families[0].DataBlocks, hoistedData...)
		} else {
			out.Families = append(out.Families, ir.Family{
				Name:          GlobalFamilyName,
				Relationships: hoisted,
				DataBlocks:    hoistedData,
			})
		}
	}
	return out
}

func lowerExpr(e ast.Expr) ir.Expression {
	switch v := e.(type) {
	case *ast.StringLit:
		return ir.Expression{Kind: ir.ExprString, Str: v.Value, Pos: v.Position}
	case *ast.NumberLit:
		return ir.Expression{Kind: ir.ExprNumber, Num: v.Value, Pos: v.Position}
	case *ast.BoolLit:
		return ir.Expression{Kind: ir.ExprBoolean, Bool: v.Value, Pos: v.Position}
	case *ast.VarRef:
		return ir.Expression{Kind: ir.ExprVariable, Str: v.Name, Pos: v.Position}
	case *ast.ObjectLit:
		obj := ir.Expression{Kind: ir.ExprObject, Pos: v.Position}
		for _, f := range v.Fields {
			obj.Object = append(obj.Object, ir.Field{Name: f.Name, Value: lowerExpr(f.Value)})
		}
		return obj
	case *ast.ArrayLit:
		arr := ir.Expression{Kind: ir.ExprArray, Pos: v.Position}
		for _, el := range v.Elems {
			arr.Array = append(arr.Array, lowerExpr(el))
		}
		return arr
	case *ast.PeriodLit:
		return ir.Expression{
			Kind:       ir.ExprPeriod,
			PeriodFrom: lowerDate(&v.From),
			PeriodTo:   lowerDate(&v.To),
			Pos:        v.Position,
		}
	default:
		return ir.Expression{}
	}
}

func lowerFields(fields []ast.Assignment) []ir.Field {
	out := make([]ir.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, ir.Field{Name: f.Name, Value: lowerExpr(f.Value)})
	}
	return out
}

// lowerDate resolves the CURRENT sentinel to the literal string
// "CURRENT"; literal dates pass through verbatim.
func lowerDate(d *ast.DateValue) string {
	if d == nil {
		return ""
	}
	if d.Current {
		return "CURRENT"
	}
	return d.Literal
}

func lowerUnit(n *ast.Unit) ir.Unit {
	unit := ir.Unit{Name: n.Name, Pos: n.Position}
	for _, f := range n.Fields {
		unit.Fields = append(unit.Fields, ir.UnitField{
			Name:       f.Name,
			Type:       lowerFieldType(f.Type),
			PrimaryKey: f.PrimaryKey,
		})
	}
	return unit
}

func lowerFieldType(t ast.FieldType) ir.FieldType {
	out := ir.FieldType{Length: t.Length, Values: t.Values}
	switch t.Kind {
	case ast.FieldID:
		out.Kind = ir.FieldID
	case ast.FieldText:
		out.Kind = ir.FieldText
	case ast.FieldNumber:
		out.Kind = ir.FieldNumber
	case ast.FieldBoolean:
		out.Kind = ir.FieldBoolean
	case ast.FieldCategory:
		out.Kind = ir.FieldCategory
	}
	return out
}

// lowerVocabulary flattens a multi-body declaration into one IR
// vocabulary per body.
func lowerVocabulary(n *ast.Vocabulary) []ir.Vocabulary {
	out := make([]ir.Vocabulary, 0, len(n.Bodies))
	for _, body := range n.Bodies {
		vocab := ir.Vocabulary{Name: n.Name, BodyName: body.Name, Pos: n.Position}
		for _, e := range body.Entries {
			vocab.Entries = append(vocab.Entries, ir.VocabEntry{
				KeyIsNumber: e.Key.IsNumber,
				KeyNumber:   e.Key.Number,
				KeyText:     e.Key.Text,
				Value:       e.Value,
			})
		}
		out = append(out, vocab)
	}
	return out
}

// lowerTemplate keeps characteristics and metadata; identity and
// lifecycle blocks in templates are discarded.
func lowerTemplate(n *ast.Template) ir.Template {
	tmpl := ir.Template{Name: n.Name, Pos: n.Position}
	for _, block := range n.Blocks {
		switch block.Kind {
		case ast.BlockCharacteristics:
			tmpl.Characteristics = append(tmpl.Characteristics, lowerFields(block.Fields)...)
		case ast.BlockMetadata:
			tmpl.Metadata = append(tmpl.Metadata, lowerFields(block.Fields)...)
		}
	}
	return tmpl
}

func lowerFamily(n *ast.Family) ir.Family {
	family := ir.Family{Name: n.Name, Comment: n.Comment, Pos: n.Position}
	for _, member := range n.Members {
		switch m := member.(type) {
		case *ast.Outlet:
			family.Outlets = append(family.Outlets, lowerOutlet(m))
		case *ast.Data:
			family.DataBlocks = append(family.DataBlocks, lowerData(m))
		case *ast.DiachronicLink:
			family.Relationships = append(family.Relationships, lowerDiachronic(m))
		case *ast.SynchronousLink:
			family.Relationships = append(family.Relationships, lowerSynchronous(m))
		case *ast.OutletRef, *ast.Comment:
			// References and comments carry no IR payload.
		}
	}
	return family
}

func lowerOutlet(n *ast.Outlet) ir.Outlet {
	outlet := ir.Outlet{
		Name:        n.Name,
		TemplateRef: n.TemplateRef,
		BaseRef:     n.BasedOn,
		Pos:         n.Position,
	}
	for _, block := range n.Blocks {
		switch block.Kind {
		case ast.BlockIdentity:
			fields := lowerFields(block.Fields)
			outlet.Identity = append(outlet.Identity, fields...)
			for _, f := range fields {
				if strings.EqualFold(f.Name, "id") && f.Value.Kind == ir.ExprNumber && outlet.ID == nil {
					id := int(f.Value.Num)
					outlet.ID = &id
				}
			}
		case ast.BlockLifecycle:
			for _, entry := range block.Lifecycle {
				outlet.Lifecycle = append(outlet.Lifecycle, lowerLifecycleEntry(entry))
			}
		case ast.BlockCharacteristics:
			outlet.Characteristics = append(outlet.Characteristics, lowerFields(block.Fields)...)
		case ast.BlockMetadata:
			outlet.Metadata = append(outlet.Metadata, lowerFields(block.Fields)...)
		}
	}
	return outlet
}

func lowerLifecycleEntry(entry ast.LifecycleEntry) ir.LifecycleStatus {
	status := ir.LifecycleStatus{
		Status:    entry.Status,
		StartDate: lowerDate(entry.From),
		EndDate:   lowerDate(entry.To),
		Pos:       entry.Position,
	}
	for _, attr := range entry.Attrs {
		value := lowerExpr(attr.Value)
		switch strings.ToLower(attr.Name) {
		case "precision_start":
			status.PrecisionStart = value.Scalar()
		case "precision_end":
			status.PrecisionEnd = value.Scalar()
		case "comment":
			status.Comment = value.Scalar()
		}
	}
	return status
}

func lowerData(n *ast.Data) ir.DataBlock {
	block := ir.DataBlock{
		OutletID:    n.TargetID,
		Aggregation: lowerFields(n.Aggregation),
		MapsTo:      n.MapsTo,
		Comment:     n.Comment,
		Pos:         n.Position,
	}
	for _, year := range n.Years {
		dy := ir.DataYear{Year: year.Year, Comment: year.Comment, Pos: year.Position}
		for _, metric := range year.Metrics {
			dy.Metrics = append(dy.Metrics, lowerMetric(metric))
		}
		block.Years = append(block.Years, dy)
	}
	return block
}

func lowerMetric(m ast.Metric) ir.Metric {
	fields := lowerFields(m.Fields)
	metric := ir.Metric{Name: m.Name}
	if v, ok := ir.Lookup(fields, "value"); ok && v.Kind == ir.ExprNumber {
		metric.Value = v.Num
	}
	metric.Unit = ir.LookupString(fields, "unit")
	metric.Source = ir.LookupString(fields, "source")
	metric.Comment = ir.LookupString(fields, "comment")
	return metric
}

func lowerDiachronic(n *ast.DiachronicLink) ir.Relationship {
	fields := lowerFields(n.Fields)
	d := &ir.Diachronic{Name: n.Name}
	if v, ok := ir.Lookup(fields, "predecessor"); ok && v.Kind == ir.ExprNumber {
		d.Predecessor = int(v.Num)
	}
	if v, ok := ir.Lookup(fields, "successor"); ok && v.Kind == ir.ExprNumber {
		d.Successor = int(v.Num)
	}
	d.EventStartDate = ir.LookupString(fields, "event_start_date")
	if d.EventStartDate == "" {
		d.EventStartDate = ir.LookupString(fields, "event_date")
	}
	d.EventEndDate = ir.LookupString(fields, "event_end_date")
	d.Type = ir.LookupString(fields, "relationship_type")
	d.Comment = ir.LookupString(fields, "comment")
	d.MapsTo = ir.LookupString(fields, "maps_to")
	applyAnnotations(n.Annotations, &d.MapsTo, &d.Comment)
	return ir.Relationship{Kind: ir.RelDiachronic, Diachronic: d, Pos: n.Position}
}

func lowerSynchronous(n *ast.SynchronousLink) ir.Relationship {
	fields := lowerFields(n.Fields)
	s := &ir.Synchronous{Name: n.Name}
	s.Outlet1 = lowerRoleRef(fields, "outlet_1")
	s.Outlet2 = lowerRoleRef(fields, "outlet_2")
	s.Type = ir.LookupString(fields, "relationship_type")
	s.Details = ir.LookupString(fields, "details")
	s.MapsTo = ir.LookupString(fields, "maps_to")
	s.PeriodStart = ir.LookupString(fields, "period_start")
	s.PeriodEnd = ir.LookupString(fields, "period_end")
	if v, ok := ir.Lookup(fields, "period"); ok && v.Kind == ir.ExprPeriod {
		s.PeriodStart = v.PeriodFrom
		s.PeriodEnd = v.PeriodTo
	}
	var comment string
	applyAnnotations(n.Annotations, &s.MapsTo, &comment)
	if s.Details == "" {
		s.Details = comment
	}
	return ir.Relationship{Kind: ir.RelSynchronous, Synchronous: s, Pos: n.Position}
}

func lowerRoleRef(fields []ir.Field, name string) ir.RoleRef {
	ref := ir.RoleRef{}
	v, ok := ir.Lookup(fields, name)
	if !ok || v.Kind != ir.ExprObject {
		return ref
	}
	if id, ok := ir.Lookup(v.Object, "id"); ok && id.Kind == ir.ExprNumber {
		ref.ID = int(id.Num)
	}
	ref.Role = ir.LookupString(v.Object, "role")
	return ref
}

func applyAnnotations(anns []ast.Annotation, mapsTo, comment *string) {
	for _, ann := range anns {
		switch ann.Name {
		case "maps_to":
			*mapsTo = ann.Value
		case "comment":
			*comment = ann.Value
		}
	}
}

func lowerEvent(n *ast.Event) ir.Event {
	fields := lowerFields(n.Fields)
	event := ir.Event{Name: n.Name, Pos: n.Position}
	event.Type = ir.LookupString(fields, "type")
	event.Date = ir.LookupString(fields, "date")
	event.Status = ir.LookupString(fields, "status")
	if v, ok := ir.Lookup(fields, "entities"); ok && v.Kind == ir.ExprArray {
		for _, el := range v.Array {
			if el.Kind != ir.ExprObject {
				continue
			}
			event.Entities = append(event.Entities, lowerEventEntity(el.Object))
		}
	}
	if v, ok := ir.Lookup(fields, "impact"); ok && v.Kind == ir.ExprObject {
		event.Impact = v.Object
	}
	if v, ok := ir.Lookup(fields, "metadata"); ok && v.Kind == ir.ExprObject {
		event.Metadata = v.Object
	}
	return event
}

func lowerEventEntity(fields []ir.Field) ir.EventEntity {
	entity := ir.EventEntity{
		Name: ir.LookupString(fields, "name"),
		Role: ir.LookupString(fields, "role"),
	}
	if v, ok := ir.Lookup(fields, "id"); ok && v.Kind == ir.ExprNumber {
		entity.ID = int(v.Num)
	}
	if v, ok := ir.Lookup(fields, "stake_before"); ok && v.Kind == ir.ExprNumber {
		stake := v.Num
		entity.StakeBefore = &stake
	}
	if v, ok := ir.Lookup(fields, "stake_after"); ok && v.Kind == ir.ExprNumber {
		stake := v.Num
		entity.StakeAfter = &stake
	}
	return entity
}
