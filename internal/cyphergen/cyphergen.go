// Package cyphergen renders an IR program as a property-graph
// script. The output is Cypher, kept generic enough to retarget:
// plain CREATE/MATCH statements, no APOC, no parameter syntax.
package cyphergen

import (
	"fmt"
	"strings"

	"github.com/mediahist/mdsl/internal/ir"
)

// currentSentinel is what CURRENT resolves to in graph output: a
// far-future date keeps range predicates working on open intervals.
const currentSentinel = "9999-01-01"

// Emit renders the whole program. Output is byte-stable for
// identical IR.
func Emit(prog *ir.Program) string {
	e := &emitter{}
	return e.emit(prog)
}

type emitter struct {
	b strings.Builder
}

func (e *emitter) emit(prog *ir.Program) string {
	e.b.WriteString("// ============================================================\n")
	e.b.WriteString("// mdsl graph export\n")
	e.b.WriteString("// Generated by mdsl. Do not edit.\n")
	e.b.WriteString("// ============================================================\n\n")

	e.constraints()

	for _, vocab := range prog.Vocabularies {
		e.vocabulary(vocab)
	}
	for _, tmpl := range prog.Templates {
		e.template(tmpl)
	}
	for _, fam := range prog.Families {
		e.family(fam)
	}
	for _, fam := range prog.Families {
		for _, outlet := range fam.Outlets {
			e.inheritance(outlet)
		}
	}
	for _, fam := range prog.Families {
		for _, rel := range fam.Relationships {
			e.relationship(rel)
		}
	}
	for _, fam := range prog.Families {
		for _, data := range fam.DataBlocks {
			e.dataBlock(data)
		}
	}
	return e.b.String()
}

func (e *emitter) constraints() {
	e.b.WriteString("CREATE CONSTRAINT outlet_id IF NOT EXISTS FOR (o:Outlet) REQUIRE o.id IS UNIQUE;\n")
	e.b.WriteString("CREATE CONSTRAINT family_name IF NOT EXISTS FOR (f:Family) REQUIRE f.name IS UNIQUE;\n")
	e.b.WriteString("CREATE CONSTRAINT template_name IF NOT EXISTS FOR (t:Template) REQUIRE t.name IS UNIQUE;\n")
	e.b.WriteString("CREATE CONSTRAINT vocabulary_name IF NOT EXISTS FOR (v:Vocabulary) REQUIRE v.name IS UNIQUE;\n")
	e.b.WriteString("CREATE INDEX outlet_name IF NOT EXISTS FOR (o:Outlet) ON (o.name);\n")
	e.b.WriteString("CREATE INDEX family_name_idx IF NOT EXISTS FOR (f:Family) ON (f.name);\n")
	e.b.WriteString("CREATE INDEX market_data_year IF NOT EXISTS FOR (m:MarketData) ON (m.year);\n")
	e.b.WriteString("CREATE INDEX metric_name IF NOT EXISTS FOR (m:Metric) ON (m.name);\n\n")
}

func (e *emitter) vocabulary(vocab ir.Vocabulary) {
	// Multi-body vocabularies lower to one IR value per body; the
	// node key combines both names so bodies stay distinct.
	name := vocab.Name
	if !strings.EqualFold(vocab.BodyName, vocab.Name) {
		name = vocab.Name + "." + vocab.BodyName
	}
	fmt.Fprintf(&e.b, "CREATE (:Vocabulary {name: %s});\n", quote(name))
	for _, entry := range vocab.Entries {
		fmt.Fprintf(&e.b, "MATCH (v:Vocabulary {name: %s}) CREATE (v)-[:HAS_ENTRY]->(:VocabularyEntry {key: %s, value: %s});\n",
			quote(name), quote(entry.Key()), quote(entry.Value))
	}
	e.b.WriteString("\n")
}

func (e *emitter) template(tmpl ir.Template) {
	fmt.Fprintf(&e.b, "CREATE (:Template {name: %s});\n", quote(tmpl.Name))
	for _, field := range tmpl.Characteristics {
		fmt.Fprintf(&e.b, "MATCH (t:Template {name: %s}) CREATE (t)-[:HAS_CHARACTERISTIC]->(:Characteristic {name: %s, value: %s});\n",
			quote(tmpl.Name), quote(field.Name), quote(field.Value.Scalar()))
	}
	for _, field := range tmpl.Metadata {
		fmt.Fprintf(&e.b, "MATCH (t:Template {name: %s}) CREATE (t)-[:HAS_METADATA]->(:Metadata {name: %s, value: %s});\n",
			quote(tmpl.Name), quote(field.Name), quote(field.Value.Scalar()))
	}
	e.b.WriteString("\n")
}

func (e *emitter) family(fam ir.Family) {
	if fam.Comment != "" {
		fmt.Fprintf(&e.b, "CREATE (:Family {name: %s, comment: %s});\n", quote(fam.Name), quote(fam.Comment))
	} else {
		fmt.Fprintf(&e.b, "CREATE (:Family {name: %s});\n", quote(fam.Name))
	}
	for _, outlet := range fam.Outlets {
		e.outlet(fam.Name, outlet)
	}
	e.b.WriteString("\n")
}

func (e *emitter) outlet(familyName string, o ir.Outlet) {
	if o.ID != nil {
		fmt.Fprintf(&e.b, "CREATE (o:Outlet {id: %d, name: %s});\n", *o.ID, quote(o.Name))
	} else {
		fmt.Fprintf(&e.b, "CREATE (o:Outlet {name: %s});\n", quote(o.Name))
	}
	match := e.matchOutlet(o)
	fmt.Fprintf(&e.b, "MATCH (f:Family {name: %s}), %s CREATE (f)-[:HAS_OUTLET]->(x);\n",
		quote(familyName), match)

	for _, field := range o.Identity {
		fmt.Fprintf(&e.b, "MATCH %s CREATE (x)-[:HAS_IDENTITY]->(:Identity {name: %s, value: %s});\n",
			match, quote(field.Name), quote(field.Value.Scalar()))
	}
	for _, status := range o.Lifecycle {
		props := []string{fmt.Sprintf("status: %s", quote(status.Status))}
		props = appendProp(props, "start_date", date(status.StartDate))
		props = appendProp(props, "end_date", date(status.EndDate))
		props = appendProp(props, "precision_start", quoteOpt(status.PrecisionStart))
		props = appendProp(props, "precision_end", quoteOpt(status.PrecisionEnd))
		props = appendProp(props, "comment", quoteOpt(status.Comment))
		fmt.Fprintf(&e.b, "MATCH %s CREATE (x)-[:HAS_LIFECYCLE]->(:Lifecycle {%s});\n",
			match, strings.Join(props, ", "))
	}
	for _, field := range o.Characteristics {
		fmt.Fprintf(&e.b, "MATCH %s CREATE (x)-[:HAS_CHARACTERISTIC]->(:Characteristic {name: %s, value: %s});\n",
			match, quote(field.Name), quote(field.Value.Scalar()))
	}
	for _, field := range o.Metadata {
		fmt.Fprintf(&e.b, "MATCH %s CREATE (x)-[:HAS_METADATA]->(:Metadata {name: %s, value: %s});\n",
			match, quote(field.Name), quote(field.Value.Scalar()))
	}
}

// matchOutlet builds the MATCH pattern that rebinds an outlet as x.
// Outlets without an id are matched by name.
func (e *emitter) matchOutlet(o ir.Outlet) string {
	if o.ID != nil {
		return fmt.Sprintf("(x:Outlet {id: %d})", *o.ID)
	}
	return fmt.Sprintf("(x:Outlet {name: %s})", quote(o.Name))
}

func (e *emitter) inheritance(o ir.Outlet) {
	match := e.matchOutlet(o)
	if o.TemplateRef != "" {
		fmt.Fprintf(&e.b, "MATCH %s, (t:Template {name: %s}) CREATE (x)-[:EXTENDS_TEMPLATE]->(t);\n",
			match, quote(o.TemplateRef))
	}
	if o.BaseRef != nil {
		fmt.Fprintf(&e.b, "MATCH %s, (b:Outlet {id: %d}) CREATE (x)-[:BASED_ON]->(b);\n",
			match, *o.BaseRef)
	}
}

func (e *emitter) relationship(rel ir.Relationship) {
	switch rel.Kind {
	case ir.RelDiachronic:
		d := rel.Diachronic
		props := []string{fmt.Sprintf("name: %s", quote(d.Name))}
		props = appendProp(props, "relationship_type", quoteOpt(d.Type))
		props = appendProp(props, "event_start_date", date(d.EventStartDate))
		props = appendProp(props, "event_end_date", date(d.EventEndDate))
		props = appendProp(props, "comment", quoteOpt(d.Comment))
		fmt.Fprintf(&e.b, "MATCH (a:Outlet {id: %d}), (b:Outlet {id: %d}) CREATE (a)-[:DIACHRONIC_LINK {%s}]->(b);\n",
			d.Predecessor, d.Successor, strings.Join(props, ", "))
	case ir.RelSynchronous:
		s := rel.Synchronous
		props := []string{fmt.Sprintf("name: %s", quote(s.Name))}
		props = appendProp(props, "relationship_type", quoteOpt(s.Type))
		props = appendProp(props, "role_1", quoteOpt(s.Outlet1.Role))
		props = appendProp(props, "role_2", quoteOpt(s.Outlet2.Role))
		props = appendProp(props, "period_start", date(s.PeriodStart))
		props = appendProp(props, "period_end", date(s.PeriodEnd))
		props = appendProp(props, "details", quoteOpt(s.Details))
		fmt.Fprintf(&e.b, "MATCH (a:Outlet {id: %d}), (b:Outlet {id: %d}) CREATE (a)-[:SYNCHRONOUS_LINK {%s}]->(b);\n",
			s.Outlet1.ID, s.Outlet2.ID, strings.Join(props, ", "))
	}
}

func (e *emitter) dataBlock(data ir.DataBlock) {
	for _, year := range data.Years {
		fmt.Fprintf(&e.b, "MATCH (x:Outlet {id: %d}) CREATE (x)-[:HAS_MARKET_DATA]->(:MarketData {year: %d});\n",
			data.OutletID, year.Year)
		for _, metric := range year.Metrics {
			props := []string{
				fmt.Sprintf("name: %s", quote(metric.Name)),
				fmt.Sprintf("value: %s", ir.FormatNumber(metric.Value)),
			}
			props = appendProp(props, "unit", quoteOpt(metric.Unit))
			props = appendProp(props, "source", quoteOpt(metric.Source))
			props = appendProp(props, "comment", quoteOpt(metric.Comment))
			fmt.Fprintf(&e.b, "MATCH (x:Outlet {id: %d})-[:HAS_MARKET_DATA]->(m:MarketData {year: %d}) CREATE (m)-[:HAS_METRIC]->(:Metric {%s});\n",
				data.OutletID, year.Year, strings.Join(props, ", "))
		}
	}
}

// appendProp adds `name: value` unless the value rendered to null.
func appendProp(props []string, name, value string) []string {
	if value == "null" {
		return props
	}
	return append(props, name+": "+value)
}

// quote renders a Cypher string literal; single quotes escape as \'.
// quote escapes backslashes before quotes so a value ending in `\`
// cannot swallow the closing quote.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

func quoteOpt(s string) string {
	if s == "" {
		return "null"
	}
	return quote(s)
}

// date renders an optional date property. CURRENT maps to the
// far-future sentinel.
func date(s string) string {
	switch s {
	case "":
		return "null"
	case "CURRENT":
		return fmt.Sprintf("date('%s')", currentSentinel)
	default:
		return fmt.Sprintf("date('%s')", s)
	}
}
