package sqlgen

import (
	"fmt"
	"strings"

	"github.com/mediahist/mdsl/internal/ir"
)

// genericSchema is the closed, self-describing schema the generic
// emitter always creates before any data-bearing statement.
const genericSchema = `CREATE TABLE IF NOT EXISTS families (
    name VARCHAR(255) PRIMARY KEY,
    comment TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS templates (
    name VARCHAR(255) PRIMARY KEY,
    characteristics TEXT,
    metadata TEXT
);

CREATE TABLE IF NOT EXISTS media_outlets (
    id INTEGER PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    family_name VARCHAR(255),
    template_name VARCHAR(255),
    based_on INTEGER,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS outlet_identity (
    outlet_id INTEGER,
    field_name VARCHAR(100) NOT NULL,
    field_value TEXT
);

CREATE TABLE IF NOT EXISTS outlet_lifecycle (
    outlet_id INTEGER,
    status VARCHAR(100) NOT NULL,
    start_date DATE,
    end_date DATE,
    precision_start VARCHAR(50),
    precision_end VARCHAR(50),
    comment TEXT
);

CREATE TABLE IF NOT EXISTS outlet_characteristics (
    outlet_id INTEGER,
    field_name VARCHAR(100) NOT NULL,
    field_value TEXT
);

CREATE TABLE IF NOT EXISTS outlet_metadata (
    outlet_id INTEGER,
    field_name VARCHAR(100) NOT NULL,
    field_value TEXT
);

CREATE TABLE IF NOT EXISTS relationships (
    id INTEGER PRIMARY KEY,
    relationship_name VARCHAR(255) NOT NULL,
    relationship_kind VARCHAR(20) NOT NULL,
    relationship_type VARCHAR(100)
);

CREATE TABLE IF NOT EXISTS diachronic_relationships (
    relationship_id INTEGER,
    predecessor_id INTEGER,
    successor_id INTEGER,
    event_start_date DATE,
    event_end_date DATE,
    comment TEXT,
    maps_to VARCHAR(255)
);

CREATE TABLE IF NOT EXISTS synchronous_relationships (
    relationship_id INTEGER,
    outlet_1_id INTEGER,
    outlet_1_role VARCHAR(100),
    outlet_2_id INTEGER,
    outlet_2_role VARCHAR(100),
    period_start DATE,
    period_end DATE,
    details TEXT,
    maps_to VARCHAR(255)
);

CREATE TABLE IF NOT EXISTS market_data (
    outlet_id INTEGER,
    year INTEGER,
    metric_name VARCHAR(100) NOT NULL,
    metric_value DECIMAL(15,2),
    unit VARCHAR(50),
    source VARCHAR(255),
    comment TEXT
);

CREATE TABLE IF NOT EXISTS data_aggregation (
    outlet_id INTEGER,
    field_name VARCHAR(100) NOT NULL,
    field_value TEXT
);

CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    event_type VARCHAR(100),
    event_date DATE,
    status VARCHAR(50)
);

CREATE TABLE IF NOT EXISTS event_entities (
    event_id INTEGER,
    entity_name VARCHAR(255),
    entity_id INTEGER,
    role VARCHAR(100),
    stake_before DECIMAL(15,2),
    stake_after DECIMAL(15,2)
);

CREATE TABLE IF NOT EXISTS event_impact (
    event_id INTEGER,
    field_name VARCHAR(100) NOT NULL,
    field_value TEXT
);

CREATE TABLE IF NOT EXISTS event_metadata (
    event_id INTEGER,
    field_name VARCHAR(100) NOT NULL,
    field_value TEXT
);

`

// EmitGeneric renders the program into the generic relational
// schema: fixed tables, per-unit DDL, vocabulary tables, then data
// INSERTs in IR order.
func EmitGeneric(prog *ir.Program) string {
	g := &genericEmitter{}
	return g.emit(prog)
}

type genericEmitter struct {
	b strings.Builder
	// relationship rows get sequential ids so detail tables can key
	// back through the name subselect.
	nextRelID   int
	nextEventID int
}

func (g *genericEmitter) emit(prog *ir.Program) string {
	g.nextRelID = 1
	g.nextEventID = 1

	header(&g.b, "mdsl relational export (generic schema)")
	g.b.WriteString(genericSchema)

	for _, unit := range prog.Units {
		g.unitTable(unit)
	}
	for _, vocab := range prog.Vocabularies {
		g.vocabularyTable(vocab)
	}
	for _, tmpl := range prog.Templates {
		g.template(tmpl)
	}
	for _, fam := range prog.Families {
		g.family(fam)
	}
	for _, fam := range prog.Families {
		for _, rel := range fam.Relationships {
			g.relationship(rel)
		}
	}
	for _, fam := range prog.Families {
		for _, data := range fam.DataBlocks {
			g.dataBlock(data)
		}
	}
	for _, ev := range prog.Events {
		g.event(ev)
	}
	return g.b.String()
}

// unitTable renders a declared UNIT as a CREATE TABLE. The table
// name is the lowercased unit name.
func (g *genericEmitter) unitTable(unit ir.Unit) {
	fmt.Fprintf(&g.b, "CREATE TABLE %s (\n", identifier(unit.Name))
	for i, field := range unit.Fields {
		col := fmt.Sprintf("    %s %s", identifier(field.Name), columnType(field.Type))
		if field.PrimaryKey {
			col += " PRIMARY KEY NOT NULL"
		}
		if i < len(unit.Fields)-1 {
			col += ","
		}
		g.b.WriteString(col + "\n")
	}
	g.b.WriteString(");\n\n")
}

func columnType(t ir.FieldType) string {
	switch t.Kind {
	case ir.FieldID:
		return "INTEGER"
	case ir.FieldText:
		if t.Length != nil {
			return fmt.Sprintf("VARCHAR(%d)", *t.Length)
		}
		return "TEXT"
	case ir.FieldNumber:
		return "DECIMAL(15,2)"
	case ir.FieldBoolean:
		return "BOOLEAN"
	case ir.FieldCategory:
		return "VARCHAR(100)"
	default:
		return "TEXT"
	}
}

// vocabularyTable creates one table per vocabulary body and inserts
// its entries. Keys are stored as strings regardless of source kind.
func (g *genericEmitter) vocabularyTable(vocab ir.Vocabulary) {
	table := identifier(vocab.Name)
	if !strings.EqualFold(vocab.BodyName, vocab.Name) {
		table += "_" + identifier(vocab.BodyName)
	}
	fmt.Fprintf(&g.b, "CREATE TABLE %s (\n    key VARCHAR(50) PRIMARY KEY,\n    value TEXT NOT NULL\n);\n", table)
	for _, entry := range vocab.Entries {
		fmt.Fprintf(&g.b, "INSERT INTO %s (key, value) VALUES (%s, %s);\n",
			table, quote(entry.Key()), quote(entry.Value))
	}
	g.b.WriteString("\n")
}

func (g *genericEmitter) template(tmpl ir.Template) {
	fmt.Fprintf(&g.b, "INSERT INTO templates (name, characteristics, metadata) VALUES (%s, %s, %s);\n",
		quote(tmpl.Name), quoteOrNull(renderFields(tmpl.Characteristics)), quoteOrNull(renderFields(tmpl.Metadata)))
}

// renderFields flattens an object field list to `name=value` pairs.
func renderFields(fields []ir.Field) string {
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Name + "=" + f.Value.Scalar()
	}
	return strings.Join(parts, "; ")
}

func (g *genericEmitter) family(fam ir.Family) {
	fmt.Fprintf(&g.b, "INSERT INTO families (name, comment) VALUES (%s, %s);\n",
		quote(fam.Name), quoteOrNull(fam.Comment))
	for _, outlet := range fam.Outlets {
		g.outlet(fam.Name, outlet)
	}
	g.b.WriteString("\n")
}

func (g *genericEmitter) outlet(familyName string, o ir.Outlet) {
	id := "NULL"
	if o.ID != nil {
		id = fmt.Sprintf("%d", *o.ID)
	}
	based := "NULL"
	if o.BaseRef != nil {
		based = fmt.Sprintf("%d", *o.BaseRef)
	}
	fmt.Fprintf(&g.b, "INSERT INTO media_outlets (id, name, family_name, template_name, based_on) VALUES (%s, %s, %s, %s, %s);\n",
		id, quote(o.Name), quote(familyName), quoteOrNull(o.TemplateRef), based)

	for _, field := range o.Identity {
		g.fieldRow("outlet_identity", id, field)
	}
	for _, status := range o.Lifecycle {
		fmt.Fprintf(&g.b, "INSERT INTO outlet_lifecycle (outlet_id, status, start_date, end_date, precision_start, precision_end, comment) VALUES (%s, %s, %s, %s, %s, %s, %s);\n",
			id, quote(status.Status), dateOrNull(status.StartDate), dateOrNull(status.EndDate),
			quoteOrNull(status.PrecisionStart), quoteOrNull(status.PrecisionEnd), quoteOrNull(status.Comment))
	}
	for _, field := range o.Characteristics {
		g.fieldRow("outlet_characteristics", id, field)
	}
	for _, field := range o.Metadata {
		g.fieldRow("outlet_metadata", id, field)
	}
}

func (g *genericEmitter) fieldRow(table, outletID string, field ir.Field) {
	fmt.Fprintf(&g.b, "INSERT INTO %s (outlet_id, field_name, field_value) VALUES (%s, %s, %s);\n",
		table, outletID, quote(field.Name), quote(field.Value.Scalar()))
}

// relationship emits the header row plus the kind-specific detail
// row. Detail rows key back through the name subselect so the script
// stays order-independent at the row level.
func (g *genericEmitter) relationship(rel ir.Relationship) {
	id := g.nextRelID
	g.nextRelID++
	keyed := func(name string) string {
		return fmt.Sprintf("(SELECT id FROM relationships WHERE relationship_name=%s)", quote(name))
	}

	switch rel.Kind {
	case ir.RelDiachronic:
		d := rel.Diachronic
		fmt.Fprintf(&g.b, "INSERT INTO relationships (id, relationship_name, relationship_kind, relationship_type) VALUES (%d, %s, 'diachronic', %s);\n",
			id, quote(d.Name), quoteOrNull(d.Type))
		fmt.Fprintf(&g.b, "INSERT INTO diachronic_relationships (relationship_id, predecessor_id, successor_id, event_start_date, event_end_date, comment, maps_to) VALUES (%s, %d, %d, %s, %s, %s, %s);\n",
			keyed(d.Name), d.Predecessor, d.Successor,
			dateOrNull(d.EventStartDate), dateOrNull(d.EventEndDate),
			quoteOrNull(d.Comment), quoteOrNull(d.MapsTo))
	case ir.RelSynchronous:
		s := rel.Synchronous
		fmt.Fprintf(&g.b, "INSERT INTO relationships (id, relationship_name, relationship_kind, relationship_type) VALUES (%d, %s, 'synchronous', %s);\n",
			id, quote(s.Name), quoteOrNull(s.Type))
		fmt.Fprintf(&g.b, "INSERT INTO synchronous_relationships (relationship_id, outlet_1_id, outlet_1_role, outlet_2_id, outlet_2_role, period_start, period_end, details, maps_to) VALUES (%s, %d, %s, %d, %s, %s, %s, %s, %s);\n",
			keyed(s.Name), s.Outlet1.ID, quoteOrNull(s.Outlet1.Role),
			s.Outlet2.ID, quoteOrNull(s.Outlet2.Role),
			dateOrNull(s.PeriodStart), dateOrNull(s.PeriodEnd),
			quoteOrNull(s.Details), quoteOrNull(s.MapsTo))
	}
}

func (g *genericEmitter) dataBlock(data ir.DataBlock) {
	for _, field := range data.Aggregation {
		fmt.Fprintf(&g.b, "INSERT INTO data_aggregation (outlet_id, field_name, field_value) VALUES (%d, %s, %s);\n",
			data.OutletID, quote(field.Name), quote(field.Value.Scalar()))
	}
	for _, year := range data.Years {
		for _, metric := range year.Metrics {
			fmt.Fprintf(&g.b, "INSERT INTO market_data (outlet_id, year, metric_name, metric_value, unit, source, comment) VALUES (%d, %d, %s, %s, %s, %s, %s);\n",
				data.OutletID, year.Year, quote(metric.Name), number(metric.Value),
				quoteOrNull(metric.Unit), quoteOrNull(metric.Source), quoteOrNull(metric.Comment))
		}
	}
}

func (g *genericEmitter) event(ev ir.Event) {
	id := g.nextEventID
	g.nextEventID++
	fmt.Fprintf(&g.b, "INSERT INTO events (id, name, event_type, event_date, status) VALUES (%d, %s, %s, %s, %s);\n",
		id, quote(ev.Name), quoteOrNull(ev.Type), dateOrNull(ev.Date), quoteOrNull(ev.Status))
	for _, entity := range ev.Entities {
		fmt.Fprintf(&g.b, "INSERT INTO event_entities (event_id, entity_name, entity_id, role, stake_before, stake_after) VALUES (%d, %s, %d, %s, %s, %s);\n",
			id, quote(entity.Name), entity.ID, quoteOrNull(entity.Role),
			floatOrNull(entity.StakeBefore), floatOrNull(entity.StakeAfter))
	}
	for _, field := range ev.Impact {
		fmt.Fprintf(&g.b, "INSERT INTO event_impact (event_id, field_name, field_value) VALUES (%d, %s, %s);\n",
			id, quote(field.Name), quote(field.Value.Scalar()))
	}
	for _, field := range ev.Metadata {
		fmt.Fprintf(&g.b, "INSERT INTO event_metadata (event_id, field_name, field_value) VALUES (%d, %s, %s);\n",
			id, quote(field.Name), quote(field.Value.Scalar()))
	}
}

func floatOrNull(f *float64) string {
	if f == nil {
		return "NULL"
	}
	return number(*f)
}
