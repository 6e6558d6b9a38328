package sqlgen

import (
	"fmt"
	"strings"

	"github.com/mediahist/mdsl/internal/ir"
)

// anmiSchema is the fixed graphv3 schema the ANMI emitter targets.
// Numbered relationship tables carry the legacy diachronic
// (id_pred, id_succ, e_s, e_e) and synchronous
// (id_mo_1, id_mo_2, p_s, p_e) shapes.
const anmiSchema = `CREATE SCHEMA IF NOT EXISTS graphv3;

CREATE TABLE IF NOT EXISTS graphv3.sectors (
    id_sector INTEGER PRIMARY KEY,
    sector_name VARCHAR(255) NOT NULL
);

CREATE TABLE IF NOT EXISTS graphv3.distribution_areas (
    id_area INTEGER PRIMARY KEY,
    area_name VARCHAR(255) NOT NULL
);

CREATE TABLE IF NOT EXISTS graphv3.sources_names (
    id_source INTEGER PRIMARY KEY,
    source_name VARCHAR(255) NOT NULL
);

CREATE TABLE IF NOT EXISTS graphv3.mo_constant (
    id INTEGER PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    id_sector INTEGER,
    mandate VARCHAR(255),
    location VARCHAR(255),
    primary_distr_area INTEGER,
    local BOOLEAN,
    language VARCHAR(100),
    start_date DATE,
    end_date DATE,
    editorial_line_s TEXT,
    comments TEXT
);

CREATE TABLE IF NOT EXISTS graphv3.mo_year (
    mo_year INTEGER PRIMARY KEY,
    id_mo INTEGER NOT NULL,
    year INTEGER NOT NULL,
    circulation DECIMAL(15,2),
    unique_users DECIMAL(15,2),
    reach_nat DECIMAL(15,2),
    reach_reg DECIMAL(15,2),
    market_share DECIMAL(15,2),
    id_source INTEGER,
    comments TEXT
);

CREATE TABLE IF NOT EXISTS graphv3."11_succession" (
    id_pred INTEGER NOT NULL,
    id_succ INTEGER NOT NULL,
    e_s DATE,
    e_e DATE
);

CREATE TABLE IF NOT EXISTS graphv3."12_merger" (
    id_pred INTEGER NOT NULL,
    id_succ INTEGER NOT NULL,
    e_s DATE,
    e_e DATE
);

CREATE TABLE IF NOT EXISTS graphv3."13_split" (
    id_pred INTEGER NOT NULL,
    id_succ INTEGER NOT NULL,
    e_s DATE,
    e_e DATE
);

CREATE TABLE IF NOT EXISTS graphv3."14_absorption" (
    id_pred INTEGER NOT NULL,
    id_succ INTEGER NOT NULL,
    e_s DATE,
    e_e DATE
);

CREATE TABLE IF NOT EXISTS graphv3."21_offshoot" (
    id_pred INTEGER NOT NULL,
    id_succ INTEGER NOT NULL,
    e_s DATE,
    e_e DATE
);

CREATE TABLE IF NOT EXISTS graphv3."31_umbrella" (
    id_mo_1 INTEGER NOT NULL,
    id_mo_2 INTEGER NOT NULL,
    p_s DATE,
    p_e DATE
);

CREATE TABLE IF NOT EXISTS graphv3."32_collaboration" (
    id_mo_1 INTEGER NOT NULL,
    id_mo_2 INTEGER NOT NULL,
    p_s DATE,
    p_e DATE
);

CREATE TABLE IF NOT EXISTS graphv3."33_ownership" (
    id_mo_1 INTEGER NOT NULL,
    id_mo_2 INTEGER NOT NULL,
    p_s DATE,
    p_e DATE
);

CREATE TABLE IF NOT EXISTS graphv3."34_content_sharing" (
    id_mo_1 INTEGER NOT NULL,
    id_mo_2 INTEGER NOT NULL,
    p_s DATE,
    p_e DATE
);

`

// diachronicTables maps lowercased relationship_type strings to
// their legacy table. Unknown kinds are skipped.
var diachronicTables = map[string]string{
	"succession": `"11_succession"`,
	"merger":     `"12_merger"`,
	"fusion":     `"12_merger"`,
	"split":      `"13_split"`,
	"division":   `"13_split"`,
	"absorption": `"14_absorption"`,
	"takeover":   `"14_absorption"`,
	"offshoot":   `"21_offshoot"`,
	"spin_off":   `"21_offshoot"`,
}

var synchronousTables = map[string]string{
	"umbrella":        `"31_umbrella"`,
	"umbrella_brand":  `"31_umbrella"`,
	"collaboration":   `"32_collaboration"`,
	"cooperation":     `"32_collaboration"`,
	"ownership":       `"33_ownership"`,
	"shareholding":    `"33_ownership"`,
	"content_sharing": `"34_content_sharing"`,
	"syndication":     `"34_content_sharing"`,
}

// metricColumns maps metric names to mo_year columns. Metrics outside
// this set land in the comments column.
var metricColumns = map[string]string{
	"circulation":    "circulation",
	"unique_users":   "unique_users",
	"reach_national": "reach_nat",
	"reach_regional": "reach_reg",
	"market_share":   "market_share",
}

// EmitANMI renders the program into the legacy graphv3 schema.
func EmitANMI(prog *ir.Program) string {
	a := &anmiEmitter{
		sources: newInterner(),
		sectors: newInterner(),
		areas:   newInterner(),
	}
	return a.emit(prog)
}

// interner assigns stable sequential ids to strings, first seen
// first numbered, starting at 1.
type interner struct {
	ids   map[string]int
	order []string
}

func newInterner() *interner {
	return &interner{ids: make(map[string]int)}
}

func (in *interner) intern(s string) int {
	if id, ok := in.ids[s]; ok {
		return id
	}
	id := len(in.order) + 1
	in.ids[s] = id
	in.order = append(in.order, s)
	return id
}

type anmiEmitter struct {
	b       strings.Builder
	sources *interner
	sectors *interner
	areas   *interner
}

func (a *anmiEmitter) emit(prog *ir.Program) string {
	header(&a.b, "mdsl relational export (ANMI graphv3 schema)")
	a.b.WriteString(anmiSchema)

	// Interning walks happen before any row is written so the lookup
	// tables precede their referents in the script.
	var constants, years, rels []string
	for _, fam := range prog.Families {
		for _, outlet := range fam.Outlets {
			if row := a.moConstant(outlet); row != "" {
				constants = append(constants, row)
			}
		}
	}
	for _, fam := range prog.Families {
		for _, data := range fam.DataBlocks {
			years = append(years, a.moYearRows(data)...)
		}
	}
	for _, fam := range prog.Families {
		for _, rel := range fam.Relationships {
			if row := a.relationshipRow(rel); row != "" {
				rels = append(rels, row)
			}
		}
	}

	a.internTable("sectors", "id_sector", "sector_name", a.sectors)
	a.internTable("distribution_areas", "id_area", "area_name", a.areas)
	a.internTable("sources_names", "id_source", "source_name", a.sources)

	for _, row := range constants {
		a.b.WriteString(row)
	}
	if len(constants) > 0 {
		a.b.WriteString("\n")
	}
	for _, row := range years {
		a.b.WriteString(row)
	}
	if len(years) > 0 {
		a.b.WriteString("\n")
	}
	for _, row := range rels {
		a.b.WriteString(row)
	}
	return a.b.String()
}

func (a *anmiEmitter) internTable(table, idCol, nameCol string, in *interner) {
	for i, name := range in.order {
		fmt.Fprintf(&a.b, "INSERT INTO graphv3.%s (%s, %s) VALUES (%d, %s) ON CONFLICT DO NOTHING;\n",
			table, idCol, nameCol, i+1, quote(name))
	}
	if len(in.order) > 0 {
		a.b.WriteString("\n")
	}
}

// moConstant harvests the closed column set from an outlet's blocks.
// Outlets without an id cannot key the table and are skipped.
func (a *anmiEmitter) moConstant(o ir.Outlet) string {
	if o.ID == nil {
		return ""
	}

	name := ir.LookupString(o.Identity, "title")
	if name == "" {
		name = o.Name
	}

	harvest := func(key string) string {
		if v := ir.LookupString(o.Characteristics, key); v != "" {
			return v
		}
		if v := ir.LookupString(o.Identity, key); v != "" {
			return v
		}
		return ir.LookupString(o.Metadata, key)
	}

	idSector := "NULL"
	if sector := harvest("sector"); sector != "" {
		idSector = fmt.Sprintf("%d", a.sectors.intern(sector))
	} else if v := harvest("id_sector"); v != "" {
		idSector = v
	}

	area := "NULL"
	if v := harvest("primary_distr_area"); v != "" {
		area = fmt.Sprintf("%d", a.areas.intern(v))
	} else if v := harvest("distribution_area"); v != "" {
		area = fmt.Sprintf("%d", a.areas.intern(v))
	}

	local := "NULL"
	if v, ok := ir.Lookup(o.Characteristics, "local"); ok && v.Kind == ir.ExprBoolean {
		local = v.Scalar()
	}

	start, end := lifecycleBounds(o.Lifecycle)

	return fmt.Sprintf("INSERT INTO graphv3.mo_constant (id, name, id_sector, mandate, location, primary_distr_area, local, language, start_date, end_date, editorial_line_s, comments) VALUES (%d, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s) ON CONFLICT (id) DO NOTHING;\n",
		*o.ID, quote(name), idSector,
		quoteOrNull(harvest("mandate")), quoteOrNull(harvest("location")),
		area, local, quoteOrNull(harvest("language")),
		anmiDate(start), anmiDate(end),
		quoteOrNull(harvest("editorial_line")), quoteOrNull(harvest("comments")))
}

// lifecycleBounds takes the first entry's start and the last entry's
// end as the outlet's overall lifespan.
func lifecycleBounds(entries []ir.LifecycleStatus) (string, string) {
	if len(entries) == 0 {
		return "", ""
	}
	return entries[0].StartDate, entries[len(entries)-1].EndDate
}

// anmiDate renders an optional date; the CURRENT sentinel means
// "still running" and stays NULL in the legacy schema.
func anmiDate(s string) string {
	if s == "" || s == "CURRENT" {
		return "NULL"
	}
	return quote(s)
}

// moYearRows produces one upsert per metric against the synthetic
// mo_year key (outlet_id*10000 + year). Known metrics land in their
// column; everything else is folded into comments.
func (a *anmiEmitter) moYearRows(data ir.DataBlock) []string {
	var rows []string
	for _, year := range data.Years {
		key := data.OutletID*10000 + year.Year
		for _, metric := range year.Metrics {
			idSource := "NULL"
			if metric.Source != "" {
				idSource = fmt.Sprintf("%d", a.sources.intern(metric.Source))
			}
			if col, ok := metricColumns[strings.ToLower(metric.Name)]; ok {
				rows = append(rows, fmt.Sprintf(
					"INSERT INTO graphv3.mo_year (mo_year, id_mo, year, %s, id_source) VALUES (%d, %d, %d, %s, %s) ON CONFLICT (mo_year) DO UPDATE SET %s = EXCLUDED.%s, id_source = EXCLUDED.id_source;\n",
					col, key, data.OutletID, year.Year, number(metric.Value), idSource, col, col))
				continue
			}
			comment := fmt.Sprintf("%s=%s", metric.Name, number(metric.Value))
			if metric.Unit != "" {
				comment += " " + metric.Unit
			}
			rows = append(rows, fmt.Sprintf(
				"INSERT INTO graphv3.mo_year (mo_year, id_mo, year, comments) VALUES (%d, %d, %d, %s) ON CONFLICT (mo_year) DO UPDATE SET comments = EXCLUDED.comments;\n",
				key, data.OutletID, year.Year, quote(comment)))
		}
	}
	return rows
}

// relationshipRow maps a relationship to its numbered legacy table.
// Unknown relationship kinds produce no output.
func (a *anmiEmitter) relationshipRow(rel ir.Relationship) string {
	switch rel.Kind {
	case ir.RelDiachronic:
		d := rel.Diachronic
		table, ok := diachronicTables[strings.ToLower(d.Type)]
		if !ok {
			return ""
		}
		return fmt.Sprintf("INSERT INTO graphv3.%s (id_pred, id_succ, e_s, e_e) VALUES (%d, %d, %s, %s) ON CONFLICT DO NOTHING;\n",
			table, d.Predecessor, d.Successor, anmiDate(d.EventStartDate), anmiDate(d.EventEndDate))
	case ir.RelSynchronous:
		s := rel.Synchronous
		table, ok := synchronousTables[strings.ToLower(s.Type)]
		if !ok {
			return ""
		}
		return fmt.Sprintf("INSERT INTO graphv3.%s (id_mo_1, id_mo_2, p_s, p_e) VALUES (%d, %d, %s, %s) ON CONFLICT DO NOTHING;\n",
			table, s.Outlet1.ID, s.Outlet2.ID, anmiDate(s.PeriodStart), anmiDate(s.PeriodEnd))
	}
	return ""
}
