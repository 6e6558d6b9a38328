package ir

import "github.com/mediahist/mdsl/internal/token"

// Program is a fully lowered mdsl document.
type Program struct {
	Imports      []Import     `json:"imports"`
	Variables    []Variable   `json:"variables"`
	Templates    []Template   `json:"templates"`
	Units        []Unit       `json:"units"`
	Vocabularies []Vocabulary `json:"vocabularies"`
	Families     []Family     `json:"families"`
	Events       []Event      `json:"events"`
}

// Import records an import path; imports are never resolved.
type Import struct {
	Path string         `json:"path"`
	Pos  token.Position `json:"pos"`
}

// Variable is a `LET` binding.
type Variable struct {
	Name  string         `json:"name"`
	Value Expression     `json:"value"`
	Pos   token.Position `json:"pos"`
}

// ExprKind tags the flattened expression union.
type ExprKind int

const (
	ExprString ExprKind = iota
	ExprNumber
	ExprBoolean
	ExprVariable
	ExprObject
	ExprArray
	ExprPeriod
)

func (k ExprKind) String() string {
	switch k {
	case ExprString:
		return "string"
	case ExprNumber:
		return "number"
	case ExprBoolean:
		return "boolean"
	case ExprVariable:
		return "variable"
	case ExprObject:
		return "object"
	case ExprArray:
		return "array"
	case ExprPeriod:
		return "period"
	default:
		return "unknown"
	}
}

// Expression is the flattened expression value. Exactly the field
// matching Kind is meaningful.
type Expression struct {
	Kind       ExprKind       `json:"kind"`
	Str        string         `json:"str,omitempty"`
	Num        float64        `json:"num,omitempty"`
	Bool       bool           `json:"bool,omitempty"`
	Object     []Field        `json:"object,omitempty"`
	Array      []Expression   `json:"array,omitempty"`
	PeriodFrom string         `json:"period_from,omitempty"`
	PeriodTo   string         `json:"period_to,omitempty"`
	Pos        token.Position `json:"pos"`
}

// Field is a named expression inside an object or block.
type Field struct {
	Name  string     `json:"name"`
	Value Expression `json:"value"`
}

// Template keeps only characteristics and metadata; identity and
// lifecycle blocks in templates are parsed but discarded.
type Template struct {
	Name            string         `json:"name"`
	Characteristics []Field        `json:"characteristics"`
	Metadata        []Field        `json:"metadata"`
	Pos             token.Position `json:"pos"`
}

// Unit is a structural schema declaration.
type Unit struct {
	Name   string         `json:"name"`
	Fields []UnitField    `json:"fields"`
	Pos    token.Position `json:"pos"`
}

// UnitField mirrors ast.UnitField in IR terms.
type UnitField struct {
	Name       string    `json:"name"`
	Type       FieldType `json:"type"`
	PrimaryKey bool      `json:"is_primary_key"`
}

// FieldTypeKind enumerates UNIT field types.
type FieldTypeKind int

const (
	FieldID FieldTypeKind = iota
	FieldText
	FieldNumber
	FieldBoolean
	FieldCategory
)

// FieldType is the IR form of a UNIT field type.
type FieldType struct {
	Kind   FieldTypeKind `json:"kind"`
	Length *int          `json:"length,omitempty"`
	Values []string      `json:"values,omitempty"`
}

// Vocabulary is one body of a vocabulary declaration; a multi-body
// declaration lowers to several Vocabulary values sharing Name.
type Vocabulary struct {
	Name     string         `json:"name"`
	BodyName string         `json:"body_name"`
	Entries  []VocabEntry   `json:"entries"`
	Pos      token.Position `json:"pos"`
}

// VocabEntry preserves the key kind (number or string).
type VocabEntry struct {
	KeyIsNumber bool    `json:"key_is_number"`
	KeyNumber   float64 `json:"key_number,omitempty"`
	KeyText     string  `json:"key_text,omitempty"`
	Value       string  `json:"value"`
}

// Key renders the entry key as its source-facing string.
func (e VocabEntry) Key() string {
	if e.KeyIsNumber {
		return trimFloat(e.KeyNumber)
	}
	return e.KeyText
}

// Family groups outlets, relationships and data blocks.
type Family struct {
	Name          string         `json:"name"`
	Comment       string         `json:"comment,omitempty"`
	Outlets       []Outlet       `json:"outlets"`
	Relationships []Relationship `json:"relationships"`
	DataBlocks    []DataBlock    `json:"data_blocks"`
	Pos           token.Position `json:"pos"`
}

// Outlet is an identified media entity with its typed blocks.
type Outlet struct {
	Name            string            `json:"name"`
	ID              *int              `json:"id,omitempty"`
	TemplateRef     string            `json:"template_ref,omitempty"`
	BaseRef         *int              `json:"base_ref,omitempty"`
	Identity        []Field           `json:"identity"`
	Lifecycle       []LifecycleStatus `json:"lifecycle"`
	Characteristics []Field           `json:"characteristics"`
	Metadata        []Field           `json:"metadata"`
	Pos             token.Position    `json:"pos"`
}

// LifecycleStatus is one lifecycle entry. Dates are literal strings;
// CURRENT lowers to the sentinel string "CURRENT"; absent dates are
// empty strings.
type LifecycleStatus struct {
	Status         string         `json:"status"`
	StartDate      string         `json:"start_date,omitempty"`
	EndDate        string         `json:"end_date,omitempty"`
	PrecisionStart string         `json:"precision_start,omitempty"`
	PrecisionEnd   string         `json:"precision_end,omitempty"`
	Comment        string         `json:"comment,omitempty"`
	Pos            token.Position `json:"pos"`
}

// RelKind discriminates relationship variants.
type RelKind int

const (
	RelDiachronic RelKind = iota
	RelSynchronous
)

// Relationship is the IR union of diachronic and synchronous links.
// Exactly one of Diachronic/Synchronous is set, matching Kind.
type Relationship struct {
	Kind        RelKind        `json:"kind"`
	Diachronic  *Diachronic    `json:"diachronic,omitempty"`
	Synchronous *Synchronous   `json:"synchronous,omitempty"`
	Pos         token.Position `json:"pos"`
}

// Diachronic is a directed predecessor→successor link.
type Diachronic struct {
	Name           string `json:"name"`
	Predecessor    int    `json:"predecessor"`
	Successor      int    `json:"successor"`
	EventStartDate string `json:"event_start_date,omitempty"`
	EventEndDate   string `json:"event_end_date,omitempty"`
	Type           string `json:"relationship_type"`
	Comment        string `json:"comment,omitempty"`
	MapsTo         string `json:"maps_to,omitempty"`
}

// RoleRef identifies one side of a synchronous link.
type RoleRef struct {
	ID   int    `json:"id"`
	Role string `json:"role,omitempty"`
}

// Synchronous is a contemporaneous bilateral link with a period.
type Synchronous struct {
	Name        string  `json:"name"`
	Outlet1     RoleRef `json:"outlet_1"`
	Outlet2     RoleRef `json:"outlet_2"`
	Type        string  `json:"relationship_type"`
	PeriodStart string  `json:"period_start,omitempty"`
	PeriodEnd   string  `json:"period_end,omitempty"`
	Details     string  `json:"details,omitempty"`
	MapsTo      string  `json:"maps_to,omitempty"`
}

// DataBlock carries longitudinal metrics for one outlet.
type DataBlock struct {
	OutletID    int            `json:"outlet_id"`
	Aggregation []Field        `json:"aggregation"`
	Years       []DataYear     `json:"years"`
	MapsTo      string         `json:"maps_to,omitempty"`
	Comment     string         `json:"comment,omitempty"`
	Pos         token.Position `json:"pos"`
}

// DataYear holds one year's metrics.
type DataYear struct {
	Year    int            `json:"year"`
	Metrics []Metric       `json:"metrics"`
	Comment string         `json:"comment,omitempty"`
	Pos     token.Position `json:"pos"`
}

// Metric is a single named measurement.
type Metric struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Unit    string  `json:"unit,omitempty"`
	Source  string  `json:"source,omitempty"`
	Comment string  `json:"comment,omitempty"`
}

// Event is a market event with participating entities.
type Event struct {
	Name     string         `json:"name"`
	Type     string         `json:"type,omitempty"`
	Date     string         `json:"date,omitempty"`
	Status   string         `json:"status,omitempty"`
	Entities []EventEntity  `json:"entities"`
	Impact   []Field        `json:"impact"`
	Metadata []Field        `json:"metadata"`
	Pos      token.Position `json:"pos"`
}

// EventEntity is one participant in an event.
type EventEntity struct {
	Name        string   `json:"name"`
	ID          int      `json:"id,omitempty"`
	Role        string   `json:"role,omitempty"`
	StakeBefore *float64 `json:"stake_before,omitempty"`
	StakeAfter  *float64 `json:"stake_after,omitempty"`
}

// OutletIDs returns the declared outlet IDs in document order.
func (p *Program) OutletIDs() []int {
	var ids []int
	for _, fam := range p.Families {
		for _, o := range fam.Outlets {
			if o.ID != nil {
				ids = append(ids, *o.ID)
			}
		}
	}
	return ids
}
