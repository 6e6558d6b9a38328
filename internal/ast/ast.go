// Package ast defines the syntax tree produced by the mdsl parser.
// Every node carries the source position of its first token so the
// validator can report precise diagnostics.
package ast

import "github.com/mediahist/mdsl/internal/token"

// Node is implemented by every syntax node.
type Node interface {
	Pos() token.Position
}

// Program is a parsed mdsl source document.
type Program struct {
	Items []Item
}

// Item is a top-level declaration or statement.
type Item interface {
	Node
	item()
}

// Import records an `IMPORT "path"` statement. Imports are recorded
// but never resolved.
type Import struct {
	Path     string
	Position token.Position
}

// Variable is a `LET name = expr` declaration.
type Variable struct {
	Name     string
	Value    Expr
	Position token.Position
}

// Unit is a structural schema declaration (`UNIT name { fields }`).
type Unit struct {
	Name     string
	Fields   []UnitField
	Position token.Position
}

// UnitField is one field of a UNIT declaration.
type UnitField struct {
	Name       string
	Type       FieldType
	PrimaryKey bool
	Position   token.Position
}

// FieldKind enumerates the UNIT field types.
type FieldKind int

const (
	FieldID FieldKind = iota
	FieldText
	FieldNumber
	FieldBoolean
	FieldCategory
)

func (k FieldKind) String() string {
	switch k {
	case FieldID:
		return "ID"
	case FieldText:
		return "TEXT"
	case FieldNumber:
		return "NUMBER"
	case FieldBoolean:
		return "BOOLEAN"
	case FieldCategory:
		return "CATEGORY"
	default:
		return "UNKNOWN"
	}
}

// FieldType is a UNIT field type with its optional parameters.
type FieldType struct {
	Kind   FieldKind
	Length *int     // TEXT(n); nil for unbounded TEXT
	Values []string // CATEGORY("a","b",...)
}

// Vocabulary is an enumerated code list with one or more keyed bodies.
type Vocabulary struct {
	Name     string
	Bodies   []VocabularyBody
	Position token.Position
}

// VocabularyBody is a named group of entries inside a vocabulary.
type VocabularyBody struct {
	Name     string
	Entries  []VocabularyEntry
	Position token.Position
}

// VocabularyEntry is a `key : "value"` pair. Keys are either numbers
// or strings; the kind is preserved through lowering.
type VocabularyEntry struct {
	Key      VocabularyKey
	Value    string
	Position token.Position
}

// VocabularyKey carries a numeric or string entry key.
type VocabularyKey struct {
	IsNumber bool
	Number   float64
	Text     string
}

// Template is a named bundle of blocks that outlets may inherit.
// Identity and lifecycle blocks are parsed but discarded by lowering.
type Template struct {
	Name     string
	Blocks   []OutletBlock
	Position token.Position
}

// Family groups outlets, their relationships and data blocks.
// GROUP is an accepted synonym in the source language.
type Family struct {
	Name     string
	Comment  string
	Members  []FamilyMember
	Position token.Position
}

// FamilyMember is anything that may appear inside a family body.
type FamilyMember interface {
	Node
	familyMember()
}

// Outlet declares a media outlet with its blocks.
type Outlet struct {
	Name        string
	TemplateRef string // EXTENDS TEMPLATE "name"
	BasedOn     *int   // BASED_ON n
	Blocks      []OutletBlock
	Position    token.Position
}

// OutletRef references an already-declared outlet by name without
// re-declaring it.
type OutletRef struct {
	Name     string
	Position token.Position
}

// BlockKind discriminates the four outlet block forms.
type BlockKind int

const (
	BlockIdentity BlockKind = iota
	BlockLifecycle
	BlockCharacteristics
	BlockMetadata
)

func (k BlockKind) String() string {
	switch k {
	case BlockIdentity:
		return "Identity"
	case BlockLifecycle:
		return "Lifecycle"
	case BlockCharacteristics:
		return "Characteristics"
	case BlockMetadata:
		return "Metadata"
	default:
		return "Block"
	}
}

// OutletBlock is one block inside an outlet or template. Identity,
// characteristics and metadata carry assignments; lifecycle carries
// status entries.
type OutletBlock struct {
	Kind      BlockKind
	Fields    []Assignment
	Lifecycle []LifecycleEntry
	Position  token.Position
}

// Assignment is a `name = expr;` field inside a block or object.
type Assignment struct {
	Name     string
	Value    Expr
	Position token.Position
}

// LifecycleEntry is `status "s" from D [to D] { attrs }`.
type LifecycleEntry struct {
	Status   string
	From     *DateValue
	To       *DateValue
	Attrs    []Assignment
	Position token.Position
}

// DateValue is a literal ISO-like date string or the CURRENT sentinel.
type DateValue struct {
	Current  bool
	Literal  string
	Position token.Position
}

// Data is a `DATA FOR n { ... }` block of longitudinal metrics.
type Data struct {
	TargetID    int
	Aggregation []Assignment
	Years       []YearBlock
	MapsTo      string
	Comment     string
	Position    token.Position
}

// YearBlock holds the metrics of a single year.
type YearBlock struct {
	Year     int
	Metrics  []Metric
	Comment  string
	Position token.Position
}

// Metric is one named measurement; its fields (value, unit, source,
// comment) stay loose until lowering extracts them.
type Metric struct {
	Name     string
	Fields   []Assignment
	Position token.Position
}

// DiachronicLink is a temporal predecessor/successor relationship.
// Fields stay loose; lowering extracts the well-known keys.
type DiachronicLink struct {
	Name        string
	Fields      []Assignment
	Annotations []Annotation
	Position    token.Position
}

// SynchronousLink is a contemporaneous relationship between two
// outlets with roles and a period.
type SynchronousLink struct {
	Name        string
	Fields      []Assignment
	Annotations []Annotation
	Position    token.Position
}

// Annotation is an `@name "payload"` marker recorded inside a block.
type Annotation struct {
	Name     string
	Value    string
	Position token.Position
}

// Event is a market event with participating entities.
type Event struct {
	Name     string
	Fields   []Assignment
	Position token.Position
}

// Catalog records an external source catalog; inner source bodies may
// be balance-skipped and recorded empty.
type Catalog struct {
	Name     string
	Fields   []Assignment
	Position token.Position
}

// Comment is a standalone comment kept as a top-level item or family
// member so round-trip tooling can observe it.
type Comment struct {
	Text     string
	Position token.Position
}

func (n *Import) Pos() token.Position          { return n.Position }
func (n *Variable) Pos() token.Position        { return n.Position }
func (n *Unit) Pos() token.Position            { return n.Position }
func (n *Vocabulary) Pos() token.Position      { return n.Position }
func (n *Template) Pos() token.Position        { return n.Position }
func (n *Family) Pos() token.Position          { return n.Position }
func (n *Outlet) Pos() token.Position          { return n.Position }
func (n *OutletRef) Pos() token.Position       { return n.Position }
func (n *Data) Pos() token.Position            { return n.Position }
func (n *DiachronicLink) Pos() token.Position  { return n.Position }
func (n *SynchronousLink) Pos() token.Position { return n.Position }
func (n *Event) Pos() token.Position           { return n.Position }
func (n *Catalog) Pos() token.Position         { return n.Position }
func (n *Comment) Pos() token.Position         { return n.Position }

func (*Import) item()          {}
func (*Variable) item()        {}
func (*Unit) item()            {}
func (*Vocabulary) item()      {}
func (*Template) item()        {}
func (*Family) item()          {}
func (*Data) item()            {}
func (*DiachronicLink) item()  {}
func (*SynchronousLink) item() {}
func (*Event) item()           {}
func (*Catalog) item()         {}
func (*Comment) item()         {}

func (*Outlet) familyMember()          {}
func (*OutletRef) familyMember()       {}
func (*Data) familyMember()            {}
func (*DiachronicLink) familyMember()  {}
func (*SynchronousLink) familyMember() {}
func (*Comment) familyMember()         {}
