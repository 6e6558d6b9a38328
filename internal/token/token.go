// Package token defines the lexical tokens of the mdsl language and the
// source positions attached to every token and syntax node.
package token

import (
	"fmt"
	"strings"
)

// Position is a location in an mdsl source document.
// Line and Column are 1-based; Offset is the 0-based byte offset.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// String renders the position as "line:column" for diagnostics.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Kind identifies the lexical class of a token.
type Kind int

const (
	EOF Kind = iota
	Newline

	// Literals and names.
	Identifier
	String  // decoded value in Token.Str
	Number  // parsed f64 in Token.Num
	Boolean // true/false, collapsed from keywords

	// Trivia recorded as tokens so the parser can skip or attach them.
	LineComment
	BlockComment
	Annotation // @name, optional payload in Token.Str

	// Punctuation.
	Assign    // =
	Semicolon // ;
	Colon     // :
	Comma     // ,
	Dot       // .
	Dollar    // $
	LBrace    // {
	RBrace    // }
	LParen    // (
	RParen    // )
	LBracket  // [
	RBracket  // ]
	Less      // <
	Greater   // >

	// Keywords. Matching is case-insensitive; Token.Text preserves
	// the source casing.
	KwImport
	KwLet
	KwUnit
	KwVocabulary
	KwFamily
	KwGroup
	KwTemplate
	KwOutlet
	KwExtends
	KwBasedOn
	KwData
	KwFor
	KwYear
	KwEvent
	KwCatalog
	KwDiachronicLink
	KwSynchronousLink
	KwPrimary
	KwKey
	KwFrom
	KwTo
	KwCurrent
	KwIdentity
	KwLifecycle
	KwCharacteristics
	KwMetadata
	KwAggregation
	KwStatus
	KwMetrics
	KwID
	KwText
	KwNumber
	KwBoolean
	KwCategory
)

var kindNames = map[Kind]string{
	EOF:               "EOF",
	Newline:           "newline",
	Identifier:        "identifier",
	String:            "string",
	Number:            "number",
	Boolean:           "boolean",
	LineComment:       "line comment",
	BlockComment:      "block comment",
	Annotation:        "annotation",
	Assign:            "'='",
	Semicolon:         "';'",
	Colon:             "':'",
	Comma:             "','",
	Dot:               "'.'",
	Dollar:            "'$'",
	LBrace:            "'{'",
	RBrace:            "'}'",
	LParen:            "'('",
	RParen:            "')'",
	LBracket:          "'['",
	RBracket:          "']'",
	Less:              "'<'",
	Greater:           "'>'",
	KwImport:          "IMPORT",
	KwLet:             "LET",
	KwUnit:            "UNIT",
	KwVocabulary:      "VOCABULARY",
	KwFamily:          "FAMILY",
	KwGroup:           "GROUP",
	KwTemplate:        "TEMPLATE",
	KwOutlet:          "OUTLET",
	KwExtends:         "EXTENDS",
	KwBasedOn:         "BASED_ON",
	KwData:            "DATA",
	KwFor:             "FOR",
	KwYear:            "YEAR",
	KwEvent:           "EVENT",
	KwCatalog:         "CATALOG",
	KwDiachronicLink:  "DIACHRONIC_LINK",
	KwSynchronousLink: "SYNCHRONOUS_LINK",
	KwPrimary:         "PRIMARY",
	KwKey:             "KEY",
	KwFrom:            "FROM",
	KwTo:              "TO",
	KwCurrent:         "CURRENT",
	KwIdentity:        "IDENTITY",
	KwLifecycle:       "LIFECYCLE",
	KwCharacteristics: "CHARACTERISTICS",
	KwMetadata:        "METADATA",
	KwAggregation:     "AGGREGATION",
	KwStatus:          "STATUS",
	KwMetrics:         "METRICS",
	KwID:              "ID",
	KwText:            "TEXT",
	KwNumber:          "NUMBER",
	KwBoolean:         "BOOLEAN",
	KwCategory:        "CATEGORY",
}

// String returns a human-readable name for the kind, used in
// "expected X, found Y" diagnostics.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword reports whether the kind is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= KwImport && k <= KwCategory
}

// Token is a single lexical unit with its source position.
type Token struct {
	Kind Kind
	Text string // verbatim source slice
	Str  string // decoded value for String and Annotation payloads
	Num  float64
	Bool bool
	Pos  Position
}

// String renders the token for the `mdsl lex` command and debugging.
func (t Token) String() string {
	switch t.Kind {
	case String:
		return fmt.Sprintf("%s %q @ %s", t.Kind, t.Str, t.Pos)
	case Number:
		return fmt.Sprintf("%s %v @ %s", t.Kind, t.Num, t.Pos)
	case EOF:
		return fmt.Sprintf("EOF @ %s", t.Pos)
	default:
		return fmt.Sprintf("%s %q @ %s", t.Kind, t.Text, t.Pos)
	}
}

// keywords maps lowercased reserved words to their kinds. The set is
// closed; SYNCHRONOUS_LINKS is a synonym accepted for compatibility
// with free-form input.
var keywords = map[string]Kind{
	"import":            KwImport,
	"let":               KwLet,
	"unit":              KwUnit,
	"vocabulary":        KwVocabulary,
	"family":            KwFamily,
	"group":             KwGroup,
	"template":          KwTemplate,
	"outlet":            KwOutlet,
	"extends":           KwExtends,
	"based_on":          KwBasedOn,
	"data":              KwData,
	"for":               KwFor,
	"year":              KwYear,
	"event":             KwEvent,
	"catalog":           KwCatalog,
	"diachronic_link":   KwDiachronicLink,
	"synchronous_link":  KwSynchronousLink,
	"synchronous_links": KwSynchronousLink,
	"primary":           KwPrimary,
	"key":               KwKey,
	"from":              KwFrom,
	"to":                KwTo,
	"current":           KwCurrent,
	"identity":          KwIdentity,
	"lifecycle":         KwLifecycle,
	"characteristics":   KwCharacteristics,
	"metadata":          KwMetadata,
	"aggregation":       KwAggregation,
	"status":            KwStatus,
	"metrics":           KwMetrics,
	"id":                KwID,
	"text":              KwText,
	"number":            KwNumber,
	"boolean":           KwBoolean,
	"category":          KwCategory,
}

// Lookup resolves an identifier against the keyword table.
// Matching is case-insensitive per the language definition.
func Lookup(ident string) (Kind, bool) {
	k, ok := keywords[strings.ToLower(ident)]
	return k, ok
}
