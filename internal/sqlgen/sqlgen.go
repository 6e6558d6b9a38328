// Package sqlgen turns an IR program into executable SQL scripts.
// Two emitters share this package: the generic self-describing
// schema (EmitGeneric) and the ANMI-compatible graphv3 schema
// (EmitANMI).
//
// Both emitters are pure functions over the IR and byte-stable:
// entities are walked in IR iteration order and fields in declared
// order, so identical IR always yields identical output.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/mediahist/mdsl/internal/ir"
)

// quote escapes a string for a single-quoted SQL literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// quoteOrNull renders an optional string column value.
func quoteOrNull(s string) string {
	if s == "" {
		return "NULL"
	}
	return quote(s)
}

// dateOrNull renders an optional date. The CURRENT sentinel is kept
// literal so downstream consumers can decide how to resolve it.
func dateOrNull(s string) string {
	if s == "" {
		return "NULL"
	}
	return quote(s)
}

// number renders an IR float the way the source wrote it.
func number(f float64) string { return ir.FormatNumber(f) }

// identifier lowercases a declared name into a SQL identifier,
// replacing spaces with underscores.
func identifier(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// header writes the fixed comment block both emitters start with.
func header(b *strings.Builder, title string) {
	b.WriteString("-- ============================================================\n")
	fmt.Fprintf(b, "-- %s\n", title)
	b.WriteString("-- Generated by mdsl. Do not edit.\n")
	b.WriteString("-- ============================================================\n\n")
}
