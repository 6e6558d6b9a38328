package ir

import (
	"strconv"
	"strings"
)

// trimFloat renders a float the way the source language wrote it:
// integral values lose their fraction, everything else keeps the
// shortest round-trip form. Emitters rely on this for byte-stable
// output.
func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatNumber renders an IR number for emitters.
func FormatNumber(f float64) string { return trimFloat(f) }

// Scalar renders an expression as the plain string the emitters
// embed in generated scripts. Objects and arrays render as their
// placeholder forms; variables render by name.
func (e Expression) Scalar() string {
	switch e.Kind {
	case ExprString:
		return e.Str
	case ExprNumber:
		return trimFloat(e.Num)
	case ExprBoolean:
		if e.Bool {
			return "true"
		}
		return "false"
	case ExprVariable:
		return "$" + e.Str
	case ExprPeriod:
		return e.PeriodFrom + " TO " + e.PeriodTo
	case ExprObject:
		return "complex_object"
	case ExprArray:
		parts := make([]string, len(e.Array))
		for i, el := range e.Array {
			parts[i] = el.Scalar()
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// Lookup finds a field by case-insensitive name in an object field
// list.
func Lookup(fields []Field, name string) (Expression, bool) {
	for _, f := range fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return Expression{}, false
}

// LookupString returns the scalar rendering of a field, or "".
func LookupString(fields []Field, name string) string {
	if v, ok := Lookup(fields, name); ok {
		return v.Scalar()
	}
	return ""
}
