package cyphergen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediahist/mdsl/internal/compiler"
	"github.com/mediahist/mdsl/internal/ir"
	"github.com/mediahist/mdsl/internal/parser"
)

func lower(t *testing.T, src string) *ir.Program {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	return compiler.Lower(prog)
}

const graphSrc = `
TEMPLATE OUTLET "daily" {
    characteristics { frequency = "daily"; }
}
VOCABULARY media_types {
    types {
        1: "A";
        "x": "B";
    }
}
FAMILY "Springer" {
    OUTLET "Bild" EXTENDS TEMPLATE "daily" {
        identity {
            id = 100;
            title = "Bild";
        }
        lifecycle {
            status "active" from "1959-01-01" to CURRENT { precision_start = "known"; }
        }
        characteristics {
            language = "de";
        }
    }
    OUTLET "Welt" {
        identity { id = 101; title = "Die Welt"; }
    }
    DIACHRONIC_LINK "succ" {
        predecessor = 100;
        successor = 101;
        relationship_type = "succession";
    }
    DATA FOR 100 {
        YEAR 1960 {
            metrics {
                circulation = { value = 4000000; unit = "copies"; source = "IVW"; };
            }
        }
    }
}
`

func TestConstraintsAndIndices(t *testing.T) {
	out := Emit(lower(t, graphSrc))

	assert.Contains(t, out, "CREATE CONSTRAINT outlet_id IF NOT EXISTS FOR (o:Outlet) REQUIRE o.id IS UNIQUE;")
	assert.Contains(t, out, "CREATE CONSTRAINT vocabulary_name IF NOT EXISTS")
	assert.Contains(t, out, "CREATE INDEX market_data_year IF NOT EXISTS FOR (m:MarketData) ON (m.year);")
	assert.Contains(t, out, "CREATE INDEX metric_name IF NOT EXISTS FOR (m:Metric) ON (m.name);")
}

func TestOneCreatePerOutlet(t *testing.T) {
	out := Emit(lower(t, graphSrc))

	assert.Equal(t, 2, strings.Count(out, "CREATE (o:Outlet "))
	assert.Contains(t, out, "CREATE (o:Outlet {id: 100, name: 'Bild'});")
	assert.Contains(t, out, "CREATE (o:Outlet {id: 101, name: 'Die Welt'});")
}

func TestFamilyWiring(t *testing.T) {
	out := Emit(lower(t, graphSrc))

	assert.Contains(t, out, "CREATE (:Family {name: 'Springer'});")
	assert.Contains(t, out, "MATCH (f:Family {name: 'Springer'}), (x:Outlet {id: 100}) CREATE (f)-[:HAS_OUTLET]->(x);")
}

func TestVocabularyEntries(t *testing.T) {
	out := Emit(lower(t, graphSrc))

	assert.Contains(t, out, "CREATE (:Vocabulary {name: 'media_types.types'});")
	assert.Contains(t, out, "[:HAS_ENTRY]->(:VocabularyEntry {key: '1', value: 'A'});")
	assert.Contains(t, out, "[:HAS_ENTRY]->(:VocabularyEntry {key: 'x', value: 'B'});")
}

func TestTemplateAndInheritance(t *testing.T) {
	out := Emit(lower(t, graphSrc))

	assert.Contains(t, out, "CREATE (:Template {name: 'daily'});")
	assert.Contains(t, out, "(t)-[:HAS_CHARACTERISTIC]->(:Characteristic {name: 'frequency', value: 'daily'});")
	assert.Contains(t, out, "MATCH (x:Outlet {id: 100}), (t:Template {name: 'daily'}) CREATE (x)-[:EXTENDS_TEMPLATE]->(t);")
}

func TestLifecycleCurrentBecomesFarFuture(t *testing.T) {
	out := Emit(lower(t, graphSrc))

	assert.Contains(t, out, "start_date: date('1959-01-01')")
	assert.Contains(t, out, "end_date: date('9999-01-01')")
	assert.Contains(t, out, "precision_start: 'known'")
}

func TestDiachronicEdge(t *testing.T) {
	out := Emit(lower(t, graphSrc))

	assert.Contains(t, out, "MATCH (a:Outlet {id: 100}), (b:Outlet {id: 101}) CREATE (a)-[:DIACHRONIC_LINK {name: 'succ', relationship_type: 'succession'}]->(b);")
}

func TestSynchronousEdge(t *testing.T) {
	out := Emit(lower(t, `
FAMILY "F" {
    OUTLET "A" { identity { id = 1; } }
    OUTLET "B" { identity { id = 2; } }
    SYNCHRONOUS_LINK "u" {
        outlet_1 = { id = 1; role = "parent"; };
        outlet_2 = { id = 2; role = "child"; };
        relationship_type = "umbrella";
        period = "2000-01-01" TO CURRENT;
    }
}
`))
	assert.Contains(t, out, "[:SYNCHRONOUS_LINK {name: 'u', relationship_type: 'umbrella', role_1: 'parent', role_2: 'child', period_start: date('2000-01-01'), period_end: date('9999-01-01')}]")
}

func TestMarketDataNodes(t *testing.T) {
	out := Emit(lower(t, graphSrc))

	assert.Contains(t, out, "MATCH (x:Outlet {id: 100}) CREATE (x)-[:HAS_MARKET_DATA]->(:MarketData {year: 1960});")
	assert.Contains(t, out, "CREATE (m)-[:HAS_METRIC]->(:Metric {name: 'circulation', value: 4000000, unit: 'copies', source: 'IVW'});")
}

func TestQuoteEscaping(t *testing.T) {
	out := Emit(lower(t, `
FAMILY "F" {
    OUTLET "L'Express" {
        identity { id = 1; title = "L'Express"; }
    }
}
`))
	assert.Contains(t, out, `name: 'L\'Express'`)
	assert.NotContains(t, out, "''Express")
}

func TestQuoteEscapesTrailingBackslash(t *testing.T) {
	out := Emit(lower(t, `
FAMILY "F" {
    OUTLET "Archiv\\" {
        identity { id = 1; title = "Archiv\\"; }
    }
}
`))
	// An unescaped trailing backslash would swallow the closing quote.
	assert.Contains(t, out, `name: 'Archiv\\'`)
	assert.NotContains(t, out, `Archiv\'`)
}

func TestDeterministic(t *testing.T) {
	prog := lower(t, graphSrc)
	assert.Equal(t, Emit(prog), Emit(prog))
}

func TestStatementsEndWithSemicolonNewline(t *testing.T) {
	out := Emit(lower(t, graphSrc))
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "CREATE") || strings.HasPrefix(line, "MATCH") {
			assert.True(t, strings.HasSuffix(line, ";"), "line %q lacks terminator", line)
		}
	}
}
