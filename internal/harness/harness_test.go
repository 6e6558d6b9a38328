package harness

import (
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediahist/mdsl/internal/compiler"
	"github.com/mediahist/mdsl/internal/cyphergen"
	"github.com/mediahist/mdsl/internal/parser"
)

func TestRunMinimalValid(t *testing.T) {
	result := Run(&Scenario{
		Name:   "minimal",
		Source: `UNIT MediaOutlet { id: ID PRIMARY KEY, name: TEXT(120), sector: NUMBER }`,
		Expect: ExpectClause{Passed: true},
		Emit: EmitClause{
			SQLContains: []string{
				"CREATE TABLE mediaoutlet",
				"id INTEGER PRIMARY KEY NOT NULL",
				"name VARCHAR(120)",
				"sector DECIMAL(15,2)",
			},
		},
	})
	assert.True(t, result.Pass, "failures: %v", result.Failures)
}

func TestRunExpectedError(t *testing.T) {
	result := Run(&Scenario{
		Name:   "missing id",
		Source: `FAMILY "F" { OUTLET "O" { identity { title = "X"; } } }`,
		Expect: ExpectClause{
			Passed: false,
			Errors: []string{"IDENTITY_NO_ID"},
		},
	})
	assert.True(t, result.Pass, "failures: %v", result.Failures)
}

func TestRunVerdictMismatch(t *testing.T) {
	result := Run(&Scenario{
		Name:   "wrong verdict",
		Source: `FAMILY "F" { OUTLET "O" { identity { title = "X"; } } }`,
		Expect: ExpectClause{Passed: true},
	})
	require.False(t, result.Pass)
	assert.Contains(t, result.Failures[0], "expected passed=true")
}

func TestRunMissingFragment(t *testing.T) {
	result := Run(&Scenario{
		Name:   "missing fragment",
		Source: `FAMILY "F" { OUTLET "A" { identity { id = 1; title = "A"; } characteristics { x = 1; } } }`,
		Expect: ExpectClause{Passed: true},
		Emit:   EmitClause{CypherContains: []string{"no such text"}},
	})
	require.False(t, result.Pass)
	assert.Contains(t, result.Failures[0], "cypher output missing")
}

func TestRunParseErrorFailsPassingScenario(t *testing.T) {
	result := Run(&Scenario{
		Name:   "broken",
		Source: `UNIT Broken { id ID }`,
		Expect: ExpectClause{Passed: true},
	})
	assert.False(t, result.Pass)
}

func TestLoadScenarioFile(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "missing_id.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "missing-id", sc.Name)
	assert.False(t, sc.Expect.Passed)
	assert.Equal(t, []string{"IDENTITY_NO_ID"}, sc.Expect.Errors)
}

func TestLoadDirRunsAllScenarios(t *testing.T) {
	scenarios, err := LoadDir("testdata")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, result := range RunAll(scenarios) {
		assert.True(t, result.Pass, "scenario %s: %v", result.Name, result.Failures)
	}
}

func TestLoadScenarioMissingName(t *testing.T) {
	_, err := LoadScenario(filepath.Join("testdata", "broken", "no_name.yaml"))
	assert.Error(t, err)
}

func TestGoldenMinimalGraph(t *testing.T) {
	prog, err := parser.Parse(`
FAMILY "F" {
    OUTLET "A" {
        identity { id = 1; }
    }
}
`)
	require.NoError(t, err)
	out := cyphergen.Emit(compiler.Lower(prog))

	g := goldie.New(t)
	g.Assert(t, "minimal_graph", []byte(out))
}
