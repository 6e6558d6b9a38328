package harness

import (
	"fmt"
	"strings"

	"github.com/mediahist/mdsl/internal/compiler"
	"github.com/mediahist/mdsl/internal/cyphergen"
	"github.com/mediahist/mdsl/internal/parser"
	"github.com/mediahist/mdsl/internal/sqlgen"
	"github.com/mediahist/mdsl/internal/validator"
)

// Result is the outcome of running one scenario.
type Result struct {
	// Name echoes the scenario name.
	Name string `json:"name"`

	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Failures lists the expectations that did not hold.
	Failures []string `json:"failures,omitempty"`

	// Validation carries the full validator result for inspection.
	Validation *validator.Result `json:"validation,omitempty"`
}

func (r *Result) fail(format string, args ...any) {
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run executes a scenario through the whole pipeline and checks its
// expectations. A parse error fails the scenario unless the scenario
// expects a failed verdict with no specific codes.
func Run(sc *Scenario) *Result {
	result := &Result{Name: sc.Name, Pass: true}

	prog, err := parser.Parse(sc.Source)
	if err != nil {
		if sc.Expect.Passed {
			result.fail("parse error: %v", err)
		}
		return result
	}

	vres := validator.Validate(prog)
	result.Validation = vres

	if vres.Passed != sc.Expect.Passed {
		result.fail("expected passed=%t, got passed=%t (%d errors)",
			sc.Expect.Passed, vres.Passed, vres.Errors)
	}
	for _, code := range sc.Expect.Errors {
		if !hasIssue(vres, code, validator.Error) {
			result.fail("expected error %s, not raised", code)
		}
	}
	for _, code := range sc.Expect.Warnings {
		if !hasIssue(vres, code, validator.Warning) {
			result.fail("expected warning %s, not raised", code)
		}
	}

	irProg := compiler.Lower(prog)
	if len(sc.Emit.SQLContains) > 0 {
		out := sqlgen.EmitGeneric(irProg)
		for _, fragment := range sc.Emit.SQLContains {
			if !strings.Contains(out, fragment) {
				result.fail("sql output missing %q", fragment)
			}
		}
	}
	if len(sc.Emit.ANMIContains) > 0 {
		out := sqlgen.EmitANMI(irProg)
		for _, fragment := range sc.Emit.ANMIContains {
			if !strings.Contains(out, fragment) {
				result.fail("anmi output missing %q", fragment)
			}
		}
	}
	if len(sc.Emit.CypherContains) > 0 {
		out := cyphergen.Emit(irProg)
		for _, fragment := range sc.Emit.CypherContains {
			if !strings.Contains(out, fragment) {
				result.fail("cypher output missing %q", fragment)
			}
		}
	}
	return result
}

// RunAll runs every scenario and reports per-scenario results.
func RunAll(scenarios []*Scenario) []*Result {
	results := make([]*Result, 0, len(scenarios))
	for _, sc := range scenarios {
		results = append(results, Run(sc))
	}
	return results
}

func hasIssue(res *validator.Result, code string, sev validator.Severity) bool {
	for _, issue := range res.Issues {
		if issue.Code == code && issue.Severity == sev {
			return true
		}
	}
	return false
}
