// Package harness runs end-to-end conformance scenarios against the
// full pipeline: lex, parse, lower, validate, emit. Scenarios are
// YAML files describing an mdsl source and the expected validation
// verdict and emitter output fragments.
package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is one conformance test case.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description,omitempty"`

	// Source is the inline mdsl program under test.
	Source string `yaml:"source"`

	// SourceFile optionally names an mdsl file relative to the
	// scenario file; it replaces Source when set.
	SourceFile string `yaml:"source_file,omitempty"`

	// Expect describes the validation verdict.
	Expect ExpectClause `yaml:"expect"`

	// Emit lists fragments each emitter output must contain.
	Emit EmitClause `yaml:"emit,omitempty"`
}

// ExpectClause pins the validation outcome.
type ExpectClause struct {
	// Passed is the expected overall verdict.
	Passed bool `yaml:"passed"`

	// Errors lists issue codes that must appear with Error severity.
	Errors []string `yaml:"errors,omitempty"`

	// Warnings lists issue codes that must appear with Warning
	// severity.
	Warnings []string `yaml:"warnings,omitempty"`
}

// EmitClause lists substrings the generated scripts must contain.
type EmitClause struct {
	SQLContains    []string `yaml:"sql_contains,omitempty"`
	ANMIContains   []string `yaml:"anmi_contains,omitempty"`
	CypherContains []string `yaml:"cypher_contains,omitempty"`
}

// LoadScenario reads and validates one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: missing name", path)
	}
	if sc.SourceFile != "" {
		src, err := os.ReadFile(filepath.Join(filepath.Dir(path), sc.SourceFile))
		if err != nil {
			return nil, fmt.Errorf("scenario %s: read source_file: %w", path, err)
		}
		sc.Source = string(src)
	}
	if strings.TrimSpace(sc.Source) == "" {
		return nil, fmt.Errorf("scenario %s: missing source", path)
	}
	return &sc, nil
}

// LoadDir loads every .yaml scenario under dir, sorted by filename
// so runs stay deterministic.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		sc, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}
