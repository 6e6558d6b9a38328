package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediahist/mdsl/internal/parser"
)

func validate(t *testing.T, src string) *Result {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	return Validate(prog)
}

func codes(result *Result) []string {
	out := make([]string, 0, len(result.Issues))
	for _, issue := range result.Issues {
		out = append(out, issue.Code)
	}
	return out
}

func findIssue(result *Result, code string) (Issue, bool) {
	for _, issue := range result.Issues {
		if issue.Code == code {
			return issue, true
		}
	}
	return Issue{}, false
}

func TestValidateCleanProgram(t *testing.T) {
	result := validate(t, `
FAMILY "Springer" {
    OUTLET "Bild" {
        identity {
            id = 100;
            title = "Bild";
        }
        characteristics {
            language = "de";
        }
    }
    OUTLET "Welt" {
        identity {
            id = 101;
            title = "Die Welt";
        }
        characteristics {
            language = "de";
        }
    }
    DIACHRONIC_LINK "succession" {
        predecessor = 100;
        successor = 101;
    }
}
`)
	assert.True(t, result.Passed)
	assert.Zero(t, result.Errors)
	assert.Empty(t, codes(result))
}

func TestIdentityWithoutID(t *testing.T) {
	result := validate(t, `
FAMILY "F" {
    OUTLET "A" {
        identity {
            title = "A";
        }
        characteristics { x = 1; }
    }
}
`)
	assert.False(t, result.Passed)
	issue, ok := findIssue(result, CodeIdentityNoID)
	require.True(t, ok)
	assert.Equal(t, Error, issue.Severity)
	assert.Contains(t, issue.Context, "Family(F) > Outlet(A) > Identity")
	assert.NotEmpty(t, issue.Suggestion)
}

func TestDuplicateOutletID(t *testing.T) {
	result := validate(t, `
FAMILY "F" {
    OUTLET "A" {
        identity { id = 7; title = "A"; }
        characteristics { x = 1; }
    }
    OUTLET "B" {
        identity { id = 7; title = "B"; }
        characteristics { x = 1; }
    }
}
`)
	assert.False(t, result.Passed)
	issue, ok := findIssue(result, CodeOutletIDDuplicate)
	require.True(t, ok)
	assert.Equal(t, Error, issue.Severity)
	// The message points back at the first declaration.
	assert.Contains(t, issue.Message, "already assigned at")
	assert.Contains(t, issue.Context, "Outlet(B)")
}

func TestSuccessorNotFound(t *testing.T) {
	result := validate(t, `
FAMILY "F" {
    OUTLET "A" {
        identity { id = 1; title = "A"; }
        characteristics { x = 1; }
    }
    OUTLET "B" {
        identity { id = 2; title = "B"; }
        characteristics { x = 1; }
    }
    DIACHRONIC_LINK "merge" {
        predecessor = 1;
        successor = 999;
    }
}
`)
	assert.False(t, result.Passed)
	issue, ok := findIssue(result, CodeRelSuccessorNotFound)
	require.True(t, ok)
	assert.Equal(t, Error, issue.Severity)
	assert.Contains(t, issue.Message, "999")
}

func TestSelfReference(t *testing.T) {
	result := validate(t, `
FAMILY "F" {
    OUTLET "A" {
        identity { id = 1; title = "A"; }
        characteristics { x = 1; }
    }
    OUTLET "B" {
        identity { id = 2; title = "B"; }
        characteristics { x = 1; }
    }
    DIACHRONIC_LINK "loop" {
        predecessor = 1;
        successor = 1;
    }
}
`)
	// Warnings alone do not fail validation.
	assert.True(t, result.Passed)
	issue, ok := findIssue(result, CodeRelSelfReference)
	require.True(t, ok)
	assert.Equal(t, Warning, issue.Severity)
}

func TestSynchronousOutletResolution(t *testing.T) {
	result := validate(t, `
FAMILY "F" {
    OUTLET "A" {
        identity { id = 1; title = "A"; }
        characteristics { x = 1; }
    }
    OUTLET "B" {
        identity { id = 2; title = "B"; }
        characteristics { x = 1; }
    }
    SYNCHRONOUS_LINK "umbrella" {
        outlet_1 = { id = 1; role = "parent"; };
        outlet_2 = { id = 42; role = "child"; };
    }
}
`)
	assert.False(t, result.Passed)
	_, ok := findIssue(result, CodeRelOutlet2NotFound)
	assert.True(t, ok)
	_, ok = findIssue(result, CodeRelOutlet1NotFound)
	assert.False(t, ok)
}

func TestUnitChecks(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
		sev  Severity
	}{
		{
			name: "empty unit",
			src:  `UNIT Empty { }`,
			code: CodeUnitEmpty,
			sev:  Error,
		},
		{
			name: "no primary key",
			src:  `UNIT U { name: TEXT(50) }`,
			code: CodeUnitNoPrimaryKey,
			sev:  Warning,
		},
		{
			name: "duplicate field",
			src:  `UNIT U { id: ID PRIMARY KEY, name: TEXT(50), Name: NUMBER }`,
			code: CodeUnitFieldDuplicate,
			sev:  Error,
		},
		{
			name: "zero length text",
			src:  `UNIT U { id: ID PRIMARY KEY, name: TEXT(0) }`,
			code: CodeFieldTextZeroLength,
			sev:  Error,
		},
		{
			name: "oversized text",
			src:  `UNIT U { id: ID PRIMARY KEY, blob: TEXT(100000) }`,
			code: CodeFieldTextLarge,
			sev:  Warning,
		},
		{
			name: "empty category",
			src:  `UNIT U { id: ID PRIMARY KEY, kind: CATEGORY() }`,
			code: CodeFieldCategoryEmpty,
			sev:  Error,
		},
		{
			name: "duplicate category value",
			src:  `UNIT U { id: ID PRIMARY KEY, kind: CATEGORY("a", "b", "a") }`,
			code: CodeFieldCategoryDuplicate,
			sev:  Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate(t, tt.src)
			issue, ok := findIssue(result, tt.code)
			require.True(t, ok, "want %s in %v", tt.code, codes(result))
			assert.Equal(t, tt.sev, issue.Severity)
		})
	}
}

func TestVocabularyChecks(t *testing.T) {
	result := validate(t, `
VOCABULARY media_types {
    types {
        1: "newspaper";
        1: "magazine";
    }
    empty_body {
    }
}
`)
	_, dup := findIssue(result, CodeVocabDuplicateKey)
	assert.True(t, dup)
	_, empty := findIssue(result, CodeVocabBodyEmpty)
	assert.True(t, empty)
}

func TestVocabularyKeysScopedPerBody(t *testing.T) {
	result := validate(t, `
VOCABULARY v {
    a { 1: "x"; }
    b { 1: "y"; }
}
`)
	_, dup := findIssue(result, CodeVocabDuplicateKey)
	assert.False(t, dup, "keys in different bodies must not collide")
}

func TestRedeclarations(t *testing.T) {
	result := validate(t, `
LET region = "EU";
LET region = "US";
UNIT U { id: ID PRIMARY KEY }
UNIT u { id: ID PRIMARY KEY }
FAMILY "F" { }
FAMILY "F" { }
`)
	assert.False(t, result.Passed)
	got := codes(result)
	assert.Contains(t, got, CodeVariableRedeclared)
	assert.Contains(t, got, CodeUnitRedeclared)
	assert.Contains(t, got, CodeFamilyRedeclared)
}

func TestVariableNotFound(t *testing.T) {
	result := validate(t, `
FAMILY "F" {
    OUTLET "A" {
        identity { id = 1; title = "A"; }
        characteristics { country = $undeclared; }
    }
}
`)
	assert.False(t, result.Passed)
	issue, ok := findIssue(result, CodeVariableNotFound)
	require.True(t, ok)
	assert.Contains(t, issue.Message, "undeclared")
	assert.NotEmpty(t, issue.Suggestion)
}

func TestTemplateAndBaseResolution(t *testing.T) {
	result := validate(t, `
TEMPLATE OUTLET "daily" {
    characteristics { frequency = "daily"; }
}
FAMILY "F" {
    OUTLET "A" EXTENDS TEMPLATE "daily" {
        identity { id = 1; title = "A"; }
        characteristics { x = 1; }
    }
    OUTLET "B" EXTENDS TEMPLATE "missing" {
        identity { id = 2; title = "B"; }
        characteristics { x = 1; }
    }
    OUTLET "C" BASED_ON 77 {
        identity { id = 3; title = "C"; }
        characteristics { x = 1; }
    }
}
`)
	got := codes(result)
	assert.Contains(t, got, CodeTemplateNotFound)
	assert.Contains(t, got, CodeOutletNotFound)
	// The resolvable template must not raise.
	count := 0
	for _, c := range got {
		if c == CodeTemplateNotFound {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestDataOutletNotFound(t *testing.T) {
	result := validate(t, `
FAMILY "F" {
    OUTLET "A" {
        identity { id = 1; title = "A"; }
        characteristics { x = 1; }
    }
    DATA FOR 55 {
        YEAR 2000 {
            metrics {
                circulation = { value = 1000; };
            }
        }
    }
}
`)
	assert.False(t, result.Passed)
	_, ok := findIssue(result, CodeDataOutletNotFound)
	assert.True(t, ok)
}

func TestLifecycleAndCharacteristicsWarnings(t *testing.T) {
	result := validate(t, `
FAMILY "F" {
    OUTLET "A" {
        identity { id = 1; title = "A"; }
        lifecycle {
            status "founded" from "1900-01-01";
            status "founded" from "1910-01-01";
        }
        characteristics {
            language = "de";
            Language = "en";
        }
    }
}
`)
	assert.True(t, result.Passed)
	got := codes(result)
	assert.Contains(t, got, CodeLifecycleDupStatus)
	assert.Contains(t, got, CodeCharacteristicsDup)
}

func TestImportChecks(t *testing.T) {
	result := validate(t, `
IMPORT "common";
IMPORT "../shared/base.mdsl";
`)
	got := codes(result)
	assert.Contains(t, got, CodeImportNoExtension)
	assert.Contains(t, got, CodeImportRelativePath)
	// Neither rises above warning, so the program still passes.
	assert.True(t, result.Passed)
}

func TestFamilyShapeWarnings(t *testing.T) {
	result := validate(t, `
FAMILY "Empty" { }
FAMILY "Lonely" {
    OUTLET "A" {
        identity { id = 1; title = "A"; }
        characteristics { x = 1; }
    }
    SYNCHRONOUS_LINK "l" {
        outlet_1 = { id = 1; role = "a"; };
        outlet_2 = { id = 1; role = "b"; };
    }
}
`)
	got := codes(result)
	assert.Contains(t, got, CodeFamilyEmpty)
	assert.Contains(t, got, CodeFamilySingleOutletRelated)
}

func TestPassedIffNoErrors(t *testing.T) {
	// Warnings only.
	warnOnly := validate(t, `IMPORT "x";`)
	assert.True(t, warnOnly.Passed)
	assert.Positive(t, warnOnly.Warnings)

	// One error flips the verdict.
	withError := validate(t, `UNIT U { }`)
	assert.False(t, withError.Passed)
	assert.Positive(t, withError.Errors)
}
