package validator

import (
	"fmt"

	"github.com/mediahist/mdsl/internal/token"
)

// Severity ranks validation issues.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "Error"
	case Warning:
		return "Warning"
	case Info:
		return "Info"
	default:
		return "Unknown"
	}
}

// Issue is a single validation finding. Code is a stable string
// identifier; Context is the scope path of the construct that raised
// the issue (e.g. "Program > Family(X) > Outlet(Y) > Identity").
type Issue struct {
	Severity   Severity       `json:"severity"`
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Pos        token.Position `json:"position"`
	Suggestion string         `json:"suggestion,omitempty"`
	Context    string         `json:"context"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s at %s: %s", i.Severity, i.Code, i.Pos, i.Message)
}

// Result bundles the issues of a validation run with counters.
// Passed is true iff zero issues carry Error severity.
type Result struct {
	Issues          []Issue `json:"issues"`
	Errors          int     `json:"errors"`
	Warnings        int     `json:"warnings"`
	Infos           int     `json:"info"`
	TotalConstructs int     `json:"total_constructs"`
	Passed          bool    `json:"passed"`
}

func (r *Result) add(issue Issue) {
	r.Issues = append(r.Issues, issue)
	switch issue.Severity {
	case Error:
		r.Errors++
	case Warning:
		r.Warnings++
	case Info:
		r.Infos++
	}
	r.Passed = r.Errors == 0
}

// Validation issue codes. The set is stable; downstream tooling keys
// off these strings.
const (
	CodeImportNoExtension  = "IMPORT_NO_EXTENSION"
	CodeImportRelativePath = "IMPORT_RELATIVE_PATH"
	CodeImportRedeclared   = "IMPORT_REDECLARED"

	CodeVariableRedeclared = "VARIABLE_REDECLARED"
	CodeVariableNotFound   = "VARIABLE_NOT_FOUND"

	CodeUnitRedeclared         = "UNIT_REDECLARED"
	CodeUnitEmpty              = "UNIT_EMPTY"
	CodeUnitNoPrimaryKey       = "UNIT_NO_PRIMARY_KEY"
	CodeUnitFieldDuplicate     = "UNIT_FIELD_DUPLICATE"
	CodeFieldTextZeroLength    = "FIELD_TEXT_ZERO_LENGTH"
	CodeFieldTextLarge         = "FIELD_TEXT_LARGE"
	CodeFieldCategoryEmpty     = "FIELD_CATEGORY_EMPTY"
	CodeFieldCategoryDuplicate = "FIELD_CATEGORY_DUPLICATE"

	CodeVocabRedeclared   = "VOCAB_REDECLARED"
	CodeVocabEmpty        = "VOCAB_EMPTY"
	CodeVocabBodyEmpty    = "VOCAB_BODY_EMPTY"
	CodeVocabDuplicateKey = "VOCAB_DUPLICATE_KEY"

	CodeFamilyRedeclared          = "FAMILY_REDECLARED"
	CodeFamilyEmpty               = "FAMILY_EMPTY"
	CodeFamilyNoOutlets           = "FAMILY_NO_OUTLETS"
	CodeFamilySingleOutletRelated = "FAMILY_SINGLE_OUTLET_RELATIONSHIPS"

	CodeOutletIDDuplicate       = "OUTLET_ID_DUPLICATE"
	CodeOutletNoIdentity        = "OUTLET_NO_IDENTITY"
	CodeOutletNoCharacteristics = "OUTLET_NO_CHARACTERISTICS"
	CodeIdentityNoID            = "IDENTITY_NO_ID"
	CodeIdentityNoTitle         = "IDENTITY_NO_TITLE"
	CodeLifecycleEmpty          = "LIFECYCLE_EMPTY"
	CodeLifecycleDupStatus      = "LIFECYCLE_DUPLICATE_STATUS"
	CodeCharacteristicsEmpty    = "CHARACTERISTICS_EMPTY"
	CodeCharacteristicsDup      = "CHARACTERISTICS_DUPLICATE"

	CodeDataOutletNotFound = "DATA_OUTLET_NOT_FOUND"
	CodeDataEmpty          = "DATA_EMPTY"

	CodeRelPredecessorNotFound = "RELATIONSHIP_PREDECESSOR_NOT_FOUND"
	CodeRelSuccessorNotFound   = "RELATIONSHIP_SUCCESSOR_NOT_FOUND"
	CodeRelOutlet1NotFound     = "RELATIONSHIP_OUTLET1_NOT_FOUND"
	CodeRelOutlet2NotFound     = "RELATIONSHIP_OUTLET2_NOT_FOUND"
	CodeRelSelfReference       = "RELATIONSHIP_SELF_REFERENCE"

	CodeTemplateNotFound = "TEMPLATE_NOT_FOUND"
	CodeOutletNotFound   = "OUTLET_NOT_FOUND"
)
