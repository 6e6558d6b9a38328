// Package validator implements the multi-pass semantic checker for
// mdsl programs. It runs over the AST rather than the IR, so every
// issue carries the exact source position of the construct that
// raised it.
//
// Four ordered phases: declaration collection, per-construct checks,
// cross-reference resolution, and business rules (a reserved hook).
// The validator never aborts; it accumulates issues across all phases
// and reports them in a single Result.
package validator

import (
	"fmt"
	"strings"

	"github.com/mediahist/mdsl/internal/ast"
	"github.com/mediahist/mdsl/internal/token"
)

// textLengthWarnThreshold is the TEXT(n) length above which a warning
// fires.
const textLengthWarnThreshold = 65535

type declaration struct {
	pos token.Position
}

// symbolTable holds the declarations collected in phase 1.
type symbols struct {
	imports    map[string]declaration
	variables  map[string]declaration
	templates  map[string]declaration
	units      map[string]declaration
	vocabs     map[string]declaration
	families   map[string]declaration
	outletIDs  map[int]declaration
	outletName map[string]declaration
}

func newSymbols() *symbols {
	return &symbols{
		imports:    make(map[string]declaration),
		variables:  make(map[string]declaration),
		templates:  make(map[string]declaration),
		units:      make(map[string]declaration),
		vocabs:     make(map[string]declaration),
		families:   make(map[string]declaration),
		outletIDs:  make(map[int]declaration),
		outletName: make(map[string]declaration),
	}
}

// Validator walks the AST maintaining a scope stack for context paths.
type Validator struct {
	result  *Result
	symbols *symbols
	scope   []string
}

// Validate runs all four phases over a parsed program.
func Validate(prog *ast.Program) *Result {
	v := &Validator{
		result:  &Result{Passed: true},
		symbols: newSymbols(),
		scope:   []string{"Program"},
	}
	v.collectDeclarations(prog)
	v.validateConstructs(prog)
	v.resolveReferences(prog)
	v.applyBusinessRules(prog)
	return v.result
}

func (v *Validator) push(scope string) { v.scope = append(v.scope, scope) }
func (v *Validator) pop()              { v.scope = v.scope[:len(v.scope)-1] }

func (v *Validator) context() string { return strings.Join(v.scope, " > ") }

func (v *Validator) report(sev Severity, code string, pos token.Position, suggestion, format string, args ...any) {
	v.result.add(Issue{
		Severity:   sev,
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		Pos:        pos,
		Suggestion: suggestion,
		Context:    v.context(),
	})
}

// ---------------------------------------------------------------
// Phase 1: declaration collection.

func (v *Validator) collectDeclarations(prog *ast.Program) {
	for _, item := range prog.Items {
		switch n := item.(type) {
		case *ast.Import:
			v.declare(v.symbols.imports, n.Path, n.Position, CodeImportRedeclared, "import %q", n.Path)
		case *ast.Variable:
			v.declare(v.symbols.variables, n.Name, n.Position, CodeVariableRedeclared, "variable %q", n.Name)
		case *ast.Unit:
			v.declare(v.symbols.units, strings.ToLower(n.Name), n.Position, CodeUnitRedeclared, "unit %q", n.Name)
		case *ast.Vocabulary:
			v.declare(v.symbols.vocabs, strings.ToLower(n.Name), n.Position, CodeVocabRedeclared, "vocabulary %q", n.Name)
		case *ast.Template:
			v.declare(v.symbols.templates, n.Name, n.Position, "TEMPLATE_REDECLARED", "template %q", n.Name)
		case *ast.Family:
			v.declare(v.symbols.families, n.Name, n.Position, CodeFamilyRedeclared, "family %q", n.Name)
			v.collectFamilyOutlets(n)
		}
	}
	v.result.TotalConstructs = len(prog.Items)
}

func (v *Validator) declare(table map[string]declaration, key string, pos token.Position, code, format string, args ...any) {
	if prev, exists := table[key]; exists {
		msg := fmt.Sprintf(format, args...)
		v.report(Error, code, pos, "",
			"%s is already declared at %s", msg, prev.pos)
		return
	}
	table[key] = declaration{pos: pos}
}

func (v *Validator) collectFamilyOutlets(family *ast.Family) {
	v.push(fmt.Sprintf("Family(%s)", family.Name))
	defer v.pop()

	for _, member := range family.Members {
		outlet, ok := member.(*ast.Outlet)
		if !ok {
			continue
		}
		v.result.TotalConstructs++
		v.symbols.outletName[outlet.Name] = declaration{pos: outlet.Position}
		id, pos, ok := outletID(outlet)
		if !ok {
			continue
		}
		if prev, exists := v.symbols.outletIDs[id]; exists {
			v.push(fmt.Sprintf("Outlet(%s)", outlet.Name))
			v.report(Error, CodeOutletIDDuplicate, pos, "",
				"outlet ID %d is already assigned at %s", id, prev.pos)
			v.pop()
			continue
		}
		v.symbols.outletIDs[id] = declaration{pos: pos}
	}
}

// outletID extracts the `id = n` assignment from the outlet's identity
// blocks.
func outletID(outlet *ast.Outlet) (int, token.Position, bool) {
	for _, block := range outlet.Blocks {
		if block.Kind != ast.BlockIdentity {
			continue
		}
		for _, field := range block.Fields {
			if !strings.EqualFold(field.Name, "id") {
				continue
			}
			if num, ok := field.Value.(*ast.NumberLit); ok {
				return int(num.Value), field.Position, true
			}
		}
	}
	return 0, token.Position{}, false
}

// ---------------------------------------------------------------
// Phase 2: per-construct validation.

func (v *Validator) validateConstructs(prog *ast.Program) {
	for _, item := range prog.Items {
		switch n := item.(type) {
		case *ast.Import:
			v.validateImport(n)
		case *ast.Unit:
			v.validateUnit(n)
		case *ast.Vocabulary:
			v.validateVocabulary(n)
		case *ast.Family:
			v.validateFamily(n)
		case *ast.Data:
			v.validateData(n)
		case *ast.DiachronicLink:
			v.validateDiachronic(n)
		case *ast.SynchronousLink:
			v.validateSynchronous(n)
		}
	}
}

func (v *Validator) validateImport(imp *ast.Import) {
	v.push(fmt.Sprintf("Import(%s)", imp.Path))
	defer v.pop()

	if !strings.HasSuffix(imp.Path, ".mdsl") {
		v.report(Warning, CodeImportNoExtension, imp.Position,
			fmt.Sprintf("use %q", imp.Path+".mdsl"),
			"import path %q lacks the .mdsl extension", imp.Path)
	}
	if strings.Contains(imp.Path, "..") {
		v.report(Info, CodeImportRelativePath, imp.Position, "",
			"import path %q traverses parent directories", imp.Path)
	}
}

func (v *Validator) validateUnit(unit *ast.Unit) {
	v.push(fmt.Sprintf("Unit(%s)", unit.Name))
	defer v.pop()

	if len(unit.Fields) == 0 {
		v.report(Error, CodeUnitEmpty, unit.Position,
			"declare at least one field", "unit %q has no fields", unit.Name)
		return
	}

	hasPrimary := false
	seen := make(map[string]token.Position)
	for _, field := range unit.Fields {
		if field.PrimaryKey {
			hasPrimary = true
		}
		key := strings.ToLower(field.Name)
		if prev, dup := seen[key]; dup {
			v.report(Error, CodeUnitFieldDuplicate, field.Position, "",
				"field %q is already declared at %s", field.Name, prev)
		} else {
			seen[key] = field.Position
		}
		v.validateFieldType(field)
	}
	if !hasPrimary {
		v.report(Warning, CodeUnitNoPrimaryKey, unit.Position,
			"mark one field PRIMARY KEY", "unit %q declares no primary key", unit.Name)
	}
}

func (v *Validator) validateFieldType(field ast.UnitField) {
	switch field.Type.Kind {
	case ast.FieldText:
		if field.Type.Length == nil {
			return
		}
		if *field.Type.Length == 0 {
			v.report(Error, CodeFieldTextZeroLength, field.Position, "",
				"field %q has TEXT(0)", field.Name)
		} else if *field.Type.Length > textLengthWarnThreshold {
			v.report(Warning, CodeFieldTextLarge, field.Position,
				"use unbounded TEXT instead",
				"field %q has TEXT(%d), larger than %d", field.Name, *field.Type.Length, textLengthWarnThreshold)
		}
	case ast.FieldCategory:
		if len(field.Type.Values) == 0 {
			v.report(Error, CodeFieldCategoryEmpty, field.Position, "",
				"field %q has an empty CATEGORY value list", field.Name)
			return
		}
		seen := make(map[string]bool)
		for _, value := range field.Type.Values {
			if seen[value] {
				v.report(Error, CodeFieldCategoryDuplicate, field.Position, "",
					"field %q repeats category value %q", field.Name, value)
			}
			seen[value] = true
		}
	}
}

func (v *Validator) validateVocabulary(vocab *ast.Vocabulary) {
	v.push(fmt.Sprintf("Vocabulary(%s)", vocab.Name))
	defer v.pop()

	if len(vocab.Bodies) == 0 {
		v.report(Error, CodeVocabEmpty, vocab.Position, "",
			"vocabulary %q has no bodies", vocab.Name)
		return
	}
	for _, body := range vocab.Bodies {
		v.push(fmt.Sprintf("Body(%s)", body.Name))
		if len(body.Entries) == 0 {
			v.report(Warning, CodeVocabBodyEmpty, body.Position, "",
				"vocabulary body %q has no entries", body.Name)
		}
		// Keys are checked per body; collisions across bodies are
		// deliberately not validated.
		seen := make(map[string]token.Position)
		for _, entry := range body.Entries {
			key := entryKey(entry.Key)
			if prev, dup := seen[key]; dup {
				v.report(Error, CodeVocabDuplicateKey, entry.Position, "",
					"key %s is already used at %s", key, prev)
			} else {
				seen[key] = entry.Position
			}
		}
		v.pop()
	}
}

func entryKey(key ast.VocabularyKey) string {
	if key.IsNumber {
		if key.Number == float64(int64(key.Number)) {
			return fmt.Sprintf("%d", int64(key.Number))
		}
		return fmt.Sprintf("%v", key.Number)
	}
	return fmt.Sprintf("%q", key.Text)
}

func (v *Validator) validateFamily(family *ast.Family) {
	v.push(fmt.Sprintf("Family(%s)", family.Name))
	defer v.pop()

	outlets := 0
	relationships := 0
	for _, member := range family.Members {
		switch m := member.(type) {
		case *ast.Outlet:
			outlets++
			v.validateOutlet(m)
		case *ast.OutletRef:
			outlets++
		case *ast.Data:
			v.validateData(m)
		case *ast.DiachronicLink:
			relationships++
			v.validateDiachronic(m)
		case *ast.SynchronousLink:
			relationships++
			v.validateSynchronous(m)
		}
	}

	switch {
	case len(family.Members) == 0:
		v.report(Warning, CodeFamilyEmpty, family.Position, "",
			"family %q is empty", family.Name)
	case outlets == 0:
		v.report(Warning, CodeFamilyNoOutlets, family.Position, "",
			"family %q declares no outlets", family.Name)
	}
	if relationships >= 1 && outlets <= 1 {
		v.report(Warning, CodeFamilySingleOutletRelated, family.Position, "",
			"family %q declares relationships but at most one outlet", family.Name)
	}
}

func (v *Validator) validateOutlet(outlet *ast.Outlet) {
	v.push(fmt.Sprintf("Outlet(%s)", outlet.Name))
	defer v.pop()

	var identity, characteristics *ast.OutletBlock
	for i := range outlet.Blocks {
		block := &outlet.Blocks[i]
		switch block.Kind {
		case ast.BlockIdentity:
			if identity == nil {
				identity = block
			}
			v.validateIdentity(block, outlet)
		case ast.BlockLifecycle:
			v.validateLifecycle(block)
		case ast.BlockCharacteristics:
			characteristics = block
			v.validateCharacteristics(block)
		}
	}

	if identity == nil {
		v.report(Error, CodeOutletNoIdentity, outlet.Position,
			"add an identity block with `id = <number>;`",
			"outlet %q has no identity block", outlet.Name)
	}
	if characteristics == nil {
		v.report(Warning, CodeOutletNoCharacteristics, outlet.Position, "",
			"outlet %q has no characteristics block", outlet.Name)
	}
}

func (v *Validator) validateIdentity(block *ast.OutletBlock, outlet *ast.Outlet) {
	v.push("Identity")
	defer v.pop()

	if _, _, ok := outletID(outlet); !ok {
		v.report(Error, CodeIdentityNoID, block.Position,
			"add `id = <number>;`",
			"identity block of %q does not assign an id", outlet.Name)
	}
	if !hasField(block.Fields, "title") {
		v.report(Warning, CodeIdentityNoTitle, block.Position,
			"add `title = \"...\";`",
			"identity block of %q does not assign a title", outlet.Name)
	}
}

func (v *Validator) validateLifecycle(block *ast.OutletBlock) {
	v.push("Lifecycle")
	defer v.pop()

	if len(block.Lifecycle) == 0 {
		v.report(Warning, CodeLifecycleEmpty, block.Position, "",
			"lifecycle block has no entries")
		return
	}
	seen := make(map[string]token.Position)
	for _, entry := range block.Lifecycle {
		if prev, dup := seen[entry.Status]; dup {
			v.report(Warning, CodeLifecycleDupStatus, entry.Position, "",
				"status %q already appears at %s", entry.Status, prev)
		} else {
			seen[entry.Status] = entry.Position
		}
	}
}

func (v *Validator) validateCharacteristics(block *ast.OutletBlock) {
	v.push("Characteristics")
	defer v.pop()

	if len(block.Fields) == 0 {
		v.report(Warning, CodeCharacteristicsEmpty, block.Position, "",
			"characteristics block is empty")
		return
	}
	seen := make(map[string]token.Position)
	for _, field := range block.Fields {
		key := strings.ToLower(field.Name)
		if prev, dup := seen[key]; dup {
			v.report(Warning, CodeCharacteristicsDup, field.Position, "",
				"characteristic %q already assigned at %s", field.Name, prev)
		} else {
			seen[key] = field.Position
		}
	}
}

func (v *Validator) validateData(data *ast.Data) {
	v.push(fmt.Sprintf("Data(%d)", data.TargetID))
	defer v.pop()

	if _, ok := v.symbols.outletIDs[data.TargetID]; !ok {
		v.report(Error, CodeDataOutletNotFound, data.Position, "",
			"data block targets undeclared outlet ID %d", data.TargetID)
	}
	if len(data.Years) == 0 && len(data.Aggregation) == 0 {
		v.report(Warning, CodeDataEmpty, data.Position, "",
			"data block for %d has no aggregation and no years", data.TargetID)
	}
}

func (v *Validator) validateDiachronic(link *ast.DiachronicLink) {
	v.push(fmt.Sprintf("DiachronicLink(%s)", link.Name))
	defer v.pop()

	pred, predOK := numberField(link.Fields, "predecessor")
	succ, succOK := numberField(link.Fields, "successor")
	if predOK {
		if _, ok := v.symbols.outletIDs[pred]; !ok {
			v.report(Error, CodeRelPredecessorNotFound, link.Position, "",
				"predecessor %d is not a declared outlet ID", pred)
		}
	}
	if succOK {
		if _, ok := v.symbols.outletIDs[succ]; !ok {
			v.report(Error, CodeRelSuccessorNotFound, link.Position, "",
				"successor %d is not a declared outlet ID", succ)
		}
	}
	if predOK && succOK && pred == succ {
		v.report(Warning, CodeRelSelfReference, link.Position, "",
			"predecessor and successor are both %d", pred)
	}
}

func (v *Validator) validateSynchronous(link *ast.SynchronousLink) {
	v.push(fmt.Sprintf("SynchronousLink(%s)", link.Name))
	defer v.pop()

	id1, ok1 := roleRefID(link.Fields, "outlet_1")
	id2, ok2 := roleRefID(link.Fields, "outlet_2")
	if ok1 {
		if _, ok := v.symbols.outletIDs[id1]; !ok {
			v.report(Error, CodeRelOutlet1NotFound, link.Position, "",
				"outlet_1 id %d is not a declared outlet ID", id1)
		}
	}
	if ok2 {
		if _, ok := v.symbols.outletIDs[id2]; !ok {
			v.report(Error, CodeRelOutlet2NotFound, link.Position, "",
				"outlet_2 id %d is not a declared outlet ID", id2)
		}
	}
	if ok1 && ok2 && id1 == id2 {
		v.report(Warning, CodeRelSelfReference, link.Position, "",
			"outlet_1 and outlet_2 are both %d", id1)
	}
}

func hasField(fields []ast.Assignment, name string) bool {
	for _, f := range fields {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

func numberField(fields []ast.Assignment, name string) (int, bool) {
	for _, f := range fields {
		if !strings.EqualFold(f.Name, name) {
			continue
		}
		if num, ok := f.Value.(*ast.NumberLit); ok {
			return int(num.Value), true
		}
	}
	return 0, false
}

func roleRefID(fields []ast.Assignment, name string) (int, bool) {
	for _, f := range fields {
		if !strings.EqualFold(f.Name, name) {
			continue
		}
		obj, ok := f.Value.(*ast.ObjectLit)
		if !ok {
			return 0, false
		}
		return numberField(obj.Fields, "id")
	}
	return 0, false
}
