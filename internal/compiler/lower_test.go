package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediahist/mdsl/internal/ir"
	"github.com/mediahist/mdsl/internal/parser"
)

func lower(t *testing.T, src string) *ir.Program {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	return Lower(prog)
}

func TestLowerOutletIdentity(t *testing.T) {
	p := lower(t, `FAMILY "F" {
	OUTLET "Express" {
		identity {
			id = 200001;
			title = "Express";
		}
	}
}`)
	require.Len(t, p.Families, 1)
	require.Len(t, p.Families[0].Outlets, 1)

	outlet := p.Families[0].Outlets[0]
	require.NotNil(t, outlet.ID)
	assert.Equal(t, 200001, *outlet.ID)
	assert.Equal(t, "Express", ir.LookupString(outlet.Identity, "title"))
	assert.Equal(t, []int{200001}, p.OutletIDs())
}

func TestLowerOutletIDsMatchIdentityAssignments(t *testing.T) {
	p := lower(t, `FAMILY "F" {
	OUTLET "A" { id = 1; }
	OUTLET "B" { identity { id = 2; title = "B"; } }
	OUTLET "NoID" { identity { title = "x"; } }
}`)
	assert.Equal(t, []int{1, 2}, p.OutletIDs())
}

func TestLowerLifecycleCurrent(t *testing.T) {
	p := lower(t, `FAMILY "F" { OUTLET "O" {
	id = 1;
	lifecycle {
		status "active" from "1959-01-01" to current {
			precision_start = "known";
			comment = "still running";
		};
	}
} }`)
	lifecycle := p.Families[0].Outlets[0].Lifecycle
	require.Len(t, lifecycle, 1)
	assert.Equal(t, "active", lifecycle[0].Status)
	assert.Equal(t, "1959-01-01", lifecycle[0].StartDate)
	assert.Equal(t, "CURRENT", lifecycle[0].EndDate)
	assert.Equal(t, "known", lifecycle[0].PrecisionStart)
	assert.Equal(t, "still running", lifecycle[0].Comment)
}

func TestLowerMetrics(t *testing.T) {
	p := lower(t, `FAMILY "F" {
	OUTLET "O" { id = 1; }
	DATA FOR 1 {
		YEAR 1960 {
			metrics {
				circulation = { value = 15000; unit = "copies"; source = "anmi"; };
			}
		}
	}
}`)
	blocks := p.Families[0].DataBlocks
	require.Len(t, blocks, 1)
	require.Len(t, blocks[0].Years, 1)
	metrics := blocks[0].Years[0].Metrics
	require.Len(t, metrics, 1)
	assert.Equal(t, "circulation", metrics[0].Name)
	assert.Equal(t, 15000.0, metrics[0].Value)
	assert.Equal(t, "copies", metrics[0].Unit)
	assert.Equal(t, "anmi", metrics[0].Source)
}

func TestLowerDiachronic(t *testing.T) {
	p := lower(t, `FAMILY "F" {
	OUTLET "A" { id = 100; }
	OUTLET "B" { id = 200; }
	DIACHRONIC_LINK succ {
		predecessor = 100;
		successor = 200;
		event_start_date = "1965-05-01";
		relationship_type = "succession";
		@maps_to "21_succession"
	}
}`)
	rels := p.Families[0].Relationships
	require.Len(t, rels, 1)
	require.Equal(t, ir.RelDiachronic, rels[0].Kind)
	d := rels[0].Diachronic
	assert.Equal(t, 100, d.Predecessor)
	assert.Equal(t, 200, d.Successor)
	assert.Equal(t, "succession", d.Type)
	assert.Equal(t, "1965-05-01", d.EventStartDate)
	assert.Equal(t, "21_succession", d.MapsTo)
}

func TestLowerSynchronousWithPeriod(t *testing.T) {
	p := lower(t, `FAMILY "F" {
	OUTLET "A" { id = 100; }
	OUTLET "B" { id = 200; }
	SYNCHRONOUS_LINK umb {
		outlet_1 = { id = 100; role = "parent"; };
		outlet_2 = { id = 200; role = "child"; };
		relationship_type = "umbrella";
		period = "1970-01-01" TO CURRENT;
	}
}`)
	rels := p.Families[0].Relationships
	require.Len(t, rels, 1)
	s := rels[0].Synchronous
	require.NotNil(t, s)
	assert.Equal(t, 100, s.Outlet1.ID)
	assert.Equal(t, "parent", s.Outlet1.Role)
	assert.Equal(t, 200, s.Outlet2.ID)
	assert.Equal(t, "1970-01-01", s.PeriodStart)
	assert.Equal(t, "CURRENT", s.PeriodEnd)
}

func TestHoistIntoSyntheticFamily(t *testing.T) {
	p := lower(t, `DIACHRONIC_LINK lone {
	predecessor = 1;
	successor = 2;
	relationship_type = "succession";
}`)
	require.Len(t, p.Families, 1)
	assert.Equal(t, GlobalFamilyName, p.Families[0].Name)
	assert.Len(t, p.Families[0].Relationships, 1)
}

func TestHoistIntoFirstConcreteFamily(t *testing.T) {
	p := lower(t, `FAMILY "First" { OUTLET "O" { id = 1; } }
FAMILY "Second" { }
DIACHRONIC_LINK lone {
	predecessor = 1;
	successor = 2;
	relationship_type = "succession";
}`)
	require.Len(t, p.Families, 2)
	assert.Equal(t, "First", p.Families[0].Name)
	assert.Len(t, p.Families[0].Relationships, 1)
	assert.Empty(t, p.Families[1].Relationships)
}

func TestLowerTemplateDiscardsIdentityAndLifecycle(t *testing.T) {
	p := lower(t, `TEMPLATE OUTLET "T" {
	identity { id = 9; }
	lifecycle { status "x" from "1900-01-01"; }
	characteristics { sector = 1; }
	metadata { verified = true; }
}`)
	require.Len(t, p.Templates, 1)
	tmpl := p.Templates[0]
	assert.Equal(t, "T", tmpl.Name)
	assert.Len(t, tmpl.Characteristics, 1)
	assert.Len(t, tmpl.Metadata, 1)
}

func TestLowerVocabularyBodies(t *testing.T) {
	p := lower(t, `VOCABULARY Codes {
	sectors { 1: "Daily", 2: "Weekly" }
	mandates { "p": "public" }
}`)
	require.Len(t, p.Vocabularies, 2)
	assert.Equal(t, "Codes", p.Vocabularies[0].Name)
	assert.Equal(t, "sectors", p.Vocabularies[0].BodyName)
	assert.Equal(t, "mandates", p.Vocabularies[1].BodyName)
	assert.Equal(t, "1", p.Vocabularies[0].Entries[0].Key())
	assert.Equal(t, "p", p.Vocabularies[1].Entries[0].Key())
}

func TestLowerEvent(t *testing.T) {
	p := lower(t, `EVENT merger_1970 {
	type = "merger";
	date = "1970-06-01";
	status = "completed";
	entities = [
		{ name = "Express"; id = 100; role = "acquirer"; stake_after = 100; }
	];
	impact = { market = "national"; };
}`)
	require.Len(t, p.Events, 1)
	event := p.Events[0]
	assert.Equal(t, "merger", event.Type)
	assert.Equal(t, "1970-06-01", event.Date)
	assert.Equal(t, "completed", event.Status)
	require.Len(t, event.Entities, 1)
	assert.Equal(t, 100, event.Entities[0].ID)
	require.NotNil(t, event.Entities[0].StakeAfter)
	assert.Equal(t, 100.0, *event.Entities[0].StakeAfter)
	assert.Nil(t, event.Entities[0].StakeBefore)
	assert.Len(t, event.Impact, 1)
}

func TestLowerUnknownFieldsDropped(t *testing.T) {
	p := lower(t, `FAMILY "F" { OUTLET "O" {
	identity { id = 1; somefutursfield = "x"; }
} }`)
	outlet := p.Families[0].Outlets[0]
	require.NotNil(t, outlet.ID)
	// Unknown identity keys stay in the loose field list with no
	// diagnostic.
	assert.Equal(t, "x", ir.LookupString(outlet.Identity, "somefutursfield"))
}

func TestBasedOnAndTemplateRefRecordedNotMaterialized(t *testing.T) {
	p := lower(t, `TEMPLATE "T" { characteristics { sector = 1; } }
FAMILY "F" {
	OUTLET "A" EXTENDS TEMPLATE "T" { id = 1; }
	OUTLET "B" BASED_ON 1 { id = 2; }
}`)
	outlets := p.Families[0].Outlets
	assert.Equal(t, "T", outlets[0].TemplateRef)
	require.NotNil(t, outlets[1].BaseRef)
	assert.Equal(t, 1, *outlets[1].BaseRef)
	// Inheritance is not inlined.
	assert.Empty(t, outlets[0].Characteristics)
}

func TestFingerprintDeterminism(t *testing.T) {
	src := `FAMILY "F" { OUTLET "O" { id = 1; } }`
	a := lower(t, src)
	b := lower(t, src)

	fpA, err := ir.Fingerprint(a)
	require.NoError(t, err)
	fpB, err := ir.Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fpA, fpB)

	c := lower(t, `FAMILY "F" { OUTLET "O" { id = 2; } }`)
	fpC, err := ir.Fingerprint(c)
	require.NoError(t, err)
	assert.NotEqual(t, fpA, fpC)
}
