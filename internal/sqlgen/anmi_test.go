package sqlgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestANMISchemaPreamble(t *testing.T) {
	prog := lower(t, springerSrc)
	out := EmitANMI(prog)

	assert.True(t, strings.Contains(out, "CREATE SCHEMA IF NOT EXISTS graphv3;"))
	assert.Contains(t, out, "CREATE TABLE IF NOT EXISTS graphv3.mo_constant (")
	assert.Contains(t, out, "CREATE TABLE IF NOT EXISTS graphv3.mo_year (")
	assert.Contains(t, out, `CREATE TABLE IF NOT EXISTS graphv3."11_succession" (`)
	assert.Contains(t, out, `CREATE TABLE IF NOT EXISTS graphv3."34_content_sharing" (`)
}

func TestANMIMoConstant(t *testing.T) {
	prog := lower(t, springerSrc)
	out := EmitANMI(prog)

	// The sector string is interned; both outlets share id 1.
	assert.Contains(t, out, "INSERT INTO graphv3.sectors (id_sector, sector_name) VALUES (1, 'print') ON CONFLICT DO NOTHING;")
	assert.Contains(t, out, "INSERT INTO graphv3.mo_constant (id, name, id_sector")
	assert.Contains(t, out, "VALUES (100, 'Bild', 1,")
	assert.Contains(t, out, "VALUES (101, 'Die Welt', 1,")
}

func TestANMICurrentDateIsNull(t *testing.T) {
	prog := lower(t, springerSrc)
	out := EmitANMI(prog)

	// Bild's lifecycle runs to CURRENT: start date set, end NULL.
	bild := extractLine(t, out, "VALUES (100, 'Bild'")
	assert.Contains(t, bild, "'1952-06-24', NULL")
}

func TestANMIMoYearComposite(t *testing.T) {
	prog := lower(t, springerSrc)
	out := EmitANMI(prog)

	// 100*10000 + 1960 = 1001960.
	assert.Contains(t, out, "VALUES (1001960, 100, 1960, 4000000, 1) ON CONFLICT (mo_year) DO UPDATE SET circulation = EXCLUDED.circulation")
	assert.Contains(t, out, "reach_nat = EXCLUDED.reach_nat")
}

func TestANMISourceInterning(t *testing.T) {
	prog := lower(t, `
FAMILY "F" {
    OUTLET "A" { identity { id = 1; } }
    DATA FOR 1 {
        YEAR 2000 {
            metrics {
                circulation = { value = 10; source = "IVW"; };
                market_share = { value = 5; source = "AGOF"; };
                unique_users = { value = 7; source = "IVW"; };
            }
        }
    }
}
`)
	out := EmitANMI(prog)

	assert.Contains(t, out, "VALUES (1, 'IVW') ON CONFLICT DO NOTHING;")
	assert.Contains(t, out, "VALUES (2, 'AGOF') ON CONFLICT DO NOTHING;")
	// The third metric reuses id 1 rather than interning anew.
	assert.Equal(t, 2, strings.Count(out, "INSERT INTO graphv3.sources_names"))
}

func TestANMIUnknownMetricBecomesComment(t *testing.T) {
	prog := lower(t, `
FAMILY "F" {
    OUTLET "A" { identity { id = 1; } }
    DATA FOR 1 {
        YEAR 2000 {
            metrics {
                page_impressions = { value = 123456; unit = "views"; };
            }
        }
    }
}
`)
	out := EmitANMI(prog)

	assert.NotContains(t, out, "page_impressions = EXCLUDED")
	assert.Contains(t, out, "comments) VALUES (12000, 1, 2000, 'page_impressions=123456 views')")
}

func TestANMIRelationshipTables(t *testing.T) {
	prog := lower(t, `
FAMILY "F" {
    OUTLET "A" { identity { id = 1; } }
    OUTLET "B" { identity { id = 2; } }
    DIACHRONIC_LINK "m" {
        predecessor = 1;
        successor = 2;
        relationship_type = "merger";
        event_start_date = "1999-01-01";
    }
    SYNCHRONOUS_LINK "u" {
        outlet_1 = { id = 1; role = "parent"; };
        outlet_2 = { id = 2; role = "child"; };
        relationship_type = "umbrella";
        period = "2000-01-01" TO CURRENT;
    }
    DIACHRONIC_LINK "weird" {
        predecessor = 1;
        successor = 2;
        relationship_type = "teleportation";
    }
}
`)
	out := EmitANMI(prog)

	assert.Contains(t, out, `INSERT INTO graphv3."12_merger" (id_pred, id_succ, e_s, e_e) VALUES (1, 2, '1999-01-01', NULL) ON CONFLICT DO NOTHING;`)
	assert.Contains(t, out, `INSERT INTO graphv3."31_umbrella" (id_mo_1, id_mo_2, p_s, p_e) VALUES (1, 2, '2000-01-01', NULL) ON CONFLICT DO NOTHING;`)
	// Unknown kinds are skipped, not guessed.
	assert.NotContains(t, out, "teleportation")
}

func TestANMIDeterministic(t *testing.T) {
	prog := lower(t, springerSrc)
	assert.Equal(t, EmitANMI(prog), EmitANMI(prog))
}

// extractLine returns the first output line containing the marker.
func extractLine(t *testing.T, out, marker string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, marker) {
			return line
		}
	}
	t.Fatalf("no line containing %q", marker)
	return ""
}
