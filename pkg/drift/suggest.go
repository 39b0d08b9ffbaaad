package drift

import (
	"fmt"
	"strings"
)

// Suggest derives a remediation proposal from one drift. The mapping
// is a pure kind-to-template function; no database or file state is
// consulted. Some drifts (added nullable columns, added indexes) need
// no remediation SQL at all — accepting a new baseline is enough.
func Suggest(d Drift) Suggestion {
	switch d.Kind {
	case MissingTable:
		return Suggestion{
			Kind:     SuggestMigration,
			Severity: d.Severity,
			Description: fmt.Sprintf(
				"Recreate table %q from the baseline definition, or remove it from the baseline if the drop was intentional",
				d.Object),
			Impact: []string{
				"data previously stored in the table is gone",
				"routes and forms referencing the table will fail validation",
			},
		}
	case ExtraTable:
		return Suggestion{
			Kind:     SuggestSchemaUpdate,
			Severity: d.Severity,
			Description: fmt.Sprintf(
				"Accept new table %q into the baseline", d.Object),
			Impact: []string{
				"no application code references the table yet",
			},
		}
	case MissingColumn:
		sug := Suggestion{
			Kind:     SuggestMigration,
			Severity: d.Severity,
			Description: fmt.Sprintf(
				"Re-add column %q, or remove it from the baseline if the drop was intentional",
				d.Object),
			Impact: []string{
				"queries selecting the column will fail",
			},
		}
		if typ, ok := d.Expected.(string); ok && typ != "" {
			table, column := splitObject(d.Object)
			sug.SQL = fmt.Sprintf(
				"ALTER TABLE %s ADD COLUMN %s %s;", table, column, typ)
		}
		return sug
	case ExtraColumn:
		// Additive nullable columns need no remediation SQL beyond
		// baseline acceptance.
		return Suggestion{
			Kind:     SuggestSchemaUpdate,
			Severity: d.Severity,
			Description: fmt.Sprintf(
				"Accept new column %q into the baseline", d.Object),
		}
	case ColumnTypeMismatch:
		sug := Suggestion{
			Kind:     SuggestMigration,
			Severity: d.Severity,
			Description: fmt.Sprintf(
				"Restore the baseline type of column %q, or accept the new type into the baseline",
				d.Object),
			Impact: []string{
				"type changes may truncate or reject existing data",
			},
		}
		if typ, ok := d.Expected.(string); ok && typ != "" {
			table, column := splitObject(d.Object)
			sug.SQL = fmt.Sprintf(
				"ALTER TABLE %s ALTER COLUMN %s TYPE %s;", table, column, typ)
		}
		return sug
	case ConstraintMismatch:
		return suggestConstraint(d)
	case IndexMismatch:
		return Suggestion{
			Kind:     SuggestMigration,
			Severity: d.Severity,
			Description: fmt.Sprintf(
				"Reconcile index %q with the baseline definition", d.Object),
			Impact: []string{
				"index changes affect query plans, not correctness",
			},
		}
	case ViewMismatch:
		return Suggestion{
			Kind:     SuggestMigration,
			Severity: d.Severity,
			Description: fmt.Sprintf(
				"Reconcile view %q with the baseline definition", d.Object),
		}
	case RouteMismatch:
		return Suggestion{
			Kind:     SuggestCodeChange,
			Severity: d.Severity,
			Description: fmt.Sprintf(
				"Update the handler for %s so its database operations match the schema",
				d.Object),
		}
	case FormFieldMismatch:
		return Suggestion{
			Kind:     SuggestCodeChange,
			Severity: d.Severity,
			Description: fmt.Sprintf(
				"Align form field %s with its schema column", d.Object),
		}
	case UnauthorizedChange:
		return Suggestion{
			Kind:     SuggestCodeChange,
			Severity: d.Severity,
			Description: "Investigate the unrecorded schema change: no completed migration explains the structural difference",
			Impact: []string{
				"schema was altered outside the migration workflow",
				"review database access logs before accepting the change",
			},
		}
	default:
		return Suggestion{
			Kind:        SuggestSchemaUpdate,
			Severity:    d.Severity,
			Description: d.Message,
		}
	}
}

func suggestConstraint(d Drift) Suggestion {
	expected, _ := d.Expected.(string)
	actual, _ := d.Actual.(string)

	// Nullability drifts carry NULL / NOT NULL as their two sides and
	// have a derivable fix.
	if expected == "NULL" || expected == "NOT NULL" {
		table, column := splitObject(d.Object)
		clause := "DROP NOT NULL"
		if expected == "NOT NULL" {
			clause = "SET NOT NULL"
		}
		return Suggestion{
			Kind:     SuggestMigration,
			Severity: d.Severity,
			Description: fmt.Sprintf(
				"Restore %s on column %q (currently %s)", expected, d.Object, actual),
			SQL: fmt.Sprintf(
				"ALTER TABLE %s ALTER COLUMN %s %s;", table, column, clause),
			Impact: []string{
				"tightening to NOT NULL fails if existing rows hold NULLs",
			},
		}
	}

	// Default-value drifts are low risk: accepting the new default
	// into the baseline is the normal outcome.
	if d.Severity == Low {
		return Suggestion{
			Kind:     SuggestSchemaUpdate,
			Severity: d.Severity,
			Description: fmt.Sprintf(
				"Accept changed default on %q into the baseline", d.Object),
		}
	}

	return Suggestion{
		Kind:     SuggestMigration,
		Severity: d.Severity,
		Description: fmt.Sprintf(
			"Reconcile constraint %q with the baseline definition", d.Object),
	}
}

// splitObject splits "table.column" identifiers; the column part is
// empty for table-level objects.
func splitObject(object string) (table, column string) {
	if i := strings.LastIndex(object, "."); i >= 0 {
		return object[:i], object[i+1:]
	}
	return object, ""
}
