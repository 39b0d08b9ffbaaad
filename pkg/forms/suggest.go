package forms

import (
	"fmt"

	"github.com/driftwatch/driftwatch/pkg/drift"
)

// SuggestMigrations proposes ALTER TABLE statements reconciling a
// form with its matched table: ADD COLUMN for form fields without a
// column, ALTER COLUMN TYPE for type mismatches. The statements are
// suggestions only and are never executed by the subsystem.
func SuggestMigrations(f *FormSchema, res Result) []drift.Suggestion {
	if res.Table == "" {
		return nil
	}

	var suggestions []drift.Suggestion

	for _, name := range res.ExtraFields {
		field := f.Field(name)
		if field == nil {
			continue
		}
		suggestions = append(suggestions, drift.Suggestion{
			Kind:     drift.SuggestMigration,
			Severity: drift.Medium,
			Description: fmt.Sprintf(
				"Form %q declares field %q with no matching column in %q",
				f.Name, name, res.Table),
			SQL: fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s;",
				res.Table, name, ColumnType(*field)),
			Impact: []string{
				"verify the field is meant to be persisted before adding the column",
			},
		})
	}

	for _, mm := range res.TypeMismatches {
		field := f.Field(mm.Field)
		if field == nil {
			continue
		}
		suggestions = append(suggestions, drift.Suggestion{
			Kind:     drift.SuggestMigration,
			Severity: drift.Medium,
			Description: fmt.Sprintf(
				"Column %q of %q does not match the %s field %q",
				mm.Column, res.Table, field.Type, mm.Field),
			SQL: fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s;",
				res.Table, mm.Column, ColumnType(*field)),
			Impact: []string{
				"type changes may truncate or reject existing data",
			},
		})
	}

	return suggestions
}
