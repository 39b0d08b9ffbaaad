package forms

import (
	"fmt"

	"github.com/driftwatch/driftwatch/pkg/schema"
)

// UI-only fields that never correspond to a column and are excluded
// from extra-field reporting.
var uiOnlyFields = map[string]bool{
	"confirm_password":      true,
	"confirmpassword":       true,
	"password_confirmation": true,
	"remember_me":           true,
	"rememberme":            true,
	"terms":                 true,
	"consent":               true,
	"captcha":               true,
	"csrf_token":            true,
	"_token":                true,
}

// Mismatch pairs a form field with the column it contradicts.
type Mismatch struct {
	Field    string `json:"field"`
	Column   string `json:"column"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Message  string `json:"message"`
}

// Result is the validation outcome for one form. A form that matched
// no table carries empty lists and an unset Table.
type Result struct {
	Form  string `json:"form"`
	Table string `json:"table,omitempty"`

	MissingColumns       []string   `json:"missingColumns,omitempty"`
	TypeMismatches       []Mismatch `json:"typeMismatches,omitempty"`
	ExtraFields          []string   `json:"extraFields,omitempty"`
	ValidationMismatches []Mismatch `json:"validationMismatches,omitempty"`
}

// Clean reports whether validation found nothing to complain about.
func (r *Result) Clean() bool {
	return len(r.MissingColumns) == 0 &&
		len(r.TypeMismatches) == 0 &&
		len(r.ExtraFields) == 0 &&
		len(r.ValidationMismatches) == 0
}

// Validate cross-checks one form against the schema. The matched
// table is resolved by MatchTable; a schema-less form returns an
// empty result.
func Validate(f *FormSchema, s *schema.DatabaseSchema) Result {
	res := Result{Form: f.Name}

	table := MatchTable(f.Name, s)
	if table == nil {
		return res
	}
	res.Table = table.Name

	for _, col := range table.RequiredColumns() {
		if f.Field(col.Name) == nil {
			res.MissingColumns = append(res.MissingColumns, col.Name)
		}
	}

	for _, field := range f.Fields {
		col := table.Column(field.Name)
		if col == nil {
			if !uiOnlyFields[field.Name] {
				res.ExtraFields = append(res.ExtraFields, field.Name)
			}
			continue
		}

		expected := ExpectedFieldType(col)
		if !Compatible(field.Type, expected) {
			res.TypeMismatches = append(res.TypeMismatches, Mismatch{
				Field:    field.Name,
				Column:   col.Name,
				Expected: string(expected),
				Actual:   string(field.Type),
				Message: fmt.Sprintf(
					"field %q is %s but column type %q suggests %s",
					field.Name, field.Type, col.Type, expected),
			})
		}

		res.ValidationMismatches = append(res.ValidationMismatches,
			ruleMismatches(field, col)...)
	}

	return res
}

func ruleMismatches(field Field, col *schema.Column) []Mismatch {
	var mm []Mismatch

	// Required/nullable contradiction: a required field over a
	// nullable column is harmless; the reverse loses data integrity.
	if !field.Required && !col.Nullable && !col.AutoIncrement && col.Default == nil {
		mm = append(mm, Mismatch{
			Field:    field.Name,
			Column:   col.Name,
			Expected: "required",
			Actual:   "optional",
			Message: fmt.Sprintf(
				"column %q is NOT NULL without default but field %q is optional",
				col.Name, field.Name),
		})
	}

	if field.Rules.MaxLength != nil {
		if n, ok := col.VarcharLength(); ok && *field.Rules.MaxLength > n {
			mm = append(mm, Mismatch{
				Field:    field.Name,
				Column:   col.Name,
				Expected: fmt.Sprintf("maxLength <= %d", n),
				Actual:   fmt.Sprintf("maxLength %d", *field.Rules.MaxLength),
				Message: fmt.Sprintf(
					"field %q allows %d characters but column %q holds %d",
					field.Name, *field.Rules.MaxLength, col.Name, n),
			})
		}
	}

	return mm
}
