// Package forms defines the UI form schema model and the pure
// validation of recovered forms against a database schema. Template
// scanning lives in internal/ioforms.
package forms

import (
	"strings"

	"github.com/driftwatch/driftwatch/pkg/schema"
	"github.com/jinzhu/inflection"
)

// FieldType classifies an input-capable form control.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldPassword FieldType = "password"
	FieldNumber   FieldType = "number"
	FieldTel      FieldType = "tel"
	FieldURL      FieldType = "url"
	FieldDate     FieldType = "date"
	FieldDatetime FieldType = "datetime"
	FieldTime     FieldType = "time"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
	FieldSelect   FieldType = "select"
	FieldTextarea FieldType = "textarea"
	FieldFile     FieldType = "file"
	FieldHidden   FieldType = "hidden"
)

// Rules holds the declared validation constraints of a field.
type Rules struct {
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// Field is one input-capable control recovered from a template.
type Field struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Rules    Rules     `json:"rules,omitempty"`
}

// FormSchema is a declared form recovered from a UI source file.
type FormSchema struct {
	Name         string  `json:"name"`
	SourceFile   string  `json:"sourceFile,omitempty"`
	Fields       []Field `json:"fields"`
	SubmitAction string  `json:"submitAction,omitempty"`
}

// Field returns the named field, or nil when absent.
func (f *FormSchema) Field(name string) *Field {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			return &f.Fields[i]
		}
	}
	return nil
}

// Prefixes and suffixes stripped during table matching, tried after
// the exact/singular/plural spellings fail.
var (
	namePrefixes = []string{"create", "edit", "new", "add"}
	nameSuffixes = []string{"form", "page", "view"}
)

// MatchTable resolves a form name to a schema table. The order is
// fixed: exact match, singularized, pluralized, then the name with
// common prefixes and suffixes stripped. First match wins; no match
// returns nil.
func MatchTable(name string, s *schema.DatabaseSchema) *schema.Table {
	name = strings.ToLower(name)

	candidates := []string{
		name,
		inflection.Singular(name),
		inflection.Plural(name),
	}

	stripped := name
	for _, p := range namePrefixes {
		stripped = strings.TrimPrefix(stripped, p)
	}
	for _, suf := range nameSuffixes {
		stripped = strings.TrimSuffix(stripped, suf)
	}
	stripped = strings.Trim(stripped, "-_ ")
	if stripped != "" && stripped != name {
		candidates = append(candidates,
			stripped,
			inflection.Singular(stripped),
			inflection.Plural(stripped),
		)
	}

	for _, c := range candidates {
		if t := s.Table(c); t != nil {
			return t
		}
	}
	return nil
}
