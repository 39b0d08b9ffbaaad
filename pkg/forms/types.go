package forms

import (
	"fmt"
	"strings"

	"github.com/driftwatch/driftwatch/pkg/schema"
)

// Compatibility groups: field types within one group are mutually
// interchangeable for validation purposes. The grouping is
// deliberately lenient (text and number are compatible); tightening
// it would break callers that rely on the historical behavior.
var compatGroups = map[FieldType]int{
	FieldText:     1,
	FieldEmail:    1,
	FieldPassword: 1,
	FieldNumber:   1,
	FieldSelect:   2,
	FieldRadio:    2,
	FieldDate:     3,
	FieldDatetime: 3,
}

// Compatible reports whether two field types are interchangeable.
func Compatible(a, b FieldType) bool {
	if a == b {
		return true
	}
	ga, aok := compatGroups[a]
	gb, bok := compatGroups[b]
	return aok && bok && ga == gb
}

// ExpectedFieldType infers the form field type a column suggests.
func ExpectedFieldType(col *schema.Column) FieldType {
	base := col.BaseType()
	switch base {
	case "int", "integer", "smallint", "bigint", "serial", "bigserial",
		"decimal", "numeric", "real", "float", "double", "money":
		return FieldNumber
	case "bool", "boolean", "tinyint":
		return FieldCheckbox
	case "date":
		return FieldDate
	case "datetime", "timestamp", "timestamptz":
		return FieldDatetime
	case "time":
		return FieldTime
	case "text", "mediumtext", "longtext", "clob":
		return FieldTextarea
	}
	if strings.Contains(strings.ToLower(col.Name), "email") {
		return FieldEmail
	}
	return FieldText
}

// ColumnType maps a form field type to the canonical column type used
// in migration suggestions. Bounded numbers below the smallint range
// get SMALLINT, everything else INTEGER.
func ColumnType(field Field) string {
	switch field.Type {
	case FieldEmail:
		return "VARCHAR(255)"
	case FieldPassword:
		return "VARCHAR(255)"
	case FieldNumber:
		if field.Rules.Max != nil && *field.Rules.Max < 32768 {
			return "SMALLINT"
		}
		return "INTEGER"
	case FieldCheckbox:
		return "BOOLEAN"
	case FieldDate:
		return "DATE"
	case FieldDatetime:
		return "TIMESTAMP"
	case FieldTime:
		return "TIME"
	case FieldTextarea:
		return "TEXT"
	case FieldFile:
		return "VARCHAR(500)"
	case FieldURL:
		return "VARCHAR(500)"
	case FieldTel:
		return "VARCHAR(20)"
	default:
		if field.Rules.MaxLength != nil {
			return fmt.Sprintf("VARCHAR(%d)", *field.Rules.MaxLength)
		}
		return "VARCHAR(255)"
	}
}
