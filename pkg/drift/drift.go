// Package drift defines the drift model and the pure comparison and
// suggestion logic of the schema-integrity subsystem. Nothing in this
// package performs I/O; the orchestration lives in internal/iodrift.
package drift

// Kind classifies a detected discrepancy.
type Kind string

const (
	MissingTable       Kind = "missing_table"
	ExtraTable         Kind = "extra_table"
	MissingColumn      Kind = "missing_column"
	ExtraColumn        Kind = "extra_column"
	ColumnTypeMismatch Kind = "column_type_mismatch"
	ConstraintMismatch Kind = "constraint_mismatch"
	IndexMismatch      Kind = "index_mismatch"
	ViewMismatch       Kind = "view_mismatch"
	RouteMismatch      Kind = "route_mismatch"
	FormFieldMismatch  Kind = "form_field_mismatch"
	UnauthorizedChange Kind = "unauthorized_change"
)

// Severity grades how risky a drift is.
type Severity string

const (
	Critical Severity = "critical"
	High     Severity = "high"
	Medium   Severity = "medium"
	Low      Severity = "low"
)

// Drift is one detected discrepancy between the baseline and live
// state, or between the schema and code-derived expectations.
// Expected/Actual hold the two sides of the discrepancy; either may
// be nil when the object exists on one side only.
type Drift struct {
	Kind     Kind     `json:"type"`
	Severity Severity `json:"severity"`

	// Object identifies the affected object, e.g. "orders" or
	// "orders.discount".
	Object string `json:"object"`

	Expected any    `json:"expected,omitempty"`
	Actual   any    `json:"actual,omitempty"`
	Message  string `json:"message"`
}

// SuggestionKind classifies remediation proposals.
type SuggestionKind string

const (
	SuggestMigration    SuggestionKind = "migration"
	SuggestSchemaUpdate SuggestionKind = "schema_update"
	SuggestCodeChange   SuggestionKind = "code_change"
)

// Suggestion is a proposed remediation for one drift. SQL and Code
// are advisory; nothing in the subsystem executes them.
type Suggestion struct {
	Kind        SuggestionKind `json:"kind"`
	Severity    Severity       `json:"severity"`
	Description string         `json:"description"`
	SQL         string         `json:"sql,omitempty"`
	Code        string         `json:"code,omitempty"`
	Impact      []string       `json:"impact,omitempty"`
}

// AutoFixable reports whether the suggestion may be applied without
// operator review. Only low-severity baseline updates qualify; the
// fix itself is restricted to re-saving the baseline, never SQL.
func (s *Suggestion) AutoFixable() bool {
	return s.Kind == SuggestSchemaUpdate && s.Severity == Low
}
