// Package schema provides the canonical, engine-independent database
// schema model. A DatabaseSchema value is an immutable snapshot: a new
// capture is a new value, never a mutation of an old one.
package schema

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DatabaseSchema is a versioned snapshot of a database structure.
type DatabaseSchema struct {
	// Version identifies the snapshot. It is derived deterministically
	// from the structural hash, so two structurally identical captures
	// share a version.
	Version string `json:"version"`

	// Engine is the backend the snapshot was captured from.
	Engine string `json:"engine"`

	// CapturedAt records when the snapshot was taken.
	CapturedAt time.Time `json:"capturedAt"`

	// Hash is the structural fingerprint (see Fingerprint).
	Hash string `json:"hash"`

	Tables  []Table `json:"tables"`
	Views   []View  `json:"views,omitempty"`
	Indexes []Index `json:"indexes,omitempty"`
}

// Table describes one table of a schema.
type Table struct {
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	PrimaryKey  []string     `json:"primaryKey,omitempty"`
	Constraints []Constraint `json:"constraints,omitempty"`
}

// Column describes one column of a table. Type keeps the raw engine
// type string, e.g. "varchar(255)" or "integer".
type Column struct {
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	Nullable      bool           `json:"nullable"`
	Unique        bool           `json:"unique,omitempty"`
	AutoIncrement bool           `json:"autoIncrement,omitempty"`
	Default       *string        `json:"default,omitempty"`
	ForeignKey    *ForeignKeyRef `json:"foreignKey,omitempty"`
}

// ForeignKeyRef points a column at the table/column it references.
type ForeignKeyRef struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// ConstraintKind classifies table constraints.
type ConstraintKind string

const (
	ConstraintCheck      ConstraintKind = "check"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintPrimaryKey ConstraintKind = "primary_key"
)

// Constraint describes a named table constraint.
type Constraint struct {
	Name    string         `json:"name"`
	Kind    ConstraintKind `json:"kind"`
	Columns []string       `json:"columns,omitempty"`
}

// Index describes a secondary index.
type Index struct {
	TableName string   `json:"tableName"`
	Name      string   `json:"name"`
	Columns   []string `json:"columns"`
	Unique    bool     `json:"unique,omitempty"`
}

// View describes a database view. Definition may be empty when the
// engine does not expose it.
type View struct {
	Name       string `json:"name"`
	Definition string `json:"definition,omitempty"`
}

// Table returns the named table, or nil when absent.
func (s *DatabaseSchema) Table(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// TableNames returns the names of all tables in snapshot order.
func (s *DatabaseSchema) TableNames() []string {
	names := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		names[i] = t.Name
	}
	return names
}

// Column returns the named column, or nil when absent.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// RequiredColumns returns columns a writer must provide a value for:
// non-nullable, not auto-incremented, and without a default.
func (t *Table) RequiredColumns() []Column {
	var res []Column
	for _, c := range t.Columns {
		if !c.Nullable && !c.AutoIncrement && c.Default == nil {
			res = append(res, c)
		}
	}
	return res
}

var varcharRe = regexp.MustCompile(`(?i)^\s*(?:var)?char(?:acter)?(?:\s+varying)?\s*\(\s*(\d+)\s*\)`)

// VarcharLength extracts N from a varchar(N)-style type string.
// The second return value is false when the type carries no length.
func (c *Column) VarcharLength() (int, bool) {
	m := varcharRe.FindStringSubmatch(c.Type)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// BaseType returns the lower-cased type name without any length or
// precision suffix: "VARCHAR(255)" -> "varchar".
func (c *Column) BaseType() string {
	t := strings.ToLower(strings.TrimSpace(c.Type))
	if i := strings.IndexAny(t, " ("); i > 0 {
		t = t[:i]
	}
	return t
}
