package routes

import (
	"fmt"
	"strings"

	"github.com/driftwatch/driftwatch/pkg/schema"
	"github.com/jinzhu/inflection"
)

// Issue is one validation finding for a route. Warnings never make a
// route invalid.
type Issue struct {
	Route   string `json:"route"`
	Problem string `json:"problem"`
}

// Result aggregates route validation against one schema.
type Result struct {
	Valid    []ApiRoute `json:"valid"`
	Invalid  []Issue    `json:"invalid,omitempty"`
	Warnings []string   `json:"warnings,omitempty"`
}

// Validate cross-checks recovered routes against the schema. Every
// inferred operation must reference an existing table (and existing
// columns when the operation names them); failures make the route
// invalid. Path parameters ending in "Id" whose stripped name matches
// no table only warn.
func Validate(rr []ApiRoute, s *schema.DatabaseSchema) Result {
	var res Result

	for _, r := range rr {
		label := fmt.Sprintf("%s %s", r.Method, r.Path)
		valid := true

		for _, op := range r.Operations {
			tbl := lookupTable(s, op.Table)
			if tbl == nil {
				res.Invalid = append(res.Invalid, Issue{
					Route: label,
					Problem: fmt.Sprintf(
						"operation %s references unknown table %q", op.Type, op.Table),
				})
				valid = false
				continue
			}
			for _, col := range op.Columns {
				if tbl.Column(col) == nil {
					res.Invalid = append(res.Invalid, Issue{
						Route: label,
						Problem: fmt.Sprintf(
							"operation %s references unknown column %q of table %q",
							op.Type, col, tbl.Name),
					})
					valid = false
				}
			}
		}

		for _, p := range r.Parameters {
			if name, ok := strings.CutSuffix(p.Name, "Id"); ok && name != "" {
				if lookupTable(s, name) == nil {
					res.Warnings = append(res.Warnings, fmt.Sprintf(
						"%s: path parameter %q matches no table", label, p.Name))
				}
			}
		}

		if valid {
			res.Valid = append(res.Valid, r)
		}
	}

	return res
}

// lookupTable resolves a name to a schema table trying the exact,
// singular and plural spellings.
func lookupTable(s *schema.DatabaseSchema, name string) *schema.Table {
	for _, candidate := range []string{
		name,
		inflection.Singular(name),
		inflection.Plural(name),
	} {
		if t := s.Table(candidate); t != nil {
			return t
		}
	}
	return nil
}
