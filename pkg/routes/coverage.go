package routes

import (
	"sort"

	"github.com/driftwatch/driftwatch/pkg/schema"
	"github.com/jinzhu/inflection"
)

// CRUDAction is one of the five endpoints a fully covered resource
// exposes.
type CRUDAction string

const (
	ActionList   CRUDAction = "list"
	ActionGet    CRUDAction = "get"
	ActionCreate CRUDAction = "create"
	ActionUpdate CRUDAction = "update"
	ActionDelete CRUDAction = "delete"
)

// AllActions lists the full CRUD set in canonical order.
var AllActions = []CRUDAction{
	ActionList, ActionGet, ActionCreate, ActionUpdate, ActionDelete,
}

// Coverage maps each table to the CRUD actions its discovered routes
// provide.
type Coverage map[string]map[CRUDAction]bool

// BuildCoverage attributes routes to schema tables via their inferred
// operations and classifies each route as one of the CRUD actions.
// Routes whose operations touch no known table contribute nothing.
func BuildCoverage(rr []ApiRoute, s *schema.DatabaseSchema) Coverage {
	cov := Coverage{}
	for _, t := range s.Tables {
		cov[t.Name] = map[CRUDAction]bool{}
	}

	for _, r := range rr {
		action, ok := classify(r)
		if !ok {
			continue
		}
		for _, name := range r.Tables() {
			t := lookupTable(s, name)
			if t == nil {
				continue
			}
			cov[t.Name][action] = true
		}
	}

	return cov
}

// Missing returns the actions absent from a table's coverage, in
// canonical order.
func (c Coverage) Missing(table string) []CRUDAction {
	var missing []CRUDAction
	for _, a := range AllActions {
		if !c[table][a] {
			missing = append(missing, a)
		}
	}
	return missing
}

// Uncovered returns the tables lacking at least one CRUD action,
// sorted by name.
func (c Coverage) Uncovered() []string {
	var tables []string
	for table := range c {
		if len(c.Missing(table)) > 0 {
			tables = append(tables, table)
		}
	}
	sort.Strings(tables)
	return tables
}

func classify(r ApiRoute) (CRUDAction, bool) {
	switch r.Method {
	case GET:
		if r.HasIDParam() {
			return ActionGet, true
		}
		return ActionList, true
	case POST:
		return ActionCreate, true
	case PUT, PATCH:
		return ActionUpdate, true
	case DELETE:
		return ActionDelete, true
	}
	return "", false
}

// ResourcePath builds the conventional collection path for a table,
// e.g. "widget" -> "/api/widgets".
func ResourcePath(table string) string {
	return "/api/" + inflection.Plural(table)
}

// MissingRoutes synthesizes the ApiRoute values a table needs to
// reach full CRUD coverage.
func MissingRoutes(table string, missing []CRUDAction) []ApiRoute {
	base := ResourcePath(table)
	var rr []ApiRoute
	for _, a := range missing {
		var r ApiRoute
		switch a {
		case ActionList:
			r = ApiRoute{Method: GET, Path: base,
				Operations: []DatabaseOperation{{Type: OpSelect, Table: table}}}
		case ActionGet:
			r = ApiRoute{Method: GET, Path: base + "/:id",
				Operations: []DatabaseOperation{{Type: OpSelect, Table: table}}}
		case ActionCreate:
			r = ApiRoute{Method: POST, Path: base,
				Operations: []DatabaseOperation{{Type: OpInsert, Table: table}}}
		case ActionUpdate:
			r = ApiRoute{Method: PUT, Path: base + "/:id",
				Operations: []DatabaseOperation{{Type: OpUpdate, Table: table}}}
		case ActionDelete:
			r = ApiRoute{Method: DELETE, Path: base + "/:id",
				Operations: []DatabaseOperation{{Type: OpDelete, Table: table}}}
		}
		r.Parameters = PathParams(r.Path)
		rr = append(rr, r)
	}
	return rr
}
