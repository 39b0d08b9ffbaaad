// Package routes defines the API route inventory model and the pure
// validation of recovered routes against a database schema. Source
// scanning lives in internal/ioroutes.
package routes

import (
	"strings"
)

// Method is an HTTP method recognized by the extractor.
type Method string

const (
	GET    Method = "GET"
	POST   Method = "POST"
	PUT    Method = "PUT"
	PATCH  Method = "PATCH"
	DELETE Method = "DELETE"
)

// OperationType classifies an inferred database operation.
type OperationType string

const (
	OpSelect OperationType = "select"
	OpInsert OperationType = "insert"
	OpUpdate OperationType = "update"
	OpDelete OperationType = "delete"
)

// DatabaseOperation is one database access a handler implies.
type DatabaseOperation struct {
	Type    OperationType `json:"type"`
	Table   string        `json:"table"`
	Columns []string      `json:"columns,omitempty"`
}

// Parameter is a path parameter recovered from a route template.
type Parameter struct {
	Name     string `json:"name"`
	In       string `json:"in"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// ApiRoute is one exposed endpoint recovered from source.
type ApiRoute struct {
	Method      Method              `json:"method"`
	Path        string              `json:"path"`
	SourceFile  string              `json:"sourceFile,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty"`
	Operations  []DatabaseOperation `json:"operations,omitempty"`
	StatusCodes []int               `json:"statusCodes,omitempty"`
}

// PathParams extracts the ":name" segments of a path template as
// required string path parameters.
func PathParams(path string) []Parameter {
	var params []Parameter
	for _, seg := range strings.Split(path, "/") {
		if len(seg) > 1 && seg[0] == ':' {
			params = append(params, Parameter{
				Name:     seg[1:],
				In:       "path",
				Type:     "string",
				Required: true,
			})
		}
	}
	return params
}

// HasIDParam reports whether the path carries an ":id"-style
// parameter segment.
func (r *ApiRoute) HasIDParam() bool {
	for _, p := range r.Parameters {
		if p.Name == "id" || strings.HasSuffix(p.Name, "Id") {
			return true
		}
	}
	return false
}

// Tables returns the distinct tables the route's operations touch,
// in first-seen order.
func (r *ApiRoute) Tables() []string {
	seen := map[string]bool{}
	var tables []string
	for _, op := range r.Operations {
		if op.Table != "" && !seen[op.Table] {
			seen[op.Table] = true
			tables = append(tables, op.Table)
		}
	}
	return tables
}
