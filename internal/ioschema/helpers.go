package ioschema

import (
	"context"

	"github.com/driftwatch/driftwatch/pkg/connect"
	"github.com/driftwatch/driftwatch/pkg/schema"
)

// scanStrings runs a single-column query and collects the values.
func scanStrings(
	ctx context.Context, conn connect.Connector,
	query string, args ...any,
) ([]string, error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// scanViews runs a (name, definition) query and collects views.
func scanViews(
	ctx context.Context, conn connect.Connector,
	query string, args ...any,
) ([]schema.View, error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []schema.View
	for rows.Next() {
		var v schema.View
		if err := rows.Scan(&v.Name, &v.Definition); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// constraintKind maps information_schema constraint_type values to
// the snapshot's kinds.
func constraintKind(s string) schema.ConstraintKind {
	switch s {
	case "CHECK":
		return schema.ConstraintCheck
	case "FOREIGN KEY":
		return schema.ConstraintForeignKey
	case "UNIQUE":
		return schema.ConstraintUnique
	case "PRIMARY KEY":
		return schema.ConstraintPrimaryKey
	}
	return schema.ConstraintKind(s)
}
