package ioschema

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/driftwatch/driftwatch/pkg/connect"
	"github.com/driftwatch/driftwatch/pkg/schema"
)

// duckdbSchema reads the main schema through information_schema plus
// the duckdb_indexes/duckdb_views catalog functions.
func duckdbSchema(
	ctx context.Context, conn connect.Connector,
) (*schema.DatabaseSchema, error) {
	names, err := scanStrings(ctx, conn, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'main' AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, err
	}

	s := &schema.DatabaseSchema{}
	for _, name := range names {
		table, err := duckdbTable(ctx, conn, name)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		s.Tables = append(s.Tables, *table)
	}

	if s.Indexes, err = duckdbIndexes(ctx, conn); err != nil {
		return nil, err
	}
	if s.Views, err = scanViews(ctx, conn, `
		SELECT view_name, COALESCE(sql, '')
		FROM duckdb_views()
		WHERE NOT internal
		ORDER BY view_name
	`); err != nil {
		return nil, err
	}
	return s, nil
}

func duckdbTable(
	ctx context.Context, conn connect.Connector, name string,
) (*schema.Table, error) {
	table := &schema.Table{Name: name}

	query := `
		SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_schema = 'main' AND table_name = ?
		ORDER BY ordinal_position
	`
	rows, err := conn.Query(ctx, query, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var col schema.Column
		var nullable string
		var defaultVal sql.NullString

		err := rows.Scan(&col.Name, &col.Type, &nullable, &defaultVal)
		if err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"
		if defaultVal.Valid {
			v := defaultVal.String
			col.Default = &v
		}
		table.Columns = append(table.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := duckdbConstraints(ctx, conn, table); err != nil {
		return nil, err
	}
	return table, nil
}

// duckdbConstraints parses constraint_text because the column-name
// list column does not scan through database/sql.
func duckdbConstraints(
	ctx context.Context, conn connect.Connector, table *schema.Table,
) error {
	query := `
		SELECT constraint_type, constraint_text
		FROM duckdb_constraints()
		WHERE schema_name = 'main' AND table_name = ?
		ORDER BY constraint_type, constraint_text
	`
	rows, err := conn.Query(ctx, query, table.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var kind, text string
		if err := rows.Scan(&kind, &text); err != nil {
			return err
		}
		columns := parenList(text)

		switch kind {
		case "PRIMARY KEY":
			table.PrimaryKey = columns
		case "UNIQUE":
			if len(columns) == 1 {
				if col := table.Column(columns[0]); col != nil {
					col.Unique = true
				}
			}
			table.Constraints = append(table.Constraints, schema.Constraint{
				Name:    fmt.Sprintf("uq_%s_%s", table.Name, strings.Join(columns, "_")),
				Kind:    schema.ConstraintUnique,
				Columns: columns,
			})
		case "FOREIGN KEY":
			table.Constraints = append(table.Constraints, schema.Constraint{
				Name:    fmt.Sprintf("fk_%s_%s", table.Name, strings.Join(columns, "_")),
				Kind:    schema.ConstraintForeignKey,
				Columns: columns,
			})
		case "CHECK":
			table.Constraints = append(table.Constraints, schema.Constraint{
				Name: fmt.Sprintf("ck_%s_%d", table.Name, len(table.Constraints)),
				Kind: schema.ConstraintCheck,
			})
		}
	}
	return rows.Err()
}

var parenRe = regexp.MustCompile(`\(([^)]*)\)`)

// parenList extracts "a, b" from "PRIMARY KEY(a, b)"-style text.
func parenList(text string) []string {
	m := parenRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	var out []string
	for _, part := range strings.Split(m[1], ",") {
		part = strings.Trim(strings.TrimSpace(part), `"`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func duckdbIndexes(
	ctx context.Context, conn connect.Connector,
) ([]schema.Index, error) {
	query := `
		SELECT table_name, index_name, is_unique, COALESCE(sql, '')
		FROM duckdb_indexes()
		ORDER BY table_name, index_name
	`
	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var tableName, indexName, sqlText string
		var unique bool
		err := rows.Scan(&tableName, &indexName, &unique, &sqlText)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, schema.Index{
			TableName: tableName,
			Name:      indexName,
			Columns:   parenListLast(sqlText),
			Unique:    unique,
		})
	}
	return indexes, rows.Err()
}

// parenListLast extracts the column list from CREATE INDEX text,
// which keeps the columns in the final paren group.
func parenListLast(sqlText string) []string {
	ms := parenRe.FindAllStringSubmatch(sqlText, -1)
	if len(ms) == 0 {
		return nil
	}
	m := ms[len(ms)-1]
	var out []string
	for _, part := range strings.Split(m[1], ",") {
		part = strings.Trim(strings.TrimSpace(part), `"`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
