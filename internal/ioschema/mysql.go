package ioschema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/driftwatch/driftwatch/pkg/connect"
	"github.com/driftwatch/driftwatch/pkg/schema"
)

// mysqlSchema reads the current database through information_schema.
// DATABASE() scopes every query to the connected schema, so no name
// has to be threaded through.
func mysqlSchema(
	ctx context.Context, conn connect.Connector,
) (*schema.DatabaseSchema, error) {
	names, err := scanStrings(ctx, conn, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, err
	}

	s := &schema.DatabaseSchema{}
	for _, name := range names {
		table, err := mysqlTable(ctx, conn, name)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		s.Tables = append(s.Tables, *table)
	}

	if s.Indexes, err = mysqlIndexes(ctx, conn); err != nil {
		return nil, err
	}
	if s.Views, err = scanViews(ctx, conn, `
		SELECT table_name, COALESCE(view_definition, '')
		FROM information_schema.views
		WHERE table_schema = DATABASE()
		ORDER BY table_name
	`); err != nil {
		return nil, err
	}
	return s, nil
}

func mysqlTable(
	ctx context.Context, conn connect.Connector, name string,
) (*schema.Table, error) {
	table := &schema.Table{Name: name}

	columns, err := mysqlColumns(ctx, conn, name)
	if err != nil {
		return nil, err
	}
	table.Columns = columns

	pk, err := scanStrings(ctx, conn, `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE()
			AND table_name = ?
			AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`, name)
	if err != nil {
		return nil, err
	}
	table.PrimaryKey = pk

	if err := mysqlForeignKeys(ctx, conn, table); err != nil {
		return nil, err
	}

	constraints, err := mysqlConstraints(ctx, conn, name)
	if err != nil {
		return nil, err
	}
	table.Constraints = constraints

	return table, nil
}

func mysqlColumns(
	ctx context.Context, conn connect.Connector, tableName string,
) ([]schema.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable,
			c.column_default,
			c.column_key,
			c.extra
		FROM information_schema.columns c
		WHERE c.table_schema = DATABASE() AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := conn.Query(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var nullable, columnKey, extra string
		var defaultVal sql.NullString

		err := rows.Scan(
			&col.Name, &col.Type, &nullable,
			&defaultVal, &columnKey, &extra,
		)
		if err != nil {
			return nil, err
		}

		col.Nullable = nullable == "YES"
		col.Unique = columnKey == "UNI"
		col.AutoIncrement = strings.Contains(extra, "auto_increment")
		if defaultVal.Valid {
			v := defaultVal.String
			col.Default = &v
		}

		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func mysqlForeignKeys(
	ctx context.Context, conn connect.Connector, table *schema.Table,
) error {
	query := `
		SELECT
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name
		FROM information_schema.key_column_usage kcu
		WHERE kcu.table_schema = DATABASE()
			AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.ordinal_position
	`

	rows, err := conn.Query(ctx, query, table.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var colName, refTable, refColumn string
		if err := rows.Scan(&colName, &refTable, &refColumn); err != nil {
			return err
		}
		if col := table.Column(colName); col != nil {
			col.ForeignKey = &schema.ForeignKeyRef{
				Table:  refTable,
				Column: refColumn,
			}
		}
	}
	return rows.Err()
}

func mysqlConstraints(
	ctx context.Context, conn connect.Connector, tableName string,
) ([]schema.Constraint, error) {
	query := `
		SELECT tc.constraint_name, tc.constraint_type
		FROM information_schema.table_constraints tc
		WHERE tc.table_schema = DATABASE()
			AND tc.table_name = ?
			AND tc.constraint_type IN
				('CHECK', 'FOREIGN KEY', 'UNIQUE', 'PRIMARY KEY')
		ORDER BY tc.constraint_name
	`

	rows, err := conn.Query(ctx, query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var constraints []schema.Constraint
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, err
		}
		constraints = append(constraints, schema.Constraint{
			Name: name,
			Kind: constraintKind(kind),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range constraints {
		if constraints[i].Kind == schema.ConstraintCheck {
			continue
		}
		cols, err := scanStrings(ctx, conn, `
			SELECT column_name
			FROM information_schema.key_column_usage
			WHERE table_schema = DATABASE()
				AND table_name = ?
				AND constraint_name = ?
			ORDER BY ordinal_position
		`, tableName, constraints[i].Name)
		if err != nil {
			return nil, err
		}
		constraints[i].Columns = cols
	}
	return constraints, nil
}

func mysqlIndexes(
	ctx context.Context, conn connect.Connector,
) ([]schema.Index, error) {
	query := `
		SELECT table_name, index_name, column_name, non_unique
		FROM information_schema.statistics
		WHERE table_schema = DATABASE() AND index_name != 'PRIMARY'
		ORDER BY table_name, index_name, seq_in_index
	`

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var tableName, indexName, columnName string
		var nonUnique int
		err := rows.Scan(&tableName, &indexName, &columnName, &nonUnique)
		if err != nil {
			return nil, err
		}
		if n := len(indexes); n > 0 &&
			indexes[n-1].Name == indexName &&
			indexes[n-1].TableName == tableName {
			indexes[n-1].Columns = append(indexes[n-1].Columns, columnName)
			continue
		}
		indexes = append(indexes, schema.Index{
			TableName: tableName,
			Name:      indexName,
			Columns:   []string{columnName},
			Unique:    nonUnique == 0,
		})
	}
	return indexes, rows.Err()
}
