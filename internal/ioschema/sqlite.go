package ioschema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/driftwatch/driftwatch/pkg/connect"
	"github.com/driftwatch/driftwatch/pkg/schema"
)

// sqliteSchema reads structure through PRAGMA statements and
// sqlite_master. PRAGMA takes no bind parameters, so table names are
// interpolated; they come from sqlite_master, not from user input.
func sqliteSchema(
	ctx context.Context, conn connect.Connector,
) (*schema.DatabaseSchema, error) {
	names, err := scanStrings(ctx, conn, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}

	s := &schema.DatabaseSchema{}
	for _, name := range names {
		table, indexes, err := sqliteTable(ctx, conn, name)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		s.Tables = append(s.Tables, *table)
		s.Indexes = append(s.Indexes, indexes...)
	}

	if s.Views, err = scanViews(ctx, conn, `
		SELECT name, COALESCE(sql, '')
		FROM sqlite_master
		WHERE type = 'view'
		ORDER BY name
	`); err != nil {
		return nil, err
	}
	return s, nil
}

func sqliteTable(
	ctx context.Context, conn connect.Connector, name string,
) (*schema.Table, []schema.Index, error) {
	table := &schema.Table{Name: name}

	if err := sqliteColumns(ctx, conn, table); err != nil {
		return nil, nil, err
	}
	if err := sqliteForeignKeys(ctx, conn, table); err != nil {
		return nil, nil, err
	}

	indexes, err := sqliteIndexes(ctx, conn, table)
	if err != nil {
		return nil, nil, err
	}
	return table, indexes, nil
}

// sqliteColumns fills columns and the primary key from table_info.
func sqliteColumns(
	ctx context.Context, conn connect.Connector, table *schema.Table,
) error {
	query := fmt.Sprintf("PRAGMA table_info(%q)", table.Name)

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var defaultVal sql.NullString

		err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &pk)
		if err != nil {
			return err
		}

		col := schema.Column{
			Name:     name,
			Type:     colType,
			Nullable: notNull == 0 && pk == 0,
		}
		if defaultVal.Valid {
			v := defaultVal.String
			col.Default = &v
		}
		if pk > 0 {
			table.PrimaryKey = append(table.PrimaryKey, name)
		}

		table.Columns = append(table.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// A lone INTEGER primary key aliases the rowid and auto-assigns.
	if len(table.PrimaryKey) == 1 {
		if col := table.Column(table.PrimaryKey[0]); col != nil &&
			strings.EqualFold(col.Type, "integer") {
			col.AutoIncrement = true
		}
	}
	return nil
}

// sqliteForeignKeys attaches references and records them as
// constraints so removals are visible in comparisons.
func sqliteForeignKeys(
	ctx context.Context, conn connect.Connector, table *schema.Table,
) error {
	query := fmt.Sprintf("PRAGMA foreign_key_list(%q)", table.Name)

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, seq int
		var refTable, from, onUpdate, onDelete, match string
		var to sql.NullString

		err := rows.Scan(
			&id, &seq, &refTable, &from, &to,
			&onUpdate, &onDelete, &match,
		)
		if err != nil {
			return err
		}

		refColumn := "id"
		if to.Valid {
			refColumn = to.String
		}
		if col := table.Column(from); col != nil {
			col.ForeignKey = &schema.ForeignKeyRef{
				Table:  refTable,
				Column: refColumn,
			}
		}
		table.Constraints = append(table.Constraints, schema.Constraint{
			Name:    fmt.Sprintf("fk_%s_%s", table.Name, from),
			Kind:    schema.ConstraintForeignKey,
			Columns: []string{from},
		})
	}
	return rows.Err()
}

// sqliteIndexes reads index_list/index_info. Unique indexes declared
// as column constraints (origin "u") also mark the column unique.
func sqliteIndexes(
	ctx context.Context, conn connect.Connector, table *schema.Table,
) ([]schema.Index, error) {
	query := fmt.Sprintf("PRAGMA index_list(%q)", table.Name)

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	type indexMeta struct {
		name   string
		origin string
		unique bool
	}
	var metas []indexMeta
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string

		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return nil, err
		}
		if strings.HasPrefix(name, "sqlite_autoindex") && origin == "pk" {
			continue
		}
		metas = append(metas, indexMeta{
			name:   name,
			origin: origin,
			unique: unique == 1,
		})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	var indexes []schema.Index
	for _, meta := range metas {
		columns, err := sqliteIndexColumns(ctx, conn, meta.name)
		if err != nil {
			return nil, err
		}
		if len(columns) == 0 {
			continue
		}

		if meta.unique && len(columns) == 1 {
			if col := table.Column(columns[0]); col != nil {
				col.Unique = true
			}
		}
		// UNIQUE column constraints surface as auto-indexes; keep
		// them out of the index list like the other engines do.
		if strings.HasPrefix(meta.name, "sqlite_autoindex") {
			continue
		}
		indexes = append(indexes, schema.Index{
			TableName: table.Name,
			Name:      meta.name,
			Columns:   columns,
			Unique:    meta.unique,
		})
	}
	return indexes, nil
}

func sqliteIndexColumns(
	ctx context.Context, conn connect.Connector, indexName string,
) ([]string, error) {
	query := fmt.Sprintf("PRAGMA index_info(%q)", indexName)

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var colName sql.NullString

		if err := rows.Scan(&seqno, &cid, &colName); err != nil {
			return nil, err
		}
		if colName.Valid {
			columns = append(columns, colName.String)
		}
	}
	return columns, rows.Err()
}
