package ioschema

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/driftwatch/driftwatch/pkg/connect"
	"github.com/driftwatch/driftwatch/pkg/schema"
)

// postgresSchema reads the public schema through information_schema
// and the pg_catalog index tables.
func postgresSchema(
	ctx context.Context, conn connect.Connector,
) (*schema.DatabaseSchema, error) {
	names, err := postgresTableNames(ctx, conn)
	if err != nil {
		return nil, err
	}

	s := &schema.DatabaseSchema{}
	for _, name := range names {
		table, err := postgresTable(ctx, conn, name)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		s.Tables = append(s.Tables, *table)
	}

	if s.Indexes, err = postgresIndexes(ctx, conn); err != nil {
		return nil, err
	}
	if s.Views, err = postgresViews(ctx, conn); err != nil {
		return nil, err
	}
	return s, nil
}

func postgresTableNames(
	ctx context.Context, conn connect.Connector,
) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	return scanStrings(ctx, conn, query)
}

func postgresTable(
	ctx context.Context, conn connect.Connector, name string,
) (*schema.Table, error) {
	table := &schema.Table{Name: name}

	columns, err := postgresColumns(ctx, conn, name)
	if err != nil {
		return nil, err
	}
	table.Columns = columns

	pk, err := postgresPrimaryKey(ctx, conn, name)
	if err != nil {
		return nil, err
	}
	table.PrimaryKey = pk

	if err := postgresForeignKeys(ctx, conn, table); err != nil {
		return nil, err
	}

	constraints, err := postgresConstraints(ctx, conn, name)
	if err != nil {
		return nil, err
	}
	table.Constraints = constraints

	return table, nil
}

func postgresColumns(
	ctx context.Context, conn connect.Connector, tableName string,
) ([]schema.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable,
			c.column_default,
			c.is_identity,
			c.udt_name,
			c.character_maximum_length,
			CASE WHEN EXISTS (
				SELECT 1 FROM information_schema.table_constraints tc
				JOIN information_schema.constraint_column_usage ccu
					ON tc.constraint_name = ccu.constraint_name
					AND tc.table_schema = ccu.table_schema
				WHERE tc.table_schema = 'public'
					AND tc.table_name = c.table_name
					AND tc.constraint_type = 'UNIQUE'
					AND ccu.column_name = c.column_name
			) THEN true ELSE false END AS is_unique
		FROM information_schema.columns c
		WHERE c.table_schema = 'public' AND c.table_name = $1
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
		var nullable, identity, dataType, udtName string
		var defaultVal sql.NullString
		var charMaxLength sql.NullInt64

		err := rows.Scan(
			&col.Name, &dataType, &nullable, &defaultVal,
			&identity, &udtName, &charMaxLength, &col.Unique,
		)
		if err != nil {
			return nil, err
		}

		col.Nullable = nullable == "YES"
		col.Type = normalizePostgresType(dataType, udtName, charMaxLength)
		if defaultVal.Valid {
			// serial columns carry a nextval default; report them as
			// auto-increment rather than defaulted
			if isSerialDefault(defaultVal.String) {
				col.AutoIncrement = true
			} else {
				v := defaultVal.String
				col.Default = &v
			}
		}
		if identity == "YES" {
			col.AutoIncrement = true
		}

		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// isSerialDefault reports whether a column default comes from a
// sequence, e.g. "nextval('users_id_seq'::regclass)".
func isSerialDefault(def string) bool {
	return len(def) > 8 && def[:8] == "nextval("
}

// normalizePostgresType maps verbose SQL type names to the commonly
// used PostgreSQL spellings.
func normalizePostgresType(
	dataType, udtName string, charMaxLength sql.NullInt64,
) string {
	switch dataType {
	case "timestamp with time zone":
		return "timestamptz"
	case "timestamp without time zone":
		return "timestamp"
	case "time with time zone":
		return "timetz"
	case "time without time zone":
		return "time"
	case "character varying":
		if charMaxLength.Valid {
			return fmt.Sprintf("varchar(%d)", charMaxLength.Int64)
		}
		return "varchar"
	case "character":
		if charMaxLength.Valid {
			return fmt.Sprintf("char(%d)", charMaxLength.Int64)
		}
		return "char"
	case "USER-DEFINED":
		return udtName
	default:
		return dataType
	}
}

func postgresPrimaryKey(
	ctx context.Context, conn connect.Connector, tableName string,
) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = 'public'
			AND table_name = $1
			AND constraint_name IN (
				SELECT constraint_name
				FROM information_schema.table_constraints
				WHERE table_schema = 'public'
					AND table_name = $1
					AND constraint_type = 'PRIMARY KEY'
			)
		ORDER BY ordinal_position
	`
	return scanStrings(ctx, conn, query, tableName)
}

// postgresForeignKeys attaches references to the owning columns.
func postgresForeignKeys(
	ctx context.Context, conn connect.Connector, table *schema.Table,
) error {
	query := `
		SELECT
			kcu.column_name,
			ccu.table_name AS foreign_table_name,
			ccu.column_name AS foreign_column_name
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = 'public'
			AND tc.table_name = $1
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

func postgresConstraints(
	ctx context.Context, conn connect.Connector, tableName string,
) ([]schema.Constraint, error) {
	// NOT NULL checks are represented as columns, not constraints.
	query := `
		SELECT tc.constraint_name, tc.constraint_type
		FROM information_schema.table_constraints tc
		WHERE tc.table_schema = 'public'
			AND tc.table_name = $1
			AND tc.constraint_type IN
				('CHECK', 'FOREIGN KEY', 'UNIQUE', 'PRIMARY KEY')
			AND tc.constraint_name NOT LIKE '%_not_null'
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
			WHERE table_schema = 'public'
				AND table_name = $1
				AND constraint_name = $2
			ORDER BY ordinal_position
		`, tableName, constraints[i].Name)
		if err != nil {
			return nil, err
		}
		constraints[i].Columns = cols
	}
	return constraints, nil
}

func postgresIndexes(
	ctx context.Context, conn connect.Connector,
) ([]schema.Index, error) {
	// One row per index column; grouped in Go because array_agg does
	// not scan through database/sql.
	query := `
		SELECT
			t.relname AS table_name,
			i.relname AS index_name,
			a.attname AS column_name,
			ix.indisunique AS is_unique
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_attribute a ON a.attrelid = t.oid
			AND a.attnum = ANY(ix.indkey)
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE t.relkind = 'r'
			AND n.nspname = 'public'
			AND NOT ix.indisprimary
		ORDER BY i.relname, array_position(ix.indkey, a.attnum)
	`

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var tableName, indexName, columnName string
		var unique bool
		err := rows.Scan(&tableName, &indexName, &columnName, &unique)
		if err != nil {
			return nil, err
		}
		if n := len(indexes); n > 0 && indexes[n-1].Name == indexName {
			indexes[n-1].Columns = append(indexes[n-1].Columns, columnName)
			continue
		}
		indexes = append(indexes, schema.Index{
			TableName: tableName,
			Name:      indexName,
			Columns:   []string{columnName},
			Unique:    unique,
		})
	}
	return indexes, rows.Err()
}

func postgresViews(
	ctx context.Context, conn connect.Connector,
) ([]schema.View, error) {
	query := `
		SELECT table_name, COALESCE(view_definition, '')
		FROM information_schema.views
		WHERE table_schema = 'public'
		ORDER BY table_name
	`
	return scanViews(ctx, conn, query)
}
