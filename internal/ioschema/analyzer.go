// Package ioschema captures live database structure into a versioned
// snapshot. Each engine has its own extractor; the analyzer picks one
// based on the connector's engine and stamps the result with the
// structural hash. This is an impure I/O package that implements
// contracts defined in pkg/.
package ioschema

import (
	"context"
	"fmt"
	"time"

	"github.com/driftwatch/driftwatch/pkg/connect"
	"github.com/driftwatch/driftwatch/pkg/lifecycle"
	"github.com/driftwatch/driftwatch/pkg/schema"
)

type analyzer struct {
	conn    connect.Connector
	timeout time.Duration
}

// New creates a schema analyzer reading through the given connector.
// A non-zero timeout bounds the whole capture.
func New(conn connect.Connector, timeout time.Duration) lifecycle.Analyzer {
	return &analyzer{conn: conn, timeout: timeout}
}

// Analyze reads tables, columns, keys, constraints, indexes and views
// from the connected database and returns a stamped snapshot.
func (a *analyzer) Analyze(ctx context.Context) (*schema.DatabaseSchema, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	engine := a.conn.Engine()

	var s *schema.DatabaseSchema
	var err error
	switch engine {
	case connect.Postgres:
		s, err = postgresSchema(ctx, a.conn)
	case connect.MySQL:
		s, err = mysqlSchema(ctx, a.conn)
	case connect.SQLite:
		s, err = sqliteSchema(ctx, a.conn)
	case connect.DuckDB:
		s, err = duckdbSchema(ctx, a.conn)
	default:
		return nil, IntrospectionError(
			string(engine), fmt.Errorf("unsupported engine"),
		)
	}
	if err != nil {
		return nil, IntrospectionError(string(engine), err)
	}

	s.Engine = string(engine)
	s.CapturedAt = time.Now().UTC()
	s.Stamp()
	return s, nil
}
