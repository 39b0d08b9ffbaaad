// Package connect defines the contract for the engine-agnostic
// connection manager. The implementation using real drivers lives in
// internal/iodb.
package connect

import (
	"context"
	"database/sql"
	"time"

	"github.com/driftwatch/driftwatch/pkg/config"
)

// Engine identifies one of the supported relational backends. The
// set is closed: adding an engine means adding a driver to
// internal/iodb.
type Engine string

const (
	Postgres Engine = "postgres"
	MySQL    Engine = "mysql"
	SQLite   Engine = "sqlite"
	DuckDB   Engine = "duckdb"
)

// ParseEngine resolves a configuration string to an Engine. The
// second return value is false for unknown engines.
func ParseEngine(s string) (Engine, bool) {
	switch Engine(s) {
	case Postgres, MySQL, SQLite, DuckDB:
		return Engine(s), true
	case "postgresql", "pg":
		return Postgres, true
	case "sqlite3":
		return SQLite, true
	}
	return "", false
}

// PoolMetrics is a point-in-time view of pool health.
type PoolMetrics struct {
	Active         int     `json:"active"`
	Idle           int     `json:"idle"`
	Waiting        int64   `json:"waiting"`
	Total          int64   `json:"total"`
	AvgQueryTimeMs float64 `json:"avgQueryTimeMs"`
	ErrorRate      float64 `json:"errorRate"`
}

// EventKind classifies connection lifecycle events.
type EventKind string

const (
	EventConnected    EventKind = "connected"
	EventDisconnected EventKind = "disconnected"
	EventPoolError    EventKind = "pool_error"
)

// Event is emitted on connection lifecycle transitions for
// observability consumers.
type Event struct {
	Kind    EventKind      `json:"kind"`
	Time    time.Time      `json:"time"`
	Details map[string]any `json:"details,omitempty"`
}

// Connector is the uniform query/transaction surface over one of the
// supported engines. Implementations are safe for concurrent use
// once connected.
type Connector interface {
	// Connect establishes the pool. It never retries; retry policy
	// belongs to the caller.
	Connect(ctx context.Context, cfg *config.DatabaseConfig) error

	// Close releases the pool. Safe to call when not connected.
	Close() error

	// Engine reports which backend the connector was built for.
	Engine() Engine

	// DB exposes the underlying handle for components that need
	// engine-specific queries (introspection, migration history).
	DB() *sql.DB

	// Query runs a read query, recording latency and error counters.
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	// Exec runs a statement, recording latency and error counters.
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)

	// Transaction runs fn inside begin/commit. Any error or panic in
	// fn rolls the transaction back; a panic is re-raised after
	// rollback. The transaction holds one pooled connection for the
	// whole duration of fn.
	Transaction(ctx context.Context, fn func(*sql.Tx) error) error

	// IsHealthy issues a trivial round-trip query. It never returns
	// an error; any failure reports false.
	IsHealthy(ctx context.Context) bool

	// Metrics returns current pool counters. The average query time
	// is computed over a bounded window of recent queries.
	Metrics() PoolMetrics

	// Subscribe registers a lifecycle event consumer. Callbacks run
	// synchronously on the emitting goroutine and must be quick.
	Subscribe(fn func(Event))
}
