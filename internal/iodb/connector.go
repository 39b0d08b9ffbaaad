// Package iodb implements the engine-agnostic connection manager.
// PostgreSQL connects through pgxpool and is exposed via the stdlib
// adapter; the other engines open database/sql directly. This is an
// impure I/O package that implements contracts defined in pkg/.
package iodb

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/driftwatch/driftwatch/pkg/config"
	"github.com/driftwatch/driftwatch/pkg/connect"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/marcboeker/go-duckdb"
	_ "modernc.org/sqlite"
)

// latencyWindow bounds the number of recent query durations kept for
// the average query time metric.
const latencyWindow = 1000

type connector struct {
	engine connect.Engine
	db     *sql.DB
	pool   *pgxpool.Pool // postgres only

	mu       sync.Mutex
	latency  [latencyWindow]float64
	latIdx   int
	latCount int
	queries  int64
	failures int64

	subMu sync.Mutex
	subs  []func(connect.Event)
}

// New creates a connector for the given engine (without connecting).
func New(engine connect.Engine) connect.Connector {
	return &connector{engine: engine}
}

// NewFromConfig resolves the engine name in cfg and creates a
// connector for it (without connecting).
func NewFromConfig(cfg *config.DatabaseConfig) (connect.Connector, error) {
	engine, ok := connect.ParseEngine(cfg.Engine)
	if !ok {
		return nil, UnknownEngineError(cfg.Engine)
	}
	return New(engine), nil
}

// Connect establishes the connection pool and verifies it with a
// ping. Pool limits come from cfg; a failed ping closes the pool
// again so the connector stays unconnected.
func (c *connector) Connect(
	ctx context.Context,
	cfg *config.DatabaseConfig,
) error {
	var db *sql.DB

	switch c.engine {
	case connect.Postgres:
		poolConfig, err := pgxpool.ParseConfig(PostgresDSN(cfg))
		if err != nil {
			return ConnectionError(c.engine, cfg.Database, err)
		}
		poolConfig.MaxConns = int32(cfg.MaxConnections)
		poolConfig.MinConns = int32(cfg.MinConnections)
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return ConnectionError(c.engine, cfg.Database, err)
		}
		c.pool = pool
		db = stdlib.OpenDBFromPool(pool)
	case connect.MySQL:
		var err error
		db, err = sql.Open("mysql", MySQLDSN(cfg))
		if err != nil {
			return ConnectionError(c.engine, cfg.Database, err)
		}
	case connect.SQLite:
		var err error
		db, err = sql.Open("sqlite", cfg.Database)
		if err != nil {
			return ConnectionError(c.engine, cfg.Database, err)
		}
	case connect.DuckDB:
		var err error
		db, err = sql.Open("duckdb", cfg.Database)
		if err != nil {
			return ConnectionError(c.engine, cfg.Database, err)
		}
	default:
		return UnknownEngineError(string(c.engine))
	}

	if c.engine != connect.Postgres {
		db.SetMaxOpenConns(cfg.MaxConnections)
		db.SetMaxIdleConns(cfg.MinConnections)
		db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
	}

	pingCtx := ctx
	if cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.QueryTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		if c.pool != nil {
			c.pool.Close()
			c.pool = nil
		}
		c.emit(connect.EventPoolError, map[string]any{
			"engine": string(c.engine),
			"error":  err.Error(),
		})
		return ConnectionError(c.engine, cfg.Database, err)
	}

	c.db = db
	c.emit(connect.EventConnected, map[string]any{
		"engine":   string(c.engine),
		"database": cfg.Database,
	})
	return nil
}

// Close releases all database connections.
func (c *connector) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
	c.db = nil
	c.emit(connect.EventDisconnected, map[string]any{
		"engine": string(c.engine),
	})
	return err
}

func (c *connector) Engine() connect.Engine {
	return c.engine
}

// DB returns the underlying handle for engine-specific queries.
func (c *connector) DB() *sql.DB {
	return c.db
}

func (c *connector) Query(
	ctx context.Context, query string, args ...any,
) (*sql.Rows, error) {
	if c.db == nil {
		return nil, NotConnectedError()
	}
	start := time.Now()
	rows, err := c.db.QueryContext(ctx, query, args...)
	c.record(time.Since(start), err)
	if err != nil {
		return nil, QueryError(query, err)
	}
	return rows, nil
}

func (c *connector) Exec(
	ctx context.Context, query string, args ...any,
) (sql.Result, error) {
	if c.db == nil {
		return nil, NotConnectedError()
	}
	start := time.Now()
	res, err := c.db.ExecContext(ctx, query, args...)
	c.record(time.Since(start), err)
	if err != nil {
		return nil, QueryError(query, err)
	}
	return res, nil
}

// Transaction runs fn inside begin/commit. On error or panic the
// transaction is rolled back; panics are re-raised after rollback.
func (c *connector) Transaction(
	ctx context.Context, fn func(*sql.Tx) error,
) error {
	if c.db == nil {
		return NotConnectedError()
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return TransactionError(err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return TransactionError(err)
	}

	if err := tx.Commit(); err != nil {
		return TransactionError(err)
	}
	return nil
}

// IsHealthy issues a trivial round-trip query.
func (c *connector) IsHealthy(ctx context.Context) bool {
	if c.db == nil {
		return false
	}
	var one int
	err := c.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	return err == nil
}

// Metrics combines database/sql pool counters with the bounded
// latency window.
func (c *connector) Metrics() connect.PoolMetrics {
	var m connect.PoolMetrics
	if c.db != nil {
		stats := c.db.Stats()
		m.Active = stats.InUse
		m.Idle = stats.Idle
		m.Waiting = stats.WaitCount
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	m.Total = c.queries
	if c.latCount > 0 {
		var sum float64
		for i := 0; i < c.latCount; i++ {
			sum += c.latency[i]
		}
		m.AvgQueryTimeMs = sum / float64(c.latCount)
	}
	if c.queries > 0 {
		m.ErrorRate = float64(c.failures) / float64(c.queries)
	}
	return m
}

// Subscribe registers a lifecycle event consumer.
func (c *connector) Subscribe(fn func(connect.Event)) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.subs = append(c.subs, fn)
}

func (c *connector) record(d time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries++
	if err != nil {
		c.failures++
		return
	}
	c.latency[c.latIdx] = float64(d.Microseconds()) / 1000.0
	c.latIdx = (c.latIdx + 1) % latencyWindow
	if c.latCount < latencyWindow {
		c.latCount++
	}
}

func (c *connector) emit(kind connect.EventKind, details map[string]any) {
	c.subMu.Lock()
	subs := make([]func(connect.Event), len(c.subs))
	copy(subs, c.subs)
	c.subMu.Unlock()

	ev := connect.Event{Kind: kind, Time: time.Now(), Details: details}
	for _, fn := range subs {
		fn(ev)
	}
}
