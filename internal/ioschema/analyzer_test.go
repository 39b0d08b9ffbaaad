package ioschema_test

import (
	"context"
	"testing"
	"time"

	"github.com/driftwatch/driftwatch/internal/iodb"
	"github.com/driftwatch/driftwatch/internal/ioschema"
	"github.com/driftwatch/driftwatch/pkg/config"
	"github.com/driftwatch/driftwatch/pkg/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) connect.Connector {
	t.Helper()
	c := iodb.New(connect.SQLite)
	cfg := &config.DatabaseConfig{
		Engine:         "sqlite",
		Database:       ":memory:",
		MaxConnections: 1,
		MinConnections: 1,
		QueryTimeout:   10 * time.Second,
	}
	require.NoError(t, c.Connect(context.Background(), cfg))
	t.Cleanup(func() { c.Close() })
	return c
}

func seedShop(t *testing.T, c connect.Connector) {
	t.Helper()
	ctx := context.Background()
	stmts := []string{
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE orders (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			total REAL NOT NULL,
			note TEXT
		)`,
		`CREATE INDEX idx_orders_user ON orders(user_id)`,
		`CREATE VIEW big_orders AS
			SELECT id, total FROM orders WHERE total > 100`,
	}
	for _, stmt := range stmts {
		_, err := c.Exec(ctx, stmt)
		require.NoError(t, err, stmt)
	}
}

func TestAnalyzeSQLite(t *testing.T) {
	c := newTestDB(t)
	seedShop(t, c)

	a := ioschema.New(c, 10*time.Second)
	s, err := a.Analyze(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", s.Engine)
	assert.NotEmpty(t, s.Hash)
	assert.NotEmpty(t, s.Version)
	assert.WithinDuration(t, time.Now(), s.CapturedAt, time.Minute)

	require.Equal(t, []string{"orders", "users"}, s.TableNames())

	users := s.Table("users")
	require.NotNil(t, users)
	assert.Equal(t, []string{"id"}, users.PrimaryKey)

	id := users.Column("id")
	require.NotNil(t, id)
	assert.True(t, id.AutoIncrement, "integer pk aliases rowid")
	assert.False(t, id.Nullable)

	email := users.Column("email")
	require.NotNil(t, email)
	assert.False(t, email.Nullable)
	assert.True(t, email.Unique)

	name := users.Column("name")
	require.NotNil(t, name)
	assert.True(t, name.Nullable)

	createdAt := users.Column("created_at")
	require.NotNil(t, createdAt)
	require.NotNil(t, createdAt.Default)

	orders := s.Table("orders")
	require.NotNil(t, orders)
	userID := orders.Column("user_id")
	require.NotNil(t, userID)
	require.NotNil(t, userID.ForeignKey)
	assert.Equal(t, "users", userID.ForeignKey.Table)
	assert.Equal(t, "id", userID.ForeignKey.Column)
	require.Len(t, orders.Constraints, 1)
	assert.Equal(t, "fk_orders_user_id", orders.Constraints[0].Name)

	require.Len(t, s.Indexes, 1, "auto-indexes are excluded")
	idx := s.Indexes[0]
	assert.Equal(t, "idx_orders_user", idx.Name)
	assert.Equal(t, "orders", idx.TableName)
	assert.Equal(t, []string{"user_id"}, idx.Columns)
	assert.False(t, idx.Unique)

	require.Len(t, s.Views, 1)
	assert.Equal(t, "big_orders", s.Views[0].Name)
}

func TestAnalyzeStableHash(t *testing.T) {
	c := newTestDB(t)
	seedShop(t, c)

	a := ioschema.New(c, 10*time.Second)
	first, err := a.Analyze(context.Background())
	require.NoError(t, err)
	second, err := a.Analyze(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Hash, second.Hash)
	assert.Equal(t, first.Version, second.Version)

	_, err = c.Exec(context.Background(),
		"ALTER TABLE users ADD COLUMN phone TEXT")
	require.NoError(t, err)

	third, err := a.Analyze(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.Hash, third.Hash)
}

func TestAnalyzeEmptyDatabase(t *testing.T) {
	c := newTestDB(t)
	a := ioschema.New(c, 10*time.Second)

	s, err := a.Analyze(context.Background())
	require.NoError(t, err)
	assert.Empty(t, s.Tables)
	assert.NotEmpty(t, s.Hash, "empty structure still hashes")
}

func TestAnalyzeCancelled(t *testing.T) {
	c := newTestDB(t)
	seedShop(t, c)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := ioschema.New(c, 10*time.Second)
	_, err := a.Analyze(ctx)
	assert.Error(t, err)
}
