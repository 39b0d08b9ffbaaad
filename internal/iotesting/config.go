// Package iotesting provides shared test utilities for integration
// tests. This is an internal package for test infrastructure only.
package iotesting

import (
	"context"
	"testing"

	"github.com/driftwatch/driftwatch/internal/iodb"
	"github.com/driftwatch/driftwatch/pkg/config"
	"github.com/driftwatch/driftwatch/pkg/connect"
)

// Config returns a configuration suitable for tests. The database is
// an in-memory sqlite instance, so tests never touch a real server.
// The project directory is a temp dir cleaned up with the test.
func Config(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Defaults()
	cfg.Database = DatabaseConfig()
	cfg.ProjectDir = t.TempDir()
	return cfg
}

// DatabaseConfig returns an in-memory sqlite database configuration.
// A single connection keeps all queries on the same memory instance.
func DatabaseConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Engine:         "sqlite",
		Database:       ":memory:",
		MaxConnections: 1,
		MinConnections: 1,
	}
}

// Connect opens an in-memory sqlite connector and closes it when the
// test finishes.
func Connect(t *testing.T) connect.Connector {
	t.Helper()

	conn := iodb.New(connect.SQLite)
	dbCfg := DatabaseConfig()
	if err := conn.Connect(context.Background(), &dbCfg); err != nil {
		t.Fatalf("cannot open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// Seed executes the given statements against the connector and fails
// the test on the first error.
func Seed(t *testing.T, conn connect.Connector, stmts ...string) {
	t.Helper()

	ctx := context.Background()
	for _, stmt := range stmts {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			t.Fatalf("cannot seed test database: %v", err)
		}
	}
}
