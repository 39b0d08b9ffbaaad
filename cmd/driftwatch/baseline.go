package main

import (
	"context"
	"fmt"

	"github.com/driftwatch/driftwatch/internal/iodb"
	"github.com/driftwatch/driftwatch/internal/iodrift"
	"github.com/driftwatch/driftwatch/internal/iofs"
	"github.com/driftwatch/driftwatch/internal/ioschema"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func getBaselineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Capture the current schema as the trusted baseline",
		Long: `Capture a versioned snapshot of the live database schema and save
it as the baseline for later drift detection.

This command:
  1. Connects to the database using configuration settings
  2. Introspects tables, columns, constraints, indexes and views
  3. Computes a structural hash and a deterministic version
  4. Writes the snapshot to the configured baseline path

Examples:
  driftwatch baseline
  driftwatch baseline --engine sqlite --database ./app.db
  driftwatch baseline --config custom.yaml`,
		RunE: runBaseline,
	}

	return cmd
}

func runBaseline(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := getConfig()

	if err := iofs.EnsureProjectDirs(cfg); err != nil {
		return err
	}

	conn, err := iodb.NewFromConfig(&cfg.Database)
	if err != nil {
		return err
	}
	if err := conn.Connect(ctx, &cfg.Database); err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Connected to %s database: %s\n",
		cfg.Database.Engine, cfg.Database.Database)

	analyzer := ioschema.New(conn, cfg.Database.QueryTimeout)
	det := iodrift.New(cfg, conn, analyzer, nil, nil)

	saved, err := det.SaveBaseline(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\n✓ Baseline saved: %s\n", cfg.BaselineFile())
	fmt.Printf("  version: %s\n", saved.Version)
	fmt.Printf("  tables:  %s\n", humanize.Comma(int64(len(saved.Tables))))
	fmt.Println("\nNext steps:")
	fmt.Println("  - Run 'driftwatch detect' after schema changes")

	return nil
}
