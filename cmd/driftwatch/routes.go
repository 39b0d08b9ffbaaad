package main

import (
	"context"
	"fmt"

	"github.com/driftwatch/driftwatch/internal/iodb"
	"github.com/driftwatch/driftwatch/internal/ioroutes"
	"github.com/driftwatch/driftwatch/internal/ioschema"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	strictRoutes bool
)

func getRoutesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Validate route handlers against the live schema",
		Long: `Recover the route inventory from request-handling source files and
cross-check it against the live database schema.

This command:
  1. Scans configured globs and directories for route sources
  2. Extracts routes, inferred table operations and status codes
  3. Validates every operation against the live schema
  4. Reports CRUD coverage per table

Use --strict to also write handler stubs for tables with incomplete
coverage. Existing files are never rewritten.

Examples:
  driftwatch routes
  driftwatch routes --strict
  driftwatch routes --project ./backend`,
		RunE: runRoutes,
	}

	cmd.Flags().BoolVar(&strictRoutes, "strict", false,
		"write handler stubs for tables with incomplete CRUD coverage")

	return cmd
}

func runRoutes(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := getConfig()
	if strictRoutes {
		cfg.Routes.Strict = true
	}

	conn, err := iodb.NewFromConfig(&cfg.Database)
	if err != nil {
		return err
	}
	if err := conn.Connect(ctx, &cfg.Database); err != nil {
		return err
	}
	defer conn.Close()

	live, err := ioschema.New(conn, cfg.Database.QueryTimeout).Analyze(ctx)
	if err != nil {
		return err
	}

	rep, err := ioroutes.New(cfg).Validate(ctx, live)
	if err != nil {
		return err
	}

	fmt.Printf("Discovered %s route(s): %d valid, %d invalid\n",
		humanize.Comma(int64(len(rep.Routes))),
		len(rep.Result.Valid), len(rep.Result.Invalid))

	for _, issue := range rep.Result.Invalid {
		fmt.Printf("  ✗ %s: %s\n", issue.Route, issue.Problem)
	}
	for _, w := range rep.Result.Warnings {
		fmt.Printf("  ⚠ %s\n", w)
	}

	if uncovered := rep.Coverage.Uncovered(); len(uncovered) > 0 {
		fmt.Println("\nIncomplete CRUD coverage:")
		for _, table := range uncovered {
			fmt.Printf("  %s: missing %v\n",
				table, rep.Coverage.Missing(table))
		}
	}

	if len(rep.Stubs) > 0 {
		fmt.Println("\nStubs written:")
		for _, s := range rep.Stubs {
			fmt.Printf("  %s\n", s)
		}
	}

	if len(rep.Result.Invalid) > 0 {
		return fmt.Errorf("route validation failed")
	}
	return nil
}
