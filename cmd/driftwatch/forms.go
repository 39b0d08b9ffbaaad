package main

import (
	"context"
	"fmt"

	"github.com/driftwatch/driftwatch/internal/iodb"
	"github.com/driftwatch/driftwatch/internal/ioforms"
	"github.com/driftwatch/driftwatch/internal/ioschema"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func getFormsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Validate UI forms against the live schema",
		Long: `Recover form schemas from HTML and Vue sources and cross-check
their fields against the live database schema.

This command:
  1. Scans configured globs and directories for UI sources
  2. Extracts forms, fields, types and validation rules
  3. Matches each form to a table and validates field by field
  4. Suggests ALTER TABLE statements for fields with no column

Suggested migrations are printed only; they are never executed.

Examples:
  driftwatch forms
  driftwatch forms --project ./frontend`,
		RunE: runForms,
	}

	return cmd
}

func runForms(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := getConfig()

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

	rep, err := ioforms.New(cfg).Validate(ctx, live)
	if err != nil {
		return err
	}

	fmt.Printf("Discovered %s form(s)\n",
		humanize.Comma(int64(len(rep.Forms))))

	var unclean int
	for i := range rep.Results {
		res := &rep.Results[i]
		if res.Table == "" || res.Clean() {
			continue
		}
		unclean++
		fmt.Printf("\n  form %q (table %q):\n", res.Form, res.Table)
		for _, col := range res.MissingColumns {
			fmt.Printf("    ✗ no field for required column %q\n", col)
		}
		for _, m := range res.TypeMismatches {
			fmt.Printf("    ✗ %s\n", m.Message)
		}
		for _, f := range res.ExtraFields {
			fmt.Printf("    ✗ field %q has no column\n", f)
		}
		for _, m := range res.ValidationMismatches {
			fmt.Printf("    ⚠ %s\n", m.Message)
		}
	}
	if unclean == 0 {
		fmt.Println("✓ All matched forms agree with the schema")
	}

	if len(rep.Suggestions) > 0 {
		fmt.Println("\nSuggested migrations (not executed):")
		for _, s := range rep.Suggestions {
			fmt.Printf("  %s\n", s.SQL)
		}
	}

	for _, w := range rep.Warnings {
		fmt.Printf("  ⚠ %s\n", w)
	}

	if unclean > 0 {
		return fmt.Errorf("form validation failed")
	}
	return nil
}
