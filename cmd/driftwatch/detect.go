package main

import (
	"context"
	"fmt"

	"github.com/driftwatch/driftwatch/internal/iodb"
	"github.com/driftwatch/driftwatch/internal/iodrift"
	"github.com/driftwatch/driftwatch/internal/ioforms"
	"github.com/driftwatch/driftwatch/internal/iofs"
	"github.com/driftwatch/driftwatch/internal/ioroutes"
	"github.com/driftwatch/driftwatch/internal/ioschema"
	"github.com/driftwatch/driftwatch/pkg/drift"
	"github.com/driftwatch/driftwatch/pkg/lifecycle"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	autoFixDetect bool
)

func getDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect schema drift against the baseline",
		Long: `Diff the live database schema against the saved baseline and
report every structural drift with a suggested remediation.

This command:
  1. Introspects the live schema and loads the baseline
  2. Diffs tables, columns, constraints, indexes and views
  3. Attributes structural changes through the migration history;
     an unexplained change is reported as critical
  4. Folds in route and form validation findings when enabled
  5. Writes a timestamped report and optionally notifies a webhook

A run with critical drifts exits with a non-zero status, so the
command can gate CI pipelines.

Use --auto-fix to accept low-risk changes (such as column defaults)
into the baseline automatically. Auto-fix never issues SQL.

Examples:
  driftwatch detect
  driftwatch detect --auto-fix
  driftwatch detect --project ./backend --engine mysql`,
		RunE: runDetect,
	}

	cmd.Flags().BoolVar(&autoFixDetect, "auto-fix", false,
		"update the baseline automatically when every drift is low risk")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := getConfig()
	if autoFixDetect {
		cfg.Drift.AutoFix = true
	}

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

	var routesV lifecycle.RouteValidator
	var formsV lifecycle.FormValidator
	if cfg.Routes.Enabled {
		routesV = ioroutes.New(cfg)
	}
	if cfg.Forms.Enabled {
		formsV = ioforms.New(cfg)
	}

	det := iodrift.New(cfg, conn, analyzer, routesV, formsV)
	rep, err := det.Run(ctx)
	if err != nil {
		return err
	}

	printReport(rep)

	if rep.Summary().Critical > 0 {
		return fmt.Errorf("critical schema drift detected")
	}
	return nil
}

func printReport(rep *drift.Report) {
	sum := rep.Summary()

	if sum.Total == 0 {
		fmt.Println("\n✓ No drift detected")
	} else {
		fmt.Printf("\nDetected %s drift(s):\n",
			humanize.Comma(int64(sum.Total)))
		if sum.Critical > 0 {
			fmt.Printf("  critical: %d\n", sum.Critical)
		}
		if sum.High > 0 {
			fmt.Printf("  high:     %d\n", sum.High)
		}
		if sum.Medium > 0 {
			fmt.Printf("  medium:   %d\n", sum.Medium)
		}
		if sum.Low > 0 {
			fmt.Printf("  low:      %d\n", sum.Low)
		}

		fmt.Println()
		for _, d := range rep.Drifts {
			fmt.Printf("  [%s] %s: %s\n", d.Severity, d.Object, d.Message)
		}
	}

	if len(rep.Suggestions) > 0 {
		fmt.Println("\nSuggestions:")
		for _, s := range rep.Suggestions {
			fmt.Printf("  - %s\n", s.Description)
			if s.SQL != "" {
				fmt.Printf("      %s\n", s.SQL)
			}
		}
	}

	if len(rep.Warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range rep.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nBaseline version: %s\n", rep.BaselineVersion)
	fmt.Printf("Live version:     %s\n", rep.LiveVersion)
}
