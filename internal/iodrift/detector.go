package iodrift

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/driftwatch/driftwatch/pkg/config"
	"github.com/driftwatch/driftwatch/pkg/connect"
	"github.com/driftwatch/driftwatch/pkg/drift"
	"github.com/driftwatch/driftwatch/pkg/lifecycle"
	"github.com/driftwatch/driftwatch/pkg/schema"
	"github.com/gnames/gnfmt"
	"github.com/google/uuid"
)

type detector struct {
	cfg      *config.Config
	conn     connect.Connector
	analyzer lifecycle.Analyzer
	routes   lifecycle.RouteValidator
	forms    lifecycle.FormValidator
}

// New wires a detector from its collaborators. The route and form
// validators may be nil; the corresponding findings are then skipped
// regardless of configuration.
func New(
	cfg *config.Config,
	conn connect.Connector,
	analyzer lifecycle.Analyzer,
	routesV lifecycle.RouteValidator,
	formsV lifecycle.FormValidator,
) lifecycle.Detector {
	return &detector{
		cfg:      cfg,
		conn:     conn,
		analyzer: analyzer,
		routes:   routesV,
		forms:    formsV,
	}
}

// Run executes one detection pass. A failed or cancelled run leaves
// no report and no baseline change behind.
func (d *detector) Run(ctx context.Context) (*drift.Report, error) {
	if !d.cfg.Drift.Enabled {
		return nil, DetectionError(
			fmt.Errorf("drift detection is disabled in configuration"))
	}

	live, err := d.analyzer.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	baseline, err := LoadBaseline(d.cfg.BaselineFile())
	if err != nil {
		return nil, err
	}

	rep := &drift.Report{
		ID:              uuid.NewString(),
		Timestamp:       time.Now().UTC(),
		BaselineVersion: baseline.Version,
		LiveVersion:     live.Version,
		Drifts:          drift.Compare(baseline, live),
	}

	if baseline.Hash != live.Hash {
		d.checkAuthorization(ctx, rep, baseline, live)
	}

	if err := d.foldRoutes(ctx, rep, live); err != nil {
		return nil, err
	}
	if err := d.foldForms(ctx, rep, live); err != nil {
		return nil, err
	}

	for _, dr := range rep.Drifts {
		rep.Suggestions = append(rep.Suggestions, drift.Suggest(dr))
	}

	if err := ctx.Err(); err != nil {
		return nil, DetectionError(err)
	}
	if err := d.writeReport(rep); err != nil {
		return nil, err
	}

	if len(rep.Drifts) > 0 && d.cfg.Drift.WebhookURL != "" {
		if err := notify(ctx, d.cfg, rep); err != nil {
			slog.Warn("drift notification failed",
				"url", d.cfg.Drift.WebhookURL, "error", err)
			rep.Warnings = append(rep.Warnings,
				fmt.Sprintf("webhook delivery to %s failed",
					d.cfg.Drift.WebhookURL))
		}
	}

	d.autoFix(rep, live)
	return rep, nil
}

// SaveBaseline captures the live schema and persists it as the new
// baseline.
func (d *detector) SaveBaseline(ctx context.Context) (*schema.DatabaseSchema, error) {
	live, err := d.analyzer.Analyze(ctx)
	if err != nil {
		return nil, err
	}
	if err := SaveBaseline(d.cfg.BaselineFile(), live); err != nil {
		return nil, err
	}
	slog.Info("schema baseline saved",
		"path", d.cfg.BaselineFile(), "version", live.Version)
	return live, nil
}

// checkAuthorization explains a structural hash mismatch through the
// migration history table. A mismatch with no completed migration
// between the two versions is an unauthorized change.
func (d *detector) checkAuthorization(
	ctx context.Context, rep *drift.Report,
	baseline, live *schema.DatabaseSchema,
) {
	applied, err := d.migrationsBetween(ctx, baseline.Version, live.Version)
	if err != nil {
		slog.Warn("migration history unavailable",
			"table", d.cfg.Drift.MigrationsTable, "error", err)
		rep.Warnings = append(rep.Warnings, fmt.Sprintf(
			"migration history unavailable; cannot attribute schema change (%s)",
			d.cfg.Drift.MigrationsTable))
		return
	}
	if applied > 0 {
		return
	}

	rep.Drifts = append(rep.Drifts, drift.Drift{
		Kind:     drift.UnauthorizedChange,
		Severity: drift.Critical,
		Object:   "schema",
		Expected: baseline.Hash,
		Actual:   live.Hash,
		Message: "schema hash changed with no completed migration " +
			"recorded between baseline and live versions",
	})
}

func (d *detector) migrationsBetween(
	ctx context.Context, from, to string,
) (int, error) {
	// mysql only understands ? placeholders
	ph1, ph2 := "$1", "$2"
	if d.conn.Engine() == connect.MySQL {
		ph1, ph2 = "?", "?"
	}
	query := fmt.Sprintf(
		`SELECT count(*) FROM %s
		WHERE version > %s AND version <= %s AND status = 'completed'`,
		d.cfg.Drift.MigrationsTable, ph1, ph2,
	)
	rows, err := d.conn.Query(ctx, query, from, to)
	if err != nil {
		return 0, MigrationHistoryError(d.cfg.Drift.MigrationsTable, err)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, MigrationHistoryError(d.cfg.Drift.MigrationsTable, err)
		}
	}
	return count, rows.Err()
}

// foldRoutes turns invalid routes into drifts so one report carries
// the whole picture.
func (d *detector) foldRoutes(
	ctx context.Context, rep *drift.Report, live *schema.DatabaseSchema,
) error {
	if !d.cfg.Routes.Enabled || d.routes == nil {
		return nil
	}
	routeRep, err := d.routes.Validate(ctx, live)
	if err != nil {
		return err
	}

	for _, issue := range routeRep.Result.Invalid {
		rep.Drifts = append(rep.Drifts, drift.Drift{
			Kind:     drift.RouteMismatch,
			Severity: drift.High,
			Object:   issue.Route,
			Message:  issue.Problem,
		})
	}
	rep.Warnings = append(rep.Warnings, routeRep.Result.Warnings...)
	return nil
}

// foldForms turns form findings into drifts, one per affected form
// field problem.
func (d *detector) foldForms(
	ctx context.Context, rep *drift.Report, live *schema.DatabaseSchema,
) error {
	if !d.cfg.Forms.Enabled || d.forms == nil {
		return nil
	}
	formRep, err := d.forms.Validate(ctx, live)
	if err != nil {
		return err
	}

	for _, res := range formRep.Results {
		if res.Table == "" || res.Clean() {
			continue
		}
		for _, col := range res.MissingColumns {
			rep.Drifts = append(rep.Drifts, drift.Drift{
				Kind:     drift.FormFieldMismatch,
				Severity: drift.Medium,
				Object:   fmt.Sprintf("%s.%s", res.Table, col),
				Message: fmt.Sprintf(
					"form %q has no field for required column %q",
					res.Form, col),
			})
		}
		for _, m := range res.TypeMismatches {
			rep.Drifts = append(rep.Drifts, drift.Drift{
				Kind:     drift.FormFieldMismatch,
				Severity: drift.Medium,
				Object:   fmt.Sprintf("%s.%s", res.Table, m.Column),
				Expected: m.Expected,
				Actual:   m.Actual,
				Message:  m.Message,
			})
		}
		for _, field := range res.ExtraFields {
			rep.Drifts = append(rep.Drifts, drift.Drift{
				Kind:     drift.FormFieldMismatch,
				Severity: drift.Medium,
				Object:   fmt.Sprintf("%s.%s", res.Form, field),
				Message: fmt.Sprintf(
					"form %q field %q has no column in table %q",
					res.Form, field, res.Table),
			})
		}
		for _, m := range res.ValidationMismatches {
			rep.Drifts = append(rep.Drifts, drift.Drift{
				Kind:     drift.FormFieldMismatch,
				Severity: drift.Medium,
				Object:   fmt.Sprintf("%s.%s", res.Table, m.Column),
				Expected: m.Expected,
				Actual:   m.Actual,
				Message:  m.Message,
			})
		}
	}
	rep.Suggestions = append(rep.Suggestions, formRep.Suggestions...)
	rep.Warnings = append(rep.Warnings, formRep.Warnings...)
	return nil
}

// writeReport persists one file per run; existing reports are never
// overwritten.
func (d *detector) writeReport(rep *drift.Report) error {
	dir := d.cfg.ReportPath()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ReportWriteError(dir, err)
	}

	name := fmt.Sprintf("drift-report-%s.json",
		rep.Timestamp.Format("2006-01-02-150405"))
	path := filepath.Join(dir, name)

	enc := gnfmt.GNjson{Pretty: true}
	data, err := enc.Encode(rep)
	if err != nil {
		return ReportWriteError(path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return ReportWriteError(path, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return ReportWriteError(path, err)
	}
	return nil
}

// autoFix re-saves the baseline when every drift is low severity and
// every suggestion is a plain baseline update. Auto-fix never issues
// SQL.
func (d *detector) autoFix(rep *drift.Report, live *schema.DatabaseSchema) {
	if !d.cfg.Drift.AutoFix || len(rep.Drifts) == 0 {
		return
	}
	for _, s := range rep.Suggestions {
		if !s.AutoFixable() {
			return
		}
	}

	if err := SaveBaseline(d.cfg.BaselineFile(), live); err != nil {
		slog.Warn("auto-fix baseline update failed", "error", err)
		rep.Warnings = append(rep.Warnings, "auto-fix baseline update failed")
		return
	}
	rep.Warnings = append(rep.Warnings, fmt.Sprintf(
		"baseline updated automatically to version %s", live.Version))
	slog.Info("baseline auto-updated", "version", live.Version)
}
