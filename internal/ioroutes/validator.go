package ioroutes

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/driftwatch/driftwatch/internal/iofs"
	"github.com/driftwatch/driftwatch/pkg/config"
	"github.com/driftwatch/driftwatch/pkg/lifecycle"
	"github.com/driftwatch/driftwatch/pkg/routes"
	"github.com/driftwatch/driftwatch/pkg/schema"
	"golang.org/x/sync/errgroup"
)

var sourceExts = []string{".js", ".ts"}

type validator struct {
	cfg *config.Config
}

// New creates a route validator driven by the routes section of the
// configuration.
func New(cfg *config.Config) lifecycle.RouteValidator {
	return &validator{cfg: cfg}
}

// Validate scans handler sources, recovers the route inventory and
// cross-checks it against the schema. Unreadable files are skipped
// with a warning; strict mode writes stubs for uncovered tables.
func (v *validator) Validate(
	ctx context.Context, s *schema.DatabaseSchema,
) (*routes.Report, error) {
	files, err := iofs.FindFiles(
		v.cfg.ProjectDir, v.cfg.Routes.Globs, v.cfg.Routes.Dirs, sourceExts,
	)
	if err != nil {
		return nil, RouteScanError(v.cfg.ProjectDir, err)
	}

	byFile, skipped, err := v.scan(ctx, files)
	if err != nil {
		return nil, RouteValidationError(err)
	}

	rep := &routes.Report{Skipped: skipped}
	for _, f := range files {
		rep.Routes = append(rep.Routes, byFile[f]...)
	}
	for _, f := range skipped {
		rep.Result.Warnings = append(rep.Result.Warnings,
			fmt.Sprintf("skipped unreadable source file %s", f))
	}

	res := routes.Validate(rep.Routes, s)
	rep.Result.Valid = res.Valid
	rep.Result.Invalid = res.Invalid
	rep.Result.Warnings = append(rep.Result.Warnings, res.Warnings...)
	rep.Coverage = routes.BuildCoverage(rep.Routes, s)

	// uncovered tables always get synthesized routes in the report;
	// strict mode additionally writes handler files for them
	for _, table := range rep.Coverage.Uncovered() {
		rep.Routes = append(rep.Routes,
			routes.MissingRoutes(table, rep.Coverage.Missing(table))...)
	}

	if v.cfg.Routes.Strict {
		if err := v.writeStubs(rep, s); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

// scan extracts routes from files concurrently, bounded by the
// configured job count. Read failures skip the file; they never abort
// the pass.
func (v *validator) scan(
	ctx context.Context, files []string,
) (map[string][]routes.ApiRoute, []string, error) {
	var mu sync.Mutex
	byFile := map[string][]routes.ApiRoute{}
	var skipped []string

	bar := newProgressBar(len(files), "Scanning routes: ")
	defer bar.Finish()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.cfg.JobsNumber)

	for _, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			bar.Increment()

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				skipped = append(skipped, file)
				return nil
			}
			byFile[file] = ExtractRoutes(string(data), file)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	sort.Strings(skipped)
	return byFile, skipped, nil
}

// writeStubs writes a handler file for every table lacking full CRUD
// coverage. Coverage tables come from the schema, so the lookup never
// misses.
func (v *validator) writeStubs(rep *routes.Report, s *schema.DatabaseSchema) error {
	for _, name := range rep.Coverage.Uncovered() {
		table := s.Table(name)
		if table == nil {
			continue
		}

		path, written, err := WriteStub(
			v.cfg.StubPath(), table, rep.Coverage.Missing(name),
		)
		if err != nil {
			return err
		}
		if written {
			rep.Stubs = append(rep.Stubs, path)
		}
	}
	return nil
}
