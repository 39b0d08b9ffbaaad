package ioforms

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/driftwatch/driftwatch/internal/iofs"
	"github.com/driftwatch/driftwatch/pkg/config"
	"github.com/driftwatch/driftwatch/pkg/forms"
	"github.com/driftwatch/driftwatch/pkg/lifecycle"
	"github.com/driftwatch/driftwatch/pkg/schema"
	"golang.org/x/sync/errgroup"
)

var templateExts = []string{".html", ".vue"}

type validator struct {
	cfg *config.Config
}

// New creates a form validator driven by the forms section of the
// configuration.
func New(cfg *config.Config) lifecycle.FormValidator {
	return &validator{cfg: cfg}
}

// Validate scans UI templates, recovers form schemas and cross-checks
// every form against the database schema. Unparsable files are
// skipped with a warning.
func (v *validator) Validate(
	ctx context.Context, s *schema.DatabaseSchema,
) (*forms.Report, error) {
	files, err := iofs.FindFiles(
		v.cfg.ProjectDir, v.cfg.Forms.Globs, v.cfg.Forms.Dirs, templateExts,
	)
	if err != nil {
		return nil, FormScanError(v.cfg.ProjectDir, err)
	}

	byFile, skipped, err := v.scan(ctx, files)
	if err != nil {
		return nil, FormScanError(v.cfg.ProjectDir, err)
	}

	rep := &forms.Report{Skipped: skipped}
	for _, f := range files {
		rep.Forms = append(rep.Forms, byFile[f]...)
	}
	for _, f := range skipped {
		rep.Warnings = append(rep.Warnings,
			fmt.Sprintf("skipped unparsable template %s", f))
	}

	for i := range rep.Forms {
		form := &rep.Forms[i]
		res := forms.Validate(form, s)
		rep.Results = append(rep.Results, res)

		if res.Table == "" {
			rep.Warnings = append(rep.Warnings,
				fmt.Sprintf("form %q matches no table", form.Name))
			continue
		}
		if !res.Clean() {
			rep.Suggestions = append(rep.Suggestions,
				forms.SuggestMigrations(form, res)...)
		}
	}
	return rep, nil
}

func (v *validator) scan(
	ctx context.Context, files []string,
) (map[string][]forms.FormSchema, []string, error) {
	var mu sync.Mutex
	byFile := map[string][]forms.FormSchema{}
	var skipped []string

	bar := newProgressBar(len(files), "Scanning forms: ")
	defer bar.Finish()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.cfg.JobsNumber)

	for _, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, readErr := os.ReadFile(file)
			bar.Increment()
			var ff []forms.FormSchema
			var parseErr error
			if readErr == nil {
				ff, parseErr = ExtractForms(string(data), file)
			}

			mu.Lock()
			defer mu.Unlock()
			if readErr != nil || parseErr != nil {
				skipped = append(skipped, file)
				return nil
			}
			byFile[file] = ff
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	sort.Strings(skipped)
	return byFile, skipped, nil
}
