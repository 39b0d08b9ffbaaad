// Package lifecycle defines the orchestration contracts of the
// schema-integrity subsystem. Implementations live in internal/io*
// packages; the CLI wires them together by explicit construction, no
// process-wide singletons.
package lifecycle

import (
	"context"

	"github.com/driftwatch/driftwatch/pkg/drift"
	"github.com/driftwatch/driftwatch/pkg/forms"
	"github.com/driftwatch/driftwatch/pkg/routes"
	"github.com/driftwatch/driftwatch/pkg/schema"
)

// Analyzer produces a canonical schema snapshot from a live
// connection. Two consecutive calls against an unchanged database
// return structurally identical snapshots, which makes hash-based
// unauthorized-change detection possible.
type Analyzer interface {
	Analyze(ctx context.Context) (*schema.DatabaseSchema, error)
}

// RouteValidator recovers the route inventory from request-handling
// source files and cross-checks it against a schema. When strict mode
// is enabled it also writes handler stubs for uncovered tables.
type RouteValidator interface {
	Validate(ctx context.Context, s *schema.DatabaseSchema) (*routes.Report, error)
}

// FormValidator recovers form schemas from UI source files and
// cross-checks them against a schema.
type FormValidator interface {
	Validate(ctx context.Context, s *schema.DatabaseSchema) (*forms.Report, error)
}

// Detector drives a full detection run: analyze the live schema,
// load the baseline, diff, fold in route and form findings, persist
// a report and optionally notify and auto-fix.
type Detector interface {
	Run(ctx context.Context) (*drift.Report, error)

	// SaveBaseline captures the live schema and persists it as the
	// new baseline, returning the saved snapshot.
	SaveBaseline(ctx context.Context) (*schema.DatabaseSchema, error)
}
