package iodrift_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/driftwatch/driftwatch/internal/iodrift"
	"github.com/driftwatch/driftwatch/internal/iotesting"
	"github.com/driftwatch/driftwatch/pkg/config"
	"github.com/driftwatch/driftwatch/pkg/drift"
	"github.com/driftwatch/driftwatch/pkg/schema"
	"github.com/gnames/gnfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedAnalyzer serves a prepared snapshot instead of reading a
// database.
type fixedAnalyzer struct {
	s *schema.DatabaseSchema
}

func (f *fixedAnalyzer) Analyze(
	_ context.Context,
) (*schema.DatabaseSchema, error) {
	cp := *f.s
	return &cp, nil
}

func strPtr(s string) *string { return &s }

func snapshot(defaultStatus string) *schema.DatabaseSchema {
	s := &schema.DatabaseSchema{
		Engine:     "sqlite",
		CapturedAt: time.Now().UTC(),
		Tables: []schema.Table{
			{
				Name: "orders",
				Columns: []schema.Column{
					{Name: "id", Type: "integer", AutoIncrement: true},
					{Name: "status", Type: "varchar(20)",
						Default: strPtr(defaultStatus)},
					{Name: "total", Type: "real"},
				},
				PrimaryKey: []string{"id"},
			},
		},
	}
	s.Stamp()
	return s
}

func detectorConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := iotesting.Config(t)
	cfg.Routes.Enabled = false
	cfg.Forms.Enabled = false
	return cfg
}

func TestBaselineRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema", "schema.json")
	want := snapshot("pending")

	require.NoError(t, iodrift.SaveBaseline(path, want))
	got, err := iodrift.LoadBaseline(path)
	require.NoError(t, err)

	assert.Equal(t, want.Hash, got.Hash)
	assert.Equal(t, want.Version, got.Version)
	assert.Equal(t, want.Tables, got.Tables)
}

func TestLoadBaselineMissing(t *testing.T) {
	_, err := iodrift.LoadBaseline(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestRunWithoutBaseline(t *testing.T) {
	cfg := detectorConfig(t)
	d := iodrift.New(cfg, iotesting.Connect(t), &fixedAnalyzer{s: snapshot("a")}, nil, nil)

	_, err := d.Run(context.Background())
	assert.Error(t, err, "missing baseline aborts the run")

	entries, readErr := os.ReadDir(cfg.ReportPath())
	if readErr == nil {
		assert.Empty(t, entries, "failed run writes no report")
	}
}

func TestRunNoDrift(t *testing.T) {
	cfg := detectorConfig(t)
	live := snapshot("pending")
	require.NoError(t, iodrift.SaveBaseline(cfg.BaselineFile(), live))

	d := iodrift.New(cfg, iotesting.Connect(t), &fixedAnalyzer{s: live}, nil, nil)
	rep, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, rep.Drifts)
	assert.Equal(t, rep.BaselineVersion, rep.LiveVersion)
	assert.NotEmpty(t, rep.ID)

	entries, err := os.ReadDir(cfg.ReportPath())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t,
		`^drift-report-\d{4}-\d{2}-\d{2}-\d{6}\.json$`, entries[0].Name())
}

func TestRunDisabled(t *testing.T) {
	cfg := detectorConfig(t)
	cfg.Drift.Enabled = false
	require.NoError(t,
		iodrift.SaveBaseline(cfg.BaselineFile(), snapshot("pending")))

	d := iodrift.New(
		cfg, iotesting.Connect(t), &fixedAnalyzer{s: snapshot("pending")},
		nil, nil,
	)
	_, err := d.Run(context.Background())
	require.Error(t, err)

	entries, readErr := os.ReadDir(cfg.ReportPath())
	if readErr == nil {
		assert.Empty(t, entries, "disabled detector writes nothing")
	}
}

func TestRunDetectsDriftAndNotifies(t *testing.T) {
	var payload []byte
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			payload, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}))
	defer srv.Close()

	cfg := detectorConfig(t)
	cfg.Drift.WebhookURL = srv.URL
	require.NoError(t,
		iodrift.SaveBaseline(cfg.BaselineFile(), snapshot("pending")))

	d := iodrift.New(
		cfg, iotesting.Connect(t), &fixedAnalyzer{s: snapshot("shipped")}, nil, nil,
	)
	rep, err := d.Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, rep.Drifts)
	assert.Equal(t, drift.Low, rep.Drifts[0].Severity, "default change is low")

	var note struct {
		Event    string `json:"event"`
		ReportID string `json:"reportId"`
	}
	require.NoError(t, gnfmt.GNjson{}.Decode(payload, &note))
	assert.Equal(t, "drift_detected", note.Event)
	assert.Equal(t, rep.ID, note.ReportID)

	// migration table does not exist, so attribution only warns
	var sawWarning bool
	for _, w := range rep.Warnings {
		if strings.Contains(w, "migration history unavailable") {
			sawWarning = true
		}
	}
	assert.True(t, sawWarning)
}

func TestRunUnauthorizedChange(t *testing.T) {
	cfg := detectorConfig(t)
	conn := iotesting.Connect(t)
	iotesting.Seed(t, conn, `
		CREATE TABLE schema_migrations (
			version TEXT PRIMARY KEY,
			status TEXT NOT NULL
		)`)

	require.NoError(t,
		iodrift.SaveBaseline(cfg.BaselineFile(), snapshot("pending")))

	d := iodrift.New(
		cfg, conn, &fixedAnalyzer{s: snapshot("shipped")}, nil, nil,
	)
	rep, err := d.Run(context.Background())
	require.NoError(t, err)

	var unauthorized *drift.Drift
	for i := range rep.Drifts {
		if rep.Drifts[i].Kind == drift.UnauthorizedChange {
			unauthorized = &rep.Drifts[i]
		}
	}
	require.NotNil(t, unauthorized, "empty history means unauthorized")
	assert.Equal(t, drift.Critical, unauthorized.Severity)
}

func TestRunAutoFix(t *testing.T) {
	cfg := detectorConfig(t)
	cfg.Drift.AutoFix = true

	// no migration table; the hash change is only warned about and
	// the default change remains the sole, fixable drift
	baseline := snapshot("pending")
	live := snapshot("shipped")
	require.NoError(t, iodrift.SaveBaseline(cfg.BaselineFile(), baseline))

	d := iodrift.New(cfg, iotesting.Connect(t), &fixedAnalyzer{s: live}, nil, nil)
	rep, err := d.Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, rep.Drifts)
	for _, s := range rep.Suggestions {
		assert.True(t, s.AutoFixable(), "default change only")
	}

	updated, err := iodrift.LoadBaseline(cfg.BaselineFile())
	require.NoError(t, err)
	assert.Equal(t, live.Version, updated.Version,
		"baseline follows the accepted change")

	var sawUpdate bool
	for _, w := range rep.Warnings {
		if strings.Contains(w, "baseline updated automatically") {
			sawUpdate = true
		}
	}
	assert.True(t, sawUpdate)
}

func TestSaveBaselineCommand(t *testing.T) {
	cfg := detectorConfig(t)
	live := snapshot("pending")

	d := iodrift.New(cfg, iotesting.Connect(t), &fixedAnalyzer{s: live}, nil, nil)
	saved, err := d.SaveBaseline(context.Background())
	require.NoError(t, err)
	assert.Equal(t, live.Version, saved.Version)

	loaded, err := iodrift.LoadBaseline(cfg.BaselineFile())
	require.NoError(t, err)
	assert.Equal(t, live.Hash, loaded.Hash)
}

func TestRunCancelled(t *testing.T) {
	cfg := detectorConfig(t)
	require.NoError(t,
		iodrift.SaveBaseline(cfg.BaselineFile(), snapshot("pending")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := iodrift.New(
		cfg, iotesting.Connect(t), &fixedAnalyzer{s: snapshot("pending")}, nil, nil,
	)
	_, err := d.Run(ctx)
	assert.Error(t, err)

	entries, readErr := os.ReadDir(cfg.ReportPath())
	if readErr == nil {
		assert.Empty(t, entries, "cancelled run writes no report")
	}
}
