package drift_test

import (
	"testing"

	"github.com/driftwatch/driftwatch/pkg/drift"
	"github.com/stretchr/testify/assert"
)

func TestSuggestMissingColumn(t *testing.T) {
	sug := drift.Suggest(drift.Drift{
		Kind:     drift.MissingColumn,
		Severity: drift.High,
		Object:   "orders.total",
		Expected: "decimal(10,2)",
	})

	assert.Equal(t, drift.SuggestMigration, sug.Kind)
	assert.Equal(t, "ALTER TABLE orders ADD COLUMN total decimal(10,2);", sug.SQL)
	assert.False(t, sug.AutoFixable())
}

func TestSuggestColumnTypeMismatch(t *testing.T) {
	sug := drift.Suggest(drift.Drift{
		Kind:     drift.ColumnTypeMismatch,
		Severity: drift.High,
		Object:   "orders.total",
		Expected: "decimal(10,2)",
		Actual:   "numeric(12,4)",
	})

	assert.Equal(t, drift.SuggestMigration, sug.Kind)
	assert.Equal(t, "ALTER TABLE orders ALTER COLUMN total TYPE decimal(10,2);", sug.SQL)
}

func TestSuggestNullability(t *testing.T) {
	sug := drift.Suggest(drift.Drift{
		Kind:     drift.ConstraintMismatch,
		Severity: drift.High,
		Object:   "users.email",
		Expected: "NOT NULL",
		Actual:   "NULL",
	})

	assert.Equal(t, drift.SuggestMigration, sug.Kind)
	assert.Equal(t, "ALTER TABLE users ALTER COLUMN email SET NOT NULL;", sug.SQL)
	assert.NotEmpty(t, sug.Impact)
}

func TestSuggestDefaultChangeAutoFixable(t *testing.T) {
	sug := drift.Suggest(drift.Drift{
		Kind:     drift.ConstraintMismatch,
		Severity: drift.Low,
		Object:   "orders.total",
		Expected: "<none>",
		Actual:   "0",
	})

	assert.Equal(t, drift.SuggestSchemaUpdate, sug.Kind)
	assert.True(t, sug.AutoFixable())
	assert.Empty(t, sug.SQL, "auto-fixable suggestions never carry SQL")
}

func TestSuggestUnauthorizedChange(t *testing.T) {
	sug := drift.Suggest(drift.Drift{
		Kind:     drift.UnauthorizedChange,
		Severity: drift.Critical,
		Object:   "schema",
	})

	assert.Equal(t, drift.SuggestCodeChange, sug.Kind)
	assert.False(t, sug.AutoFixable())
}

func TestReportSummary(t *testing.T) {
	r := drift.Report{
		Drifts: []drift.Drift{
			{Severity: drift.Critical},
			{Severity: drift.High},
			{Severity: drift.High},
			{Severity: drift.Medium},
			{Severity: drift.Low},
		},
	}

	s := r.Summary()
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 1, s.Critical)
	assert.Equal(t, 2, s.High)
	assert.Equal(t, 1, s.Medium)
	assert.Equal(t, 1, s.Low)
}
