package drift_test

import (
	"testing"

	"github.com/driftwatch/driftwatch/pkg/drift"
	"github.com/driftwatch/driftwatch/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func baselineOrders() *schema.DatabaseSchema {
	return &schema.DatabaseSchema{
		Engine: "postgres",
		Tables: []schema.Table{
			{
				Name: "orders",
				Columns: []schema.Column{
					{Name: "id", Type: "integer", AutoIncrement: true},
					{Name: "total", Type: "decimal(10,2)"},
				},
				PrimaryKey: []string{"id"},
			},
			{
				Name: "users",
				Columns: []schema.Column{
					{Name: "id", Type: "integer", AutoIncrement: true},
					{Name: "email", Type: "varchar(255)"},
				},
				PrimaryKey: []string{"id"},
			},
		},
	}
}

func TestCompareReflexive(t *testing.T) {
	s := baselineOrders()
	drifts := drift.Compare(s, s)
	assert.Empty(t, drifts, "a schema diffed against itself yields no drifts")
}

func TestCompareMissingTable(t *testing.T) {
	b := baselineOrders()
	l := baselineOrders()
	l.Tables = l.Tables[:1] // drop users

	drifts := drift.Compare(b, l)
	require.Len(t, drifts, 1)
	assert.Equal(t, drift.MissingTable, drifts[0].Kind)
	assert.Equal(t, drift.High, drifts[0].Severity)
	assert.Equal(t, "users", drifts[0].Object)
}

func TestCompareExtraTable(t *testing.T) {
	b := baselineOrders()
	l := baselineOrders()
	l.Tables = append(l.Tables, schema.Table{
		Name:    "audit_log",
		Columns: []schema.Column{{Name: "id", Type: "integer"}},
	})

	drifts := drift.Compare(b, l)
	require.Len(t, drifts, 1)
	assert.Equal(t, drift.ExtraTable, drifts[0].Kind)
	assert.Equal(t, drift.Medium, drifts[0].Severity)
	assert.Equal(t, "audit_log", drifts[0].Object)
}

func TestCompareColumnTypeMismatch(t *testing.T) {
	b := baselineOrders()
	l := baselineOrders()
	l.Tables[0].Columns[1].Type = "numeric(12,4)"

	drifts := drift.Compare(b, l)
	require.Len(t, drifts, 1)
	assert.Equal(t, drift.ColumnTypeMismatch, drifts[0].Kind)
	assert.Equal(t, drift.High, drifts[0].Severity)
	assert.Equal(t, "orders.total", drifts[0].Object)
	assert.Equal(t, "decimal(10,2)", drifts[0].Expected)
	assert.Equal(t, "numeric(12,4)", drifts[0].Actual)
}

func TestCompareTypeCaseInsensitive(t *testing.T) {
	b := baselineOrders()
	l := baselineOrders()
	l.Tables[0].Columns[1].Type = "DECIMAL(10,2)"

	assert.Empty(t, drift.Compare(b, l))
}

func TestCompareNullability(t *testing.T) {
	tests := []struct {
		msg      string
		baseline bool
		live     bool
		severity drift.Severity
	}{
		{
			msg: "loosening to nullable is medium",
			live: true, severity: drift.Medium,
		},
		{
			msg:      "tightening to not null is high",
			baseline: true, severity: drift.High,
		},
	}

	for _, v := range tests {
		b := baselineOrders()
		l := baselineOrders()
		b.Tables[0].Columns[1].Nullable = v.baseline
		l.Tables[0].Columns[1].Nullable = v.live

		drifts := drift.Compare(b, l)
		require.Len(t, drifts, 1, v.msg)
		assert.Equal(t, drift.ConstraintMismatch, drifts[0].Kind, v.msg)
		assert.Equal(t, v.severity, drifts[0].Severity, v.msg)
	}
}

func TestCompareDefaultChange(t *testing.T) {
	b := baselineOrders()
	l := baselineOrders()
	l.Tables[0].Columns[1].Default = strPtr("0")

	drifts := drift.Compare(b, l)
	require.Len(t, drifts, 1)
	assert.Equal(t, drift.ConstraintMismatch, drifts[0].Kind)
	assert.Equal(t, drift.Low, drifts[0].Severity)
}

func TestCompareMissingAndExtraColumn(t *testing.T) {
	b := baselineOrders()
	l := baselineOrders()
	l.Tables[0].Columns = []schema.Column{
		l.Tables[0].Columns[0],
		{Name: "discount", Type: "decimal(10,2)", Nullable: true},
	}

	drifts := drift.Compare(b, l)
	require.Len(t, drifts, 2)

	byKind := map[drift.Kind]drift.Drift{}
	for _, d := range drifts {
		byKind[d.Kind] = d
	}

	missing := byKind[drift.MissingColumn]
	assert.Equal(t, drift.High, missing.Severity)
	assert.Equal(t, "orders.total", missing.Object)

	extra := byKind[drift.ExtraColumn]
	assert.Equal(t, drift.Medium, extra.Severity)
	assert.Equal(t, "orders.discount", extra.Object)
}

func TestCompareConstraints(t *testing.T) {
	b := baselineOrders()
	b.Tables[1].Constraints = []schema.Constraint{
		{Name: "users_email_key", Kind: schema.ConstraintUnique, Columns: []string{"email"}},
	}
	l := baselineOrders()

	drifts := drift.Compare(b, l)
	require.Len(t, drifts, 1)
	assert.Equal(t, drift.ConstraintMismatch, drifts[0].Kind)
	assert.Equal(t, drift.High, drifts[0].Severity, "removed constraint")
	assert.Equal(t, "users.users_email_key", drifts[0].Object)
}

func TestCompareIndexes(t *testing.T) {
	idx := schema.Index{
		TableName: "users", Name: "idx_users_email",
		Columns: []string{"email"}, Unique: true,
	}

	t.Run("removed index is medium", func(t *testing.T) {
		b := baselineOrders()
		b.Indexes = []schema.Index{idx}
		l := baselineOrders()

		drifts := drift.Compare(b, l)
		require.Len(t, drifts, 1)
		assert.Equal(t, drift.IndexMismatch, drifts[0].Kind)
		assert.Equal(t, drift.Medium, drifts[0].Severity)
	})

	t.Run("added index is low", func(t *testing.T) {
		b := baselineOrders()
		l := baselineOrders()
		l.Indexes = []schema.Index{idx}

		drifts := drift.Compare(b, l)
		require.Len(t, drifts, 1)
		assert.Equal(t, drift.IndexMismatch, drifts[0].Kind)
		assert.Equal(t, drift.Low, drifts[0].Severity)
	})

	t.Run("changed index is medium", func(t *testing.T) {
		b := baselineOrders()
		b.Indexes = []schema.Index{idx}
		l := baselineOrders()
		changed := idx
		changed.Unique = false
		l.Indexes = []schema.Index{changed}

		drifts := drift.Compare(b, l)
		require.Len(t, drifts, 1)
		assert.Equal(t, drift.Medium, drifts[0].Severity)
	})
}

func TestCompareViews(t *testing.T) {
	b := baselineOrders()
	b.Views = []schema.View{{Name: "order_totals"}}
	l := baselineOrders()

	drifts := drift.Compare(b, l)
	require.Len(t, drifts, 1)
	assert.Equal(t, drift.ViewMismatch, drifts[0].Kind)
	assert.Equal(t, drift.Medium, drifts[0].Severity)
}

// The end-to-end additive scenario: live database gains a nullable
// column. One EXTRA_COLUMN/MEDIUM drift, a schema_update suggestion,
// and no remediation SQL.
func TestCompareAdditiveNullableColumn(t *testing.T) {
	b := baselineOrders()
	l := baselineOrders()
	l.Tables[0].Columns = append(l.Tables[0].Columns,
		schema.Column{Name: "discount", Type: "decimal(10,2)", Nullable: true})

	drifts := drift.Compare(b, l)
	require.Len(t, drifts, 1)
	assert.Equal(t, drift.ExtraColumn, drifts[0].Kind)
	assert.Equal(t, drift.Medium, drifts[0].Severity)
	assert.Equal(t, "orders.discount", drifts[0].Object)

	sug := drift.Suggest(drifts[0])
	assert.Equal(t, drift.SuggestSchemaUpdate, sug.Kind)
	assert.Empty(t, sug.SQL)
}
