package ioroutes_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/driftwatch/driftwatch/internal/ioroutes"
	"github.com/driftwatch/driftwatch/pkg/config"
	"github.com/driftwatch/driftwatch/pkg/routes"
	"github.com/driftwatch/driftwatch/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func widgetSchema() *schema.DatabaseSchema {
	return &schema.DatabaseSchema{
		Engine: "sqlite",
		Tables: []schema.Table{
			{
				Name: "widgets",
				Columns: []schema.Column{
					{Name: "id", Type: "integer", AutoIncrement: true},
					{Name: "name", Type: "varchar(255)"},
				},
				PrimaryKey: []string{"id"},
			},
		},
	}
}

func projectWith(t *testing.T, files map[string]string) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.ProjectDir = t.TempDir()
	for rel, content := range files {
		path := filepath.Join(cfg.ProjectDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return cfg
}

func TestValidatorValid(t *testing.T) {
	cfg := projectWith(t, map[string]string{
		"routes/widgets.js": expressSrc,
	})

	v := ioroutes.New(cfg)
	rep, err := v.Validate(context.Background(), widgetSchema())
	require.NoError(t, err)

	assert.Len(t, rep.Result.Valid, 4, "widget resolves to widgets via plural")
	assert.Empty(t, rep.Result.Invalid)
	assert.Empty(t, rep.Skipped)

	cov := rep.Coverage["widgets"]
	assert.True(t, cov[routes.ActionList])
	assert.True(t, cov[routes.ActionGet])
	assert.True(t, cov[routes.ActionCreate])
	assert.True(t, cov[routes.ActionDelete])
	assert.False(t, cov[routes.ActionUpdate])

	// the coverage gap is closed with a synthesized route even
	// without strict mode; only file writes are gated on it
	require.Len(t, rep.Routes, 5)
	var synthesized bool
	for _, r := range rep.Routes {
		if r.Method == routes.PUT && r.Path == "/api/widgets/:id" {
			synthesized = true
		}
	}
	assert.True(t, synthesized)
	assert.Empty(t, rep.Stubs, "no files outside strict mode")
}

func TestValidatorUnknownTable(t *testing.T) {
	cfg := projectWith(t, map[string]string{
		"routes/gadgets.js": `
app.get('/api/gadgets', async (req, res) => {
  res.json(await prisma.gadget.findMany());
});
`,
	})

	v := ioroutes.New(cfg)
	rep, err := v.Validate(context.Background(), widgetSchema())
	require.NoError(t, err)

	require.Len(t, rep.Result.Invalid, 1)
	assert.Contains(t, rep.Result.Invalid[0].Problem, "gadget")
}

func TestValidatorStrictWritesStubs(t *testing.T) {
	// handlers live under src/routes so the stub dir starts empty
	cfg := projectWith(t, map[string]string{
		"src/routes/widgets.js": expressSrc,
	})
	cfg.Routes.Strict = true

	v := ioroutes.New(cfg)
	rep, err := v.Validate(context.Background(), widgetSchema())
	require.NoError(t, err)

	require.Len(t, rep.Stubs, 1)
	data, err := os.ReadFile(rep.Stubs[0])
	require.NoError(t, err)
	stub := string(data)
	assert.Contains(t, stub, "router.put('/api/widgets/:id'")
	assert.NotContains(t, stub, "router.post", "covered actions are omitted")

	// the handler implements the operation and validates input with
	// rules derived from the column types
	assert.Contains(t, stub, "UPDATE widgets SET name = ?")
	assert.Contains(t, stub,
		"name: { type: 'text', required: true, maxLength: 255 }")
	assert.Contains(t, stub, "validate(req.body)")
	assert.NotContains(t, stub, "not implemented")

	// synthesized routes close the coverage gap in the report
	var synthesized bool
	for _, r := range rep.Routes {
		if r.Method == routes.PUT && r.Path == "/api/widgets/:id" {
			synthesized = true
		}
	}
	assert.True(t, synthesized)

	// second pass never rewrites
	before, err := os.ReadFile(rep.Stubs[0])
	require.NoError(t, err)
	rep2, err := v.Validate(context.Background(), widgetSchema())
	require.NoError(t, err)
	assert.Empty(t, rep2.Stubs, "existing stub files are left alone")
	after, err := os.ReadFile(rep.Stubs[0])
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestStubFileName(t *testing.T) {
	assert.Equal(t, "widgets.js", ioroutes.StubFileName("widget"))
	assert.Equal(t, "order-items.js", ioroutes.StubFileName("order_item"))
}
