package ioforms_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/driftwatch/driftwatch/internal/ioforms"
	"github.com/driftwatch/driftwatch/pkg/config"
	"github.com/driftwatch/driftwatch/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersSchema() *schema.DatabaseSchema {
	return &schema.DatabaseSchema{
		Engine: "sqlite",
		Tables: []schema.Table{
			{
				Name: "users",
				Columns: []schema.Column{
					{Name: "id", Type: "integer", AutoIncrement: true},
					{Name: "email", Type: "varchar(255)"},
					{Name: "name", Type: "varchar(100)", Nullable: true},
					{Name: "age", Type: "integer", Nullable: true},
					{Name: "status", Type: "varchar(20)", Nullable: true},
					{Name: "bio", Type: "text", Nullable: true},
				},
				PrimaryKey: []string{"id"},
			},
		},
	}
}

func formProject(t *testing.T, files map[string]string) *config.Config {
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

func TestFormValidatorClean(t *testing.T) {
	cfg := formProject(t, map[string]string{
		"templates/create_user.html": `
<form id="create_user" action="/api/users" method="post">
  <input type="email" name="email" required maxlength="255">
  <input type="text" name="name" maxlength="100">
  <input type="number" name="age" min="0" max="150">
  <input type="text" name="status">
  <textarea name="bio"></textarea>
  <input type="checkbox" name="terms" required>
</form>
`,
	})

	v := ioforms.New(cfg)
	rep, err := v.Validate(context.Background(), usersSchema())
	require.NoError(t, err)

	require.Len(t, rep.Forms, 1)
	require.Len(t, rep.Results, 1)
	res := rep.Results[0]
	assert.Equal(t, "users", res.Table)
	assert.True(t, res.Clean(), "terms is a UI-only field")
	assert.Empty(t, rep.Suggestions)
}

// A select widget over a varchar column is a type mismatch; the
// interchangeability table has no text/select pairing.
func TestFormValidatorSelectMismatch(t *testing.T) {
	cfg := formProject(t, map[string]string{
		"templates/create_user.html": htmlForm,
	})

	v := ioforms.New(cfg)
	rep, err := v.Validate(context.Background(), usersSchema())
	require.NoError(t, err)

	require.Len(t, rep.Results, 1)
	res := rep.Results[0]
	require.Len(t, res.TypeMismatches, 1)
	mm := res.TypeMismatches[0]
	assert.Equal(t, "status", mm.Field)
	assert.Equal(t, "select", mm.Actual)
	assert.Equal(t, "text", mm.Expected)
}

func TestFormValidatorExtraField(t *testing.T) {
	cfg := formProject(t, map[string]string{
		"templates/create_user.html": `
<form id="create_user">
  <input type="email" name="email">
  <input type="text" name="nickname" maxlength="50">
</form>
`,
	})

	v := ioforms.New(cfg)
	rep, err := v.Validate(context.Background(), usersSchema())
	require.NoError(t, err)

	require.Len(t, rep.Results, 1)
	assert.Equal(t, []string{"nickname"}, rep.Results[0].ExtraFields)
	require.NotEmpty(t, rep.Suggestions)
	assert.Contains(t, rep.Suggestions[0].SQL, "ADD COLUMN nickname")
}

func TestFormValidatorUnmatched(t *testing.T) {
	cfg := formProject(t, map[string]string{
		"templates/search.html": `
<form id="search_filters">
  <input type="text" name="query">
</form>
`,
	})

	v := ioforms.New(cfg)
	rep, err := v.Validate(context.Background(), usersSchema())
	require.NoError(t, err)

	require.Len(t, rep.Results, 1)
	assert.Empty(t, rep.Results[0].Table)
	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], "search_filters")
}
