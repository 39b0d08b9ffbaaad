package iofs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/driftwatch/driftwatch/internal/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	return path
}

func TestFindFiles(t *testing.T) {
	root := t.TempDir()
	users := writeFile(t, root, "routes/users.js")
	orders := writeFile(t, root, "routes/api/orders.ts")
	writeFile(t, root, "routes/readme.md")
	extra := writeFile(t, root, "server/handlers.js")
	writeFile(t, root, "server/styles.css")

	files, err := iofs.FindFiles(
		root,
		[]string{"routes/**/*.{js,ts}"},
		[]string{"server"},
		[]string{".js", ".ts"},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{orders, users, extra}, files)
}

func TestFindFilesMissingDir(t *testing.T) {
	root := t.TempDir()
	files, err := iofs.FindFiles(
		root, nil, []string{"nope"}, []string{".js"},
	)
	require.NoError(t, err)
	assert.Empty(t, files)
}
