package iofs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/driftwatch/driftwatch/internal/iofs"
	"github.com/driftwatch/driftwatch/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirs(t *testing.T) {
	home := t.TempDir()
	err := iofs.EnsureDirs(home)
	require.NoError(t, err)

	for _, dir := range []string{config.ConfigDir(home), config.LogDir(home)} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), dir)
	}

	// idempotent
	assert.NoError(t, iofs.EnsureDirs(home))
}

func TestEnsureProjectDirs(t *testing.T) {
	cfg := config.Defaults()
	cfg.ProjectDir = t.TempDir()
	require.NoError(t, iofs.EnsureProjectDirs(cfg))

	info, err := os.Stat(cfg.ReportPath())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	info, err = os.Stat(filepath.Dir(cfg.BaselineFile()))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureConfigFile(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, iofs.EnsureDirs(home))
	require.NoError(t, iofs.EnsureConfigFile(home))

	path := config.ConfigFilePath(home)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "engine: postgres")

	// existing file is left untouched
	require.NoError(t, os.WriteFile(path, []byte("custom: true\n"), 0644))
	require.NoError(t, iofs.EnsureConfigFile(home))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom: true\n", string(data))
}
