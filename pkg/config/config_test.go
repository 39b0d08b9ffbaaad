package config_test

import (
	"testing"
	"time"

	"github.com/driftwatch/driftwatch/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	cfg := config.Defaults()

	assert.Equal(t, "postgres", cfg.Database.Engine)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 30*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, "schema/schema.json", cfg.Drift.BaselinePath)
	assert.Equal(t, "schema_migrations", cfg.Drift.MigrationsTable)
	assert.True(t, cfg.Drift.Enabled)
	assert.False(t, cfg.Drift.AutoFix)
	assert.NotEmpty(t, cfg.Routes.Globs)
	assert.NotEmpty(t, cfg.Forms.Globs)
	assert.GreaterOrEqual(t, cfg.JobsNumber, 1)

	assert.NoError(t, cfg.Validate(), "defaults must validate")
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Engine = "sqlite"
	cfg.Database.Database = "app.db"
	cfg.MergeWithDefaults()

	assert.Equal(t, "sqlite", cfg.Database.Engine, "explicit value kept")
	assert.Equal(t, "app.db", cfg.Database.Database)
	assert.Equal(t, 10, cfg.Database.MaxConnections, "zero value filled")
	assert.Equal(t, "drift-reports", cfg.Drift.ReportDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		msg    string
		mutate func(*config.Config)
		errs   string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{
			"bad engine",
			func(c *config.Config) { c.Database.Engine = "oracle" },
			"unknown database engine",
		},
		{
			"no database",
			func(c *config.Config) { c.Database.Database = "" },
			"database name",
		},
		{
			"bad pool",
			func(c *config.Config) { c.Database.MaxConnections = 0 },
			"max_connections",
		},
		{
			"min over max",
			func(c *config.Config) { c.Database.MinConnections = 99 },
			"min_connections",
		},
		{
			"bad level",
			func(c *config.Config) { c.Logging.Level = "verbose" },
			"log level",
		},
		{
			"bad jobs",
			func(c *config.Config) { c.JobsNumber = -1 },
			"jobs_number",
		},
	}

	for _, v := range tests {
		cfg := config.Defaults()
		v.mutate(cfg)
		err := cfg.Validate()
		if v.errs == "" {
			assert.NoError(t, err, v.msg)
		} else {
			assert.ErrorContains(t, err, v.errs, v.msg)
		}
	}
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/home/u/.config/driftwatch", config.ConfigDir("/home/u"))
	assert.Equal(
		t, "/home/u/.config/driftwatch/config.yaml",
		config.ConfigFilePath("/home/u"),
	)
	assert.Equal(
		t, "/home/u/.local/share/driftwatch/logs",
		config.LogDir("/home/u"),
	)

	cfg := config.Defaults()
	cfg.ProjectDir = "/srv/app"
	assert.Equal(t, "/srv/app/schema/schema.json", cfg.BaselineFile())
	assert.Equal(t, "/srv/app/drift-reports", cfg.ReportPath())
	assert.Equal(t, "/srv/app/routes", cfg.StubPath())
}
