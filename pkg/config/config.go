// Package config provides configuration for driftwatch.
//
// This package has no I/O dependencies; loading from files, flags and
// environment variables happens in internal/ioconfig.
//
// Precedence (highest to lowest): CLI flags > env vars
// (DRIFTWATCH_*) > driftwatch.yaml > defaults.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Config is the complete driftwatch configuration.
type Config struct {
	// Database holds connection settings for the target database.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Drift holds settings for the drift detector.
	Drift DriftConfig `mapstructure:"drift" yaml:"drift"`

	// Routes holds settings for route extraction and validation.
	Routes RoutesConfig `mapstructure:"routes" yaml:"routes"`

	// Forms holds settings for form extraction and validation.
	Forms FormsConfig `mapstructure:"forms" yaml:"forms"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// ProjectDir is the root of the scanned project. Baseline,
	// reports and stub paths are resolved relative to it.
	// Runtime-only: set from the CLI, not the config file.
	ProjectDir string `mapstructure:"-" yaml:"-"`

	// JobsNumber bounds concurrent file scanning workers.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`
}

// DatabaseConfig contains connection parameters for one of the
// supported engines. Host/Port/User/Password apply to server engines
// (postgres, mysql); Database doubles as the file path for embedded
// engines (sqlite, duckdb).
type DatabaseConfig struct {
	// Engine is one of "postgres", "mysql", "sqlite", "duckdb".
	Engine string `mapstructure:"engine" yaml:"engine"`

	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the database name, or the file path for embedded
	// engines.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode applies to postgres only.
	// Valid values: "disable", "require", "verify-ca", "verify-full".
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// MaxConnections / MinConnections bound the pool.
	MaxConnections int `mapstructure:"max_connections" yaml:"max_connections"`
	MinConnections int `mapstructure:"min_connections" yaml:"min_connections"`

	// MaxConnIdleTime releases idle connections beyond the minimum.
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time" yaml:"max_conn_idle_time"`

	// QueryTimeout bounds every introspection query and the webhook
	// POST. A timeout surfaces as the corresponding *_FAILED error.
	QueryTimeout time.Duration `mapstructure:"query_timeout" yaml:"query_timeout"`
}

// DriftConfig contains settings for the drift detector.
type DriftConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// BaselinePath is the project-relative location of the persisted
	// schema baseline.
	BaselinePath string `mapstructure:"baseline_path" yaml:"baseline_path"`

	// ReportDir receives one JSON report per run.
	ReportDir string `mapstructure:"report_dir" yaml:"report_dir"`

	// AutoFix enables applying low-severity baseline updates
	// automatically. Auto-fix never issues SQL.
	AutoFix bool `mapstructure:"auto_fix" yaml:"auto_fix"`

	// WebhookURL, when set, receives a POST summary after runs that
	// found drifts. Delivery failure is non-fatal.
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url"`

	// MigrationsTable is consulted to explain structural hash
	// mismatches before declaring a change unauthorized.
	MigrationsTable string `mapstructure:"migrations_table" yaml:"migrations_table"`
}

// RoutesConfig contains settings for route extraction.
type RoutesConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Globs select request-handling source files, relative to the
	// project directory.
	Globs []string `mapstructure:"globs" yaml:"globs"`

	// Dirs lists extra directories to scan recursively.
	Dirs []string `mapstructure:"dirs" yaml:"dirs"`

	// Strict enables stub generation for uncovered tables.
	Strict bool `mapstructure:"strict" yaml:"strict"`

	// StubDir receives generated handler stubs.
	StubDir string `mapstructure:"stub_dir" yaml:"stub_dir"`
}

// FormsConfig contains settings for form extraction.
type FormsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Globs select UI source files, relative to the project
	// directory.
	Globs []string `mapstructure:"globs" yaml:"globs"`

	// Dirs lists extra directories to scan recursively.
	Dirs []string `mapstructure:"dirs" yaml:"dirs"`
}

// LoggingConfig provides typical settings for application logs.
type LoggingConfig struct {
	// Level of logging: "error", "warn", "info", "debug".
	Level string `mapstructure:"level" yaml:"level"`
	// Format can be "json" or "text".
	Format string `mapstructure:"format" yaml:"format"`
	// Destination can be "file", "stderr" or "stdout".
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// Defaults returns a Config with sensible default values. The result
// is always valid.
func Defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Engine:          "postgres",
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Password:        "postgres",
			Database:        "app",
			SSLMode:         "disable",
			MaxConnections:  10,
			MinConnections:  2,
			MaxConnIdleTime: 5 * time.Minute,
			QueryTimeout:    30 * time.Second,
		},
		Drift: DriftConfig{
			Enabled:         true,
			BaselinePath:    "schema/schema.json",
			ReportDir:       "drift-reports",
			MigrationsTable: "schema_migrations",
		},
		Routes: RoutesConfig{
			Enabled: true,
			Globs: []string{
				"routes/**/*.{js,ts}",
				"src/routes/**/*.{js,ts}",
				"api/**/*.{js,ts}",
			},
			StubDir: "routes",
		},
		Forms: FormsConfig{
			Enabled: true,
			Globs: []string{
				"src/**/*.{html,vue}",
				"templates/**/*.html",
				"pages/**/*.{html,vue}",
			},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Destination: "stderr",
		},
		ProjectDir: ".",
		JobsNumber: runtime.NumCPU(),
	}
}

// MergeWithDefaults fills zero-valued fields from Defaults. Booleans
// are left alone: an explicit false stays false.
func (c *Config) MergeWithDefaults() {
	d := Defaults()

	if c.Database.Engine == "" {
		c.Database.Engine = d.Database.Engine
	}
	if c.Database.Host == "" {
		c.Database.Host = d.Database.Host
	}
	if c.Database.Port == 0 {
		c.Database.Port = d.Database.Port
	}
	if c.Database.User == "" {
		c.Database.User = d.Database.User
	}
	if c.Database.Password == "" {
		c.Database.Password = d.Database.Password
	}
	if c.Database.Database == "" {
		c.Database.Database = d.Database.Database
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = d.Database.SSLMode
	}
	if c.Database.MaxConnections == 0 {
		c.Database.MaxConnections = d.Database.MaxConnections
	}
	if c.Database.MinConnections == 0 {
		c.Database.MinConnections = d.Database.MinConnections
	}
	if c.Database.MaxConnIdleTime == 0 {
		c.Database.MaxConnIdleTime = d.Database.MaxConnIdleTime
	}
	if c.Database.QueryTimeout == 0 {
		c.Database.QueryTimeout = d.Database.QueryTimeout
	}

	if c.Drift.BaselinePath == "" {
		c.Drift.BaselinePath = d.Drift.BaselinePath
	}
	if c.Drift.ReportDir == "" {
		c.Drift.ReportDir = d.Drift.ReportDir
	}
	if c.Drift.MigrationsTable == "" {
		c.Drift.MigrationsTable = d.Drift.MigrationsTable
	}

	if len(c.Routes.Globs) == 0 {
		c.Routes.Globs = d.Routes.Globs
	}
	if c.Routes.StubDir == "" {
		c.Routes.StubDir = d.Routes.StubDir
	}
	if len(c.Forms.Globs) == 0 {
		c.Forms.Globs = d.Forms.Globs
	}

	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	if c.Logging.Destination == "" {
		c.Logging.Destination = d.Logging.Destination
	}

	if c.ProjectDir == "" {
		c.ProjectDir = d.ProjectDir
	}
	if c.JobsNumber == 0 {
		c.JobsNumber = d.JobsNumber
	}
}

// Validate checks field values, returning the first problem found.
func (c *Config) Validate() error {
	switch c.Database.Engine {
	case "postgres", "mysql", "sqlite", "duckdb":
	default:
		return fmt.Errorf("unknown database engine: %q", c.Database.Engine)
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name (or file path) is required")
	}
	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("max_connections must be at least 1, got %d",
			c.Database.MaxConnections)
	}
	if c.Database.MinConnections < 0 ||
		c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("min_connections must be between 0 and max_connections")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %q", c.Logging.Level)
	}

	if c.JobsNumber < 1 {
		return fmt.Errorf("jobs_number must be at least 1, got %d", c.JobsNumber)
	}

	return nil
}
