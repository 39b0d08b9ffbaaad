// Package ioconfig provides I/O operations for loading configuration from
// files, environment variables and flags. This is an impure package that
// handles file system and flag operations.
package ioconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/driftwatch/driftwatch/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// LoadResult contains the loaded configuration and metadata about the source.
type LoadResult struct {
	Config     *config.Config
	SourcePath string // Path to config file used, or empty if using defaults
	Source     string // "file", "defaults", or "defaults+env"
}

// Load reads configuration from a YAML file and returns a validated Config
// with source info. If configPath is empty, it searches default locations:
//   - ./driftwatch.yaml
//   - ~/.config/driftwatch/config.yaml
//
// Returns error if file is malformed or validation fails.
func Load(configPath string) (*LoadResult, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	// Precedence: flags > env vars > config file > defaults
	v.SetEnvPrefix("DRIFTWATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Defaults are set before reading the config so AutomaticEnv knows
	// which keys to check for env vars even without a config file.
	defaults := config.Defaults()
	v.SetDefault("database.engine", defaults.Database.Engine)
	v.SetDefault("database.host", defaults.Database.Host)
	v.SetDefault("database.port", defaults.Database.Port)
	v.SetDefault("database.user", defaults.Database.User)
	v.SetDefault("database.password", defaults.Database.Password)
	v.SetDefault("database.database", defaults.Database.Database)
	v.SetDefault("database.ssl_mode", defaults.Database.SSLMode)
	v.SetDefault("database.max_connections", defaults.Database.MaxConnections)
	v.SetDefault("database.min_connections", defaults.Database.MinConnections)
	v.SetDefault("database.max_conn_idle_time", defaults.Database.MaxConnIdleTime)
	v.SetDefault("database.query_timeout", defaults.Database.QueryTimeout)
	v.SetDefault("drift.enabled", defaults.Drift.Enabled)
	v.SetDefault("drift.baseline_path", defaults.Drift.BaselinePath)
	v.SetDefault("drift.report_dir", defaults.Drift.ReportDir)
	v.SetDefault("drift.auto_fix", defaults.Drift.AutoFix)
	v.SetDefault("drift.webhook_url", defaults.Drift.WebhookURL)
	v.SetDefault("drift.migrations_table", defaults.Drift.MigrationsTable)
	v.SetDefault("routes.enabled", defaults.Routes.Enabled)
	v.SetDefault("routes.globs", defaults.Routes.Globs)
	v.SetDefault("routes.strict", defaults.Routes.Strict)
	v.SetDefault("routes.stub_dir", defaults.Routes.StubDir)
	v.SetDefault("forms.enabled", defaults.Forms.Enabled)
	v.SetDefault("forms.globs", defaults.Forms.Globs)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.destination", defaults.Logging.Destination)
	v.SetDefault("jobs_number", defaults.JobsNumber)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		for _, candidate := range defaultConfigPaths() {
			if _, statErr := os.Stat(candidate); statErr == nil {
				v.SetConfigFile(candidate)
				break
			}
		}
	}

	configFileRead := false
	usedConfigPath := ""

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if configPath != "" {
				return nil, fmt.Errorf("config file not found: %s", configPath)
			}
		} else if configPath != "" || v.ConfigFileUsed() != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileRead = true
		usedConfigPath = v.ConfigFileUsed()
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.MergeWithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	source := "defaults"
	if configFileRead {
		source = "file"
	} else if hasEnvVars() {
		source = "defaults+env"
	}

	return &LoadResult{
		Config:     &cfg,
		SourcePath: usedConfigPath,
		Source:     source,
	}, nil
}

// defaultConfigPaths lists config locations in lookup order.
func defaultConfigPaths() []string {
	paths := []string{"driftwatch.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, config.ConfigFilePath(homeDir))
	}
	return paths
}

// hasEnvVars checks if any DRIFTWATCH_* environment variables are set.
func hasEnvVars() bool {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "DRIFTWATCH_") {
			return true
		}
	}
	return false
}

// BindFlags binds cobra command flags to viper and returns updated config.
// CLI flags take precedence over config file values.
func BindFlags(cmd *cobra.Command, cfg *config.Config) (*config.Config, error) {
	v := viper.New()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if v.IsSet("engine") {
		cfg.Database.Engine = v.GetString("engine")
	}
	if v.IsSet("host") {
		cfg.Database.Host = v.GetString("host")
	}
	if v.IsSet("port") {
		cfg.Database.Port = v.GetInt("port")
	}
	if v.IsSet("user") {
		cfg.Database.User = v.GetString("user")
	}
	if v.IsSet("password") {
		cfg.Database.Password = v.GetString("password")
	}
	if v.IsSet("database") {
		cfg.Database.Database = v.GetString("database")
	}
	if v.IsSet("ssl-mode") {
		cfg.Database.SSLMode = v.GetString("ssl-mode")
	}
	if v.IsSet("project") {
		cfg.ProjectDir = v.GetString("project")
	}
	if v.IsSet("jobs") {
		cfg.JobsNumber = v.GetInt("jobs")
	}

	if cfg.ProjectDir != "" {
		abs, err := filepath.Abs(cfg.ProjectDir)
		if err == nil {
			cfg.ProjectDir = abs
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration after flag binding: %w", err)
	}

	return cfg, nil
}
