package main

import (
	"fmt"
	"os"

	"github.com/driftwatch/driftwatch/internal/ioconfig"
	"github.com/driftwatch/driftwatch/internal/iofs"
	"github.com/driftwatch/driftwatch/internal/iologger"
	"github.com/driftwatch/driftwatch/pkg/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "driftwatch",
		Short: "driftwatch detects schema drift across database engines",
		Long: `driftwatch captures a versioned baseline of a database schema and
detects structural drift on later runs. Unexplained changes are
cross-checked against the migration history; route handlers and UI
forms are validated against the live schema.

The tool provides four commands:
  - baseline: capture the current schema as the trusted baseline
  - detect:   diff the live schema against the baseline
  - routes:   validate route handlers against the live schema
  - forms:    validate UI forms against the live schema

Configuration precedence (highest to lowest):
  1. CLI flags (--host, --port, etc.)
  2. Environment variables (DRIFTWATCH_*)
  3. Config file (driftwatch.yaml)
  4. Built-in defaults

Environment Variables:
  All configuration can be set via DRIFTWATCH_* environment variables.
  Nested fields use underscores (database.host → DRIFTWATCH_DATABASE_HOST).

  Examples:
    DRIFTWATCH_DATABASE_ENGINE      postgres, mysql, sqlite or duckdb
    DRIFTWATCH_DATABASE_HOST        database host
    DRIFTWATCH_DATABASE_PORT        database port
    DRIFTWATCH_DATABASE_USER        database user
    DRIFTWATCH_DATABASE_PASSWORD    database password
    DRIFTWATCH_DATABASE_DATABASE    database name (or file path)
    DRIFTWATCH_DRIFT_WEBHOOK_URL    drift notification endpoint
    DRIFTWATCH_LOGGING_LEVEL        log level (debug/info/warn/error)

  See 'go doc github.com/driftwatch/driftwatch/pkg/config' for the
  complete list.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("cannot determine home directory: %w", err)
			}
			if err := iofs.EnsureDirs(home); err != nil {
				return err
			}

			// Generate a default config file on first run.
			if cfgFile == "" {
				if err := iofs.EnsureConfigFile(home); err != nil {
					fmt.Printf("Warning: could not generate config file: %v\n", err)
				}
			}

			result, err := ioconfig.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			cfg, err = ioconfig.BindFlags(cmd, result.Config)
			if err != nil {
				return err
			}

			if err := iologger.Init(
				config.LogDir(home), cfg.Logging, true,
			); err != nil {
				return err
			}

			switch result.Source {
			case "file":
				fmt.Printf("Using config from: %s\n", result.SourcePath)
			case "defaults+env":
				fmt.Println("Using built-in defaults with environment variable overrides")
			case "defaults":
				fmt.Println("Using built-in defaults (no config file)")
			}

			return nil
		},
	}

	// Persistent flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./driftwatch.yaml or ~/.config/driftwatch/driftwatch.yaml)")
	rootCmd.PersistentFlags().String("engine", "",
		"database engine (postgres, mysql, sqlite, duckdb)")
	rootCmd.PersistentFlags().String("host", "", "database host")
	rootCmd.PersistentFlags().Int("port", 0, "database port")
	rootCmd.PersistentFlags().String("user", "", "database user")
	rootCmd.PersistentFlags().String("password", "", "database password")
	rootCmd.PersistentFlags().String("database", "",
		"database name, or file path for sqlite and duckdb")
	rootCmd.PersistentFlags().String("ssl-mode", "",
		"postgres SSL mode (disable, require, verify-full)")
	rootCmd.PersistentFlags().String("project", "",
		"project directory holding baseline, reports and sources (default: current directory)")
	rootCmd.PersistentFlags().Int("jobs", 0,
		"number of concurrent file-scanning jobs")

	// Override version flag to use -V
	rootCmd.Flags().BoolP("version", "V", false, "version for driftwatch")

	rootCmd.AddCommand(getBaselineCmd())
	rootCmd.AddCommand(getDetectCmd())
	rootCmd.AddCommand(getRoutesCmd())
	rootCmd.AddCommand(getFormsCmd())

	return rootCmd
}

// getConfig returns the loaded configuration (for use in subcommands)
func getConfig() *config.Config {
	return cfg
}
