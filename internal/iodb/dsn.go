package iodb

import (
	"fmt"
	"net/url"

	"github.com/driftwatch/driftwatch/pkg/config"
)

// PostgresDSN builds a pgx connection string from the configuration.
// User and password are escaped so special characters survive.
func PostgresDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)
}

// MySQLDSN builds a go-sql-driver DSN from the configuration.
// parseTime makes DATETIME columns scan into time.Time.
func MySQLDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)
}
