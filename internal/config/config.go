package config

import (
	"fmt"
	"strings"
	"time"
)

type DatabaseDriver string

const (
	DatabaseDriverPostgres DatabaseDriver = "postgres"
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
)

type Config struct {
	Env                    string
	DatabaseURL            string
	ImportBatchSize        int
	ImportReportTimezone   string
	ImportWebhookURL       string
	DiscordToken           string
	DiscordReportChannelID string
}

func (c *Config) Validate() error {
	if c.ImportBatchSize <= 0 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be positive, got %d", c.ImportBatchSize)
	}
	if c.ImportReportTimezone == "" {
		return fmt.Errorf("IMPORT_REPORT_TIMEZONE is required")
	}
	if _, err := time.LoadLocation(c.ImportReportTimezone); err != nil {
		return fmt.Errorf("IMPORT_REPORT_TIMEZONE is invalid: %w", err)
	}
	if c.DiscordToken != "" && c.DiscordReportChannelID == "" {
		return fmt.Errorf("DISCORD_REPORT_CHANNEL_ID is required when DISCORD_TOKEN is set")
	}
	if c.DatabaseURL != "" {
		if _, _, err := c.Database(); err != nil {
			return err
		}
	}
	return nil
}

// Database splits DATABASE_URL into the driver to use and the DSN to hand it.
// PostgreSQL URLs are passed through; sqlite:// and file: URLs become a path
// or file: DSN for modernc.org/sqlite.
func (c *Config) Database() (DatabaseDriver, string, error) {
	u := strings.TrimSpace(c.DatabaseURL)
	switch {
	case u == "":
		return "", "", fmt.Errorf("DATABASE_URL is required")
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return DatabaseDriverPostgres, u, nil
	case strings.HasPrefix(u, "sqlite://"):
		path := strings.TrimPrefix(u, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("DATABASE_URL sqlite:// needs a path")
		}
		return DatabaseDriverSQLite, path, nil
	case strings.HasPrefix(u, "file:"):
		return DatabaseDriverSQLite, u, nil
	default:
		return "", "", fmt.Errorf("DATABASE_URL has an unsupported scheme: %q", u)
	}
}

func (c *Config) ReportLocation() *time.Location {
	loc, err := time.LoadLocation(c.ImportReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
