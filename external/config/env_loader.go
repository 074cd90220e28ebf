package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/chattyarchive/internal/config"
	"github.com/joho/godotenv"
)

type envConfig struct {
	Env                    string `env:"ENV" envDefault:"production"`
	DatabaseURL            string `env:"DATABASE_URL"`
	ImportBatchSize        int    `env:"IMPORT_BATCH_SIZE" envDefault:"3000"`
	ImportReportTimezone   string `env:"IMPORT_REPORT_TIMEZONE" envDefault:"UTC"`
	ImportWebhookURL       string `env:"IMPORT_WEBHOOK_URL"`
	DiscordToken           string `env:"DISCORD_TOKEN"`
	DiscordReportChannelID string `env:"DISCORD_REPORT_CHANNEL_ID"`
}

// Load reads the configuration from the environment. In development a .env
// file in the working directory is loaded first; variables that are already
// set win over the file.
func Load() (*internalconfig.Config, error) {
	if os.Getenv("ENV") == "development" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                    raw.Env,
		DatabaseURL:            raw.DatabaseURL,
		ImportBatchSize:        raw.ImportBatchSize,
		ImportReportTimezone:   raw.ImportReportTimezone,
		ImportWebhookURL:       raw.ImportWebhookURL,
		DiscordToken:           raw.DiscordToken,
		DiscordReportChannelID: raw.DiscordReportChannelID,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
