package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	configloader "github.com/foxseedlab/chattyarchive/external/config"
	"github.com/foxseedlab/chattyarchive/external/discord"
	repositoryimpl "github.com/foxseedlab/chattyarchive/external/repository"
	webhookimpl "github.com/foxseedlab/chattyarchive/external/webhook"
	"github.com/foxseedlab/chattyarchive/internal/config"
	"github.com/foxseedlab/chattyarchive/internal/importer"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "chattyarchive",
		Short:         "Parse chatty IRC/Twitch client logs and archive their messages",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(versionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the environment and installs the default logger. Logs go
// to stderr because stdout carries command output.
func loadConfig() (*config.Config, error) {
	cfg, err := configloader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	initLogger(cfg)
	slog.Debug("configuration loaded", "env", cfg.Env)
	return cfg, nil
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	discord.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	importer.RegisterDI(injector)

	return injector
}
