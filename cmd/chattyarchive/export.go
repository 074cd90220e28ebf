package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/foxseedlab/chattyarchive/external/export"
	"github.com/foxseedlab/chattyarchive/internal/archive"
	"github.com/foxseedlab/chattyarchive/internal/chatty"
	"github.com/foxseedlab/chattyarchive/internal/importer"
	"github.com/foxseedlab/chattyarchive/internal/repository"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var (
		format   string
		outPath  string
		importID string
	)

	cmd := &cobra.Command{
		Use:   "export (<file|glob>... | --import <id>)",
		Short: "Write chatty logs, or the messages of a stored import run, as CSV rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" {
				return fmt.Errorf("unsupported format %q", format)
			}
			if importID == "" && len(args) == 0 {
				return errors.New("give log files or --import")
			}
			if importID != "" && len(args) > 0 {
				return errors.New("log files and --import cannot be combined")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				out = f
			}
			sink := export.NewCSVSink(out)

			var runErr error
			if importID != "" {
				if _, _, err := cfg.Database(); err != nil {
					return err
				}
				injector := setupDI(cfg)
				defer injector.Shutdown()
				repo, err := do.Invoke[repository.Repository](injector)
				if err != nil {
					return fmt.Errorf("failed to resolve repository: %w", err)
				}
				runErr = exportImport(cmd, repo, importID, sink)
			} else {
				paths, err := importer.ExpandLogPaths(args)
				if err != nil {
					return err
				}
				runErr = exportFiles(cmd, paths, sink)
			}

			// Rows accepted before a failure are still written.
			if err := sink.Finalize(cmd.Context()); err != nil && runErr == nil {
				runErr = err
			}
			slog.Info("export finished", "rows", sink.Rows(), "error", runErr)
			return runErr
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "Output format (csv)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&importID, "import", "", "Export the archived messages of this import run instead of log files")
	return cmd
}

func exportFiles(cmd *cobra.Command, paths []string, sink chatty.Sink) error {
	for _, path := range paths {
		f, err := importer.OpenLogFile(path)
		if err != nil {
			return err
		}
		_, err = chatty.Process(cmd.Context(), f, sink, chatty.WithLogger(slog.With("path", path)))
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func exportImport(cmd *cobra.Command, repo repository.Repository, importID string, sink chatty.Sink) error {
	run, err := repo.GetImport(cmd.Context(), importID)
	if err != nil {
		return fmt.Errorf("load import %s: %w", importID, err)
	}
	if run == nil {
		return fmt.Errorf("import %s not found", importID)
	}
	if run.Status != repository.ImportStatusCompleted {
		slog.Warn("exporting an import that did not complete", "import_id", run.ID, "status", run.Status, "error", run.Error)
	}
	n, err := archive.Replay(cmd.Context(), repo, run.ID, sink)
	slog.Info("import replayed", "import_id", run.ID, "source", run.SourcePath, "status", run.Status, "messages", n, "stored_messages", run.MessageCount)
	return err
}
