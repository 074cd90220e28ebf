package main

import (
	"fmt"
	"log/slog"

	"github.com/foxseedlab/chattyarchive/internal/importer"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	var keepGoing bool

	cmd := &cobra.Command{
		Use:   "import <file|glob>...",
		Short: "Archive the messages of chatty logs in the database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if _, _, err := cfg.Database(); err != nil {
				return err
			}
			paths, err := importer.ExpandLogPaths(args)
			if err != nil {
				return err
			}

			injector := setupDI(cfg)
			defer injector.Shutdown()

			im, err := do.Invoke[*importer.Importer](injector)
			if err != nil {
				return fmt.Errorf("failed to resolve importer: %w", err)
			}

			failed := 0
			for _, path := range paths {
				result, err := im.ImportFile(cmd.Context(), path)
				if err != nil {
					failed++
					slog.Error("import failed", "path", path, "error", err)
					if !keepGoing {
						return err
					}
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d lines\t%d messages\n",
					path, result.Import.ID, result.Import.LineCount, result.Import.MessageCount)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed to import", failed, len(paths))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "Continue with the next file after a failed import")
	return cmd
}
