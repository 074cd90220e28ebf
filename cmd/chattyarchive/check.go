package main

import (
	"fmt"
	"strings"

	"github.com/foxseedlab/chattyarchive/internal/chatty"
	"github.com/foxseedlab/chattyarchive/internal/importer"
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file|glob>...",
		Short: "Parse chatty logs without storing anything and print what they contain",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			paths, err := importer.ExpandLogPaths(args)
			if err != nil {
				return err
			}
			for _, path := range paths {
				stats, err := checkFile(cmd, path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				channels := strings.Join(stats.Channels, ",")
				if channels == "" {
					channels = "-"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tlines=%d messages=%d notices=%d unclassified=%d channels=%s\n",
					path, stats.Lines, stats.Messages, stats.Notices, stats.Unclassified, channels)
			}
			return nil
		},
	}
}

func checkFile(cmd *cobra.Command, path string) (chatty.Stats, error) {
	f, err := importer.OpenLogFile(path)
	if err != nil {
		return chatty.Stats{}, err
	}
	defer f.Close()
	return chatty.Process(cmd.Context(), f, chatty.Discard)
}
