package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/foxseedlab/chattyarchive/internal/chattygen"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var (
		opts    chattygen.Options
		start   string
		outPath string
	)

	rootCmd := &cobra.Command{
		Use:     "chattygen",
		Short:   "Write a synthetic chatty log for load tests and fixtures",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if start != "" {
				t, err := time.Parse(time.RFC3339, start)
				if err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				opts.Start = t
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

			sum, err := chattygen.Generate(out, opts)
			if err != nil {
				return err
			}
			slog.Info("log generated", "lines", sum.Lines, "messages", sum.Messages, "notices", sum.Notices, "last_message_at", sum.LastAt)
			return nil
		},
	}

	flags := rootCmd.Flags()
	flags.IntVar(&opts.Sessions, "sessions", 1, "Number of sessions to write")
	flags.IntVar(&opts.MessagesPerSession, "messages", 1000, "Messages and notices per session")
	flags.StringSliceVar(&opts.Channels, "channels", []string{"#test"}, "Channels to join")
	flags.DurationVar(&opts.MaxGap, "max-gap", 5*time.Minute, "Largest delay between two lines")
	flags.IntVar(&opts.DatedEvery, "dated-every", 0, "Write every n-th message with a full date stamp (0 disables)")
	flags.Int64Var(&opts.Seed, "seed", 0, "Random seed (0 picks one from the clock)")
	flags.StringVar(&start, "start", "", "Start time in RFC 3339, e.g. 2017-10-05T23:40:00+02:00")
	flags.StringVarP(&outPath, "out", "o", "", "Write to this file instead of stdout")

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
