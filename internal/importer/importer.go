package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/foxseedlab/chattyarchive/internal/archive"
	"github.com/foxseedlab/chattyarchive/internal/chatty"
	"github.com/foxseedlab/chattyarchive/internal/config"
	"github.com/foxseedlab/chattyarchive/internal/discord"
	"github.com/foxseedlab/chattyarchive/internal/repository"
	"github.com/foxseedlab/chattyarchive/internal/webhook"
	"github.com/google/uuid"
)

type Importer struct {
	cfg      *config.Config
	repo     repository.Repository
	webhook  webhook.Sender
	notifier discord.Notifier

	newID func() string
	now   func() time.Time
}

// Result describes one finished import run. Err is the error that stopped
// the run, if any; the counters cover everything processed before it.
type Result struct {
	Import repository.Import
	Stats  chatty.Stats
	Err    error
}

func NewImporter(cfg *config.Config, repo repository.Repository, wh webhook.Sender, notifier discord.Notifier) *Importer {
	return &Importer{
		cfg:      cfg,
		repo:     repo,
		webhook:  wh,
		notifier: notifier,
		newID:    func() string { return uuid.NewString() },
		now:      time.Now,
	}
}

func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	f, err := OpenLogFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return im.Import(ctx, path, f)
}

// Import archives one chatty log stream. Messages emitted before a fatal
// line are still flushed, and the run is then recorded as failed.
func (im *Importer) Import(ctx context.Context, source string, r io.Reader) (*Result, error) {
	startedAt := im.now()
	run, err := im.repo.CreateImport(ctx, repository.CreateImportInput{
		ID:         im.newID(),
		SourcePath: source,
		StartedAt:  startedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("create import run: %w", err)
	}
	logger := slog.With("import_id", run.ID, "source", source)
	logger.Info("import started")

	collector := archive.NewCollector(im.repo, run.ID, im.cfg.ImportBatchSize)
	stats, runErr := chatty.Process(ctx, r, collector, chatty.WithLogger(logger))

	// Bookkeeping must still happen when the caller's context is canceled.
	bg := context.WithoutCancel(ctx)
	if err := collector.Finalize(bg); err != nil {
		logger.Error("failed to flush pending messages", "error", err, "pending", collector.Pending())
		if runErr == nil {
			runErr = err
		}
	}

	endedAt := im.now()
	status := repository.ImportStatusCompleted
	errText := ""
	if runErr != nil {
		status = repository.ImportStatusFailed
		errText = runErr.Error()
	}
	complete := repository.CompleteImportInput{
		ImportID:     run.ID,
		EndedAt:      endedAt,
		Status:       status,
		LineCount:    stats.Lines,
		MessageCount: collector.Stored(),
		Error:        errText,
	}
	if err := im.repo.CompleteImport(bg, complete); err != nil {
		logger.Error("failed to complete import run", "error", err)
		if runErr == nil {
			runErr = fmt.Errorf("complete import run: %w", err)
		}
	}

	run.EndedAt = &endedAt
	run.Status = status
	run.LineCount = complete.LineCount
	run.MessageCount = complete.MessageCount
	run.Error = errText
	result := &Result{Import: *run, Stats: stats, Err: runErr}

	if runErr != nil {
		logger.Error("import failed", "error", runErr, "line", chatty.LineOf(runErr), "stored_messages", run.MessageCount)
	} else {
		logger.Info("import completed", "lines", stats.Lines, "messages", run.MessageCount, "unclassified", stats.Unclassified)
	}
	im.deliverReport(bg, result)
	return result, runErr
}

func (im *Importer) deliverReport(ctx context.Context, result *Result) {
	loc := im.cfg.ReportLocation()
	payload := buildImportReportPayload(result, im.cfg.ImportReportTimezone, loc)
	if im.webhook != nil {
		if err := im.webhook.SendImportReport(ctx, payload); err != nil {
			slog.Error("failed to send webhook import report", "error", err, "import_id", result.Import.ID)
		}
	}
	if im.notifier == nil || im.notifier.ReportChannelID() == "" {
		return
	}
	if err := im.notifier.SendChannelMessageWithFile(ctx, discord.FileMessage{
		ChannelID: im.notifier.ReportChannelID(),
		Content:   reportChannelMessage(result.Import.Status),
		Filename:  fmt.Sprintf("import-%s.txt", result.Import.ID),
		FileBody:  buildImportReportText(result, im.cfg.ImportReportTimezone, loc),
	}); err != nil {
		slog.Error("failed to post import report", "error", err, "import_id", result.Import.ID)
	}
}

// OpenLogFile opens path for reading after making sure it names an existing
// regular file.
func OpenLogFile(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("log file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat log file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("path is not a regular file: %s", path)
	}
	f, err := os.Open(path) // #nosec G304 -- paths come from the operator
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}
