package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/foxseedlab/chattyarchive/internal/chatty"
	"github.com/foxseedlab/chattyarchive/internal/config"
	"github.com/foxseedlab/chattyarchive/internal/discord"
	"github.com/foxseedlab/chattyarchive/internal/repository"
	"github.com/foxseedlab/chattyarchive/internal/webhook"
)

type mockRepository struct {
	imports     map[string]*repository.Import
	completions []repository.CompleteImportInput
	users       map[string]int64
	channels    map[string]int64
	messages    []repository.NewMessage
	insertErr   error
	createErr   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		imports:  make(map[string]*repository.Import),
		users:    make(map[string]int64),
		channels: make(map[string]int64),
	}
}

func (m *mockRepository) CreateImport(_ context.Context, input repository.CreateImportInput) (*repository.Import, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	run := &repository.Import{
		ID:         input.ID,
		SourcePath: input.SourcePath,
		StartedAt:  input.StartedAt,
		Status:     repository.ImportStatusRunning,
	}
	m.imports[input.ID] = run
	copied := *run
	return &copied, nil
}

func (m *mockRepository) CompleteImport(_ context.Context, input repository.CompleteImportInput) error {
	m.completions = append(m.completions, input)
	return nil
}

func (m *mockRepository) GetImport(_ context.Context, importID string) (*repository.Import, error) {
	return m.imports[importID], nil
}

func (m *mockRepository) FindOrCreateUser(_ context.Context, name string) (int64, error) {
	if id, ok := m.users[name]; ok {
		return id, nil
	}
	id := int64(len(m.users) + 1)
	m.users[name] = id
	return id, nil
}

func (m *mockRepository) FindOrCreateChannel(_ context.Context, name string) (int64, error) {
	if id, ok := m.channels[name]; ok {
		return id, nil
	}
	id := int64(len(m.channels) + 1)
	m.channels[name] = id
	return id, nil
}

func (m *mockRepository) InsertMessages(_ context.Context, messages []repository.NewMessage) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.messages = append(m.messages, messages...)
	return nil
}

func (m *mockRepository) ListMessagesByImportID(_ context.Context, _ string) ([]repository.StoredMessage, error) {
	return nil, nil
}

type mockWebhookSender struct {
	payloads []webhook.ImportReportPayload
	err      error
}

func (m *mockWebhookSender) SendImportReport(_ context.Context, payload webhook.ImportReportPayload) error {
	m.payloads = append(m.payloads, payload)
	return m.err
}

type mockNotifier struct {
	channelID string
	fileCalls []discord.FileMessage
}

func (m *mockNotifier) SendChannelMessageWithFile(_ context.Context, msg discord.FileMessage) error {
	m.fileCalls = append(m.fileCalls, msg)
	return nil
}

func (m *mockNotifier) ReportChannelID() string { return m.channelID }

func newTestImporter(repo repository.Repository, wh webhook.Sender, notifier discord.Notifier) *Importer {
	cfg := &config.Config{
		ImportBatchSize:      2,
		ImportReportTimezone: "UTC",
	}
	im := NewImporter(cfg, repo, wh, notifier)
	seq := 0
	im.newID = func() string {
		seq++
		return fmt.Sprintf("import-%d", seq)
	}
	clock := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	im.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return im
}

const sampleLog = "# Log started: 2017-10-06 00:00:00 +0200\n" +
	"[00:00:01] You have joined #test\n" +
	"[00:10:00] <@+JohnDoe> Hey everyone\n" +
	"[00:11:00] <Jane> hi John\n" +
	"[00:12:00] <%Kai> o/\n" +
	"# Log closed: 2017-10-06 01:00:00 +0200\n"

func TestImport_StoresMessagesAndCompletesRun(t *testing.T) {
	repo := newMockRepository()
	wh := &mockWebhookSender{}
	notifier := &mockNotifier{channelID: "report-channel"}
	im := newTestImporter(repo, wh, notifier)

	result, err := im.Import(context.Background(), "sample.log", strings.NewReader(sampleLog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.messages) != 3 {
		t.Fatalf("stored messages = %d, want 3", len(repo.messages))
	}
	if got := repo.messages[0].Flags; len(got) != 2 || got[0] != "moderator" || got[1] != "prime" {
		t.Fatalf("unexpected flags: %v", got)
	}
	if len(repo.completions) != 1 {
		t.Fatalf("expected one completion, got %d", len(repo.completions))
	}
	done := repo.completions[0]
	if done.Status != repository.ImportStatusCompleted || done.MessageCount != 3 || done.LineCount != 6 || done.Error != "" {
		t.Fatalf("unexpected completion: %+v", done)
	}
	if result.Import.ID != "import-1" || result.Import.Status != repository.ImportStatusCompleted {
		t.Fatalf("unexpected result import: %+v", result.Import)
	}
	if len(wh.payloads) != 1 || wh.payloads[0].MessageCount != 3 {
		t.Fatalf("unexpected webhook payloads: %+v", wh.payloads)
	}
	if len(notifier.fileCalls) != 1 {
		t.Fatalf("expected one report upload, got %d", len(notifier.fileCalls))
	}
	call := notifier.fileCalls[0]
	if call.ChannelID != "report-channel" || call.Content != messageReportCompleted || call.Filename != "import-import-1.txt" {
		t.Fatalf("unexpected report upload: %+v", call)
	}
}

func TestImport_FatalLineKeepsEarlierMessages(t *testing.T) {
	repo := newMockRepository()
	wh := &mockWebhookSender{}
	im := newTestImporter(repo, wh, &mockNotifier{})

	input := sampleLog + "[25:00:00] <Jane> too late\n[01:00:01] <Jane> never read\n"
	result, err := im.Import(context.Background(), "broken.log", strings.NewReader(input))
	if !errors.Is(err, chatty.ErrTimestamp) {
		t.Fatalf("expected timestamp error, got %v", err)
	}
	if chatty.LineOf(err) != 7 {
		t.Fatalf("error line = %d, want 7", chatty.LineOf(err))
	}
	// Two messages were flushed by the full batch, the third by Finalize.
	if len(repo.messages) != 3 {
		t.Fatalf("stored messages = %d, want 3", len(repo.messages))
	}
	done := repo.completions[0]
	if done.Status != repository.ImportStatusFailed || done.MessageCount != 3 || !strings.Contains(done.Error, "line 7") {
		t.Fatalf("unexpected completion: %+v", done)
	}
	if result.Err == nil || result.Import.Status != repository.ImportStatusFailed {
		t.Fatalf("unexpected result: %+v", result)
	}
	if wh.payloads[0].ErrorLine != 7 || wh.payloads[0].Status != "failed" || wh.payloads[0].ErrorKind != chatty.ErrTimestamp.Error() {
		t.Fatalf("unexpected payload: %+v", wh.payloads[0])
	}
}

func TestImport_InsertFailureMarksRunFailed(t *testing.T) {
	repo := newMockRepository()
	repo.insertErr = errors.New("disk full")
	im := newTestImporter(repo, &mockWebhookSender{}, &mockNotifier{})

	_, err := im.Import(context.Background(), "sample.log", strings.NewReader(sampleLog))
	if !errors.Is(err, chatty.ErrSink) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if got := repo.completions[0]; got.Status != repository.ImportStatusFailed || got.MessageCount != 0 {
		t.Fatalf("unexpected completion: %+v", got)
	}
}

func TestImport_CreateFailureStopsBeforeProcessing(t *testing.T) {
	repo := newMockRepository()
	repo.createErr = errors.New("connection refused")
	wh := &mockWebhookSender{}
	im := newTestImporter(repo, wh, &mockNotifier{})

	if _, err := im.Import(context.Background(), "sample.log", strings.NewReader(sampleLog)); err == nil {
		t.Fatal("expected error")
	}
	if len(repo.completions) != 0 || len(wh.payloads) != 0 {
		t.Fatalf("nothing should be recorded: completions=%d payloads=%d", len(repo.completions), len(wh.payloads))
	}
}

func TestImport_ReportDeliveryFailureIsNotFatal(t *testing.T) {
	repo := newMockRepository()
	wh := &mockWebhookSender{err: errors.New("502")}
	notifier := &mockNotifier{}
	im := newTestImporter(repo, wh, notifier)

	if _, err := im.Import(context.Background(), "sample.log", strings.NewReader(sampleLog)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.fileCalls) != 0 {
		t.Fatalf("report should not be uploaded without a channel, got %d", len(notifier.fileCalls))
	}
}

func TestImport_CanceledContextStillCompletesRun(t *testing.T) {
	repo := newMockRepository()
	im := newTestImporter(repo, &mockWebhookSender{}, &mockNotifier{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := im.Import(ctx, "sample.log", strings.NewReader(sampleLog))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(repo.completions) != 1 || repo.completions[0].Status != repository.ImportStatusFailed {
		t.Fatalf("unexpected completions: %+v", repo.completions)
	}
}

func TestImportFile_RejectsMissingAndDirectories(t *testing.T) {
	repo := newMockRepository()
	im := newTestImporter(repo, &mockWebhookSender{}, &mockNotifier{})
	dir := t.TempDir()

	if _, err := im.ImportFile(context.Background(), filepath.Join(dir, "missing.log")); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing file error, got %v", err)
	}
	if _, err := im.ImportFile(context.Background(), dir); err == nil || !strings.Contains(err.Error(), "not a regular file") {
		t.Fatalf("expected directory error, got %v", err)
	}
	if len(repo.imports) != 0 {
		t.Fatalf("no import run should be created, got %d", len(repo.imports))
	}
}

func TestImportFile_ReadsLog(t *testing.T) {
	repo := newMockRepository()
	im := newTestImporter(repo, &mockWebhookSender{}, &mockNotifier{})
	path := filepath.Join(t.TempDir(), "sample.log")
	if err := os.WriteFile(path, []byte(sampleLog), 0o600); err != nil {
		t.Fatalf("failed to write log: %v", err)
	}

	result, err := im.ImportFile(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Import.SourcePath != path || result.Import.MessageCount != 3 {
		t.Fatalf("unexpected import: %+v", result.Import)
	}
}
