package chattygen

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/foxseedlab/chattyarchive/internal/chatty"
)

func TestGenerate_OutputResolvesCleanly(t *testing.T) {
	var buf bytes.Buffer
	sum, err := Generate(&buf, Options{
		Channels:           []string{"#test", "#other"},
		Sessions:           3,
		MessagesPerSession: 200,
		MaxGap:             20 * time.Minute,
		DatedEvery:         7,
		Seed:               42,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Lines != strings.Count(buf.String(), "\n") {
		t.Fatalf("summary lines = %d, output has %d", sum.Lines, strings.Count(buf.String(), "\n"))
	}

	sink := &chatty.MemorySink{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stats, err := chatty.Process(context.Background(), &buf, sink, chatty.WithLogger(logger))
	if err != nil {
		t.Fatalf("generated log failed to process: %v", err)
	}
	if stats.Unclassified != 0 {
		t.Fatalf("generated log has %d unclassified lines", stats.Unclassified)
	}
	if len(sink.Messages) != sum.Messages || stats.Notices != sum.Notices {
		t.Fatalf("processed %d messages and %d notices, generator wrote %d and %d", len(sink.Messages), stats.Notices, sum.Messages, sum.Notices)
	}
	if sum.Messages == 0 {
		t.Fatal("expected some messages")
	}
	last := sink.Messages[len(sink.Messages)-1]
	if !last.SentAt.Equal(sum.LastAt) {
		t.Fatalf("last message resolved to %s, generator wrote %s", last.SentAt, sum.LastAt)
	}
	for i := 1; i < len(sink.Messages); i++ {
		if sink.Messages[i].SentAt.Before(sink.Messages[i-1].SentAt) {
			t.Fatalf("message %d goes back in time", i)
		}
	}
}

func TestGenerate_Defaults(t *testing.T) {
	var buf bytes.Buffer
	sum, err := Generate(&buf, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "# Log started: 2017-10-05 23:40:00 +0200\n"
	if !strings.HasPrefix(buf.String(), want) {
		t.Fatalf("output should start with %q, got %q", want, buf.String())
	}
	if sum.Messages != 0 || sum.Lines != 4 {
		t.Fatalf("unexpected summary for an empty session: %+v", sum)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestGenerate_WriteError(t *testing.T) {
	if _, err := Generate(failingWriter{}, Options{MessagesPerSession: 5000}); err == nil {
		t.Fatal("expected write error")
	}
}
