package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/foxseedlab/chattyarchive/internal/chatty"
)

var csvHeader = []string{"channel", "sender", "flags", "body", "sent_at"}

// CSVSink writes resolved messages as CSV rows. Flags are joined with "|" in
// the order the log printed them.
type CSVSink struct {
	w           *csv.Writer
	wroteHeader bool
	rows        int
}

var _ chatty.Sink = (*CSVSink)(nil)

func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w)}
}

func (s *CSVSink) Submit(_ context.Context, msg chatty.ResolvedMessage) error {
	if err := s.writeHeader(); err != nil {
		return err
	}
	record := []string{
		msg.Channel,
		msg.Sender,
		strings.Join(chatty.FlagNames(msg.Flags), "|"),
		msg.Body,
		msg.SentAt.Format(time.RFC3339),
	}
	if err := s.w.Write(record); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	s.rows++
	return nil
}

// Finalize writes the header if nothing was submitted and flushes buffered
// rows.
func (s *CSVSink) Finalize(_ context.Context) error {
	if err := s.writeHeader(); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

// Rows reports how many messages have been written.
func (s *CSVSink) Rows() int {
	return s.rows
}

func (s *CSVSink) writeHeader() error {
	if s.wroteHeader {
		return nil
	}
	s.wroteHeader = true
	if err := s.w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	return nil
}
