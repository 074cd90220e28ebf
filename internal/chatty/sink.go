package chatty

import (
	"context"
	"time"
)

// ResolvedMessage is a chat message with its channel and absolute time known.
type ResolvedMessage struct {
	Channel string
	Sender  string
	Flags   []Flag
	Body    string
	SentAt  time.Time
	Line    int
}

// Sink receives resolved messages. Process calls Submit once per message and
// never calls Finalize; flushing is left to whoever owns the sink.
type Sink interface {
	Submit(ctx context.Context, msg ResolvedMessage) error
	Finalize(ctx context.Context) error
}

// MemorySink keeps every submitted message in order.
type MemorySink struct {
	Messages  []ResolvedMessage
	Finalized bool
}

func (s *MemorySink) Submit(_ context.Context, msg ResolvedMessage) error {
	s.Messages = append(s.Messages, msg)
	return nil
}

func (s *MemorySink) Finalize(_ context.Context) error {
	s.Finalized = true
	return nil
}

// Discard drops every message.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) Submit(context.Context, ResolvedMessage) error { return nil }
func (discardSink) Finalize(context.Context) error                { return nil }
