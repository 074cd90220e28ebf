package chatty

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// State is the running context of one log stream. The zero value is the
// start state: no anchor and no channel.
type State struct {
	Anchor     time.Time
	HasAnchor  bool
	Channel    string
	HasChannel bool
}

// Step applies one classified line to the state. Messages are resolved and
// handed to sink; every other event only moves the anchor or the channel.
func (s *State) Step(ctx context.Context, line int, ev Event, sink Sink) error {
	switch ev := ev.(type) {
	case SessionBegin:
		s.setAnchor(ev.At)
	case SessionEnd:
		s.setAnchor(ev.At)
	case ChannelJoined:
		if err := s.advance(ev.Time); err != nil {
			return err
		}
		s.Channel = ev.Channel
		s.HasChannel = true
	case Message:
		if !s.HasChannel {
			return ErrMissingJoinChannel
		}
		if err := s.advance(ev.Time); err != nil {
			return err
		}
		msg := ResolvedMessage{
			Channel: s.Channel,
			Sender:  ev.Sender.Name,
			Flags:   ev.Sender.Flags,
			Body:    ev.Body,
			SentAt:  s.Anchor,
			Line:    line,
		}
		if err := sink.Submit(ctx, msg); err != nil {
			return &sinkError{err: err}
		}
	case SystemNotice:
		return s.advance(ev.Time)
	case Separator, Unclassified:
	default:
		return fmt.Errorf("%w: unknown event %T", ErrParse, ev)
	}
	return nil
}

func (s *State) setAnchor(t time.Time) {
	s.Anchor = t
	s.HasAnchor = true
}

func (s *State) advance(raw RawTimestamp) error {
	if !s.HasAnchor {
		return ErrMissingBeginTimestamp
	}
	t, err := Resolve(raw, s.Anchor)
	if err != nil {
		return err
	}
	s.setAnchor(t)
	return nil
}

// Stats summarizes a processed stream.
type Stats struct {
	Lines          int
	Messages       int
	Notices        int
	Joins          int
	SessionMarkers int
	Separators     int
	Unclassified   int
	Channels       []string
	FirstMessageAt time.Time
	LastMessageAt  time.Time
}

func (st *Stats) record(ev Event, state *State) {
	st.Lines++
	switch ev.(type) {
	case SessionBegin, SessionEnd:
		st.SessionMarkers++
	case ChannelJoined:
		st.Joins++
		for _, c := range st.Channels {
			if c == state.Channel {
				return
			}
		}
		st.Channels = append(st.Channels, state.Channel)
	case Message:
		st.Messages++
		if st.FirstMessageAt.IsZero() {
			st.FirstMessageAt = state.Anchor
		}
		st.LastMessageAt = state.Anchor
	case SystemNotice:
		st.Notices++
	case Separator:
		st.Separators++
	case Unclassified:
		st.Unclassified++
	}
}

type Option func(*processor)

func WithLogger(logger *slog.Logger) Option {
	return func(p *processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

type processor struct {
	logger *slog.Logger
}

// Process reads r line by line and drives every line through ParseLine and
// State.Step. It stops at the first fatal error, which is returned as a
// *LineError. Reaching the end of input is never an error.
func Process(ctx context.Context, r io.Reader, sink Sink, opts ...Option) (Stats, error) {
	p := &processor{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}

	var (
		state State
		stats Stats
	)
	br := bufio.NewReader(r)
	for lineNum := 1; ; lineNum++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		raw, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return stats, &LineError{Line: lineNum, Err: fmt.Errorf("reading input: %w", readErr)}
		}
		if raw == "" && readErr != nil {
			return stats, nil
		}
		text := trimLineEnding(raw)

		ev, err := ParseLine(text)
		if err != nil {
			return stats, &LineError{Line: lineNum, Err: err}
		}
		if u, ok := ev.(Unclassified); ok {
			p.logger.Warn("unknown line type, ignoring", "line", lineNum, "text", u.Text)
		}
		if err := state.Step(ctx, lineNum, ev, sink); err != nil {
			return stats, &LineError{Line: lineNum, Err: err}
		}
		stats.record(ev, &state)

		if readErr != nil {
			return stats, nil
		}
	}
}

func trimLineEnding(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
