package archive

import (
	"context"
	"fmt"

	"github.com/foxseedlab/chattyarchive/internal/chatty"
	"github.com/foxseedlab/chattyarchive/internal/repository"
)

// Replay reads the messages stored for one import run and submits them to
// sink in insertion order. The sink is not finalized.
func Replay(ctx context.Context, repo repository.ArchiveRepository, importID string, sink chatty.Sink) (int, error) {
	stored, err := repo.ListMessagesByImportID(ctx, importID)
	if err != nil {
		return 0, fmt.Errorf("list messages of import %s: %w", importID, err)
	}
	for i, m := range stored {
		flags, err := parseFlags(m.Flags)
		if err != nil {
			return i, fmt.Errorf("message %d: %w", m.ID, err)
		}
		msg := chatty.ResolvedMessage{
			Channel: m.ChannelName,
			Sender:  m.UserName,
			Flags:   flags,
			Body:    m.Message,
			SentAt:  m.SentAt,
		}
		if err := sink.Submit(ctx, msg); err != nil {
			return i, fmt.Errorf("message %d: %w", m.ID, err)
		}
	}
	return len(stored), nil
}

func parseFlags(names []string) ([]chatty.Flag, error) {
	if len(names) == 0 {
		return nil, nil
	}
	flags := make([]chatty.Flag, 0, len(names))
	for _, name := range names {
		f, err := chatty.ParseFlag(name)
		if err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, nil
}
