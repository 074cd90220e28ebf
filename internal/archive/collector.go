package archive

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/foxseedlab/chattyarchive/internal/chatty"
	"github.com/foxseedlab/chattyarchive/internal/repository"
)

const DefaultBatchSize = 3000

// Collector is a chatty.Sink that stores messages through an
// ArchiveRepository in batches. Pending messages are only written when a
// batch fills up or Finalize is called.
type Collector struct {
	repo      repository.ArchiveRepository
	importID  string
	batchSize int

	batch      []repository.NewMessage
	userIDs    map[string]int64
	channelIDs map[string]int64
	stored     int
}

func NewCollector(repo repository.ArchiveRepository, importID string, batchSize int) *Collector {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Collector{
		repo:       repo,
		importID:   importID,
		batchSize:  batchSize,
		batch:      make([]repository.NewMessage, 0, batchSize),
		userIDs:    make(map[string]int64),
		channelIDs: make(map[string]int64),
	}
}

func (c *Collector) Submit(ctx context.Context, msg chatty.ResolvedMessage) error {
	userID, err := c.userID(ctx, msg.Sender)
	if err != nil {
		return err
	}
	channelID, err := c.channelID(ctx, msg.Channel)
	if err != nil {
		return err
	}
	c.batch = append(c.batch, repository.NewMessage{
		ImportID:  c.importID,
		UserID:    userID,
		ChannelID: channelID,
		Message:   msg.Body,
		SentAt:    msg.SentAt,
		Flags:     chatty.FlagNames(msg.Flags),
	})
	if len(c.batch) >= c.batchSize {
		return c.flush(ctx)
	}
	return nil
}

func (c *Collector) Finalize(ctx context.Context) error {
	return c.flush(ctx)
}

// Stored reports how many messages have been written so far.
func (c *Collector) Stored() int {
	return c.stored
}

// Pending reports how many messages are buffered but not yet written.
func (c *Collector) Pending() int {
	return len(c.batch)
}

func (c *Collector) flush(ctx context.Context) error {
	if len(c.batch) == 0 {
		return nil
	}
	if err := c.repo.InsertMessages(ctx, c.batch); err != nil {
		return fmt.Errorf("insert batch of %d messages: %w", len(c.batch), err)
	}
	slog.Debug("message batch stored", "import_id", c.importID, "count", len(c.batch))
	c.stored += len(c.batch)
	c.batch = c.batch[:0]
	return nil
}

func (c *Collector) userID(ctx context.Context, name string) (int64, error) {
	if id, ok := c.userIDs[name]; ok {
		return id, nil
	}
	id, err := c.repo.FindOrCreateUser(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("resolve user %q: %w", name, err)
	}
	c.userIDs[name] = id
	return id, nil
}

func (c *Collector) channelID(ctx context.Context, name string) (int64, error) {
	if id, ok := c.channelIDs[name]; ok {
		return id, nil
	}
	id, err := c.repo.FindOrCreateChannel(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("resolve channel %q: %w", name, err)
	}
	c.channelIDs[name] = id
	return id, nil
}
