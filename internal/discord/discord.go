package discord

import "context"

type FileMessage struct {
	ChannelID string
	Content   string
	Filename  string
	FileBody  []byte
}

// Notifier posts import reports to a chat channel.
type Notifier interface {
	SendChannelMessageWithFile(ctx context.Context, msg FileMessage) error
	ReportChannelID() string
}
