package discord

import (
	"bytes"
	"context"

	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/foxseedlab/chattyarchive/internal/discord"
)

// Notifier posts import reports through the Discord REST API. It never opens
// a gateway connection.
type Notifier struct {
	session   *discordgo.Session
	channelID string
}

// NewNotifier returns a Notifier that does nothing when token is empty.
func NewNotifier(token, channelID string) (discordpkg.Notifier, error) {
	if token == "" {
		return &Notifier{}, nil
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	return &Notifier{session: s, channelID: channelID}, nil
}

func (n *Notifier) ReportChannelID() string {
	return n.channelID
}

func (n *Notifier) SendChannelMessageWithFile(ctx context.Context, msg discordpkg.FileMessage) error {
	if n.session == nil || msg.ChannelID == "" {
		return nil
	}
	_, err := n.session.ChannelMessageSendComplex(msg.ChannelID, &discordgo.MessageSend{
		Content: msg.Content,
		Files: []*discordgo.File{
			{Name: msg.Filename, ContentType: "text/plain", Reader: bytes.NewReader(msg.FileBody)},
		},
	}, discordgo.WithContext(ctx))
	return err
}
