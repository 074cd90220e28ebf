package repository

import "time"

type ImportStatus string

const (
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

type Import struct {
	ID           string
	SourcePath   string
	StartedAt    time.Time
	EndedAt      *time.Time
	Status       ImportStatus
	LineCount    int
	MessageCount int
	Error        string
}

// NewMessage is one archived chat line. Flags hold persistence names such as
// "moderator" in the order the log printed their sigils.
type NewMessage struct {
	ImportID  string
	UserID    int64
	ChannelID int64
	Message   string
	SentAt    time.Time
	Flags     []string
}

type StoredMessage struct {
	ID          int64
	ImportID    string
	UserName    string
	ChannelName string
	Message     string
	SentAt      time.Time
	Flags       []string
}
