package repository

import (
	"context"
	"time"
)

type CreateImportInput struct {
	ID         string
	SourcePath string
	StartedAt  time.Time
}

type CompleteImportInput struct {
	ImportID     string
	EndedAt      time.Time
	Status       ImportStatus
	LineCount    int
	MessageCount int
	Error        string
}

type ImportRepository interface {
	CreateImport(ctx context.Context, input CreateImportInput) (*Import, error)
	CompleteImport(ctx context.Context, input CompleteImportInput) error
	GetImport(ctx context.Context, importID string) (*Import, error)
}

type ArchiveRepository interface {
	FindOrCreateUser(ctx context.Context, name string) (int64, error)
	FindOrCreateChannel(ctx context.Context, name string) (int64, error)
	InsertMessages(ctx context.Context, messages []NewMessage) error
	ListMessagesByImportID(ctx context.Context, importID string) ([]StoredMessage, error)
}

type Repository interface {
	ImportRepository
	ArchiveRepository
}
