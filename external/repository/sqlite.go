package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/foxseedlab/chattyarchive/internal/repository"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
PRAGMA foreign_keys = ON;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS users (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS channels (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS imports (
    id            TEXT PRIMARY KEY,
    source_path   TEXT NOT NULL,
    started_at    TEXT NOT NULL,
    ended_at      TEXT,
    status        TEXT NOT NULL DEFAULT 'running' CHECK (status IN ('running', 'completed', 'failed')),
    line_count    INTEGER NOT NULL DEFAULT 0,
    message_count INTEGER NOT NULL DEFAULT 0,
    error         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS messages (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    import_id  TEXT NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    channel_id INTEGER NOT NULL REFERENCES channels(id),
    message    TEXT NOT NULL,
    sent_at    TEXT NOT NULL,
    flags      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_messages_import ON messages (import_id, id);
CREATE INDEX IF NOT EXISTS idx_messages_channel_sent_at ON messages (channel_id, sent_at);
`

// Times are stored as RFC 3339 text so the log's UTC offset survives a
// round trip.
const sqliteTimeLayout = time.RFC3339Nano

var _ repository.Repository = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dsn, which is either
// a file path or a file: URI.
func OpenSQLite(dsn string) (*SQLiteRepository, error) {
	if !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps PRAGMAs and in-memory databases consistent.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) CreateImport(ctx context.Context, input repository.CreateImportInput) (*repository.Import, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO imports (id, source_path, started_at, status) VALUES (?, ?, ?, 'running')`,
		input.ID, input.SourcePath, input.StartedAt.Format(sqliteTimeLayout))
	if err != nil {
		return nil, err
	}
	return &repository.Import{
		ID:         input.ID,
		SourcePath: input.SourcePath,
		StartedAt:  input.StartedAt,
		Status:     repository.ImportStatusRunning,
	}, nil
}

func (r *SQLiteRepository) CompleteImport(ctx context.Context, input repository.CompleteImportInput) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE imports SET status = ?, ended_at = ?, line_count = ?, message_count = ?, error = ? WHERE id = ?`,
		string(input.Status), input.EndedAt.Format(sqliteTimeLayout), input.LineCount, input.MessageCount, input.Error, input.ImportID)
	return err
}

func (r *SQLiteRepository) GetImport(ctx context.Context, importID string) (*repository.Import, error) {
	var (
		run       repository.Import
		status    string
		startedAt string
		endedAt   sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, source_path, started_at, ended_at, status, line_count, message_count, error
		 FROM imports WHERE id = ?`, importID,
	).Scan(&run.ID, &run.SourcePath, &startedAt, &endedAt, &status, &run.LineCount, &run.MessageCount, &run.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.Status = repository.ImportStatus(status)
	if run.StartedAt, err = time.Parse(sqliteTimeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if endedAt.Valid {
		t, err := time.Parse(sqliteTimeLayout, endedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse ended_at: %w", err)
		}
		run.EndedAt = &t
	}
	return &run, nil
}

func (r *SQLiteRepository) FindOrCreateUser(ctx context.Context, name string) (int64, error) {
	return r.findOrCreate(ctx,
		`INSERT INTO users (name) VALUES (?)
		 ON CONFLICT (name) DO UPDATE SET name = excluded.name
		 RETURNING id`, name)
}

func (r *SQLiteRepository) FindOrCreateChannel(ctx context.Context, name string) (int64, error) {
	return r.findOrCreate(ctx,
		`INSERT INTO channels (name) VALUES (?)
		 ON CONFLICT (name) DO UPDATE SET name = excluded.name
		 RETURNING id`, name)
}

func (r *SQLiteRepository) findOrCreate(ctx context.Context, query, name string) (int64, error) {
	var id int64
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *SQLiteRepository) InsertMessages(ctx context.Context, messages []repository.NewMessage) error {
	if len(messages) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO messages (import_id, user_id, channel_id, message, sent_at, flags) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range messages {
		if _, err := stmt.ExecContext(ctx, m.ImportID, m.UserID, m.ChannelID, m.Message, m.SentAt.Format(sqliteTimeLayout), strings.Join(m.Flags, ",")); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) ListMessagesByImportID(ctx context.Context, importID string) ([]repository.StoredMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.import_id, u.name, c.name, m.message, m.sent_at, m.flags
		 FROM messages m
		 JOIN users u ON u.id = m.user_id
		 JOIN channels c ON c.id = m.channel_id
		 WHERE m.import_id = ?
		 ORDER BY m.id ASC`, importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.StoredMessage
	for rows.Next() {
		var (
			msg    repository.StoredMessage
			sentAt string
			flags  string
		)
		if err := rows.Scan(&msg.ID, &msg.ImportID, &msg.UserName, &msg.ChannelName, &msg.Message, &sentAt, &flags); err != nil {
			return nil, err
		}
		if msg.SentAt, err = time.Parse(sqliteTimeLayout, sentAt); err != nil {
			return nil, fmt.Errorf("parse sent_at of message %d: %w", msg.ID, err)
		}
		msg.Flags = []string{}
		if flags != "" {
			msg.Flags = strings.Split(flags, ",")
		}
		list = append(list, msg)
	}
	return list, rows.Err()
}

func (r *SQLiteRepository) Shutdown() error {
	return r.db.Close()
}
