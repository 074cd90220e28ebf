package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/foxseedlab/chattyarchive/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ repository.Repository = (*PostgresRepository)(nil)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateImport(ctx context.Context, input repository.CreateImportInput) (*repository.Import, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO imports (id, source_path, started_at, status)
		 VALUES ($1, $2, $3, 'running')
		 RETURNING id::text, source_path, started_at, ended_at, status::text, line_count, message_count, error`,
		input.ID, input.SourcePath, input.StartedAt)
	return scanImport(row)
}

func (r *PostgresRepository) CompleteImport(ctx context.Context, input repository.CompleteImportInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE imports
		 SET status = $2::import_status, ended_at = $3, line_count = $4, message_count = $5, error = $6
		 WHERE id = $1`,
		input.ImportID, string(input.Status), input.EndedAt, input.LineCount, input.MessageCount, input.Error)
	return err
}

func (r *PostgresRepository) GetImport(ctx context.Context, importID string) (*repository.Import, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id::text, source_path, started_at, ended_at, status::text, line_count, message_count, error
		 FROM imports WHERE id = $1`,
		importID)
	run, err := scanImport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

func scanImport(row pgx.Row) (*repository.Import, error) {
	var run repository.Import
	var status string
	var endedAt *time.Time
	if err := row.Scan(&run.ID, &run.SourcePath, &run.StartedAt, &endedAt, &status, &run.LineCount, &run.MessageCount, &run.Error); err != nil {
		return nil, err
	}
	run.EndedAt = endedAt
	run.Status = repository.ImportStatus(status)
	return &run, nil
}

func (r *PostgresRepository) FindOrCreateUser(ctx context.Context, name string) (int64, error) {
	return r.findOrCreate(ctx,
		`INSERT INTO users (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`, name)
}

func (r *PostgresRepository) FindOrCreateChannel(ctx context.Context, name string) (int64, error) {
	return r.findOrCreate(ctx,
		`INSERT INTO channels (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`, name)
}

func (r *PostgresRepository) findOrCreate(ctx context.Context, query, name string) (int64, error) {
	var id int64
	if err := r.pool.QueryRow(ctx, query, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

var messageColumns = []string{"import_id", "user_id", "channel_id", "message", "sent_at", "flags"}

// InsertMessages writes the batch with a single COPY.
func (r *PostgresRepository) InsertMessages(ctx context.Context, messages []repository.NewMessage) error {
	if len(messages) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(messages))
	for _, m := range messages {
		importID, err := uuid.Parse(m.ImportID)
		if err != nil {
			return fmt.Errorf("invalid import id %q: %w", m.ImportID, err)
		}
		flags := m.Flags
		if flags == nil {
			flags = []string{}
		}
		rows = append(rows, []any{
			pgtype.UUID{Bytes: importID, Valid: true},
			m.UserID,
			m.ChannelID,
			m.Message,
			m.SentAt,
			flags,
		})
	}
	n, err := r.pool.CopyFrom(ctx, pgx.Identifier{"messages"}, messageColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return err
	}
	if int(n) != len(messages) {
		return fmt.Errorf("copied %d of %d messages", n, len(messages))
	}
	return nil
}

func (r *PostgresRepository) ListMessagesByImportID(ctx context.Context, importID string) ([]repository.StoredMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.id, m.import_id::text, u.name, c.name, m.message, m.sent_at, m.flags
		 FROM messages m
		 JOIN users u ON u.id = m.user_id
		 JOIN channels c ON c.id = m.channel_id
		 WHERE m.import_id = $1
		 ORDER BY m.id ASC`,
		importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.StoredMessage
	for rows.Next() {
		var msg repository.StoredMessage
		if err := rows.Scan(&msg.ID, &msg.ImportID, &msg.UserName, &msg.ChannelName, &msg.Message, &msg.SentAt, &msg.Flags); err != nil {
			return nil, err
		}
		list = append(list, msg)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) Shutdown() error {
	r.pool.Close()
	return nil
}
