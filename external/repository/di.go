package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/foxseedlab/chattyarchive/internal/config"
	"github.com/foxseedlab/chattyarchive/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"
)

const databaseInitTimeout = 15 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (repository.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		driver, dsn, err := cfg.Database()
		if err != nil {
			return nil, err
		}
		switch driver {
		case config.DatabaseDriverPostgres:
			repo, err := openPostgres(dsn)
			if err != nil {
				return nil, err
			}
			return repo, nil
		case config.DatabaseDriverSQLite:
			repo, err := OpenSQLite(dsn)
			if err != nil {
				return nil, err
			}
			return repo, nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", driver)
		}
	})
}

func openPostgres(dsn string) (*PostgresRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), databaseInitTimeout)
	defer cancel()

	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := RunMigration(ctx, p); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to run migration: %w", err)
	}
	return NewPostgresRepository(p), nil
}
