package store

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Options selects the backing database. DatabaseURL wins over SQLitePath.
type Options struct {
	DatabaseURL string
	SQLitePath  string
}

// Open connects to Postgres when a database URL is configured and falls back
// to SQLite otherwise. The schema is created if missing.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (domain.MemoryStore, error) {
	if opts.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		s := NewPostgresStore(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("connected to postgres")
		return s, nil
	}

	path := opts.SQLitePath
	if path == "" {
		path = "groundcheck.db"
	}
	s, err := NewSQLiteStore(ctx, path)
	if err != nil {
		return nil, err
	}
	logger.Info("opened sqlite store", zap.String("path", path))
	return s, nil
}
