package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

const postgresSchema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS memories (
	id         TEXT PRIMARY KEY,
	thread_id  TEXT NOT NULL,
	text       TEXT NOT NULL,
	trust      DOUBLE PRECISION NOT NULL,
	timestamp  BIGINT,
	source     TEXT NOT NULL,
	metadata   JSONB,
	embedding  vector,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_memories_thread ON memories (thread_id, trust DESC, timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_memories_created_at ON memories (created_at);
`

const memoryColumns = `id, thread_id, text, trust, timestamp, source, metadata, created_at`

// PostgresStore is a MemoryStore backed by Postgres with the pgvector
// extension.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the memories table and its indexes when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, m *domain.StoredMemory) error {
	var embedding *pgvector.Vector
	if len(m.Embedding) > 0 {
		v := pgvector.NewVector(m.Embedding)
		embedding = &v
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO memories (id, thread_id, text, trust, timestamp, source, metadata, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.ThreadID, m.Text, m.Trust, m.Timestamp, m.Source, m.Metadata, embedding, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*domain.StoredMemory, error) {
	m := &domain.StoredMemory{}
	err := s.db.QueryRow(ctx,
		`SELECT `+memoryColumns+` FROM memories WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.ThreadID, &m.Text, &m.Trust, &m.Timestamp, &m.Source, &m.Metadata, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

// ListByThread returns the thread's memories by trust, newest first among
// equals. A limit of zero or less returns everything.
func (s *PostgresStore) ListByThread(ctx context.Context, threadID string, limit int) ([]domain.StoredMemory, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+memoryColumns+`
		 FROM memories WHERE thread_id = $1
		 ORDER BY trust DESC, timestamp DESC NULLS LAST, created_at DESC
		 LIMIT $2`,
		threadID, limitArg(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list thread query: %w", err)
	}
	defer rows.Close()

	var memories []domain.StoredMemory
	for rows.Next() {
		var m domain.StoredMemory
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.Text, &m.Trust, &m.Timestamp, &m.Source, &m.Metadata, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan memory row: %w", err)
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

// Search ranks the thread's embedded memories by cosine similarity.
func (s *PostgresStore) Search(ctx context.Context, threadID string, embedding []float32, limit int) ([]domain.MemoryWithScore, error) {
	vec := pgvector.NewVector(embedding)

	rows, err := s.db.Query(ctx,
		`SELECT `+memoryColumns+`, (1 - (embedding <=> $2))::real AS score
		 FROM memories
		 WHERE thread_id = $1 AND embedding IS NOT NULL
		 ORDER BY embedding <=> $2
		 LIMIT $3`,
		threadID, vec, limitArg(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []domain.MemoryWithScore
	for rows.Next() {
		var ms domain.MemoryWithScore
		err := rows.Scan(
			&ms.ID, &ms.ThreadID, &ms.Text, &ms.Trust, &ms.Timestamp, &ms.Source, &ms.Metadata, &ms.CreatedAt,
			&ms.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		results = append(results, ms)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search rows: %w", err)
	}

	return results, nil
}

func (s *PostgresStore) UpdateTrust(ctx context.Context, id string, trust float64) error {
	tag, err := s.db.Exec(ctx, `UPDATE memories SET trust = $1 WHERE id = $2`, trust, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM memories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ClearThread(ctx context.Context, threadID string) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM memories WHERE thread_id = $1`, threadID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM memories WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

// limitArg turns a non-positive limit into NULL, which Postgres treats as
// no limit.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
