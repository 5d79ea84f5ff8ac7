package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS memories (
	id         TEXT PRIMARY KEY,
	thread_id  TEXT NOT NULL,
	text       TEXT NOT NULL,
	trust      REAL NOT NULL,
	timestamp  INTEGER,
	source     TEXT NOT NULL,
	metadata   TEXT,
	embedding  TEXT,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_memories_thread ON memories (thread_id);
CREATE INDEX IF NOT EXISTS idx_memories_created_at ON memories (created_at);
`

// SQLiteStore is a MemoryStore in a local SQLite file. Embeddings are kept
// as JSON arrays and similarity search runs in process.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens path (":memory:" for a throwaway database) and
// creates the schema.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Every connection to :memory: would see its own empty database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, m *domain.StoredMemory) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	metadata, err := marshalNullable(m.Metadata, len(m.Metadata) == 0)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	embedding, err := marshalNullable(m.Embedding, len(m.Embedding) == 0)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO memories (id, thread_id, text, trust, timestamp, source, metadata, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ThreadID, m.Text, m.Trust, m.Timestamp, string(m.Source), metadata, embedding, m.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*domain.StoredMemory, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, thread_id, text, trust, timestamp, source, metadata, embedding, created_at
		 FROM memories WHERE id = ?`, id)
	m, err := scanSQLiteMemory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

// ListByThread returns the thread's memories by trust, newest first among
// equals. A limit of zero or less returns everything.
func (s *SQLiteStore) ListByThread(ctx context.Context, threadID string, limit int) ([]domain.StoredMemory, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, thread_id, text, trust, timestamp, source, metadata, embedding, created_at
		 FROM memories WHERE thread_id = ?
		 ORDER BY trust DESC, timestamp IS NULL, timestamp DESC, created_at DESC
		 LIMIT ?`,
		threadID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list thread query: %w", err)
	}
	defer rows.Close()

	var memories []domain.StoredMemory
	for rows.Next() {
		m, err := scanSQLiteMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan memory row: %w", err)
		}
		memories = append(memories, *m)
	}
	return memories, rows.Err()
}

// Search loads the thread's embedded memories and ranks them by cosine
// similarity to embedding.
func (s *SQLiteStore) Search(ctx context.Context, threadID string, embedding []float32, limit int) ([]domain.MemoryWithScore, error) {
	memories, err := s.ListByThread(ctx, threadID, 0)
	if err != nil {
		return nil, err
	}

	var results []domain.MemoryWithScore
	for _, m := range memories {
		if len(m.Embedding) == 0 {
			continue
		}
		score, ok := cosineSimilarity(embedding, m.Embedding)
		if !ok {
			continue
		}
		results = append(results, domain.MemoryWithScore{StoredMemory: m, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *SQLiteStore) UpdateTrust(ctx context.Context, id string, trust float64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE memories SET trust = ? WHERE id = ?`, trust, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *SQLiteStore) ClearThread(ctx context.Context, threadID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE thread_id = ?`, threadID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE created_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	_ = s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteMemory(row rowScanner) (*domain.StoredMemory, error) {
	var (
		m         domain.StoredMemory
		source    string
		timestamp sql.NullInt64
		metadata  sql.NullString
		embedding sql.NullString
		createdAt int64
	)
	if err := row.Scan(&m.ID, &m.ThreadID, &m.Text, &m.Trust, &timestamp, &source, &metadata, &embedding, &createdAt); err != nil {
		return nil, err
	}
	m.Source = domain.MemorySource(source)
	m.CreatedAt = time.Unix(0, createdAt)
	if timestamp.Valid {
		m.Timestamp = domain.Int64Ptr(timestamp.Int64)
	}
	if metadata.Valid {
		if err := json.Unmarshal([]byte(metadata.String), &m.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	if embedding.Valid {
		if err := json.Unmarshal([]byte(embedding.String), &m.Embedding); err != nil {
			return nil, fmt.Errorf("decode embedding: %w", err)
		}
	}
	return &m, nil
}

func marshalNullable(v any, empty bool) (sql.NullString, error) {
	if empty {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func cosineSimilarity(a, b []float32) (float32, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb))), true
}
