package domain

import (
	"context"
	"time"
)

// MatchResult describes how a claimed value was matched against the
// supported set. Method is empty when nothing matched.
type MatchResult struct {
	Matched bool   `json:"matched"`
	Method  string `json:"method,omitempty"`
	Value   string `json:"value,omitempty"`
}

// ValueMatcher decides whether a claimed value is supported by any of the
// given memory values.
type ValueMatcher interface {
	IsMatch(ctx context.Context, claimed string, supported []string, slot string) (MatchResult, error)
}

// ContradictionConfirmer decides whether two values of a dynamically
// discovered slot genuinely contradict each other.
type ContradictionConfirmer interface {
	Check(ctx context.Context, a, b, slot string) (bool, error)
}

type MemoryStore interface {
	Create(ctx context.Context, m *StoredMemory) error
	GetByID(ctx context.Context, id string) (*StoredMemory, error)
	ListByThread(ctx context.Context, threadID string, limit int) ([]StoredMemory, error)
	Search(ctx context.Context, threadID string, embedding []float32, limit int) ([]MemoryWithScore, error)
	UpdateTrust(ctx context.Context, id string, trust float64) error
	Delete(ctx context.Context, id string) error
	ClearThread(ctx context.Context, threadID string) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Ping(ctx context.Context) error
	Close()
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbeddingClient embeds several texts in one call, returning vectors
// in input order.
type BatchEmbeddingClient interface {
	EmbeddingClient
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type LLMClient interface {
	CheckContradiction(ctx context.Context, stmtA, stmtB string) (bool, error)
}
