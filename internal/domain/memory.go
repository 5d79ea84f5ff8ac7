package domain

import (
	"time"
)

type MemorySource string

const (
	SourceUser     MemorySource = "user"
	SourceDocument MemorySource = "document"
	SourceCode     MemorySource = "code"
	SourceInferred MemorySource = "inferred"
)

func ValidMemorySource(s string) bool {
	switch MemorySource(s) {
	case SourceUser, SourceDocument, SourceCode, SourceInferred:
		return true
	}
	return false
}

// DefaultTrust is the trust a memory gets when the caller does not supply one.
func (s MemorySource) DefaultTrust() float64 {
	switch s {
	case SourceUser:
		return 0.70
	case SourceDocument:
		return 0.60
	case SourceCode:
		return 0.80
	case SourceInferred:
		return 0.40
	default:
		return 0.50
	}
}

// Memory is a trust-scored statement handed to the verifier. It is treated as
// immutable once passed in.
type Memory struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Trust     float64        `json:"trust"`
	// Timestamp only orders memories against each other. MemoryService
	// stamps unix nanoseconds.
	Timestamp *int64         `json:"timestamp,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// StoredMemory is a Memory as persisted by a MemoryStore.
type StoredMemory struct {
	Memory
	ThreadID  string       `json:"thread_id"`
	Source    MemorySource `json:"source"`
	Embedding []float32    `json:"-"`
	CreatedAt time.Time    `json:"created_at"`
}

type MemoryWithScore struct {
	StoredMemory
	Score float32 `json:"score"`
}

// Memories strips store metadata so a thread can be passed to the verifier.
func Memories(stored []StoredMemory) []Memory {
	out := make([]Memory, len(stored))
	for i := range stored {
		out[i] = stored[i].Memory
	}
	return out
}

func Int64Ptr(v int64) *int64 {
	return &v
}
