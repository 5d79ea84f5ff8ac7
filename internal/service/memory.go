package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultCheckLimit caps the memories returned by Check.
	DefaultCheckLimit = 50
	// threadLimit caps how many memories of a thread are verified against.
	threadLimit = 1000
)

const (
	noMemoriesNote       = "No memories stored for this thread yet."
	noMemoriesVerifyNote = "No memories to verify against. Passing by default."
)

// MemoryService stores trust-scored memories per thread and verifies drafts
// against them.
type MemoryService struct {
	memoryStore     domain.MemoryStore
	verifier        *Verifier
	embeddingClient domain.EmbeddingClient
	logger          *zap.Logger
	now             func() time.Time
}

func NewMemoryService(ms domain.MemoryStore, v *Verifier, ec domain.EmbeddingClient, logger *zap.Logger) *MemoryService {
	return &MemoryService{
		memoryStore:     ms,
		verifier:        v,
		embeddingClient: ec,
		logger:          logger,
		now:             time.Now,
	}
}

// StoreRequest describes a memory to persist. Trust is optional; when nil the
// source default applies.
type StoreRequest struct {
	ThreadID string
	Text     string
	Source   domain.MemorySource
	Trust    *float64
	Metadata map[string]any
}

// StoreResult contains the stored memory and what it conflicts with.
type StoreResult struct {
	Memory         *domain.StoredMemory         `json:"memory"`
	FactsExtracted *domain.Facts                `json:"facts_extracted"`
	Contradictions []domain.ContradictionDetail `json:"contradictions"`
	TotalMemories  int                          `json:"total_memories"`
}

func (s *MemoryService) Store(ctx context.Context, req StoreRequest) (*StoreResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrTextEmpty
	}
	if req.ThreadID == "" {
		return nil, ErrThreadIDMissing
	}
	if req.Source == "" {
		req.Source = domain.SourceUser
	}
	if !domain.ValidMemorySource(string(req.Source)) {
		return nil, ErrInvalidSource
	}
	trust := req.Source.DefaultTrust()
	if req.Trust != nil {
		if *req.Trust < 0 || *req.Trust > 1 {
			return nil, ErrInvalidTrust
		}
		trust = *req.Trust
	}

	existing, err := s.memoryStore.ListByThread(ctx, req.ThreadID, threadLimit)
	if err != nil {
		return nil, fmt.Errorf("list thread memories: %w", err)
	}

	now := s.now()
	m := &domain.StoredMemory{
		Memory: domain.Memory{
			ID:        uuid.NewString(),
			Text:      req.Text,
			Trust:     trust,
			Timestamp: domain.Int64Ptr(now.UnixNano()),
			Metadata:  req.Metadata,
		},
		ThreadID:  req.ThreadID,
		Source:    req.Source,
		CreatedAt: now,
	}

	if s.embeddingClient != nil {
		emb, err := s.embeddingClient.Embed(ctx, req.Text)
		if err != nil {
			s.logger.Warn("embedding generation failed", zap.Error(err))
		} else {
			m.Embedding = emb
		}
	}

	if err := s.memoryStore.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create memory: %w", err)
	}

	all := append(domain.Memories(existing), m.Memory)
	var conflicts []domain.ContradictionDetail
	for _, c := range s.verifier.DetectContradictions(ctx, all) {
		for _, id := range c.MemoryIDs {
			if id == m.ID {
				conflicts = append(conflicts, c)
				break
			}
		}
	}
	if len(conflicts) > 0 {
		s.logger.Info("stored memory contradicts thread",
			zap.String("thread_id", req.ThreadID),
			zap.String("memory_id", m.ID),
			zap.Int("contradictions", len(conflicts)))
	}

	return &StoreResult{
		Memory:         m,
		FactsExtracted: s.verifier.ExtractClaims(req.Text),
		Contradictions: nonNilDetails(conflicts),
		TotalMemories:  len(all),
	}, nil
}

// CheckResult lists a thread's memories together with the contradictions
// among them.
type CheckResult struct {
	Found          int                          `json:"found"`
	Memories       []domain.StoredMemory        `json:"memories"`
	Contradictions []domain.ContradictionDetail `json:"contradictions"`
	Note           string                       `json:"note,omitempty"`
}

// Check returns the memories of a thread, ranked by similarity to query when
// embeddings are available and by trust otherwise.
func (s *MemoryService) Check(ctx context.Context, threadID, query string) (*CheckResult, error) {
	if threadID == "" {
		return nil, ErrThreadIDMissing
	}

	memories, err := s.rank(ctx, threadID, query)
	if err != nil {
		return nil, err
	}
	if len(memories) == 0 {
		return &CheckResult{
			Memories:       []domain.StoredMemory{},
			Contradictions: []domain.ContradictionDetail{},
			Note:           noMemoriesNote,
		}, nil
	}

	return &CheckResult{
		Found:          len(memories),
		Memories:       memories,
		Contradictions: s.verifier.DetectContradictions(ctx, domain.Memories(memories)),
	}, nil
}

func (s *MemoryService) rank(ctx context.Context, threadID, query string) ([]domain.StoredMemory, error) {
	if strings.TrimSpace(query) != "" && s.embeddingClient != nil {
		emb, err := s.embeddingClient.Embed(ctx, query)
		if err != nil {
			s.logger.Warn("query embedding failed, listing by trust", zap.Error(err))
		} else {
			scored, err := s.memoryStore.Search(ctx, threadID, emb, DefaultCheckLimit)
			if err != nil {
				return nil, fmt.Errorf("search memories: %w", err)
			}
			if len(scored) > 0 {
				out := make([]domain.StoredMemory, len(scored))
				for i := range scored {
					out[i] = scored[i].StoredMemory
				}
				return out, nil
			}
		}
	}

	memories, err := s.memoryStore.ListByThread(ctx, threadID, DefaultCheckLimit)
	if err != nil {
		return nil, fmt.Errorf("list thread memories: %w", err)
	}
	return memories, nil
}

// DraftVerification is the outcome of VerifyDraft.
type DraftVerification struct {
	Report        *domain.VerificationReport `json:"report"`
	MemoriesCount int                        `json:"memories_count"`
	Note          string                     `json:"note,omitempty"`
}

// VerifyDraft verifies draft against every memory of the thread. A thread
// without memories passes with zero confidence.
func (s *MemoryService) VerifyDraft(ctx context.Context, threadID, draft string, mode domain.Mode) (*DraftVerification, error) {
	if threadID == "" {
		return nil, ErrThreadIDMissing
	}
	if mode == "" {
		mode = domain.ModeStrict
	}
	if !domain.ValidMode(string(mode)) {
		return nil, ErrInvalidMode
	}

	stored, err := s.memoryStore.ListByThread(ctx, threadID, threadLimit)
	if err != nil {
		return nil, fmt.Errorf("list thread memories: %w", err)
	}
	if len(stored) == 0 {
		report := domain.NewVerificationReport(draft)
		report.Confidence = 0
		return &DraftVerification{
			Report: report,
			Note:   noMemoriesVerifyNote,
		}, nil
	}

	return &DraftVerification{
		Report:        s.verifier.Verify(ctx, draft, domain.Memories(stored), mode),
		MemoriesCount: len(stored),
	}, nil
}

func (s *MemoryService) Get(ctx context.Context, id string) (*domain.StoredMemory, error) {
	m, err := s.memoryStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrMemoryNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *MemoryService) Delete(ctx context.Context, id string) error {
	err := s.memoryStore.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMemoryNotFound
		}
		return err
	}
	return nil
}

func (s *MemoryService) UpdateTrust(ctx context.Context, id string, trust float64) error {
	if trust < 0 || trust > 1 {
		return ErrInvalidTrust
	}
	err := s.memoryStore.UpdateTrust(ctx, id, trust)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMemoryNotFound
		}
		return err
	}
	return nil
}

func (s *MemoryService) ClearThread(ctx context.Context, threadID string) (int64, error) {
	if threadID == "" {
		return 0, ErrThreadIDMissing
	}
	n, err := s.memoryStore.ClearThread(ctx, threadID)
	if err != nil {
		return 0, fmt.Errorf("clear thread: %w", err)
	}
	return n, nil
}

func nonNilDetails(d []domain.ContradictionDetail) []domain.ContradictionDetail {
	if d == nil {
		return []domain.ContradictionDetail{}
	}
	return d
}
