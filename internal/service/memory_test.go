package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockMemoryStore implements domain.MemoryStore for testing.
type mockMemoryStore struct {
	mu       sync.Mutex
	memories map[string]*domain.StoredMemory
	searched int
	listErr  error
}

func newMockMemoryStore() *mockMemoryStore {
	return &mockMemoryStore{memories: make(map[string]*domain.StoredMemory)}
}

func (m *mockMemoryStore) Create(ctx context.Context, mem *domain.StoredMemory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *mem
	m.memories[mem.ID] = &cp
	return nil
}

func (m *mockMemoryStore) GetByID(ctx context.Context, id string) (*domain.StoredMemory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.memories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *mem
	return &cp, nil
}

func (m *mockMemoryStore) ListByThread(ctx context.Context, threadID string, limit int) ([]domain.StoredMemory, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StoredMemory
	for _, mem := range m.memories {
		if mem.ThreadID == threadID {
			out = append(out, *mem)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Trust != out[j].Trust {
			return out[i].Trust > out[j].Trust
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockMemoryStore) Search(ctx context.Context, threadID string, embedding []float32, limit int) ([]domain.MemoryWithScore, error) {
	m.mu.Lock()
	m.searched++
	m.mu.Unlock()
	list, _ := m.ListByThread(ctx, threadID, 0)
	var out []domain.MemoryWithScore
	for _, mem := range list {
		if sim, ok := cosine(embedding, mem.Embedding); ok {
			out = append(out, domain.MemoryWithScore{StoredMemory: mem, Score: float32(sim)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockMemoryStore) UpdateTrust(ctx context.Context, id string, trust float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.memories[id]
	if !ok {
		return store.ErrNotFound
	}
	mem.Trust = trust
	return nil
}

func (m *mockMemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.memories[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.memories, id)
	return nil
}

func (m *mockMemoryStore) ClearThread(ctx context.Context, threadID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, mem := range m.memories {
		if mem.ThreadID == threadID {
			delete(m.memories, id)
			n++
		}
	}
	return n, nil
}

func (m *mockMemoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, mem := range m.memories {
		if mem.CreatedAt.Before(cutoff) {
			delete(m.memories, id)
			n++
		}
	}
	return n, nil
}

func (m *mockMemoryStore) Ping(ctx context.Context) error { return nil }

func (m *mockMemoryStore) Close() {}

func newTestMemoryService(t *testing.T, ms domain.MemoryStore, ec domain.EmbeddingClient) *MemoryService {
	t.Helper()
	svc := NewMemoryService(ms, newTestVerifier(t), ec, zap.NewNop())
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc
}

func TestMemoryService_Store(t *testing.T) {
	ms := newMockMemoryStore()
	svc := newTestMemoryService(t, ms, nil)
	ctx := context.Background()

	first, err := svc.Store(ctx, StoreRequest{ThreadID: "t1", Text: "User works at Microsoft"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.Memory.ID)
	assert.Equal(t, 0.70, first.Memory.Trust)
	assert.Equal(t, domain.SourceUser, first.Memory.Source)
	require.NotNil(t, first.Memory.Timestamp)
	assert.Empty(t, first.Contradictions)
	assert.Equal(t, 1, first.TotalMemories)
	employer, ok := first.FactsExtracted.Get("employer")
	require.True(t, ok)
	assert.Equal(t, "microsoft", employer.Normalized)

	trust := 0.9
	second, err := svc.Store(ctx, StoreRequest{ThreadID: "t1", Text: "User works at Amazon", Trust: &trust})
	require.NoError(t, err)
	assert.Equal(t, 0.9, second.Memory.Trust)
	assert.Equal(t, 2, second.TotalMemories)
	require.Len(t, second.Contradictions, 1)
	assert.Equal(t, "employer", second.Contradictions[0].Slot)
	assert.Contains(t, second.Contradictions[0].MemoryIDs, second.Memory.ID)

	// A memory in another thread never conflicts with t1.
	other, err := svc.Store(ctx, StoreRequest{ThreadID: "t2", Text: "User works at Google"})
	require.NoError(t, err)
	assert.Empty(t, other.Contradictions)
	assert.Equal(t, 1, other.TotalMemories)
}

func TestMemoryService_StoreOnlyReportsNewConflicts(t *testing.T) {
	ms := newMockMemoryStore()
	svc := newTestMemoryService(t, ms, nil)
	ctx := context.Background()

	for _, text := range []string{"User works at Microsoft", "User works at Amazon"} {
		_, err := svc.Store(ctx, StoreRequest{ThreadID: "t1", Text: text})
		require.NoError(t, err)
	}

	res, err := svc.Store(ctx, StoreRequest{ThreadID: "t1", Text: "User lives in Seattle"})
	require.NoError(t, err)
	assert.Empty(t, res.Contradictions)
	assert.Equal(t, 3, res.TotalMemories)
}

func TestMemoryService_StoreSameSecondOrdering(t *testing.T) {
	ms := newMockMemoryStore()
	svc := NewMemoryService(ms, newTestVerifier(t), nil, zap.NewNop())
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	ctx := context.Background()

	first, err := svc.Store(ctx, StoreRequest{ThreadID: "t1", Text: "User works at Microsoft"})
	require.NoError(t, err)
	second, err := svc.Store(ctx, StoreRequest{ThreadID: "t1", Text: "User works at Amazon"})
	require.NoError(t, err)

	require.NotNil(t, first.Memory.Timestamp)
	require.NotNil(t, second.Memory.Timestamp)
	assert.Greater(t, *second.Memory.Timestamp, *first.Memory.Timestamp)
	require.Len(t, second.Contradictions, 1)
	assert.Equal(t, "amazon", second.Contradictions[0].MostRecentValue())
}

func TestMemoryService_StoreValidation(t *testing.T) {
	bad := 1.5
	tests := []struct {
		name    string
		req     StoreRequest
		wantErr error
	}{
		{"empty text", StoreRequest{ThreadID: "t1", Text: "   "}, ErrTextEmpty},
		{"missing thread", StoreRequest{Text: "User works at Microsoft"}, ErrThreadIDMissing},
		{"invalid source", StoreRequest{ThreadID: "t1", Text: "x", Source: "rumor"}, ErrInvalidSource},
		{"trust out of range", StoreRequest{ThreadID: "t1", Text: "x", Trust: &bad}, ErrInvalidTrust},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestMemoryService(t, newMockMemoryStore(), nil)
			_, err := svc.Store(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMemoryService_StoreSourceDefaults(t *testing.T) {
	svc := newTestMemoryService(t, newMockMemoryStore(), nil)
	res, err := svc.Store(context.Background(), StoreRequest{
		ThreadID: "t1",
		Text:     "FACT: language = Go",
		Source:   domain.SourceCode,
		Metadata: map[string]any{"file": "main.go"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.80, res.Memory.Trust)
	assert.Equal(t, "main.go", res.Memory.Metadata["file"])
}

func TestMemoryService_StoreEmbeddingFailure(t *testing.T) {
	ms := newMockMemoryStore()
	svc := newTestMemoryService(t, ms, &mockEmbeddingClient{err: errors.New("rate limited")})

	res, err := svc.Store(context.Background(), StoreRequest{ThreadID: "t1", Text: "User works at Microsoft"})
	require.NoError(t, err)
	assert.Nil(t, res.Memory.Embedding)

	stored, err := ms.GetByID(context.Background(), res.Memory.ID)
	require.NoError(t, err)
	assert.Equal(t, "User works at Microsoft", stored.Text)
}

func TestMemoryService_StoreListError(t *testing.T) {
	ms := newMockMemoryStore()
	ms.listErr = errors.New("connection refused")
	svc := newTestMemoryService(t, ms, nil)

	_, err := svc.Store(context.Background(), StoreRequest{ThreadID: "t1", Text: "User works at Microsoft"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestMemoryService_Check(t *testing.T) {
	ms := newMockMemoryStore()
	svc := newTestMemoryService(t, ms, nil)
	ctx := context.Background()

	res, err := svc.Check(ctx, "t1", "")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Found)
	assert.Equal(t, noMemoriesNote, res.Note)
	assert.NotNil(t, res.Memories)

	low := 0.5
	_, err = svc.Store(ctx, StoreRequest{ThreadID: "t1", Text: "User works at Microsoft", Trust: &low})
	require.NoError(t, err)
	_, err = svc.Store(ctx, StoreRequest{ThreadID: "t1", Text: "User works at Amazon"})
	require.NoError(t, err)

	res, err = svc.Check(ctx, "t1", "where do I work")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Found)
	assert.Equal(t, "User works at Amazon", res.Memories[0].Text)
	require.Len(t, res.Contradictions, 1)
	assert.Equal(t, "amazon", res.Contradictions[0].MostTrustedValue())
	assert.Equal(t, 0, ms.searched)

	_, err = svc.Check(ctx, "", "")
	assert.ErrorIs(t, err, ErrThreadIDMissing)
}

func TestMemoryService_CheckWithEmbeddings(t *testing.T) {
	ec := &mockEmbeddingClient{vectors: map[string][]float32{
		"User works at Microsoft": {1, 0, 0},
		"User likes hiking":       {0, 1, 0},
		"job":                     {0.9, 0.1, 0},
	}}
	ms := newMockMemoryStore()
	svc := newTestMemoryService(t, ms, ec)
	ctx := context.Background()

	for _, text := range []string{"User likes hiking", "User works at Microsoft"} {
		_, err := svc.Store(ctx, StoreRequest{ThreadID: "t1", Text: text})
		require.NoError(t, err)
	}

	res, err := svc.Check(ctx, "t1", "job")
	require.NoError(t, err)
	assert.Equal(t, 1, ms.searched)
	require.Equal(t, 2, res.Found)
	assert.Equal(t, "User works at Microsoft", res.Memories[0].Text)
}

func TestMemoryService_VerifyDraft(t *testing.T) {
	ms := newMockMemoryStore()
	svc := newTestMemoryService(t, ms, nil)
	ctx := context.Background()

	res, err := svc.VerifyDraft(ctx, "t1", "You work at Google", "")
	require.NoError(t, err)
	assert.True(t, res.Report.Passed)
	assert.Equal(t, 0.0, res.Report.Confidence)
	assert.Equal(t, 0, res.MemoriesCount)
	assert.Equal(t, noMemoriesVerifyNote, res.Note)

	_, err = svc.Store(ctx, StoreRequest{ThreadID: "t1", Text: "User works at Microsoft"})
	require.NoError(t, err)

	res, err = svc.VerifyDraft(ctx, "t1", "You work at Google", "")
	require.NoError(t, err)
	assert.False(t, res.Report.Passed)
	assert.Equal(t, 1, res.MemoriesCount)
	assert.Equal(t, []string{"Google"}, res.Report.Hallucinations)
	require.NotNil(t, res.Report.Corrected)
	assert.Contains(t, *res.Report.Corrected, "Microsoft")

	res, err = svc.VerifyDraft(ctx, "t1", "You work at Microsoft", domain.ModePermissive)
	require.NoError(t, err)
	assert.True(t, res.Report.Passed)
	assert.Nil(t, res.Report.Corrected)

	_, err = svc.VerifyDraft(ctx, "t1", "x", "lenient")
	assert.ErrorIs(t, err, ErrInvalidMode)
	_, err = svc.VerifyDraft(ctx, "", "x", "")
	assert.ErrorIs(t, err, ErrThreadIDMissing)
}

func TestMemoryService_GetDeleteUpdate(t *testing.T) {
	ms := newMockMemoryStore()
	svc := newTestMemoryService(t, ms, nil)
	ctx := context.Background()

	res, err := svc.Store(ctx, StoreRequest{ThreadID: "t1", Text: "User works at Microsoft"})
	require.NoError(t, err)
	id := res.Memory.ID

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ThreadID)

	require.NoError(t, svc.UpdateTrust(ctx, id, 0.95))
	got, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0.95, got.Trust)

	assert.ErrorIs(t, svc.UpdateTrust(ctx, id, -0.1), ErrInvalidTrust)
	assert.ErrorIs(t, svc.UpdateTrust(ctx, "missing", 0.5), ErrMemoryNotFound)

	require.NoError(t, svc.Delete(ctx, id))
	_, err = svc.Get(ctx, id)
	assert.ErrorIs(t, err, ErrMemoryNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, id), ErrMemoryNotFound)
}

func TestMemoryService_ClearThread(t *testing.T) {
	ms := newMockMemoryStore()
	svc := newTestMemoryService(t, ms, nil)
	ctx := context.Background()

	for _, thread := range []string{"t1", "t1", "t2"} {
		_, err := svc.Store(ctx, StoreRequest{ThreadID: thread, Text: "User likes tea"})
		require.NoError(t, err)
	}

	n, err := svc.ClearThread(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	res, err := svc.Check(ctx, "t2", "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Found)

	_, err = svc.ClearThread(ctx, "")
	assert.ErrorIs(t, err, ErrThreadIDMissing)
}

func TestPruner_PruneOnce(t *testing.T) {
	ms := newMockMemoryStore()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, age := range []time.Duration{time.Hour, 48 * time.Hour, 10 * 24 * time.Hour} {
		require.NoError(t, ms.Create(context.Background(), &domain.StoredMemory{
			Memory:    domain.Memory{ID: string(rune('a' + i)), Text: "User likes tea", Trust: 0.7},
			ThreadID:  "t1",
			CreatedAt: now.Add(-age),
		}))
	}

	p := NewPruner(ms, 24*time.Hour, zap.NewNop())
	p.now = func() time.Time { return now }

	assert.Equal(t, int64(2), p.PruneOnce(context.Background()))
	assert.Equal(t, int64(0), p.PruneOnce(context.Background()))
	_, err := ms.GetByID(context.Background(), "a")
	assert.NoError(t, err)
}

func TestPruner_StartStop(t *testing.T) {
	ms := newMockMemoryStore()
	require.NoError(t, ms.Create(context.Background(), &domain.StoredMemory{
		Memory:    domain.Memory{ID: "old", Text: "User likes tea"},
		ThreadID:  "t1",
		CreatedAt: time.Now().Add(-72 * time.Hour),
	}))

	p := NewPruner(ms, 24*time.Hour, zap.NewNop())
	p.SetInterval(5 * time.Millisecond)
	p.Start()

	assert.Eventually(t, func() bool {
		_, err := ms.GetByID(context.Background(), "old")
		return errors.Is(err, store.ErrNotFound)
	}, time.Second, 5*time.Millisecond)

	p.Stop()
}
