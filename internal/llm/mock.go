package llm

import (
	"context"
	"strings"
	"sync"
)

// MockClient is a configurable LLM client for testing and offline runs.
// With no configured response it reports a contradiction whenever the two
// statements differ after normalization.
type MockClient struct {
	mu sync.Mutex

	CheckContradictionResponse *bool
	CheckContradictionError    error

	// Call tracking for assertions
	CheckContradictionCalls []struct{ A, B string }
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (c *MockClient) CheckContradiction(ctx context.Context, stmtA, stmtB string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CheckContradictionCalls = append(c.CheckContradictionCalls, struct{ A, B string }{stmtA, stmtB})
	if c.CheckContradictionError != nil {
		return false, c.CheckContradictionError
	}
	if c.CheckContradictionResponse != nil {
		return *c.CheckContradictionResponse, nil
	}
	return !strings.EqualFold(strings.TrimSpace(stmtA), strings.TrimSpace(stmtB)), nil
}

func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CheckContradictionCalls = nil
	c.CheckContradictionResponse = nil
	c.CheckContradictionError = nil
}
