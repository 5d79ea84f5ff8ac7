package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
)

const defaultCacheSize = 4096

// CachedClient memoizes embeddings by exact text. Matching embeds the same
// memory values over and over, so this saves most provider calls. When the
// cache is full it is reset.
type CachedClient struct {
	next domain.EmbeddingClient
	max  int

	mu    sync.Mutex
	cache map[string][]float32
}

func NewCachedClient(next domain.EmbeddingClient, max int) *CachedClient {
	if max <= 0 {
		max = defaultCacheSize
	}
	return &CachedClient{next: next, max: max, cache: make(map[string][]float32)}
}

func (c *CachedClient) Embed(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	if v, ok := c.cache[text]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.store(text, v)
	return v, nil
}

// EmbedBatch serves cached texts and embeds the misses together, in one
// call when the wrapped client supports batches.
func (c *CachedClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingAt []int

	c.mu.Lock()
	for i, t := range texts {
		if v, ok := c.cache[t]; ok {
			out[i] = v
			continue
		}
		missing = append(missing, t)
		missingAt = append(missingAt, i)
	}
	c.mu.Unlock()

	if len(missing) == 0 {
		return out, nil
	}
	vecs, err := EmbedAll(ctx, c.next, missing)
	if err != nil {
		return nil, err
	}
	for j, v := range vecs {
		out[missingAt[j]] = v
		c.store(missing[j], v)
	}
	return out, nil
}

func (c *CachedClient) store(text string, v []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.cache) >= c.max {
		c.cache = make(map[string][]float32)
	}
	c.cache[text] = v
}

// EmbedAll embeds texts with one batch call when ec supports it and one
// call per text otherwise.
func EmbedAll(ctx context.Context, ec domain.EmbeddingClient, texts []string) ([][]float32, error) {
	if bc, ok := ec.(domain.BatchEmbeddingClient); ok {
		vecs, err := bc.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("embedded %d of %d texts", len(vecs), len(texts))
		}
		return vecs, nil
	}
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := ec.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		vecs[i] = v
	}
	return vecs, nil
}
