package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Harshitk-cp/groundcheck/internal/buildconfig"
)

const (
	openAIEmbeddingURL = "https://api.openai.com/v1/embeddings"
	DefaultOpenAIModel = "text-embedding-3-small"

	// maxBatchInputs bounds one request. Larger batches are split.
	maxBatchInputs  = 256
	maxResponseSize = 32 << 20
)

// ErrEmptyText is returned when asked to embed blank text.
var ErrEmptyText = errors.New("embed empty text")

// APIError is a non-200 answer from the embeddings endpoint.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("embedding API returned status %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("embedding API returned status %d: %s", e.StatusCode, e.Message)
}

// OpenAIClient embeds memory values and claims through the OpenAI
// embeddings API. Matching a claim needs a vector for the claim and for
// every supported value, so EmbedBatch sends them in one request.
type OpenAIClient struct {
	endpoint   string
	apiKey     string
	model      string
	dimensions int
	httpClient *http.Client
}

type OpenAIOption func(*OpenAIClient)

// WithModel selects the embedding model. Blank keeps the default.
func WithModel(model string) OpenAIOption {
	return func(c *OpenAIClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithDimensions asks the API to shorten vectors to n dimensions.
func WithDimensions(n int) OpenAIOption {
	return func(c *OpenAIClient) {
		if n > 0 {
			c.dimensions = n
		}
	}
}

func NewOpenAIClient(apiKey string, opts ...OpenAIOption) *OpenAIClient {
	c := &OpenAIClient{
		endpoint:   openAIEmbeddingURL,
		apiKey:     apiKey,
		model:      DefaultOpenAIModel,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

type apiErrorBody struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns one vector per text, in input order.
func (c *OpenAIClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = strings.TrimSpace(t)
		if inputs[i] == "" {
			return nil, fmt.Errorf("input %d: %w", i, ErrEmptyText)
		}
	}

	out := make([][]float32, 0, len(inputs))
	for start := 0; start < len(inputs); start += maxBatchInputs {
		end := min(start+maxBatchInputs, len(inputs))
		vecs, err := c.request(ctx, inputs[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (c *OpenAIClient) request(ctx context.Context, inputs []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingRequest{
		Model:      c.model,
		Input:      inputs,
		Dimensions: c.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", buildconfig.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var eb apiErrorBody
		if json.Unmarshal(respBody, &eb) == nil && eb.Error != nil {
			apiErr.Message = eb.Error.Message
			apiErr.Type = eb.Error.Type
		}
		return nil, apiErr
	}

	var result embeddingResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal embedding response: %w", err)
	}
	if len(result.Data) != len(inputs) {
		return nil, fmt.Errorf("embedding API returned %d vectors for %d inputs", len(result.Data), len(inputs))
	}

	// The API may answer out of order.
	sort.Slice(result.Data, func(i, j int) bool { return result.Data[i].Index < result.Data[j].Index })
	vecs := make([][]float32, len(inputs))
	for i, d := range result.Data {
		if d.Index != i || len(d.Embedding) == 0 {
			return nil, fmt.Errorf("embedding API returned a malformed vector at index %d", d.Index)
		}
		vecs[i] = d.Embedding
	}
	return vecs, nil
}
