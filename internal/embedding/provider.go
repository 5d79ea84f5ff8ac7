package embedding

import (
	"fmt"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
)

// Provider constants
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// NewClient creates an embedding client based on the provider name. "none"
// (or an empty name) returns nil, which turns off embedding matching and
// vector search. Real providers are wrapped in a CachedClient.
func NewClient(provider, apiKey string, opts ...OpenAIOption) (domain.EmbeddingClient, error) {
	switch provider {
	case "", ProviderNone:
		return nil, nil

	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("EMBEDDING_API_KEY is required for OpenAI embedding provider")
		}
		return NewCachedClient(NewOpenAIClient(apiKey, opts...), 0), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (valid options: none, openai, mock)", provider)
	}
}
