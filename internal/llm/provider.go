package llm

import (
	"fmt"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
)

// Provider constants
const (
	ProviderNone      = "none"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderCerebras  = "cerebras"
	ProviderMock      = "mock"
)

// NewClient creates an LLM client based on the provider name. The "none"
// provider (or an empty name) returns a nil client, which disables
// contradiction confirmation.
func NewClient(provider, apiKey string) (domain.LLMClient, error) {
	switch provider {
	case "", ProviderNone:
		return nil, nil

	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIClient(apiKey), nil

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicClient(apiKey), nil

	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for Gemini provider")
		}
		return NewGeminiClient(apiKey), nil

	case ProviderCerebras:
		if apiKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required for Cerebras provider")
		}
		return NewCerebrasClient(apiKey), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (valid options: none, openai, anthropic, gemini, cerebras, mock)", provider)
	}
}
