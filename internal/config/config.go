package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Load reads the .env file specified by GROUNDCHECK_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("GROUNDCHECK_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// DatabaseURL selects the Postgres store when set.
func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// SQLitePath is used when DATABASE_URL is empty.
// Defaults to "groundcheck.db".
func SQLitePath() string {
	p := os.Getenv("SQLITE_PATH")
	if p == "" {
		return "groundcheck.db"
	}
	return p
}

// LLMProvider returns the provider used to confirm contradictions.
// Defaults to "none", which disables confirmation.
// Valid values: none, openai, anthropic, gemini, cerebras, mock
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "none"
	}
	return p
}

// LLMAPIKey returns LLM_API_KEY, falling back to the provider specific
// variable.
func LLMAPIKey() string {
	if k := os.Getenv("LLM_API_KEY"); k != "" {
		return k
	}
	switch LLMProvider() {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	case "cerebras":
		return os.Getenv("CEREBRAS_API_KEY")
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	default:
		return ""
	}
}

// EmbeddingProvider returns the configured embedding provider.
// Defaults to "none".
// Valid values: none, openai, mock
func EmbeddingProvider() string {
	p := os.Getenv("EMBEDDING_PROVIDER")
	if p == "" {
		return "none"
	}
	return p
}

func EmbeddingAPIKey() string {
	if k := os.Getenv("EMBEDDING_API_KEY"); k != "" {
		return k
	}
	if EmbeddingProvider() == "openai" {
		return os.Getenv("OPENAI_API_KEY")
	}
	return ""
}

// EmbeddingModel overrides the provider's default embedding model.
func EmbeddingModel() string {
	return os.Getenv("EMBEDDING_MODEL")
}

// EmbeddingThreshold is the cosine similarity an embedding match needs.
// Defaults to 0.85.
func EmbeddingThreshold() float64 {
	v, err := strconv.ParseFloat(os.Getenv("EMBEDDING_THRESHOLD"), 64)
	if err != nil || v <= 0 || v > 1 {
		return 0.85
	}
	return v
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// APIKeys returns the comma separated keys accepted by the HTTP API. An
// empty list disables authentication.
func APIKeys() []string {
	var keys []string
	for _, k := range strings.Split(os.Getenv("API_KEYS"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// CollaboratorTimeout bounds matcher and confirmer calls.
// Defaults to 2s.
func CollaboratorTimeout() time.Duration {
	ms, err := strconv.Atoi(os.Getenv("COLLABORATOR_TIMEOUT_MS"))
	if err != nil || ms <= 0 {
		return 2000 * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

// TaxonomyPath and OntologyPath override the embedded knowledge data.
func TaxonomyPath() string {
	return os.Getenv("TAXONOMY_PATH")
}

func OntologyPath() string {
	return os.Getenv("ONTOLOGY_PATH")
}

// BatchConcurrency bounds parallel verification in batch requests.
// Defaults to 4.
func BatchConcurrency() int {
	n, err := strconv.Atoi(os.Getenv("BATCH_CONCURRENCY"))
	if err != nil || n <= 0 {
		return 4
	}
	return n
}

// MemoryRetention returns how long memories are kept. Zero disables
// pruning.
func MemoryRetention() time.Duration {
	days, err := strconv.Atoi(os.Getenv("MEMORY_RETENTION_DAYS"))
	if err != nil || days <= 0 {
		return 0
	}
	return time.Duration(days) * 24 * time.Hour
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// NewLogger builds the production logger, or a development logger when
// LOG_LEVEL is debug.
func NewLogger() (*zap.Logger, error) {
	if LogLevel() == "debug" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(LogLevel()); err == nil {
		cfg.Level = lvl
	}
	return cfg.Build()
}
