package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{"SERVER_PORT", "SQLITE_PATH", "LLM_PROVIDER", "EMBEDDING_PROVIDER",
		"API_KEYS", "COLLABORATOR_TIMEOUT_MS", "BATCH_CONCURRENCY", "MEMORY_RETENTION_DAYS", "EMBEDDING_THRESHOLD", "EMBEDDING_MODEL"} {
		t.Setenv(k, "")
	}

	assert.Equal(t, ":8080", ServerAddr())
	assert.Equal(t, "groundcheck.db", SQLitePath())
	assert.Equal(t, "none", LLMProvider())
	assert.Equal(t, "none", EmbeddingProvider())
	assert.Empty(t, APIKeys())
	assert.Equal(t, 2*time.Second, CollaboratorTimeout())
	assert.Equal(t, 4, BatchConcurrency())
	assert.Equal(t, time.Duration(0), MemoryRetention())
	assert.Equal(t, 0.85, EmbeddingThreshold())
	assert.Empty(t, EmbeddingModel())
}

func TestOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("API_KEYS", " alpha, ,beta ")
	t.Setenv("COLLABORATOR_TIMEOUT_MS", "250")
	t.Setenv("MEMORY_RETENTION_DAYS", "7")
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("EMBEDDING_THRESHOLD", "1.5")
	t.Setenv("EMBEDDING_MODEL", "text-embedding-3-large")

	assert.Equal(t, ":9090", ServerAddr())
	assert.Equal(t, []string{"alpha", "beta"}, APIKeys())
	assert.Equal(t, 250*time.Millisecond, CollaboratorTimeout())
	assert.Equal(t, 7*24*time.Hour, MemoryRetention())
	assert.Equal(t, "sk-ant", LLMAPIKey())
	assert.Equal(t, 0.85, EmbeddingThreshold())
	assert.Equal(t, "text-embedding-3-large", EmbeddingModel())

	t.Setenv("LLM_API_KEY", "shared")
	assert.Equal(t, "shared", LLMAPIKey())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("GROUNDCHECK_TEST_VALUE=from-file\n"), 0o600))
	require.NoError(t, os.WriteFile(envFile+".secret", []byte("GROUNDCHECK_TEST_SECRET=hidden\n"), 0o600))

	t.Setenv("GROUNDCHECK_ENV", envFile)
	t.Setenv("GROUNDCHECK_TEST_VALUE", "")
	t.Setenv("GROUNDCHECK_TEST_SECRET", "")
	os.Unsetenv("GROUNDCHECK_TEST_VALUE")
	os.Unsetenv("GROUNDCHECK_TEST_SECRET")

	require.NoError(t, Load())
	assert.Equal(t, "from-file", os.Getenv("GROUNDCHECK_TEST_VALUE"))
	assert.Equal(t, "hidden", os.Getenv("GROUNDCHECK_TEST_SECRET"))
}
