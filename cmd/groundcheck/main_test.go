package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMemories(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []domain.Memory
	}{
		{
			name: "list of strings",
			data: `["User works at Microsoft", "User lives in Seattle"]`,
			want: []domain.Memory{
				{ID: "m0", Text: "User works at Microsoft", Trust: 1.0},
				{ID: "m1", Text: "User lives in Seattle", Trust: 1.0},
			},
		},
		{
			name: "objects",
			data: `[{"id": "a", "text": "User works at Microsoft", "trust": 0.4}, {"text": "User lives in Seattle"}]`,
			want: []domain.Memory{
				{ID: "a", Text: "User works at Microsoft", Trust: 0.4},
				{ID: "m1", Text: "User lives in Seattle", Trust: 1.0},
			},
		},
		{
			name: "memories wrapper",
			data: `{"memories": ["User works at Microsoft"]}`,
			want: []domain.Memory{{ID: "m0", Text: "User works at Microsoft", Trust: 1.0}},
		},
		{
			name: "facts wrapper with mixed items",
			data: `{"facts": ["FACT: employer = Microsoft", {"id": "x", "text": "User lives in Seattle", "trust": 0}]}`,
			want: []domain.Memory{
				{ID: "m0", Text: "FACT: employer = Microsoft", Trust: 1.0},
				{ID: "x", Text: "User lives in Seattle", Trust: 0},
			},
		},
		{
			name: "empty list",
			data: `[]`,
			want: []domain.Memory{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMemories([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMemories_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", "  "},
		{"not json", "User works at Microsoft"},
		{"wrong wrapper key", `{"items": []}`},
		{"number item", `[42]`},
		{"trust out of range", `[{"text": "x", "trust": 1.5}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseMemories([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func writeMemoriesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memories.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (map[string]any, error) {
	t.Helper()
	t.Setenv("LLM_PROVIDER", "none")
	t.Setenv("EMBEDDING_PROVIDER", "none")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.Execute()

	var result map[string]any
	if out.Len() > 0 {
		require.NoError(t, json.Unmarshal(out.Bytes(), &result), out.String())
	}
	return result, err
}

func TestVerifyCmd(t *testing.T) {
	path := writeMemoriesFile(t, `["User works at Microsoft"]`)

	out, err := runCLI(t, "verify", "You work at Microsoft", "-m", path)
	require.NoError(t, err)
	assert.Equal(t, true, out["passed"])
	assert.Equal(t, float64(1), out["memories_count"])
	assert.Contains(t, out, "latency_ms")

	out, err = runCLI(t, "verify", "You work at Amazon", "-m", path, "--mode", "permissive")
	assert.ErrorIs(t, err, errNotPassed)
	assert.Equal(t, false, out["passed"])
	assert.Equal(t, []any{"Amazon"}, out["hallucinations"])
}

func TestVerifyCmd_Contradictions(t *testing.T) {
	path := writeMemoriesFile(t, `[
		{"id": "m1", "text": "User works at Microsoft", "trust": 0.5},
		{"id": "m2", "text": "User works at Amazon", "trust": 0.95}
	]`)

	out, _ := runCLI(t, "verify", "You live somewhere", "-m", path)
	contradictions := out["contradictions"].([]any)
	require.Len(t, contradictions, 1)
	c := contradictions[0].(map[string]any)
	assert.Equal(t, "employer", c["slot"])
	assert.Equal(t, "amazon", c["most_trusted_value"])
}

func TestVerifyCmd_Errors(t *testing.T) {
	path := writeMemoriesFile(t, `["User works at Microsoft"]`)

	_, err := runCLI(t, "verify", "text", "-m", path, "--mode", "lenient")
	assert.ErrorContains(t, err, "invalid mode")

	_, err = runCLI(t, "verify", "text", "-m", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "read memories file")

	_, err = runCLI(t, "verify", "text")
	assert.Error(t, err)
}

func TestExtractCmd(t *testing.T) {
	out, err := runCLI(t, "extract", "I work at Microsoft")
	require.NoError(t, err)
	require.Contains(t, out, "employer")
	assert.Equal(t, "Microsoft", out["employer"].(map[string]any)["value"])

	out, err = runCLI(t, "extract", "We use MySQL", "--knowledge")
	require.NoError(t, err)
	assert.Contains(t, out["knowledge"], "database")
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "groundcheck version")
}
