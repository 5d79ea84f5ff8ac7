package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Harshitk-cp/groundcheck/internal/knowledge"
	"github.com/Harshitk-cp/groundcheck/internal/service"
	"github.com/Harshitk-cp/groundcheck/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T, opts Options) (*App, *store.SQLiteStore) {
	t.Helper()
	logger := zap.NewNop()
	ms, err := store.NewSQLiteStore(context.Background(), ":memory:")
	require.NoError(t, err)

	verifier := service.NewVerifier(knowledge.NewEngine(knowledge.MustLoad()), logger)
	memorySvc := service.NewMemoryService(ms, verifier, nil, logger)
	if opts.RateLimitRPS == 0 {
		opts.RateLimitRPS = 1000
		opts.RateLimitBurst = 1000
	}
	return NewApp(ms, memorySvc, verifier, logger, opts), ms
}

func serve(app *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	app, ms := newTestApp(t, Options{})

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	ms.Close()
	rec = serve(app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetrics(t *testing.T) {
	app, ms := newTestApp(t, Options{})
	defer ms.Close()

	serve(app, httptest.NewRequest(http.MethodGet, "/health", nil))
	serve(app, httptest.NewRequest(http.MethodGet, "/nope", nil))

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, float64(3), out["request_count"])
	assert.Equal(t, float64(1), out["client_error_count"])
	assert.Contains(t, out, "go_version")
}

func TestAPIKeyRequired(t *testing.T) {
	app, ms := newTestApp(t, Options{APIKeys: []string{"secret"}})
	defer ms.Close()

	body := `{"text":"You work at Microsoft","memories":[{"text":"User works at Microsoft"}]}`

	rec := serve(app, httptest.NewRequest(http.MethodPost, "/v1/verify", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/verify", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret")
	rec = serve(app, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"passed":true`)

	// Probes stay open.
	rec = serve(app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes(t *testing.T) {
	app, ms := newTestApp(t, Options{})
	defer ms.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/threads/t1/memories", strings.NewReader(`{"text":"User lives in Seattle"}`))
	rec := serve(app, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Memory struct {
			ID string `json:"id"`
		} `json:"memory"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = serve(app, httptest.NewRequest(http.MethodGet, "/v1/memories/"+created.Memory.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/threads/t1/verify", strings.NewReader(`{"draft":"You live in Seattle"}`))
	rec = serve(app, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"passed":true`)

	rec = serve(app, httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader(`{"text":"We use MySQL"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimited(t *testing.T) {
	app, ms := newTestApp(t, Options{RateLimitRPS: 1, RateLimitBurst: 1})
	defer ms.Close()

	assert.Equal(t, http.StatusOK, serve(app, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(app, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}
