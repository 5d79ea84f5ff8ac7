package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/Harshitk-cp/groundcheck/internal/api/handlers"
	mw "github.com/Harshitk-cp/groundcheck/internal/api/middleware"
	"github.com/Harshitk-cp/groundcheck/internal/buildconfig"
	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Options configures the HTTP surface.
type Options struct {
	APIKeys          []string
	RateLimitRPS     float64
	RateLimitBurst   int
	BatchConcurrency int
}

// App holds the router and the pieces that need lifecycle management.
type App struct {
	Router      *chi.Mux
	RateLimiter *mw.RateLimiter
	Metrics     *mw.MetricsCollector
	startTime   time.Time
}

func NewApp(ms domain.MemoryStore, memorySvc *service.MemoryService, verifier *service.Verifier, logger *zap.Logger, opts Options) *App {
	verifyHandler := handlers.NewVerifyHandler(verifier, opts.BatchConcurrency)
	memoryHandler := handlers.NewMemoryHandler(memorySvc, logger)

	r := chi.NewRouter()
	app := &App{
		Router:      r,
		RateLimiter: mw.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		Metrics:     mw.NewMetricsCollector(),
		startTime:   time.Now(),
	}

	// Order matters: the request id and real IP must be set before logging
	// and rate limiting see the request.
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.Metrics.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(app.RateLimiter))

	// Health and metrics stay unauthenticated for probes.
	r.Get("/health", healthHandler(ms))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(opts.APIKeys))

		r.Post("/verify", verifyHandler.Verify)
		r.Post("/verify/batch", verifyHandler.VerifyBatch)
		r.Post("/extract", verifyHandler.Extract)

		r.Route("/threads/{threadID}", func(r chi.Router) {
			r.Post("/memories", memoryHandler.Create)
			r.Get("/memories", memoryHandler.Check)
			r.Delete("/memories", memoryHandler.ClearThread)
			r.Post("/verify", memoryHandler.VerifyDraft)
		})

		r.Route("/memories/{id}", func(r chi.Router) {
			r.Get("/", memoryHandler.GetByID)
			r.Delete("/", memoryHandler.Delete)
			r.Patch("/trust", memoryHandler.UpdateTrust)
		})
	})

	return app
}

func healthHandler(ms domain.MemoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := ms.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": buildconfig.Version()})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)
		snap := app.Metrics.Snapshot()

		response := map[string]any{
			"uptime_seconds":     uptime.Seconds(),
			"uptime_human":       uptime.Round(time.Second).String(),
			"request_count":      snap.Requests,
			"client_error_count": snap.ClientErrors,
			"server_error_count": snap.ServerErrors,
			"in_flight":          snap.InFlight,
			"goroutines":         runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
