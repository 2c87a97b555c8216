package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mklimstra/Juvonno-test/internal/dashboard"
	httpmiddleware "github.com/mklimstra/Juvonno-test/internal/http/middleware"
	"github.com/mklimstra/Juvonno-test/internal/roster"
	"github.com/mklimstra/Juvonno-test/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Dashboard      *dashboard.Handler
	Roster         *roster.Service
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/healthz", healthz(cfg.Roster))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Mount("/api", cfg.Dashboard.Routes())

	return r
}

func healthz(ros *roster.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"status": "ok"}
		if ros != nil {
			if at := ros.SyncedAt(); !at.IsZero() {
				body["roster_synced_at"] = at.UTC().Format(time.RFC3339)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}
}
