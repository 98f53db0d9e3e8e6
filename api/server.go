/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. CORS:       Cross-origin requests for the HR frontend
  3. httplog:    Structured request logging on the shared slog logger
  4. Recoverer:  Panic recovery (500 instead of crash)

ROUTE GROUPS:
  /api/payroll/*  Preview, runs, entries, loan-deduction reversal
  /api/*          Master data seed surface
  /metrics        Prometheus scrape endpoint
  /health         Liveness probe

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	if logger != nil {
		r.Use(httplog.RequestLogger(logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}
	r.Use(middleware.CleanPath)
	r.Use(middleware.Recoverer)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Payroll routes
		r.Route("/payroll", func(r chi.Router) {
			r.Post("/preview", h.Preview)
			r.Route("/runs", func(r chi.Router) {
				r.Get("/", h.ListRuns)
				r.Post("/", h.GenerateRun)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetRun)
					r.Delete("/", h.DeleteRun)
					r.Post("/recalculate", h.RecalculateRun)
					r.Post("/undo-loan-deductions", h.UndoLoanDeductions)
					r.Patch("/entries/{entryID}", h.EditEntry)
				})
			})
		})

		// Master data routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.UpsertEmployee)
			r.Get("/{id}", h.GetEmployee)
		})
		r.Post("/events", h.UpsertEvent)
		r.Post("/vacations", h.UpsertVacation)
		r.Route("/loans", func(r chi.Router) {
			r.Post("/", h.UpsertLoan)
			r.Get("/{id}", h.GetLoan)
		})
	})

	// Operational endpoints
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", h.Health)

	return r
}
