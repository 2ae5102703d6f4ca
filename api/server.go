/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address behind a proxy
  3. Request log: Structured slog line per request, logger stored in context
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. Metrics:    Request counts by route pattern (when metrics are enabled)
  6. CORS:       Cross-origin requests for the presentation layer

ROUTE GROUPS:
  /api/accounts/*    Accounts
  /api/card          Credit card
  /api/salary        Salary rule
  /api/vouchers/*    Voucher pools
  /api/entries/*     Ledger entries
  /api/transfers/*   Transfers
  /api/events/*      Future events
  /api/projection/*  Projections
  /api/plan          Plan document import/export
  /api/scenarios/*   Demo scenarios
  /metrics           Prometheus scrape endpoint
  /healthz           Liveness and store reachability

SECURITY NOTE:
  No authentication middleware. All endpoints are public; run it on a
  trusted network only.

SEE ALSO:
  - handlers.go: Handler implementations
  - cli/serve.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/cashflow-engine/logging"
)

// NewRouter creates a new router with all routes configured. An empty
// allowedOrigins list allows any origin.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	logger := h.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger.WithComponent(logging.ComponentHTTP)))
	r.Use(middleware.Recoverer)
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.CreateAccount)
			r.Get("/{id}", h.GetAccount)
			r.Put("/{id}", h.UpdateAccount)
			r.Delete("/{id}", h.DeleteAccount)
		})

		r.Get("/card", h.GetCard)
		r.Put("/card", h.PutCard)
		r.Delete("/card", h.DeleteCard)

		r.Get("/salary", h.GetSalary)
		r.Put("/salary", h.PutSalary)

		r.Route("/vouchers", func(r chi.Router) {
			r.Get("/", h.ListVouchers)
			r.Put("/{kind}", h.PutVoucher)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
			r.Delete("/", h.ClearEntries)
			r.Put("/{id}", h.UpdateEntry)
			r.Delete("/{id}", h.DeleteEntry)
		})

		r.Route("/transfers", func(r chi.Router) {
			r.Get("/", h.ListTransfers)
			r.Post("/", h.CreateTransfer)
			r.Delete("/", h.ClearTransfers)
			r.Put("/{id}", h.UpdateTransfer)
			r.Delete("/{id}", h.DeleteTransfer)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.ListEvents)
			r.Post("/", h.CreateEvent)
			r.Put("/{id}", h.UpdateEvent)
			r.Delete("/{id}", h.DeleteEvent)
		})

		r.Route("/projection", func(r chi.Router) {
			r.Get("/", h.GetProjection)
			r.Get("/latest", h.GetLatestProjection)
		})

		r.Get("/plan", h.ExportPlan)
		r.Post("/plan", h.ImportPlan)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics.Handler())
	}
	r.Get("/healthz", h.Healthz)

	return r
}

// requestLogger logs one line per request and stores a request-scoped
// logger in the context for handlers.
func requestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logger.With(logging.FieldRequestID, middleware.GetReqID(r.Context()))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(logging.NewContext(r.Context(), reqLogger)))

			reqLogger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"remote", r.RemoteAddr,
				logging.FieldDuration, time.Since(start).Milliseconds())
		})
	}
}
