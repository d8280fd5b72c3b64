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
  2. Logger:     Structured request logging (httplog, ECS schema)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/employees/*      Employees, attendance, leave, ledger, credits
  /api/leave-requests/* Approval workflow
  /api/leave-types      Leave type configuration
  /api/settings         Accrual override
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// Logger receives one line per request. Nil disables request logging.
	Logger      *slog.Logger
	LogLevel    slog.Level
	CORSOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  opts.LogLevel,
			Schema: httplog.SchemaECS,
		}))
	}
	r.Use(middleware.Recoverer)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := h.Store.Ping(req.Context()); err != nil {
			writeError(w, req, http.StatusServiceUnavailable, "database unavailable", err)
			return
		}
		writeJSON(w, req, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetEmployee)

				r.Get("/attendance", h.ListAttendance)
				r.Post("/attendance", h.RecordAttendance)
				r.Post("/attendance/check-in", h.CheckIn)
				r.Post("/attendance/check-out", h.CheckOut)
				r.Get("/attendance/today", h.Today)
				r.Get("/attendance/live", h.LiveAttendance)

				r.Get("/leave-requests", h.ListEmployeeRequests)
				r.Post("/leave-requests", h.SubmitLeaveRequest)
				r.Get("/balances", h.GetBalances)

				r.Get("/ledger", h.GetLedger)
				r.Put("/ledger/fragments/{month}", h.PutLedgerFragment)
				r.Post("/ledger/extra-credits", h.CreateExtraCredit)

				r.Get("/credits", h.ListCredits)
				r.Post("/credits", h.CreateCredit)
			})
		})

		// Request approval routes
		r.Route("/leave-requests", func(r chi.Router) {
			r.Get("/pending", h.ListPendingRequests)
			r.Post("/{id}/approve", h.ApproveRequest)
			r.Post("/{id}/reject", h.RejectRequest)
			r.Post("/{id}/cancel", h.CancelRequest)
		})

		// Configuration routes
		r.Get("/leave-types", h.ListLeaveTypes)
		r.Post("/leave-types", h.CreateLeaveType)
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.PutSettings)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
