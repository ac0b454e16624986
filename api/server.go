/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend
  5. Authenticate: Bearer token or Basic credential on every /api route
                  except /api/login

ROUTE GROUPS:
  /api/units/*        Unit registry
  /api/tenants/*      Tenant ledger, archive and move-out
  /api/payments/*     Billing and exports
  /api/maintenance/*  Maintenance tracker
  /api/staff          Maintenance staff
  /api/reports        Report log
  /api/admin/*        Invariant verification
  /api/login          Session token (no credentials)
  /health             Liveness (no credentials)

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/apartd/main.go: Server startup
*/
package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/tenancy-engine/auth"
)

// DefaultCORSOrigins are used when none are configured.
var DefaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	if len(corsOrigins) == 0 {
		corsOrigins = DefaultCORSOrigins
	}
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(h.Auth, h.Tokens))

			// Unit routes
			r.Route("/units", func(r chi.Router) {
				r.Get("/", h.ListUnits)
				r.Post("/", h.CreateUnit)
				r.Get("/available", h.ListAvailableUnits)
				r.Get("/{id}", h.GetUnit)
			})

			// Tenant routes
			r.Route("/tenants", func(r chi.Router) {
				r.Get("/", h.ListTenants)
				r.Post("/", h.CreateTenant)
				r.Post("/detect-moveouts", h.DetectMoveouts)

				r.Get("/deleted", h.ListDeletedTenants)
				r.Post("/deleted/{id}/restore", h.RestoreTenant)
				r.Delete("/deleted/{id}", h.PurgeTenant)

				r.Get("/{id}", h.GetTenant)
				r.Patch("/{id}", h.UpdateTenant)
				r.Delete("/{id}", h.DeleteTenant)
				r.Post("/{id}/assign", h.AssignTenant)
				r.Post("/{id}/moveout", h.MoveOutTenant)
			})

			// Payment routes
			r.Route("/payments", func(r chi.Router) {
				r.Get("/", h.ListPayments)
				r.Post("/", h.CreatePayment)
				r.Get("/overdue", h.ListOverdue)
				r.Get("/summary", h.IncomeSummary)
				r.Get("/export", h.ExportPayments)
				r.Get("/export.xlsx", h.ExportPaymentsXLSX)
			})

			// Maintenance routes
			r.Route("/maintenance", func(r chi.Router) {
				r.Get("/", h.ListMaintenance)
				r.Post("/", h.CreateMaintenance)
				r.Post("/{id}/status", h.UpdateMaintenanceStatus)
				r.Post("/{id}/assign", h.AssignMaintenanceStaff)
			})

			r.Get("/staff", h.ListStaff)
			r.Post("/staff", h.CreateStaff)
			r.Get("/reports", h.ListReports)

			// Admin routes
			r.Route("/admin", func(r chi.Router) {
				r.Get("/verify", h.VerifyInvariants)
			})
		})
	})

	return r
}

// Authenticate rejects requests without an operator identity. It accepts a
// session token from /api/login ("Authorization: Bearer ...") or the
// operator's Basic credentials. A nil service rejects Basic credentials.
func Authenticate(svc *auth.Service, tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bearer, ok := bearerToken(r); ok {
				if tokens == nil {
					unauthorized(w, "Token login not configured")
					return
				}
				if _, err := tokens.Parse(bearer); err != nil {
					unauthorized(w, "Invalid or expired token")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			user, pass, ok := r.BasicAuth()
			if !ok || svc == nil {
				unauthorized(w, "Authentication required")
				return
			}
			if err := svc.Verify(r.Context(), user, pass); err != nil {
				if errors.Is(err, auth.ErrInvalidCredentials) {
					unauthorized(w, "Invalid credentials")
					return
				}
				log.Printf("Credential check failed: %v", err)
				writeError(w, http.StatusInternalServerError, "Credential check failed", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="apartd"`)
	writeError(w, http.StatusUnauthorized, message, nil)
}
