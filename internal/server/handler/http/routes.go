package http

import (
	"net/http"
	"time"

	"github.com/atinyakov/JobTracker/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig carries the handlers and policies NewRouter wires together.
type RouterConfig struct {
	Auth          *AuthHandler
	Jobs          *JobsHandler
	Health        *HealthHandler
	Authenticator middleware.Authenticator
	// CORSOrigins is the browser origin allow-list.
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter constructs and returns an HTTP handler that serves the job
// tracker API.
//
// Routes:
//
//	GET    /healthz     → Health.Check
//	POST   /register    → Auth.Register  (JSON)
//	POST   /token       → Auth.Login     (form)
//	GET    /jobs        → Jobs.List      (bearer)
//	POST   /jobs        → Jobs.Create    (bearer, JSON)
//	GET    /jobs/{id}   → Jobs.Get       (bearer)
//	PUT    /jobs/{id}   → Jobs.Update    (bearer, JSON)
//	DELETE /jobs/{id}   → Jobs.Delete    (bearer)
//
// Middleware chain (applied in order):
//  1. RequestID: tags each request
//  2. WithRequestLogging: logs incoming requests
//  3. Recoverer: turns panics into 500s
//  4. CORS: origin allow-list, no credentials
//  5. StripSlashes: "/jobs/" routes like "/jobs"
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(cfg.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))
	r.Use(chiMiddleware.StripSlashes)

	jsonOnly := chiMiddleware.AllowContentType("application/json")
	formOnly := chiMiddleware.AllowContentType("application/x-www-form-urlencoded", "multipart/form-data")

	r.Get("/healthz", cfg.Health.Check)

	// Public endpoints
	r.With(jsonOnly).Post("/register", cfg.Auth.Register)
	r.With(formOnly).Post("/token", cfg.Auth.Login)

	// Protected group: requires a valid bearer token
	r.Route("/jobs", func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.Authenticator, cfg.Logger))

		r.Get("/", cfg.Jobs.List)
		r.With(jsonOnly).Post("/", cfg.Jobs.Create)
		r.Get("/{id}", cfg.Jobs.Get)
		r.With(jsonOnly).Put("/{id}", cfg.Jobs.Update)
		r.Delete("/{id}", cfg.Jobs.Delete)
	})

	return r
}
