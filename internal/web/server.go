// Package web provides the HTTP server and JSON handlers for the
// registration portal: the public registration form API and the
// token-protected admin API.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ai4biz/portal/internal/auth"
	"github.com/ai4biz/portal/internal/config"
	"github.com/ai4biz/portal/internal/core"
	"github.com/ai4biz/portal/internal/export"
	"github.com/ai4biz/portal/internal/metrics"
	mw "github.com/ai4biz/portal/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

const contentSecurityPolicy = "default-src 'self'; " +
	"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com https://cdnjs.cloudflare.com; " +
	"font-src 'self' https://fonts.gstatic.com https://cdnjs.cloudflare.com; " +
	"script-src 'self' 'unsafe-inline' https://cdnjs.cloudflare.com; " +
	"img-src 'self' data: https:"

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Store    *core.Store
	Auth     *auth.Authenticator
	Renderer *export.Renderer
	Exports  *core.ExportLimiter
	Metrics  *metrics.Metrics // optional
}

// Server is the HTTP server for the registration portal.
type Server struct {
	cfg      *config.Config
	store    *core.Store
	auth     *auth.Authenticator
	renderer *export.Renderer
	exports  *core.ExportLimiter
	metrics  *metrics.Metrics
	validate *validator.Validate
	limiter  *rateLimiter
	now      func() time.Time

	router *chi.Mux
	server *http.Server
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:      cfg,
		store:    deps.Store,
		auth:     deps.Auth,
		renderer: deps.Renderer,
		exports:  deps.Exports,
		metrics:  deps.Metrics,
		validate: newValidator(),
		now:      time.Now,
		router:   chi.NewRouter(),
	}
	if s.exports == nil {
		s.exports = core.NewExportLimiter(cfg.Export.MaxConcurrent, cfg.Export.MaxWait)
	}
	if s.renderer == nil {
		s.renderer = export.NewRenderer(cfg.Export.Location())
	}
	if cfg.Rate.Enabled {
		s.limiter = newRateLimiter(cfg.Rate.Requests, cfg.Rate.Window)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(s.securityHeaders)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Security.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	s.router.Use(requestMetadata)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	if s.metrics != nil && s.cfg.Metrics.Enabled {
		s.router.Method(http.MethodGet, s.cfg.Metrics.Path, s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.rateLimit)
		}

		r.Get("/health", s.handleHealth)

		// Public registration
		r.Post("/register", s.handleRegister)
		r.Get("/register/check", s.handleRegisterCheck)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.handleLogin)

			r.Group(func(r chi.Router) {
				r.Use(mw.AdminAuth(s.auth))

				r.Get("/students", s.handleListStudents)
				r.Patch("/students/{id}", s.handleUpdateStatus)
				r.Delete("/students/{id}", s.handleDeleteStudent)
				r.Get("/stats", s.handleStats)
				r.Post("/reload", s.handleReload)

				// Exports
				r.Get("/download/xlsx", s.handleDownloadSpreadsheet)
				r.Get("/download/pdf", s.handleDownloadDocument)
			})
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{
				Error:   "Not found",
				Message: "Not found",
				Code:    "ERR000",
			})
		})
	})

	// Public form and admin page
	if dir := s.cfg.Server.StaticDir; dir != "" {
		if _, err := os.Stat(dir); err != nil {
			slog.Warn("static directory unavailable", "dir", dir, "error", err)
		} else {
			s.router.Handle("/*", http.FileServer(http.Dir(dir)))
		}
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr, "storage", s.store.StorageName())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Close()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if s.cfg.Security.EnableCSP {
			w.Header().Set("Content-Security-Policy", contentSecurityPolicy)
		}
		next.ServeHTTP(w, r)
	})
}
