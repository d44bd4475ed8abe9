// Package web provides the HTTP server and handlers for data entry sessions.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/statentry/internal/config"
	"github.com/JonMunkholm/statentry/internal/core"
	"github.com/JonMunkholm/statentry/internal/publish"
	"github.com/JonMunkholm/statentry/internal/session"
	"github.com/JonMunkholm/statentry/internal/web/middleware"
)

// Server is the HTTP front end over a session manager.
type Server struct {
	cfg       *config.Config
	sessions  *session.Manager
	publisher *publish.Publisher
	imports   *core.ImportLimiter
	router    *chi.Mux
	server    *http.Server

	generalLimiter *middleware.RateLimiter
	uploadLimiter  *middleware.RateLimiter
}

// NewServer creates a new Server instance. publisher may be disabled.
func NewServer(cfg *config.Config, sessions *session.Manager, publisher *publish.Publisher) *Server {
	s := &Server{
		cfg:       cfg,
		sessions:  sessions,
		publisher: publisher,
		imports:   core.NewImportLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		router:    chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.generalLimiter = middleware.NewRateLimiter(cfg.Rate.RequestsPerMinute, time.Minute, cfg.Rate.Burst)
		s.uploadLimiter = middleware.NewRateLimiter(cfg.Rate.UploadLimit, time.Minute, 1)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.generalLimiter != nil {
		s.router.Use(s.generalLimiter.Middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	// Pages
	s.router.Get("/sessions/{id}", s.handleSessionPage)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(&s.cfg.Security))

		r.Post("/sessions", s.handleCreateSession)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)

			// Schema lifecycle
			r.Post("/draft", s.handleDefineFieldCount)
			r.Put("/draft/{index}", s.handleUpdateDraftField)
			r.Post("/schema/commit", s.handleCommitSchema)
			r.Post("/schema/reset", s.handleResetSchema)
			r.Get("/schema", s.handleGetSchema)
			r.Get("/schema.json", s.handleRowSchema)

			// Rows
			r.Get("/rows", s.handleListRows)
			r.Post("/rows", s.handleSubmitRow)
			r.Delete("/rows", s.handleClearRows)

			// CSV
			r.Get("/export", s.handleExport)
			r.Get("/template", s.handleTemplate)

			// Heavy operations get the tighter per-IP limit
			r.Group(func(r chi.Router) {
				if s.uploadLimiter != nil {
					r.Use(s.uploadLimiter.Middleware)
				}
				r.Post("/import", s.handleImport)
				r.Post("/publish", s.handlePublish)
			})
		})
	})
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	addr := s.cfg.Server.Addr()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests, then waits for in-flight imports.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}

	if active := s.imports.Active(); active > 0 {
		slog.Info("waiting for imports to complete", "active", active)
		if err := s.imports.WaitForDrain(ctx); err != nil {
			slog.Warn("imports did not complete in time", "error", err)
			return err
		}
		slog.Info("all imports completed")
	}
	return nil
}

// StartMaintenance prunes idle rate limit buckets every interval until ctx
// is cancelled. It blocks; run it in its own goroutine.
func (s *Server) StartMaintenance(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, l := range []*middleware.RateLimiter{s.generalLimiter, s.uploadLimiter} {
				if l != nil {
					l.Cleanup(10 * time.Minute)
				}
			}
		}
	}
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			// Pages are server-rendered with inline styles only
			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}

			// Control referrer information
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
