// Package server exposes the portal HTTP API: register search and company
// lookups, watchlist management, and the SME classification session
// endpoints the confirmation UI talks to.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/baltlens/registry-cli/internal/session"
	"github.com/baltlens/registry-cli/internal/store"
	"github.com/baltlens/registry-cli/pkg/register"
)

// Options configures a Server.
type Options struct {
	Port           int
	AllowedOrigins []string
	Register       register.Client
	Store          store.Store
	Sessions       *session.Manager
	ProfileTTL     time.Duration
	ScenarioTTL    time.Duration
}

// Server is the portal HTTP server.
type Server struct {
	router      *chi.Mux
	server      *http.Server
	register    register.Client
	store       store.Store
	sessions    *session.Manager
	profileTTL  time.Duration
	scenarioTTL time.Duration
}

// New builds the server with routes and middleware wired.
func New(opts Options) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		register:    opts.Register,
		store:       opts.Store,
		sessions:    opts.Sessions,
		profileTTL:  opts.ProfileTTL,
		scenarioTTL: opts.ScenarioTTL,
	}

	s.setupMiddleware(opts.AllowedOrigins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)

		r.Route("/companies/{regcode}", func(r chi.Router) {
			r.Get("/", s.handleGetCompany)
			r.Get("/overview", s.handleGetOverview)
			r.Get("/analytics", s.handleGetAnalytics)
			r.Get("/procurements", s.handleGetProcurements)
			r.Get("/graph", s.handleGetGraph)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Post("/{id}/select", s.handleSelect)
			r.Get("/{id}/classification", s.handleClassification)
			r.Patch("/{id}/criteria/{regcode}", s.handleUpdateCriteria)
		})

		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", s.handleListWatches)
			r.Post("/", s.handleAddWatch)
			r.Delete("/{regcode}", s.handleRemoveWatch)
		})
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
