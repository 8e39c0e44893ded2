// Package api exposes the recipient sync coordinator over HTTP for the
// admin dashboard. The dashboard paginates: it calls the run endpoint
// repeatedly, feeding each response's next_index back in, and the session
// store keeps the merged view of the whole sequence.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/recipient-sync/internal/pkg/logger"
	"github.com/ignite/recipient-sync/internal/recipient"
)

// Server is the recipient-sync HTTP API server.
type Server struct {
	handlers *Handlers
	router   *chi.Mux
	server   *http.Server
	log      *logger.Logger
}

// NewServer creates the API server. sessions may be nil, in which case
// session folding is disabled and runs are stateless.
func NewServer(syncer *recipient.Syncer, sessions *SessionStore) *Server {
	handlers := NewHandlers(syncer, sessions)
	return &Server{
		handlers: handlers,
		router:   setupRoutes(handlers),
		log:      logger.Component("api"),
	}
}

func setupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HandleHealth)

	r.Route("/api/v1/recipient-sync", func(r chi.Router) {
		r.Post("/runs", h.HandleRun)
		r.Get("/folders", h.HandleFolders)
		r.Get("/sessions/{sessionID}", h.HandleGetSession)
	})

	return r
}

// Handler returns the root handler (useful for tests).
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts the HTTP server. Write timeout is generous because
// a single paginated run can legitimately take minutes.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	s.log.Info("listening", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
