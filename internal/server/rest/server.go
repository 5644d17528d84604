// Package rest exposes the coordinator over an HTTP JSON API. Handlers
// stay thin: decode, validate, call the service, map errors to statuses.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/linekeeper/linekeeper/internal/logging"
	"github.com/linekeeper/linekeeper/internal/server/services"
)

type Server struct {
	address       string
	logger        logging.Logger
	lines         *services.LineService
	jwtSecret     []byte
	tokenValidity time.Duration
	validate      *validator.Validate
}

func NewServer(address string, lines *services.LineService, jwtSecret []byte, tokenValidity time.Duration, logger logging.Logger) *Server {
	return &Server{
		address:       address,
		logger:        logger.With("module", "rest"),
		lines:         lines,
		jwtSecret:     jwtSecret,
		tokenValidity: tokenValidity,
		validate:      validator.New(),
	}
}

// Handler assembles the route tree with all middleware applied.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", s.healthCheck)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/token", s.issueToken)

		r.Route("/lines", func(r chi.Router) {
			r.Get("/count", s.lineCount)
			r.Get("/{lineID}", s.getLine)
			r.Get("/{lineID}/members/{identity}", s.isMember)
			r.Get("/{lineID}/messages/count", s.messageCount)
			r.Get("/{lineID}/messages/{seq}", s.getMessage)

			// Mutations and the secret handle require a bearer token.
			r.Group(func(r chi.Router) {
				r.Use(s.authenticate)
				r.Post("/", s.createLine)
				r.Post("/{lineID}/join", s.joinLine)
				r.Post("/{lineID}/messages", s.postMessage)
				r.Get("/{lineID}/secret", s.secretHandle)
			})
		})
	})

	return router
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server starting", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info(ctx, "http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
