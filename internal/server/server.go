// internal/server/server.go
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"bookshelf/internal/bookshelf"
	"bookshelf/internal/config"
	"bookshelf/internal/logger"
)

const (
	msgRouteNotFound    = "Halaman tidak ditemukan"
	msgMethodNotAllowed = "Metode tidak diizinkan"
	msgTooManyRequests  = "Terlalu banyak permintaan"
)

// Server wires the book API into an HTTP server.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	log        zerolog.Logger
}

func New(cfg *config.Config, handler *bookshelf.Handler, log zerolog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logger.RequestID)
	r.Use(logger.Middleware(log))
	if cfg.RateLimit.RequestsPerSecond > 0 {
		r.Use(RateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), max(cfg.RateLimit.Burst, 1))))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		bookshelf.Fail(w, r, http.StatusNotFound, msgRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		bookshelf.Fail(w, r, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		bookshelf.Respond(w, r, http.StatusOK, bookshelf.Response{Status: bookshelf.StatusSuccess})
	})
	handler.Routes(r)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      r,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		router: r,
		log:    log,
	}
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("Starting bookshelf server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down bookshelf server")
	return s.httpServer.Shutdown(ctx)
}

// RateLimit rejects mutating requests once limiter runs dry. Reads are never throttled.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodDelete:
				if !limiter.Allow() {
					zerolog.Ctx(r.Context()).Warn().Str("method", r.Method).Msg("Rate limit exceeded")
					bookshelf.Fail(w, r, http.StatusTooManyRequests, msgTooManyRequests)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
