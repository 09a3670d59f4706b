// Package devserver is a reference implementation of the school API, backed
// by a local bbolt file. `campus serve` runs it for development and demos.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options configures a Server.
type Options struct {
	DBPath string

	// JWTSecret enables bearer-token auth when non-empty.
	JWTSecret string

	// MutationStatistics makes create, update and delete responses carry
	// whole-collection statistics.
	MutationStatistics bool

	Logger *slog.Logger
	Now    func() time.Time
}

// Server serves notifications, subjects and attendance over HTTP.
type Server struct {
	store         *Store
	secret        []byte
	mutationStats bool
	logger        *slog.Logger
	metrics       *metrics
	now           func() time.Time
	router        chi.Router
}

// New opens the database and builds the router.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	store, err := OpenStore(opts.DBPath, NotificationSchema.Name, SubjectSchema.Name, AttendanceSchema.Name)
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:         store,
		secret:        []byte(opts.JWTSecret),
		mutationStats: opts.MutationStatistics,
		logger:        opts.Logger,
		metrics:       newMetrics(),
		now:           opts.Now,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.instrument)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", s.metrics.handler())

	r.Route("/api", func(r chi.Router) {
		if len(s.secret) > 0 {
			r.Use(s.authenticate)
		}
		mount(r, s, NotificationSchema)
		mount(r, s, SubjectSchema)
		mount(r, s, AttendanceSchema)
	})

	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr, "auth", len(s.secret) > 0)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *Server) Close() error {
	return s.store.Close()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug("handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"requestID", middleware.GetReqID(r.Context()),
		)
	})
}
