// Package server exposes the current rendered metrics snapshot to
// Prometheus scrapers over HTTP.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/config"
	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/exposition"
)

const shutdownTimeout = 10 * time.Second

// Server exposes the metrics server lifecycle. The served snapshot is
// replaced wholesale through ReplaceSnapshot; in-flight scrapes always
// observe exactly one complete snapshot.
type Server interface {
	Start(ctx context.Context) error
	Stop() error
	ReplaceSnapshot(payload []byte)
}

// Compile-time interface check.
var _ Server = (*server)(nil)

type server struct {
	log        logrus.FieldLogger
	cfg        *config.ServerConfig
	snapshot   atomic.Pointer[[]byte]
	httpServer *http.Server
	wg         sync.WaitGroup
}

// NewServer creates a metrics server seeded with an initial snapshot.
// A nil initial snapshot serves an empty body until the first replace.
func NewServer(
	log logrus.FieldLogger,
	cfg *config.ServerConfig,
	initial []byte,
) Server {
	s := &server{
		log: log.WithField("component", "server"),
		cfg: cfg,
	}

	if initial == nil {
		initial = []byte{}
	}

	s.snapshot.Store(&initial)

	return s
}

// ReplaceSnapshot atomically swaps the served payload. Concurrent
// scrapes see either the previous or the new snapshot in full.
func (s *server) ReplaceSnapshot(payload []byte) {
	if payload == nil {
		payload = []byte{}
	}

	s.snapshot.Store(&payload)
}

// Start binds the listener and begins serving scrape requests.
func (s *server) Start(ctx context.Context) error {
	router := s.buildRouter()

	s.httpServer = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Bind the listener synchronously so we fail fast on port conflicts.
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Listen, err)
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		s.log.WithField("listen", s.cfg.Listen).
			Info("Metrics server starting")

		if err := s.httpServer.Serve(ln); err != nil &&
			err != http.ErrServerClosed {
			s.log.WithError(err).Error("HTTP server error")
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server, letting in-flight scrape
// responses complete.
func (s *server) Stop() error {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(
			context.Background(), shutdownTimeout,
		)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.log.WithError(err).Warn("HTTP server shutdown error")
		}
	}

	s.wg.Wait()

	s.log.Info("Metrics server stopped")

	return nil
}

// buildRouter constructs the chi router with all routes and middleware.
func (s *server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)

	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			MaxAge:         300,
		}))
	}

	if s.cfg.RateLimit.Enabled {
		r.Use(s.rateLimitMiddleware(s.cfg.RateLimit))
	}

	r.Get("/metrics", s.handleMetrics)

	// Anything else is a 404 with an empty body.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	return r
}

// handleMetrics serves the current snapshot verbatim. The snapshot
// reference is loaded exactly once per request so a concurrent replace
// can never mix payloads.
func (s *server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	payload := *s.snapshot.Load()

	w.Header().Set("Content-Type", exposition.ContentType)
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(payload); err != nil {
		// The response is already underway; the failure stays local to
		// this connection.
		s.log.WithError(err).
			WithField("remote", r.RemoteAddr).
			Warn("Failed to write scrape response")
	}
}

// requestLogger logs incoming HTTP requests.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		s.log.WithField("method", r.Method).
			WithField("path", r.URL.Path).
			WithField("remote", r.RemoteAddr).
			WithField("duration", time.Since(start)).
			Debug("Request handled")
	})
}
