// Package server exposes the prediction pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/deepscout/matchup/internal/predictor"
	"github.com/deepscout/matchup/internal/storage"
)

// Options configures a Server. Source and Store are required.
type Options struct {
	Addr           string
	AllowedOrigins []string
	Season         int // default season for requests that omit one
	Source         predictor.RecordSource
	Store          *storage.DB
	Log            *slog.Logger
}

// Server is the HTTP front of the prediction pipeline.
type Server struct {
	http *http.Server
	log  *slog.Logger
}

func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h := &handler{
		source:  opts.Source,
		store:   opts.Store,
		season:  opts.Season,
		log:     log,
		metrics: newMetrics(),
	}
	// Count fetch-on-miss traffic when the source supports it.
	if cs, ok := opts.Source.(*predictor.CachingSource); ok && cs.OnFetch == nil {
		cs.OnFetch = func(int) { h.metrics.upstreamFetches.Inc() }
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(h.metrics.instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/metrics", h.metrics.handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/predictions", h.createPrediction)
		r.Get("/predictions/{id}", h.getPrediction)
	})

	return &Server{
		http: &http.Server{
			Addr:         opts.Addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		log: log,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
