package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhijit1892/ragdemo/core"
	"github.com/abhijit1892/ragdemo/server/store"
)

// DefaultRequestTimeout bounds one /ask run.
const DefaultRequestTimeout = 120 * time.Second

// Runner answers one question. *engine.Engine satisfies it.
type Runner interface {
	Run(ctx context.Context, question string) (core.State, error)
}

// ReadinessChecker reports whether the corpus index can serve searches.
type ReadinessChecker interface {
	Ready() bool
}

// Config configures a new Server instance.
type Config struct {
	Runner         Runner
	Readiness      ReadinessChecker   // Optional: nil reports ready
	History        store.HistoryStore // Optional: defaults to in-memory
	Gatherer       prometheus.Gatherer
	Models         []ModelInfo
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Server exposes the question-answering pipeline over HTTP.
type Server struct {
	runner    Runner
	readiness ReadinessChecker
	history   store.HistoryStore
	gatherer  prometheus.Gatherer
	models    []ModelInfo
	timeout   time.Duration
	log       *slog.Logger
}

// New creates a Server with the given configuration.
func New(cfg Config) *Server {
	history := cfg.History
	if history == nil {
		history = store.NewMemoryStore()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		runner:    cfg.Runner,
		readiness: cfg.Readiness,
		history:   history,
		gatherer:  gatherer,
		models:    cfg.Models,
		timeout:   timeout,
		log:       logger,
	}
}

// Close releases the history store.
func (s *Server) Close() error {
	return s.history.Close()
}

// Handler returns the http.Handler for the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/models", s.handleModels)
	r.Post("/ask", s.handleAsk)

	r.Route("/history", func(r chi.Router) {
		r.Get("/", s.handleHistoryList)
		r.Get("/summary", s.handleHistorySummary)
		r.Get("/{id}", s.handleHistoryGet)
		r.Delete("/{id}", s.handleHistoryDelete)
	})

	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
