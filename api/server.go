package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/devflowhq/devflow/internal/pipeline"
)

// Server represents the HTTP server for the pipeline API.
type Server struct {
	history    *HistoryStore
	handlers   *Handlers
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a new Server instance serving manager's pipelines on
// addr. status may be nil.
func NewServer(addr string, manager *pipeline.Manager, status StatusFunc) *Server {
	history := NewHistoryStore(0)
	handlers := NewHandlers(manager, history, status)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(slog.Default()))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/pipelines", handlers.HandleListPipelines)
		r.Get("/pipelines/{name}", handlers.HandleGetPipeline)
		r.Post("/pipelines/{name}/execute", handlers.HandleExecutePipeline)
		r.Get("/executions", handlers.HandleListExecutions)
		r.Get("/executions/{id}", handlers.HandleGetExecution)
		r.Get("/status", handlers.HandleStatus)
	})

	return &Server{
		history:  history,
		handlers: handlers,
		logger:   slog.Default(),
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// requestLogger logs one line per request with method, path and duration.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).String(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// Start starts the HTTP server.
// Blocks until the server is stopped or an error occurs.
func (s *Server) Start() error {
	s.logger.Info("api server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the root handler for testing purposes.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// History returns the execution history store.
func (s *Server) History() *HistoryStore {
	return s.history
}

// ExecLock returns the mutex guarding all manager access. Schedulers and
// config reloaders sharing the server's manager must hold it.
func (s *Server) ExecLock() *sync.Mutex {
	return s.handlers.ExecLock()
}
