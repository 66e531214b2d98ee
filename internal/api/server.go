package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/olehkavur/fira/internal/board"
	"github.com/olehkavur/fira/internal/config"
	"github.com/olehkavur/fira/internal/events"
	"github.com/olehkavur/fira/internal/flow"
	"github.com/olehkavur/fira/internal/project"
)

// Server is the fira API server. It owns the component state explicitly:
// the task repository, project manager, flow analytics, and event
// publisher are constructed once here and injected into handlers, never
// reached through globals.
type Server struct {
	addr   string
	mux    *http.ServeMux
	logger *slog.Logger

	repo      *board.Repository
	projects  *project.Manager
	flow      *flow.Service
	publisher events.Publisher
	wsHandler *WSHandler
}

// New creates an API server from the loaded configuration.
func New(cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	pub := events.NewMemoryPublisher()

	s := &Server{
		addr:      cfg.Server.Addr(),
		mux:       http.NewServeMux(),
		logger:    logger,
		publisher: pub,
		repo: board.New(cfg.BaseDir,
			board.WithLogger(logger),
			board.WithPublisher(pub)),
		projects: project.NewManager(cfg.BaseDir,
			project.WithLogger(logger),
			project.WithPublisher(pub)),
		flow: flow.NewService(cfg.BaseDir, cfg.WIPConfigPath, cfg.CFDDataPath,
			flow.WithLogger(logger)),
	}
	s.wsHandler = NewWSHandler(pub, logger)

	s.registerRoutes()
	return s
}

// registerRoutes sets up all API routes.
func (s *Server) registerRoutes() {
	// CORS middleware wrapper
	cors := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			s.withRequestID(h)(w, r)
		}
	}

	// Health check
	s.mux.HandleFunc("GET /api/health", cors(s.handleHealth))

	// Projects
	s.mux.HandleFunc("GET /api/projects", cors(s.handleListProjects))
	s.mux.HandleFunc("POST /api/projects", cors(s.handleCreateProject))
	s.mux.HandleFunc("GET /api/projects/{id}", cors(s.handleGetProject))
	s.mux.HandleFunc("PUT /api/projects/{id}", cors(s.handleUpdateProject))
	s.mux.HandleFunc("DELETE /api/projects/{id}", cors(s.handleDeleteProject))
	s.mux.HandleFunc("GET /api/projects/{id}/stats", cors(s.handleProjectStats))
	s.mux.HandleFunc("GET /api/projects/{id}/developers", cors(s.handleProjectDevelopers))

	// Tasks
	s.mux.HandleFunc("GET /api/projects/{id}/tasks", cors(s.handleListTasks))
	s.mux.HandleFunc("POST /api/projects/{id}/tasks", cors(s.handleCreateTask))
	s.mux.HandleFunc("GET /api/projects/{id}/tasks/{taskId}", cors(s.handleGetTask))
	s.mux.HandleFunc("PUT /api/projects/{id}/tasks/{taskId}", cors(s.handleUpdateTask))
	s.mux.HandleFunc("DELETE /api/projects/{id}/tasks/{taskId}", cors(s.handleDeleteTask))
	s.mux.HandleFunc("POST /api/projects/{id}/tasks/{taskId}/block", cors(s.handleBlockTask))
	s.mux.HandleFunc("POST /api/projects/{id}/tasks/{taskId}/unblock", cors(s.handleUnblockTask))

	// WIP and CFD analytics
	s.mux.HandleFunc("GET /api/projects/{id}/wip-status", cors(s.handleWIPStatus))
	s.mux.HandleFunc("GET /api/projects/{id}/wip-check", cors(s.handleWIPCheck))
	s.mux.HandleFunc("POST /api/projects/{id}/cfd-snapshot", cors(s.handleCFDSnapshot))
	s.mux.HandleFunc("GET /api/projects/{id}/cfd-data", cors(s.handleCFDData))

	// WebSocket event stream
	s.mux.HandleFunc("GET /api/ws", s.wsHandler.ServeHTTP)
}

// withRequestID tags each request with an ID and logs the call.
func (s *Server) withRequestID(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", reqID)

		start := time.Now()
		h(w, r)
		s.logger.Debug("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", reqID,
			"duration", time.Since(start))
	}
}

// Handler exposes the route mux, for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Repository exposes the task repository, for tests.
func (s *Server) Repository() *board.Repository { return s.repo }

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.mux)
}

// StartContext starts the API server with context for graceful shutdown.
func (s *Server) StartContext(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.mux,
	}

	go func() {
		<-ctx.Done()
		s.wsHandler.Close()
		s.publisher.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting API server", "addr", s.addr)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, map[string]string{"status": "ok"})
}
