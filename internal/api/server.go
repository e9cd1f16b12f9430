package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/gridlock/internal/config"
	"github.com/dgallion1/gridlock/internal/ocr"
	"github.com/dgallion1/gridlock/internal/pipeline"
	"github.com/dgallion1/gridlock/internal/workspace"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves page merges, column detection and merge jobs over HTTP.
type Server struct {
	handler      http.Handler
	orchestrator *pipeline.Orchestrator
	ocrStats     *ocr.Stats
	ws           workspace.Workspace
	log          *slog.Logger
	cfg          config.Config
}

// NewServer wires the routes. ocrStats may be nil when the OCR backend does
// not record latencies.
func NewServer(orch *pipeline.Orchestrator, ocrStats *ocr.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		ocrStats:     ocrStats,
		ws:           workspace.New(cfg.WorkspaceDir),
		log:          log,
		cfg:          cfg,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, logRequests(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(requireAPIKey(s.cfg.GridlockAPIKey, s.log))

		r.Post("/merge", s.handleMerge)
		r.Post("/columns", s.handleColumns)
		r.Post("/batch", s.handleBatch)
		r.Post("/jobs", s.handleSubmitJob)
		r.Get("/jobs/{jobID}", s.handleJobStatus)
		r.Get("/stats/ocr", s.handleOCRStats)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
