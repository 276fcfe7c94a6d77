// Package api is the HTTP surface for policy analysis.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/policylens/policylens/internal/analyzer"
	"github.com/policylens/policylens/internal/config"
	"github.com/policylens/policylens/internal/llm"
)

// Server is the HTTP API server for policylens.
type Server struct {
	router   chi.Router
	analyzer *analyzer.Analyzer
	llm      llm.Completer
	stats    *llm.Stats
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(an *analyzer.Analyzer, completer llm.Completer, stats *llm.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		analyzer: an,
		llm:      completer,
		stats:    stats,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/api/v1/policy/health", s.handleHealth)

	// Authenticated endpoints. Auth is a no-op when no key is configured.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/v1/policy/analyze", s.handleAnalyze)
		r.Post("/api/v1/policy/analyze-file", s.handleAnalyzeFile)
		r.Get("/api/v1/models", s.handleModels)
		r.Get("/api/v1/stats/llm", s.handleLLMStats)
	})

	s.router = r
}
