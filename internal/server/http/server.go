// Package httpserver provides the HTTP REST API for the ranking service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/arsp/ranking-service/internal/database"
	"github.com/arsp/ranking-service/internal/domain"
	"github.com/arsp/ranking-service/internal/ranking"
	"github.com/arsp/ranking-service/internal/repository"
	"github.com/arsp/ranking-service/internal/translation"
)

// RankingEngine defines the ranking operations the HTTP server exposes.
// *ranking.Engine satisfies it; tests substitute a stub.
type RankingEngine interface {
	RecommendJournals(ctx context.Context, req ranking.RecommendRequest) ([]ranking.ScoredJournal, error)
	CheckPlagiarism(ctx context.Context, req ranking.PlagiarismRequest) (*ranking.PlagiarismReport, error)
	CheckPlagiarismBatch(ctx context.Context, reqs []ranking.PlagiarismRequest) []ranking.BatchResult
	TrendingTopics(ctx context.Context, req ranking.TopicRequest) ([]ranking.ScoredTopic, error)
	SuggestCitations(ctx context.Context, text string, limit int) ([]domain.Citation, error)
}

var _ RankingEngine = (*ranking.Engine)(nil)

// Server is the HTTP REST API server.
type Server struct {
	router      chi.Router
	httpServer  *http.Server
	engine      RankingEngine
	journalRepo repository.JournalRepository
	translator  *translation.BatchTranslator
	db          *database.DB
	validate    *validator.Validate
	logger      zerolog.Logger
	metricsPath string
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// MetricsPath exposes the Prometheus endpoint when non-empty.
	MetricsPath string
}

// NewServer creates a new HTTP server with all dependencies. The translator
// may be nil when translation is disabled; the db may be nil in tests, in
// which case health endpoints report degraded status.
func NewServer(
	cfg Config,
	engine RankingEngine,
	journalRepo repository.JournalRepository,
	translator *translation.BatchTranslator,
	db *database.DB,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		engine:      engine,
		journalRepo: journalRepo,
		translator:  translator,
		db:          db,
		validate:    validator.New(),
		logger:      logger.With().Str("component", "http-server").Logger(),
		metricsPath: cfg.MetricsPath,
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Router returns the server's router, used directly in handler tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestContextMiddleware)

	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	if s.metricsPath != "" {
		r.Handle(s.metricsPath, promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jsonContentTypeMiddleware)

		r.Post("/journals/recommend", s.recommendJournals)
		r.Get("/journals", s.listJournals)
		r.Get("/journals/{journalID}", s.getJournal)

		r.Post("/plagiarism/check", s.checkPlagiarism)
		r.Post("/plagiarism/check-batch", s.checkPlagiarismBatch)

		r.Get("/topics/trending", s.trendingTopics)
		r.Get("/topics/search", s.trendingTopics)

		r.Post("/citations/suggest", s.suggestCitations)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessHandler returns readiness status including database connectivity.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": "not configured",
		})
		return
	}

	health := s.db.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent; nothing useful to do.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
