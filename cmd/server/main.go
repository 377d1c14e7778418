// Package main provides the entry point for the ranking service HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arsp/ranking-service/internal/config"
	"github.com/arsp/ranking-service/internal/database"
	"github.com/arsp/ranking-service/internal/embedding"
	"github.com/arsp/ranking-service/internal/observability"
	"github.com/arsp/ranking-service/internal/papersources"
	"github.com/arsp/ranking-service/internal/papersources/arxiv"
	"github.com/arsp/ranking-service/internal/papersources/crossref"
	"github.com/arsp/ranking-service/internal/papersources/semanticscholar"
	"github.com/arsp/ranking-service/internal/ranking"
	"github.com/arsp/ranking-service/internal/repository"
	httpserver "github.com/arsp/ranking-service/internal/server/http"
	"github.com/arsp/ranking-service/internal/translation"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("ranking-service server starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	// Run migrations if configured.
	if cfg.Database.MigrationAutoRun {
		migrator, err := database.NewMigrator(db, cfg.Database.MigrationPath, logger)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
		defer func() {
			if closeErr := migrator.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close migrator")
			}
		}()

		if err := migrator.Up(); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	journalRepo := repository.NewPgJournalRepository(db)

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
	}

	embedder := embedding.NewClient(embedding.Config{
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
		APIKey:  cfg.Embedding.APIKey,
		Timeout: cfg.Embedding.Timeout,
	})

	// Register the paper sources the candidate searches fan out to.
	registry := papersources.NewRegistry()
	registry.Register(semanticscholar.NewClient(semanticscholar.Config{
		BaseURL:           cfg.PaperSources.SemanticScholar.BaseURL,
		APIKey:            cfg.PaperSources.SemanticScholar.APIKey,
		RequestsPerSecond: cfg.PaperSources.SemanticScholar.RateLimit,
		Timeout:           cfg.PaperSources.SemanticScholar.Timeout,
		Enabled:           cfg.PaperSources.SemanticScholar.Enabled,
	}, logger))
	registry.Register(arxiv.NewClient(arxiv.Config{
		BaseURL:           cfg.PaperSources.ArXiv.BaseURL,
		RequestsPerSecond: cfg.PaperSources.ArXiv.RateLimit,
		Timeout:           cfg.PaperSources.ArXiv.Timeout,
		Enabled:           cfg.PaperSources.ArXiv.Enabled,
	}, logger))

	var citations ranking.CitationSource
	if cfg.PaperSources.CrossRef.Enabled {
		citations = crossref.NewClient(crossref.Config{
			BaseURL:           cfg.PaperSources.CrossRef.BaseURL,
			MailTo:            cfg.PaperSources.CrossRef.MailTo,
			RequestsPerSecond: cfg.PaperSources.CrossRef.RateLimit,
			Timeout:           cfg.PaperSources.CrossRef.Timeout,
			Enabled:           true,
		}, logger)
	}

	engine := ranking.NewEngine(ranking.Config{
		SimilarityThreshold: cfg.Ranking.SimilarityThreshold,
		MaxRecommendations:  cfg.Ranking.MaxRecommendations,
		MaxTopics:           cfg.Ranking.MaxTopics,
		CandidateLimit:      cfg.Ranking.CandidateLimit,
		KeywordCount:        cfg.Ranking.KeywordCount,
		ChunkMaxChars:       cfg.Ranking.ChunkMaxChars,
		ChunkMinChars:       cfg.Ranking.ChunkMinChars,
	}, embedder, registry, journalRepo, citations, logger, metrics)

	var translator *translation.BatchTranslator
	if cfg.Translation.Enabled {
		provider := translation.NewClient(translation.Config{
			BaseURL: cfg.Translation.BaseURL,
			APIKey:  cfg.Translation.APIKey,
			Timeout: cfg.Translation.Timeout,
		})
		translator = translation.NewBatchTranslator(provider, cfg.Translation.MaxBatchChars, logger, metrics)
	}

	httpCfg := httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}
	if cfg.Metrics.Enabled {
		httpCfg.MetricsPath = cfg.Metrics.Path
	}

	httpSrv := httpserver.NewServer(httpCfg, engine, journalRepo, translator, db, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info().
		Str("http_address", httpCfg.Address).
		Msg("ranking-service is ready")

	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down ranking-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("ranking-service shutdown complete")
	return nil
}
