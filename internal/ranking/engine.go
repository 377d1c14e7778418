// Package ranking implements the scoring engine: journal recommendations,
// originality checks, trending-topic rankings, and citation suggestions.
//
// The engine merges two signals. Candidate records come from external
// bibliographic sources via the papersources registry; similarity between
// texts is computed locally from embedding vectors. When the embedding
// provider is unavailable the engine degrades to lexical keyword scoring
// rather than failing, and marks every affected result as degraded.
package ranking

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/arsp/ranking-service/internal/domain"
	"github.com/arsp/ranking-service/internal/embedding"
	"github.com/arsp/ranking-service/internal/observability"
	"github.com/arsp/ranking-service/internal/papersources"
)

const (
	// DefaultSimilarityThreshold flags chunk matches at or above this
	// cosine similarity. Sensible values lie between 0.75 and 0.80.
	DefaultSimilarityThreshold = 0.78

	defaultMaxRecommendations = 10
	defaultMaxTopics          = 10
	defaultCandidateLimit     = 20
	defaultKeywordCount       = 5
)

// JournalStore lists journals for recommendation scoring.
type JournalStore interface {
	List(ctx context.Context, filter domain.JournalFilter) ([]domain.Journal, error)
}

// SourceSearcher fans a query out to the registered paper sources.
type SourceSearcher interface {
	SearchAll(ctx context.Context, params papersources.SearchParams) []papersources.SourceResult
}

// CitationSource queries an index of published works for citation
// suggestions.
type CitationSource interface {
	QueryWorks(ctx context.Context, query string, rows int) ([]domain.Citation, error)
}

// Config holds the engine's tuning parameters. Zero values take defaults.
type Config struct {
	// SimilarityThreshold flags plagiarism matches at or above this cosine
	// similarity. Values outside [0.75, 0.80] are clamped into range.
	SimilarityThreshold float64

	// MaxRecommendations caps the journals returned per request.
	MaxRecommendations int

	// MaxTopics caps the trending topics returned per request.
	MaxTopics int

	// CandidateLimit is the per-source candidate fetch size.
	CandidateLimit int

	// KeywordCount is the number of keywords extracted for queries and
	// lexical scoring.
	KeywordCount int

	// ChunkMaxChars and ChunkMinChars configure the sentence chunker.
	ChunkMaxChars int
	ChunkMinChars int
}

func (c Config) withDefaults() Config {
	if c.SimilarityThreshold == 0 {
		c.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if c.SimilarityThreshold < 0.75 {
		c.SimilarityThreshold = 0.75
	}
	if c.SimilarityThreshold > 0.80 {
		c.SimilarityThreshold = 0.80
	}
	if c.MaxRecommendations <= 0 {
		c.MaxRecommendations = defaultMaxRecommendations
	}
	if c.MaxTopics <= 0 {
		c.MaxTopics = defaultMaxTopics
	}
	if c.CandidateLimit <= 0 {
		c.CandidateLimit = defaultCandidateLimit
	}
	if c.KeywordCount <= 0 {
		c.KeywordCount = defaultKeywordCount
	}
	return c
}

// Engine computes scores. All results are assembled per call and returned to
// the caller; the engine persists nothing.
type Engine struct {
	config    Config
	embedder  embedding.Embedder
	sources   SourceSearcher
	journals  JournalStore
	citations CitationSource
	logger    zerolog.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewEngine creates an Engine. The citations source may be nil, in which
// case SuggestCitations reports unavailable.
func NewEngine(
	config Config,
	embedder embedding.Embedder,
	sources SourceSearcher,
	journals JournalStore,
	citations CitationSource,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *Engine {
	return &Engine{
		config:    config.withDefaults(),
		embedder:  embedder,
		sources:   sources,
		journals:  journals,
		citations: citations,
		logger:    logger.With().Str("component", "ranking").Logger(),
		metrics:   metrics,
		now:       time.Now,
	}
}

func (e *Engine) recordRanking(operation, status string, start time.Time, candidates int) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordRanking(operation, status, time.Since(start).Seconds(), candidates)
}

func (e *Engine) recordFallback(operation string) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordLexicalFallback(operation)
}

// embed calls the embedding provider and records the call outcome.
func (e *Engine) embed(ctx context.Context, texts []string) ([]embedding.Vector, error) {
	start := time.Now()
	vectors, err := e.embedder.Embed(ctx, texts)
	if e.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		e.metrics.RecordEmbedding(status, len(texts), time.Since(start).Seconds())
	}
	return vectors, err
}

// searchCandidates fans the query out to all enabled sources and merges the
// successful branches. A failing branch is logged and skipped; only a total
// failure of every branch surfaces as an error.
func (e *Engine) searchCandidates(ctx context.Context, query string) ([]*domain.Paper, error) {
	results := e.sources.SearchAll(ctx, papersources.SearchParams{
		Query:      query,
		MaxResults: e.config.CandidateLimit,
	})
	if len(results) == 0 {
		return nil, nil
	}

	var papers []*domain.Paper
	var lastErr error
	for _, r := range results {
		status := "ok"
		count := 0
		if r.Error != nil {
			status = "error"
			lastErr = r.Error
			e.logger.Warn().
				Err(r.Error).
				Str("source", string(r.Source)).
				Msg("candidate search branch failed")
		} else {
			count = len(r.Result.Papers)
			papers = append(papers, r.Result.Papers...)
		}
		if e.metrics != nil {
			var dur time.Duration
			if r.Result != nil {
				dur = r.Result.SearchDuration
			}
			e.metrics.RecordSearch(string(r.Source), status, count, dur.Seconds())
		}
	}
	if len(papers) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return papers, nil
}
