package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the ranking service, organized
// by subsystem: ranking operations, paper sources, embedding provider, and
// translation. Everything is registered via promauto with the default
// Prometheus registry.
type Metrics struct {
	// RankingRequests counts ranking operations by operation and status
	// (operation: recommend_journals, check_plagiarism, trending_topics,
	// suggest_citations; status: ok, degraded, error).
	RankingRequests *prometheus.CounterVec

	// RankingDuration observes end-to-end ranking operation duration in
	// seconds, labeled by operation.
	RankingDuration *prometheus.HistogramVec

	// LexicalFallbacks counts ranking calls that fell back to lexical-only
	// scoring because embeddings were unavailable, labeled by operation.
	LexicalFallbacks *prometheus.CounterVec

	// CandidatesScored observes the number of candidates scored per
	// ranking call, labeled by operation.
	CandidatesScored *prometheus.HistogramVec

	// ChunksFlagged counts plagiarism chunks flagged above the similarity
	// threshold.
	ChunksFlagged prometheus.Counter

	// SearchesTotal counts candidate searches by source and status.
	SearchesTotal *prometheus.CounterVec

	// SearchDuration observes candidate search duration in seconds by source.
	SearchDuration *prometheus.HistogramVec

	// PapersFetched counts candidate papers fetched, labeled by source.
	PapersFetched *prometheus.CounterVec

	// EmbeddingRequests counts embedding provider calls by status.
	EmbeddingRequests *prometheus.CounterVec

	// EmbeddingDuration observes embedding provider call duration in seconds.
	EmbeddingDuration prometheus.Histogram

	// EmbeddingTexts counts texts sent to the embedding provider.
	EmbeddingTexts prometheus.Counter

	// TranslationBatches counts translation batches by status
	// (ok, mismatch, error).
	TranslationBatches *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance with all collectors registered under
// the given namespace prefix.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		RankingRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_requests_total",
			Help:      "Total number of ranking operations by operation and status",
		}, []string{"operation", "status"}),
		RankingDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_duration_seconds",
			Help:      "Duration of ranking operations in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"operation"}),
		LexicalFallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lexical_fallbacks_total",
			Help:      "Total number of ranking calls degraded to lexical-only scoring",
		}, []string{"operation"}),
		CandidatesScored: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "candidates_scored",
			Help:      "Number of candidates scored per ranking call",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200},
		}, []string{"operation"}),
		ChunksFlagged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_flagged_total",
			Help:      "Total number of text chunks flagged above the similarity threshold",
		}),

		SearchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of candidate searches by source and status",
		}, []string{"source", "status"}),
		SearchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of candidate searches in seconds by source",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"source"}),
		PapersFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_fetched_total",
			Help:      "Total number of candidate papers fetched by source",
		}, []string{"source"}),

		EmbeddingRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding provider calls by status",
		}, []string{"status"}),
		EmbeddingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embedding_duration_seconds",
			Help:      "Duration of embedding provider calls in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		EmbeddingTexts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_texts_total",
			Help:      "Total number of texts sent to the embedding provider",
		}),

		TranslationBatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_batches_total",
			Help:      "Total number of translation batches by status",
		}, []string{"status"}),
	}
}

// RecordRanking records a completed ranking operation.
func (m *Metrics) RecordRanking(operation, status string, durationSeconds float64, candidates int) {
	m.RankingRequests.WithLabelValues(operation, status).Inc()
	m.RankingDuration.WithLabelValues(operation).Observe(durationSeconds)
	m.CandidatesScored.WithLabelValues(operation).Observe(float64(candidates))
}

// RecordLexicalFallback records a ranking call degraded to lexical scoring.
func (m *Metrics) RecordLexicalFallback(operation string) {
	m.LexicalFallbacks.WithLabelValues(operation).Inc()
}

// RecordChunksFlagged records chunks flagged above the similarity threshold.
func (m *Metrics) RecordChunksFlagged(count int) {
	m.ChunksFlagged.Add(float64(count))
}

// RecordSearch records a candidate search against one source.
func (m *Metrics) RecordSearch(source, status string, paperCount int, durationSeconds float64) {
	m.SearchesTotal.WithLabelValues(source, status).Inc()
	m.SearchDuration.WithLabelValues(source).Observe(durationSeconds)
	if paperCount > 0 {
		m.PapersFetched.WithLabelValues(source).Add(float64(paperCount))
	}
}

// RecordEmbedding records an embedding provider call.
func (m *Metrics) RecordEmbedding(status string, textCount int, durationSeconds float64) {
	m.EmbeddingRequests.WithLabelValues(status).Inc()
	m.EmbeddingDuration.Observe(durationSeconds)
	m.EmbeddingTexts.Add(float64(textCount))
}

// RecordTranslationBatch records a translation batch outcome.
func (m *Metrics) RecordTranslationBatch(status string) {
	m.TranslationBatches.WithLabelValues(status).Inc()
}
