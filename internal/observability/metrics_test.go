package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// promauto registers with the global registry, so each test uses a unique
// namespace to avoid registration conflicts.

func TestNewMetrics(t *testing.T) {
	m := NewMetrics("test_ranking_new")

	assert.NotNil(t, m.RankingRequests)
	assert.NotNil(t, m.RankingDuration)
	assert.NotNil(t, m.LexicalFallbacks)
	assert.NotNil(t, m.CandidatesScored)
	assert.NotNil(t, m.ChunksFlagged)
	assert.NotNil(t, m.SearchesTotal)
	assert.NotNil(t, m.SearchDuration)
	assert.NotNil(t, m.PapersFetched)
	assert.NotNil(t, m.EmbeddingRequests)
	assert.NotNil(t, m.EmbeddingDuration)
	assert.NotNil(t, m.EmbeddingTexts)
	assert.NotNil(t, m.TranslationBatches)
}

func TestRecordRanking(t *testing.T) {
	m := NewMetrics("test_record_ranking")

	m.RecordRanking("recommend_journals", "ok", 1.5, 20)
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.RankingRequests.WithLabelValues("recommend_journals", "ok")))
}

func TestRecordLexicalFallback(t *testing.T) {
	m := NewMetrics("test_record_fallback")

	m.RecordLexicalFallback("recommend_journals")
	m.RecordLexicalFallback("recommend_journals")
	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.LexicalFallbacks.WithLabelValues("recommend_journals")))
}

func TestRecordSearch(t *testing.T) {
	m := NewMetrics("test_record_search")

	m.RecordSearch("arxiv", "ok", 15, 0.4)
	m.RecordSearch("arxiv", "error", 0, 0.1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues("arxiv", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchesTotal.WithLabelValues("arxiv", "error")))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.PapersFetched.WithLabelValues("arxiv")))
}

func TestRecordEmbedding(t *testing.T) {
	m := NewMetrics("test_record_embedding")

	m.RecordEmbedding("ok", 12, 0.8)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmbeddingRequests.WithLabelValues("ok")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.EmbeddingTexts))
}

func TestRecordChunksFlagged(t *testing.T) {
	m := NewMetrics("test_record_flagged")

	m.RecordChunksFlagged(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ChunksFlagged))
}

func TestRecordTranslationBatch(t *testing.T) {
	m := NewMetrics("test_record_translation")

	m.RecordTranslationBatch("mismatch")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TranslationBatches.WithLabelValues("mismatch")))
}
