package ranking

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arsp/ranking-service/internal/domain"
	"github.com/arsp/ranking-service/internal/embedding"
	"github.com/arsp/ranking-service/internal/papersources"
)

const (
	sentenceOne = "The transformer architecture relies entirely on attention mechanisms for sequence modeling. "
	sentenceTwo = "Convolutional networks instead exploit local spatial structure in their input representations. "
)

func plagiarismConfig() Config {
	return Config{ChunkMaxChars: 100, ChunkMinChars: 10}
}

func TestCheckPlagiarismOffline(t *testing.T) {
	sources := &stubSources{}
	engine := newTestEngine(plagiarismConfig(), &stubEmbedder{}, sources, nil, nil)

	report, err := engine.CheckPlagiarism(context.Background(), PlagiarismRequest{
		Text:        sentenceOne,
		CheckOnline: false,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, report.OriginalityScore)
	assert.Empty(t, report.Matches)
	assert.Zero(t, sources.calls)
}

func TestCheckPlagiarismNoCandidates(t *testing.T) {
	engine := newTestEngine(plagiarismConfig(), &stubEmbedder{}, &stubSources{}, nil, nil)

	report, err := engine.CheckPlagiarism(context.Background(), PlagiarismRequest{
		Text:        sentenceOne + sentenceTwo,
		CheckOnline: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 90.0, report.OriginalityScore)
	assert.Equal(t, 2, report.ChunksChecked)
	assert.Zero(t, report.CandidatesCompared)
	assert.Empty(t, report.Matches)
}

func TestCheckPlagiarismAllSourcesDown(t *testing.T) {
	sources := &stubSources{results: []papersources.SourceResult{
		{Source: domain.SourceTypeSemanticScholar, Error: errors.New("down")},
		{Source: domain.SourceTypeArXiv, Error: errors.New("down")},
	}}
	embedder := &stubEmbedder{}
	engine := newTestEngine(plagiarismConfig(), embedder, sources, nil, nil)

	report, err := engine.CheckPlagiarism(context.Background(), PlagiarismRequest{
		Text:        sentenceOne + sentenceTwo,
		CheckOnline: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, report.OriginalityScore)
	assert.Equal(t, 2, report.ChunksChecked)
	assert.Zero(t, report.CandidatesCompared)
	assert.Empty(t, report.Matches)
	assert.True(t, report.Degraded)
	assert.Zero(t, embedder.calls)
}

func TestCheckPlagiarismFlagsMatches(t *testing.T) {
	candidate := &domain.Paper{
		ID:       "p1",
		Title:    "Attention Is All You Need",
		Abstract: "We propose the transformer, based solely on attention mechanisms.",
		URL:      "https://example.org/p1",
		Source:   domain.SourceTypeSemanticScholar,
	}
	sources := &stubSources{results: []papersources.SourceResult{
		sourceResult(domain.SourceTypeSemanticScholar, candidate),
	}}
	// Vectors: chunk one, chunk two, then the candidate.
	embedder := &stubEmbedder{vectors: []embedding.Vector{
		{1, 0},
		{0, 1},
		{1, 0},
	}}
	engine := newTestEngine(plagiarismConfig(), embedder, sources, nil, nil)

	report, err := engine.CheckPlagiarism(context.Background(), PlagiarismRequest{
		Text:        sentenceOne + sentenceTwo,
		CheckOnline: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.ChunksChecked)
	assert.Equal(t, 1, report.CandidatesCompared)
	require.Len(t, report.Matches, 1)
	assert.False(t, report.Degraded)

	match := report.Matches[0]
	assert.Contains(t, match.ChunkText, "transformer architecture")
	assert.InDelta(t, 1.0, match.Similarity, 1e-9)
	assert.Equal(t, "Attention Is All You Need", match.MatchedTitle)
	assert.Equal(t, domain.SourceTypeSemanticScholar, match.Source)

	// One of two chunks flagged at similarity 1.0:
	// 100 - (100*0.7 + 50*0.3) = 15.
	assert.InDelta(t, 15.0, report.OriginalityScore, 1e-9)
}

func TestCheckPlagiarismBelowThresholdNotFlagged(t *testing.T) {
	candidate := &domain.Paper{ID: "p1", Title: "Unrelated", Abstract: "Something else entirely."}
	sources := &stubSources{results: []papersources.SourceResult{
		sourceResult(domain.SourceTypeSemanticScholar, candidate),
	}}
	// Cosine of ~0.71, below the 0.78 threshold.
	embedder := &stubEmbedder{vectors: []embedding.Vector{
		{1, 0},
		{1, 1},
	}}
	engine := newTestEngine(plagiarismConfig(), embedder, sources, nil, nil)

	report, err := engine.CheckPlagiarism(context.Background(), PlagiarismRequest{
		Text:        sentenceOne,
		CheckOnline: true,
	})
	require.NoError(t, err)
	assert.Empty(t, report.Matches)
	assert.Equal(t, 100.0, report.OriginalityScore)
}

func TestCheckPlagiarismDegradedKeywordOverlap(t *testing.T) {
	// The candidate abstract is the chunk itself, so keyword overlap is 1.0.
	candidate := &domain.Paper{
		ID:       "p1",
		Title:    "Copied Source",
		Abstract: sentenceOne,
		Source:   domain.SourceTypeArXiv,
	}
	sources := &stubSources{results: []papersources.SourceResult{
		sourceResult(domain.SourceTypeArXiv, candidate),
	}}
	engine := newTestEngine(plagiarismConfig(), &stubEmbedder{err: errors.New("provider down")},
		sources, nil, nil)

	report, err := engine.CheckPlagiarism(context.Background(), PlagiarismRequest{
		Text:        sentenceOne,
		CheckOnline: true,
	})
	require.NoError(t, err)
	assert.True(t, report.Degraded)
	require.Len(t, report.Matches, 1)
	assert.Equal(t, "Copied Source", report.Matches[0].MatchedTitle)
	assert.InDelta(t, 1.0, report.Matches[0].Similarity, 1e-9)
}

func TestCheckPlagiarismValidation(t *testing.T) {
	engine := newTestEngine(plagiarismConfig(), &stubEmbedder{}, &stubSources{}, nil, nil)

	_, err := engine.CheckPlagiarism(context.Background(), PlagiarismRequest{Text: "  "})
	require.Error(t, err)

	var vErr *domain.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestCheckPlagiarismBatch(t *testing.T) {
	engine := newTestEngine(plagiarismConfig(), &stubEmbedder{}, &stubSources{}, nil, nil)

	results := engine.CheckPlagiarismBatch(context.Background(), []PlagiarismRequest{
		{Text: sentenceOne, CheckOnline: false},
		{Text: ""},
		{Text: sentenceTwo, CheckOnline: false},
	})
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	require.NotNil(t, results[0].Report)
	assert.Equal(t, 100.0, results[0].Report.OriginalityScore)

	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)
	assert.Nil(t, results[1].Report)

	assert.True(t, results[2].Success)
	assert.Equal(t, 2, results[2].Index)
}

func TestOriginalityScore(t *testing.T) {
	assert.Equal(t, 100.0, originalityScore(nil, 5))

	// Every chunk flagged at full similarity floors the score at 0.
	full := []FlaggedMatch{{Similarity: 1.0}, {Similarity: 1.0}}
	assert.Equal(t, 0.0, originalityScore(full, 2))

	// Half coverage at similarity 0.8: 100 - (80*0.7 + 50*0.3) = 29.
	half := []FlaggedMatch{{Similarity: 0.8}}
	assert.InDelta(t, 29.0, originalityScore(half, 2), 1e-9)
}

func TestOriginalityScoreBounds(t *testing.T) {
	for _, matches := range [][]FlaggedMatch{
		nil,
		{{Similarity: 0.78}},
		{{Similarity: 0.9}, {Similarity: 0.95}},
	} {
		score := originalityScore(matches, 3)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}

func TestChunkingLongText(t *testing.T) {
	// Enough sentences to require several chunks and exercise offsets.
	text := strings.Repeat(sentenceOne+sentenceTwo, 3)
	sources := &stubSources{}
	engine := newTestEngine(plagiarismConfig(), &stubEmbedder{}, sources, nil, nil)

	report, err := engine.CheckPlagiarism(context.Background(), PlagiarismRequest{
		Text:        text,
		CheckOnline: true,
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, report.ChunksChecked, 4)
}
