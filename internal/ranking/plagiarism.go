package ranking

import (
	"context"
	"strings"
	"time"

	"github.com/arsp/ranking-service/internal/chunker"
	"github.com/arsp/ranking-service/internal/domain"
	"github.com/arsp/ranking-service/internal/embedding"
)

// Weights of the two overlap signals in the originality score: the average
// similarity of flagged chunks and the fraction of chunks flagged.
const (
	similarityWeight = 0.7
	coverageWeight   = 0.3

	// noCandidatesScore is returned when an online check finds nothing to
	// compare against. Absence of candidates is weaker evidence of
	// originality than a comparison that found no overlap.
	noCandidatesScore = 90.0
)

// CheckPlagiarism chunks the text, compares each chunk against published
// papers fetched from the enabled sources, and reports an originality score
// with the flagged matches.
//
// A request with CheckOnline false never fetches anything and scores 100.
// When embeddings are unavailable, similarity is estimated from keyword
// overlap and the report is marked degraded. When every candidate source
// fails, the check reports full originality rather than an error: no
// comparable source found is not evidence of plagiarism.
func (e *Engine) CheckPlagiarism(ctx context.Context, req PlagiarismRequest) (*PlagiarismReport, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, &domain.ValidationError{Field: "text", Message: "text must not be empty"}
	}

	start := e.now()

	if !req.CheckOnline {
		e.recordRanking("check_plagiarism", "ok", start, 0)
		return &PlagiarismReport{
			OriginalityScore: 100.0,
			Matches:          []FlaggedMatch{},
		}, nil
	}

	chunks := chunker.Chunk(req.Text, e.config.ChunkMaxChars, e.config.ChunkMinChars)
	if len(chunks) == 0 {
		e.recordRanking("check_plagiarism", "ok", start, 0)
		return &PlagiarismReport{
			OriginalityScore: 100.0,
			Matches:          []FlaggedMatch{},
		}, nil
	}

	query := domain.KeywordQuery(req.Text, e.config.KeywordCount)
	candidates, err := e.searchCandidates(ctx, query)
	if err != nil {
		// No source produced anything to compare against. Absence of
		// comparable sources must not read as plagiarism, so the check
		// reports full originality, marked degraded.
		e.logger.Warn().Err(err).Msg("candidate search failed, reporting neutral originality")
		e.recordFallback("check_plagiarism")
		e.recordRanking("check_plagiarism", "degraded", start, 0)
		return &PlagiarismReport{
			OriginalityScore: 100.0,
			ChunksChecked:    len(chunks),
			Matches:          []FlaggedMatch{},
			Degraded:         true,
		}, nil
	}
	if len(candidates) == 0 {
		e.recordRanking("check_plagiarism", "ok", start, 0)
		return &PlagiarismReport{
			OriginalityScore: noCandidatesScore,
			ChunksChecked:    len(chunks),
			Matches:          []FlaggedMatch{},
		}, nil
	}

	matches, degraded, err := e.matchChunks(ctx, chunks, candidates)
	if err != nil {
		e.recordRanking("check_plagiarism", "error", start, len(candidates))
		return nil, err
	}
	if degraded {
		e.recordFallback("check_plagiarism")
	}
	if e.metrics != nil {
		e.metrics.RecordChunksFlagged(len(matches))
	}

	report := &PlagiarismReport{
		OriginalityScore:   originalityScore(matches, len(chunks)),
		ChunksChecked:      len(chunks),
		CandidatesCompared: len(candidates),
		Matches:            matches,
		Degraded:           degraded,
	}

	status := "ok"
	if degraded {
		status = "degraded"
	}
	e.recordRanking("check_plagiarism", status, start, len(candidates))
	e.logger.Info().
		Int("chunks", len(chunks)).
		Int("candidates", len(candidates)).
		Int("flagged", len(matches)).
		Float64("originality", report.OriginalityScore).
		Bool("degraded", degraded).
		Dur("duration", time.Since(start)).
		Msg("plagiarism check completed")

	return report, nil
}

// CheckPlagiarismBatch checks each text in order. A failing item is captured
// in its slot and the remaining items still run.
func (e *Engine) CheckPlagiarismBatch(ctx context.Context, reqs []PlagiarismRequest) []BatchResult {
	results := make([]BatchResult, len(reqs))
	for i, req := range reqs {
		report, err := e.CheckPlagiarism(ctx, req)
		if err != nil {
			results[i] = BatchResult{Index: i, Success: false, Error: err.Error()}
			continue
		}
		results[i] = BatchResult{Index: i, Success: true, Report: report}
	}
	return results
}

// matchChunks finds the best-matching candidate for every chunk and returns
// the matches at or above the similarity threshold. Falls back to keyword
// overlap when the embedding provider is unavailable.
func (e *Engine) matchChunks(ctx context.Context, chunks []chunker.TextChunk, candidates []*domain.Paper) ([]FlaggedMatch, bool, error) {
	texts := make([]string, 0, len(chunks)+len(candidates))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	for _, p := range candidates {
		texts = append(texts, p.ComparableText())
	}

	vectors, err := e.embed(ctx, texts)
	if err != nil {
		e.logger.Warn().Err(err).Msg("embeddings unavailable, estimating similarity from keyword overlap")
		return e.matchChunksLexically(chunks, candidates), true, nil
	}

	chunkVecs := vectors[:len(chunks)]
	candidateVecs := vectors[len(chunks):]

	var matches []FlaggedMatch
	for i, chunk := range chunks {
		best := -1.0
		bestIdx := -1
		for j := range candidates {
			if sim := embedding.Cosine(chunkVecs[i], candidateVecs[j]); sim > best {
				best = sim
				bestIdx = j
			}
		}
		if bestIdx >= 0 && best >= e.config.SimilarityThreshold {
			matches = append(matches, newMatch(chunk, candidates[bestIdx], best))
		}
	}
	return matches, false, nil
}

// matchChunksLexically is the degraded pairing path: pseudo-similarity is the
// fraction of chunk keywords found among a candidate's keywords.
func (e *Engine) matchChunksLexically(chunks []chunker.TextChunk, candidates []*domain.Paper) []FlaggedMatch {
	candidateKeywords := make([][]string, len(candidates))
	for i, p := range candidates {
		candidateKeywords[i] = domain.ExtractKeywords(p.ComparableText(), 25)
	}

	var matches []FlaggedMatch
	for _, chunk := range chunks {
		chunkKeywords := domain.ExtractKeywords(chunk.Text, 25)
		best := -1.0
		bestIdx := -1
		for j := range candidates {
			if sim := keywordOverlap(chunkKeywords, candidateKeywords[j]); sim > best {
				best = sim
				bestIdx = j
			}
		}
		if bestIdx >= 0 && best >= e.config.SimilarityThreshold {
			matches = append(matches, newMatch(chunk, candidates[bestIdx], best))
		}
	}
	return matches
}

func newMatch(chunk chunker.TextChunk, paper *domain.Paper, similarity float64) FlaggedMatch {
	return FlaggedMatch{
		ChunkText:    chunk.Text,
		StartIndex:   chunk.StartIndex,
		EndIndex:     chunk.EndIndex,
		Similarity:   similarity,
		MatchedTitle: paper.Title,
		MatchedURL:   paper.URL,
		Source:       paper.Source,
	}
}

// originalityScore converts flagged matches into a 0 to 100 score. With no
// matches the text is fully original. Otherwise the penalty combines the
// average flagged similarity with the fraction of chunks flagged, both
// expressed as percentages.
func originalityScore(matches []FlaggedMatch, totalChunks int) float64 {
	if len(matches) == 0 || totalChunks == 0 {
		return 100.0
	}

	var sum float64
	for _, m := range matches {
		sum += m.Similarity
	}
	avgSimPct := sum / float64(len(matches)) * 100
	coveragePct := float64(len(matches)) / float64(totalChunks) * 100

	score := 100 - (avgSimPct*similarityWeight + coveragePct*coverageWeight)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
