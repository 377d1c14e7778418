package ranking

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/arsp/ranking-service/internal/domain"
	"github.com/arsp/ranking-service/internal/embedding"
)

const maxSimilarityScore = 50.0

// RecommendJournals scores every journal passing the request filter against
// the manuscript and returns the best matches in descending score order.
//
// The score sums three components: semantic similarity between the
// manuscript and the journal profile (up to 50), keyword overlap (up to 30),
// and an impact-factor boost (up to 20). If the embedding provider is
// unavailable the lexical components are rescaled to the full range and
// every result is marked degraded.
func (e *Engine) RecommendJournals(ctx context.Context, req RecommendRequest) ([]ScoredJournal, error) {
	profile := manuscriptProfile(req.Title, req.Abstract)
	if profile == "" {
		return nil, &domain.ValidationError{Field: "title", Message: "title or abstract required"}
	}

	start := e.now()
	limit := req.Limit
	if limit <= 0 || limit > e.config.MaxRecommendations {
		limit = e.config.MaxRecommendations
	}

	journals, err := e.journals.List(ctx, req.Filter)
	if err != nil {
		e.recordRanking("recommend_journals", "error", start, 0)
		return nil, err
	}
	if len(journals) == 0 {
		e.recordRanking("recommend_journals", "ok", start, 0)
		return []ScoredJournal{}, nil
	}

	keywords := domain.ExtractKeywords(profile, e.config.KeywordCount)

	texts := make([]string, 0, len(journals)+1)
	texts = append(texts, profile)
	for i := range journals {
		texts = append(texts, journalProfile(&journals[i]))
	}

	vectors, embedErr := e.embed(ctx, texts)
	degraded := embedErr != nil
	if degraded {
		e.logger.Warn().Err(embedErr).Msg("embeddings unavailable, scoring lexically")
		e.recordFallback("recommend_journals")
	}

	scored := make([]ScoredJournal, 0, len(journals))
	for i := range journals {
		s := ScoredJournal{
			Journal:      journals[i],
			LexicalScore: LexicalScore(keywords, &journals[i]),
			QualityBoost: QualityBoost(journals[i].ImpactFactor),
			Degraded:     degraded,
		}
		if degraded {
			s.Score = lexicalOnlyScore(s.LexicalScore, s.QualityBoost)
		} else {
			cos := embedding.Cosine(vectors[0], vectors[i+1])
			if cos < 0 {
				cos = 0
			}
			s.SimilarityScore = cos * maxSimilarityScore
			s.Score = s.SimilarityScore + s.LexicalScore + s.QualityBoost
		}
		scored = append(scored, s)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Journal.Name < scored[j].Journal.Name
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	status := "ok"
	if degraded {
		status = "degraded"
	}
	e.recordRanking("recommend_journals", status, start, len(journals))
	e.logger.Info().
		Int("journals", len(journals)).
		Int("returned", len(scored)).
		Bool("degraded", degraded).
		Dur("duration", time.Since(start)).
		Msg("journal recommendation completed")

	return scored, nil
}

// manuscriptProfile joins the title and abstract into the text that is
// embedded and keyword-matched.
func manuscriptProfile(title, abstract string) string {
	title = strings.TrimSpace(title)
	abstract = strings.TrimSpace(abstract)
	switch {
	case title == "":
		return abstract
	case abstract == "":
		return title
	default:
		return title + ". " + abstract
	}
}

func journalProfile(j *domain.Journal) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{j.Name, j.Domain, j.Description} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	return strings.Join(parts, ". ")
}
