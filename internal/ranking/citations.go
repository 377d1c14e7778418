package ranking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arsp/ranking-service/internal/domain"
)

// SuggestCitations extracts the dominant keywords from the text and queries
// the citation index for works worth citing, in index relevance order.
func (e *Engine) SuggestCitations(ctx context.Context, text string, limit int) ([]domain.Citation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &domain.ValidationError{Field: "text", Message: "text must not be empty"}
	}
	if e.citations == nil {
		return nil, fmt.Errorf("citation suggestions: %w", domain.ErrUnavailable)
	}

	start := e.now()
	query := domain.KeywordQuery(text, e.config.KeywordCount)
	if query == "" {
		e.recordRanking("suggest_citations", "ok", start, 0)
		return []domain.Citation{}, nil
	}

	citations, err := e.citations.QueryWorks(ctx, query, limit)
	if err != nil {
		e.recordRanking("suggest_citations", "error", start, 0)
		return nil, err
	}

	e.recordRanking("suggest_citations", "ok", start, len(citations))
	e.logger.Info().
		Str("query", query).
		Int("results", len(citations)).
		Dur("duration", time.Since(start)).
		Msg("citation suggestions completed")

	return citations, nil
}
