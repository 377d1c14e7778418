package httpserver

import (
	"github.com/arsp/ranking-service/internal/domain"
	"github.com/arsp/ranking-service/internal/ranking"
)

// Response envelopes for JSON serialization. The payload types carry their
// own JSON tags; the envelopes add counts for client pagination heuristics.

type recommendJournalsResponse struct {
	Recommendations []ranking.ScoredJournal `json:"recommendations"`
	TotalCount      int                     `json:"total_count"`
}

type listJournalsResponse struct {
	Journals   []domain.Journal `json:"journals"`
	TotalCount int              `json:"total_count"`
}

type checkPlagiarismBatchResponse struct {
	Results    []ranking.BatchResult `json:"results"`
	TotalCount int                   `json:"total_count"`
}

type trendingTopicsResponse struct {
	Query      string                `json:"query"`
	Topics     []ranking.ScoredTopic `json:"topics"`
	TotalCount int                   `json:"total_count"`
}

type suggestCitationsResponse struct {
	Citations  []domain.Citation `json:"citations"`
	TotalCount int               `json:"total_count"`
}
