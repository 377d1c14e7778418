package ranking

import (
	"time"

	"github.com/arsp/ranking-service/internal/domain"
)

// RecommendRequest asks for journal recommendations for a manuscript.
type RecommendRequest struct {
	// Title is the manuscript title.
	Title string

	// Abstract is the manuscript abstract. Title and abstract together form
	// the text profile that is embedded and keyword-matched.
	Abstract string

	// Filter narrows the journal pool before scoring.
	Filter domain.JournalFilter

	// Limit caps the number of recommendations returned. Zero means the
	// engine default.
	Limit int
}

// ScoredJournal is one journal recommendation with its score breakdown.
// Score is the sum of the three components on a 0 to 100 scale.
type ScoredJournal struct {
	Journal domain.Journal `json:"journal"`

	// Score is the final match score in [0, 100].
	Score float64 `json:"score"`

	// SimilarityScore is the semantic component in [0, 50]. Zero when the
	// engine degraded to lexical-only scoring.
	SimilarityScore float64 `json:"similarity_score"`

	// LexicalScore is the keyword component in [0, 30].
	LexicalScore float64 `json:"lexical_score"`

	// QualityBoost is the impact-factor component in [0, 20].
	QualityBoost float64 `json:"quality_boost"`

	// Degraded reports that the semantic component was unavailable and the
	// score was computed from lexical signals alone, rescaled to [0, 100].
	Degraded bool `json:"degraded,omitempty"`
}

// PlagiarismRequest asks for an originality check of a piece of text.
type PlagiarismRequest struct {
	// Text is the text to check.
	Text string

	// CheckOnline controls whether published papers are fetched for
	// comparison. When false the text is never compared against anything
	// and scores as fully original.
	CheckOnline bool
}

// PlagiarismReport is the outcome of an originality check.
type PlagiarismReport struct {
	// OriginalityScore is in [0, 100]; 100 means no overlapping content
	// was found.
	OriginalityScore float64 `json:"originality_score"`

	// ChunksChecked is the number of text chunks compared.
	ChunksChecked int `json:"chunks_checked"`

	// CandidatesCompared is the number of published papers compared against.
	CandidatesCompared int `json:"candidates_compared"`

	// Matches lists chunks whose best similarity reached the threshold.
	Matches []FlaggedMatch `json:"matches"`

	// Degraded reports that embeddings were unavailable and similarity was
	// estimated from keyword overlap instead.
	Degraded bool `json:"degraded,omitempty"`
}

// FlaggedMatch is one chunk whose similarity to a published paper reached
// the flagging threshold.
type FlaggedMatch struct {
	// ChunkText is the flagged chunk.
	ChunkText string `json:"chunk_text"`

	// StartIndex and EndIndex locate the chunk in the submitted text.
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`

	// Similarity is the best similarity found for this chunk, in [0, 1].
	Similarity float64 `json:"similarity"`

	// MatchedTitle and MatchedURL identify the closest paper.
	MatchedTitle string `json:"matched_title"`
	MatchedURL   string `json:"matched_url,omitempty"`

	// Source is the upstream API that provided the matched paper.
	Source domain.SourceType `json:"source"`
}

// BatchResult is the outcome of one item in a batch plagiarism check. A
// failing item carries its error message and leaves siblings unaffected.
type BatchResult struct {
	Index   int               `json:"index"`
	Success bool              `json:"success"`
	Report  *PlagiarismReport `json:"report,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// TopicRequest asks for trending papers in a research area.
type TopicRequest struct {
	// Query is the research area free-text query.
	Query string

	// Limit caps the number of topics returned. Zero means the engine
	// default.
	Limit int
}

// ScoredTopic is one trending paper with its impact score.
type ScoredTopic struct {
	// Title is the paper title.
	Title string `json:"title"`

	// URL links to the paper.
	URL string `json:"url,omitempty"`

	// Year is the publication year, zero if unknown.
	Year int `json:"year,omitempty"`

	// PublicationDate is the full publication date, nil if unknown.
	PublicationDate *time.Time `json:"publication_date,omitempty"`

	// CitationCount is the paper's citation count.
	CitationCount int `json:"citation_count"`

	// CitationVelocity is citations per day since publication.
	CitationVelocity float64 `json:"citation_velocity"`

	// ImpactScore combines citation count and velocity; papers are ranked
	// by it in descending order.
	ImpactScore float64 `json:"impact_score"`

	// Source is the upstream API that provided the paper.
	Source domain.SourceType `json:"source"`
}
