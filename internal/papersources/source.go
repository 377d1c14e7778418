// Package papersources provides clients for the external bibliographic search
// APIs that supply ranking candidates.
//
// Each upstream database (Semantic Scholar, arXiv) implements the PaperSource
// interface, so the ranking engine can search several sources concurrently
// through the Registry with per-source failure isolation. All clients share a
// rate-limited, retrying HTTP client that honors 429 backoff.
//
// Example usage:
//
//	source := semanticscholar.NewClient(cfg, nil)
//	result, err := source.Search(ctx, papersources.SearchParams{
//		Query:      "CRISPR gene editing",
//		MaxResults: 20,
//	})
package papersources

import (
	"context"
	"time"

	"github.com/arsp/ranking-service/internal/domain"
)

// SearchParams defines the parameters for searching candidate papers.
// All fields except Query are optional.
type SearchParams struct {
	// Query is the search query string (required). The format may vary by
	// source; clients pass it through unmodified.
	Query string

	// MaxResults limits the number of papers returned. Sources may impose
	// their own per-request cap; clients paginate as needed up to this value.
	// Zero selects the source's default limit.
	MaxResults int

	// Offset is the starting position for paginated results.
	Offset int

	// OpenAccessOnly filters results to open access papers where the source
	// supports it; otherwise it is applied client-side.
	OpenAccessOnly bool

	// MinCitations drops papers with fewer citations. Zero applies no filter.
	MinCitations int
}

// SearchResult contains the outcome of one source search.
type SearchResult struct {
	// Papers are the candidate records, in upstream order. The caller
	// re-sorts by its own score; upstream ordering is not trusted.
	Papers []*domain.Paper

	// TotalResults is the upstream's estimate of the full match count.
	TotalResults int

	// HasMore indicates additional pages are available.
	HasMore bool

	// NextOffset is the offset of the next page, meaningful when HasMore.
	NextOffset int

	// Source identifies the API that produced these results.
	Source domain.SourceType

	// SearchDuration is the elapsed time including network and parsing.
	SearchDuration time.Duration
}

// PaperSource is implemented by each bibliographic search client.
type PaperSource interface {
	// Search queries the source for papers matching the given parameters.
	// Implementations respect context cancellation, apply their own rate
	// limiting, and convert source responses to domain.Paper records.
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)

	// SourceType returns the type identifier for this source.
	SourceType() domain.SourceType

	// Name returns a human-readable name for logging and attribution.
	Name() string

	// IsEnabled reports whether the source is configured and available.
	IsEnabled() bool
}
