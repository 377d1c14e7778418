// Package semanticscholar provides a client for the Semantic Scholar Graph API.
//
// Semantic Scholar is the primary candidate source for journal matching,
// plagiarism comparison, and trending-topic scoring. This package implements
// the papersources.PaperSource interface and additionally exposes the bulk
// search endpoint with continuation-token pagination.
//
// API documentation: https://api.semanticscholar.org/api-docs/
package semanticscholar

// SearchResponse is the response from the /paper/search endpoint.
type SearchResponse struct {
	// Total is the total number of papers matching the query.
	Total int `json:"total"`

	// Offset is the current offset in the result set.
	Offset int `json:"offset"`

	// Next is the offset of the next page; 0 means no more results.
	Next int `json:"next"`

	// Data is the list of matching papers.
	Data []PaperResult `json:"data"`
}

// BulkSearchResponse is the response from the /paper/search/bulk endpoint,
// which paginates with an opaque continuation token instead of offsets.
type BulkSearchResponse struct {
	// Total is the total number of papers matching the query.
	Total int `json:"total"`

	// Token is the continuation token for the next page; empty when the
	// result set is exhausted.
	Token string `json:"token"`

	// Data is the list of matching papers.
	Data []PaperResult `json:"data"`
}

// PaperResult is a single paper in a Semantic Scholar response.
type PaperResult struct {
	// PaperID is the Semantic Scholar identifier.
	PaperID string `json:"paperId"`

	// Title is the paper title.
	Title string `json:"title"`

	// Abstract is the paper's abstract text, possibly empty.
	Abstract string `json:"abstract"`

	// Year is the publication year.
	Year int `json:"year"`

	// PublicationDate is the full date in YYYY-MM-DD format, possibly empty.
	PublicationDate string `json:"publicationDate"`

	// URL links to the paper's Semantic Scholar page.
	URL string `json:"url"`

	// Authors lists the paper authors.
	Authors []Author `json:"authors"`

	// CitationCount is the number of citations received.
	CitationCount int `json:"citationCount"`

	// IsOpenAccess indicates whether the paper is open access.
	IsOpenAccess bool `json:"isOpenAccess"`
}

// Author is a paper author in the API response.
type Author struct {
	AuthorID string `json:"authorId,omitempty"`
	Name     string `json:"name"`
}

// ErrorResponse is an error payload from the API.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
