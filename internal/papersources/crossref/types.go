// Package crossref provides a client for the CrossRef REST API, used for
// citation suggestions. CrossRef indexes published works by DOI and exposes
// relevance-ranked free-text search over titles and metadata.
//
// The client sends a mailto parameter on every request to opt into the
// polite pool, which CrossRef routes to less loaded servers.
//
// API documentation: https://api.crossref.org/swagger-ui/index.html
package crossref

// WorksResponse is the envelope of a /works query.
type WorksResponse struct {
	Status  string       `json:"status"`
	Message WorksMessage `json:"message"`
}

// WorksMessage carries the result page.
type WorksMessage struct {
	TotalResults int    `json:"total-results"`
	Items        []Work `json:"items"`
}

// Work is a single indexed work.
type Work struct {
	// DOI is the work's Digital Object Identifier.
	DOI string `json:"DOI"`

	// Title holds the work title; CrossRef wraps it in an array.
	Title []string `json:"title"`

	// ContainerTitle is the journal or proceedings name.
	ContainerTitle []string `json:"container-title"`

	// Author lists the work's authors.
	Author []WorkAuthor `json:"author"`

	// Published carries the publication date as date parts.
	Published DateParts `json:"published"`

	// IsReferencedByCount is the number of works citing this one.
	IsReferencedByCount int `json:"is-referenced-by-count"`

	// URL is the doi.org resolver URL.
	URL string `json:"URL"`
}

// WorkAuthor is an author element on a work.
type WorkAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

// DateParts is CrossRef's date representation: an array of
// [year, month, day] arrays, any suffix of which may be absent.
type DateParts struct {
	DateParts [][]int `json:"date-parts"`
}

// Year returns the year component, zero if absent.
func (d DateParts) Year() int {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}
