package domain

// Citation is a bibliographic work suggested as a reference for a piece of
// text. Populated from CrossRef metadata.
type Citation struct {
	// DOI is the work's Digital Object Identifier.
	DOI string `json:"doi"`

	// Title is the work title.
	Title string `json:"title"`

	// Authors lists the work's authors.
	Authors []Author `json:"authors,omitempty"`

	// Venue is the container title, usually the journal or proceedings name.
	Venue string `json:"venue,omitempty"`

	// Year is the publication year, zero if unknown.
	Year int `json:"year,omitempty"`

	// CitedByCount is the number of works citing this one.
	CitedByCount int `json:"cited_by_count"`

	// URL links to the work, typically a doi.org resolver URL.
	URL string `json:"url,omitempty"`
}
