// Package arxiv provides a client for the arXiv Atom query API.
//
// arXiv serves preprints without citation metadata, so papers from this
// source always carry a zero citation count and rank on similarity and
// recency alone.
//
// API documentation: https://info.arxiv.org/help/api/user-manual.html
package arxiv

import "encoding/xml"

// Feed is the Atom feed envelope returned by the query endpoint.
type Feed struct {
	XMLName      xml.Name `xml:"feed"`
	TotalResults int      `xml:"totalResults"`
	StartIndex   int      `xml:"startIndex"`
	ItemsPerPage int      `xml:"itemsPerPage"`
	Entries      []Entry  `xml:"entry"`
}

// Entry is a single paper in the feed.
type Entry struct {
	// ID is the abs URL of the paper, e.g. http://arxiv.org/abs/2401.12345v1.
	ID string `xml:"id"`

	// Title is the paper title, often with internal newlines and padding.
	Title string `xml:"title"`

	// Summary is the abstract.
	Summary string `xml:"summary"`

	// Published is the submission timestamp in RFC 3339 format.
	Published string `xml:"published"`

	// Updated is the last revision timestamp.
	Updated string `xml:"updated"`

	// Authors lists the paper authors.
	Authors []EntryAuthor `xml:"author"`

	// Links carry the abs page and PDF URLs.
	Links []Link `xml:"link"`

	// Categories are arXiv subject classes, e.g. cs.CL.
	Categories []Category `xml:"category"`
}

// EntryAuthor is an author element in an entry.
type EntryAuthor struct {
	Name string `xml:"name"`
}

// Link is a link element in an entry.
type Link struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

// Category is a subject classification element.
type Category struct {
	Term string `xml:"term,attr"`
}
