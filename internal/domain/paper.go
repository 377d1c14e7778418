// Package domain provides the entities and shared logic of the research
// ranking service: candidate papers, journals, topics, scoring results, and
// keyword extraction.
//
// Everything in this package is created, scored, and discarded within the
// scope of one ranking call; nothing here outlives a request except through
// the caller's own persistence layer.
package domain

import (
	"strings"
	"time"
)

// SourceType identifies the external API that provided a candidate record.
type SourceType string

const (
	SourceTypeSemanticScholar SourceType = "semantic_scholar"
	SourceTypeArXiv           SourceType = "arxiv"
	SourceTypeCrossRef        SourceType = "crossref"
)

// Author represents a paper author.
type Author struct {
	// ID is the source-specific author identifier, if the source provides one.
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Paper is a candidate record fetched from an upstream bibliographic source.
// Upstream ordering is not trusted; the ranking engine re-sorts by its own
// computed score.
type Paper struct {
	// ID is the source-specific identifier (Semantic Scholar ID, arXiv ID, DOI).
	ID string

	// Title is the paper title.
	Title string

	// Abstract is the paper's abstract text. May be empty; papers without an
	// abstract cannot be embedded and fall back to title-only comparison.
	Abstract string

	// Authors lists the paper authors in source order.
	Authors []Author

	// URL is a link to the paper's landing page, if known.
	URL string

	// Year is the publication year, zero if unknown.
	Year int

	// PublicationDate is the full publication date, nil if unknown.
	PublicationDate *time.Time

	// CitationCount is the number of citations the paper has received.
	// Sources that do not track citations (arXiv) report zero.
	CitationCount int

	// OpenAccess indicates whether the paper is open access.
	OpenAccess bool

	// Source identifies the upstream API that provided this record.
	Source SourceType
}

// ComparableText returns the text used for semantic comparison against a
// query or chunk: the abstract when present, otherwise the title.
func (p *Paper) ComparableText() string {
	if strings.TrimSpace(p.Abstract) != "" {
		return p.Abstract
	}
	return p.Title
}

// DaysSincePublication returns the whole days elapsed between the paper's
// publication date and now, floored at 1 so it is safe as a divisor.
// Returns 0 and false if the publication date is unknown.
func (p *Paper) DaysSincePublication(now time.Time) (int, bool) {
	if p.PublicationDate == nil {
		return 0, false
	}
	days := int(now.Sub(*p.PublicationDate).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days, true
}
