package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arsp/ranking-service/internal/domain"
	"github.com/arsp/ranking-service/internal/papersources"
)

const (
	defaultBaseURL = "http://export.arxiv.org/api/query"

	// maxPageSize caps max_results per request; arXiv asks clients to stay
	// well under its hard limit of 2000.
	maxPageSize = 100
)

// Config holds the arXiv client configuration.
type Config struct {
	// BaseURL is the query endpoint URL. Defaults to the public export API.
	BaseURL string

	// RequestsPerSecond limits the request rate. arXiv asks for no more
	// than one request every three seconds.
	RequestsPerSecond float64

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Enabled controls whether this source participates in searches.
	Enabled bool
}

// Client is an arXiv query API client.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
	logger     zerolog.Logger
}

var _ papersources.PaperSource = (*Client)(nil)

// NewClient creates an arXiv client with the given configuration.
func NewClient(config Config, logger zerolog.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 1.0 / 3.0
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: papersources.NewHTTPClient(papersources.HTTPClientConfig{
			Timeout:   config.Timeout,
			RateLimit: config.RequestsPerSecond,
			BurstSize: 1,
		}),
		logger: logger.With().Str("source", "arxiv").Logger(),
	}
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeArXiv
}

// Name returns the human-readable source name.
func (c *Client) Name() string {
	return "arXiv"
}

// IsEnabled reports whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// Search queries the arXiv API. Open-access and citation filters are
// no-ops here: every arXiv paper is open access and none carries citation
// counts.
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) (*papersources.SearchResult, error) {
	if strings.TrimSpace(params.Query) == "" {
		return nil, &domain.ValidationError{Field: "query", Message: "query must not be empty"}
	}

	limit := params.MaxResults
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	q := url.Values{}
	q.Set("search_query", buildQuery(params.Query))
	q.Set("start", strconv.Itoa(params.Offset))
	q.Set("max_results", strconv.Itoa(limit))
	q.Set("sortBy", "relevance")
	q.Set("sortOrder", "descending")

	start := time.Now()
	feed, err := c.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	papers := make([]*domain.Paper, 0, len(feed.Entries))
	for i := range feed.Entries {
		papers = append(papers, toPaper(&feed.Entries[i]))
	}

	nextOffset := params.Offset + len(papers)
	c.logger.Debug().
		Str("query", params.Query).
		Int("results", len(papers)).
		Int("total", feed.TotalResults).
		Dur("duration", time.Since(start)).
		Msg("search completed")

	return &papersources.SearchResult{
		Papers:         papers,
		TotalResults:   feed.TotalResults,
		HasMore:        nextOffset < feed.TotalResults,
		NextOffset:     nextOffset,
		Source:         domain.SourceTypeArXiv,
		SearchDuration: time.Since(start),
	}, nil
}

func (c *Client) fetch(ctx context.Context, query url.Values) (*Feed, error) {
	reqURL := fmt.Sprintf("%s?%s", c.config.BaseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/atom+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ExternalAPIError{
			Source:  "arxiv",
			Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ExternalAPIError{
			Source:  "arxiv",
			Message: fmt.Sprintf("reading response: %v", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ExternalAPIError{
			Source:     "arxiv",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var feed Feed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, &domain.ExternalAPIError{
			Source:  "arxiv",
			Message: fmt.Sprintf("decoding feed: %v", err),
		}
	}
	return &feed, nil
}

// buildQuery wraps the free-text query for the all: field prefix, quoting
// multi-word queries so arXiv treats them as a phrase-ish conjunction.
func buildQuery(query string) string {
	query = strings.TrimSpace(query)
	if strings.ContainsAny(query, " \t") {
		return fmt.Sprintf("all:%q", query)
	}
	return "all:" + query
}

func toPaper(e *Entry) *domain.Paper {
	authors := make([]domain.Author, 0, len(e.Authors))
	for _, a := range e.Authors {
		authors = append(authors, domain.Author{Name: a.Name})
	}

	paper := &domain.Paper{
		ID:         arxivID(e.ID),
		Title:      normalizeWhitespace(e.Title),
		Abstract:   normalizeWhitespace(e.Summary),
		Authors:    authors,
		URL:        e.ID,
		OpenAccess: true,
		Source:     domain.SourceTypeArXiv,
	}
	for _, link := range e.Links {
		if link.Title == "pdf" || link.Type == "application/pdf" {
			paper.URL = link.Href
			break
		}
	}
	if t, err := time.Parse(time.RFC3339, e.Published); err == nil {
		paper.PublicationDate = &t
		paper.Year = t.Year()
	}
	return paper
}

// arxivID extracts the bare identifier from an abs URL, dropping the
// version suffix: http://arxiv.org/abs/2401.12345v2 -> 2401.12345.
func arxivID(absURL string) string {
	id := absURL
	if i := strings.LastIndex(id, "/abs/"); i >= 0 {
		id = id[i+len("/abs/"):]
	}
	if i := strings.LastIndex(id, "v"); i > 0 {
		if _, err := strconv.Atoi(id[i+1:]); err == nil {
			id = id[:i]
		}
	}
	return id
}

// normalizeWhitespace collapses the newlines and indentation arXiv embeds
// in titles and abstracts into single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
