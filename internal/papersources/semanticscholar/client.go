package semanticscholar

import (
	"context"
	"encoding/json"
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
	defaultBaseURL = "https://api.semanticscholar.org/graph/v1"
	searchFields   = "title,abstract,year,publicationDate,url,authors,citationCount,isOpenAccess"

	// maxPageSize is the largest page the search endpoint allows.
	maxPageSize = 100
)

// Config holds the Semantic Scholar client configuration.
type Config struct {
	// BaseURL is the API base URL. Defaults to the public Graph API.
	BaseURL string

	// APIKey is an optional API key for higher rate limits.
	APIKey string

	// RequestsPerSecond limits the request rate. The public API allows
	// roughly 1 request per second without a key.
	RequestsPerSecond float64

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Enabled controls whether this source participates in searches.
	Enabled bool
}

// Client is a Semantic Scholar Graph API client.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
	logger     zerolog.Logger
}

var _ papersources.PaperSource = (*Client)(nil)

// NewClient creates a Semantic Scholar client with the given configuration.
func NewClient(config Config, logger zerolog.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 1.0
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: papersources.NewHTTPClient(papersources.HTTPClientConfig{
			Timeout:      config.Timeout,
			RateLimit:    config.RequestsPerSecond,
			BurstSize:    1,
			APIKey:       config.APIKey,
			APIKeyHeader: "x-api-key",
		}),
		logger:     logger.With().Str("source", "semantic_scholar").Logger(),
	}
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeSemanticScholar
}

// Name returns the human-readable source name.
func (c *Client) Name() string {
	return "Semantic Scholar"
}

// IsEnabled reports whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// Search queries the /paper/search endpoint with offset pagination. Requests
// for more than one page are served through the bulk endpoint instead, which
// pages by continuation token.
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) (*papersources.SearchResult, error) {
	if strings.TrimSpace(params.Query) == "" {
		return nil, &domain.ValidationError{Field: "query", Message: "query must not be empty"}
	}

	if params.MaxResults > maxPageSize {
		start := time.Now()
		papers, err := c.SearchBulk(ctx, params.Query, params.MaxResults)
		if err != nil {
			return nil, err
		}
		return &papersources.SearchResult{
			Papers:         papers,
			TotalResults:   len(papers),
			Source:         domain.SourceTypeSemanticScholar,
			SearchDuration: time.Since(start),
		}, nil
	}

	limit := params.MaxResults
	if limit <= 0 {
		limit = maxPageSize
	}

	q := url.Values{}
	q.Set("query", params.Query)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(params.Offset))
	q.Set("fields", searchFields)
	if params.OpenAccessOnly {
		q.Set("openAccessPdf", "")
	}
	if params.MinCitations > 0 {
		q.Set("minCitationCount", strconv.Itoa(params.MinCitations))
	}

	start := time.Now()
	var resp SearchResponse
	if err := c.get(ctx, "/paper/search", q, &resp); err != nil {
		return nil, err
	}

	papers := make([]*domain.Paper, 0, len(resp.Data))
	for i := range resp.Data {
		papers = append(papers, c.toPaper(&resp.Data[i]))
	}

	c.logger.Debug().
		Str("query", params.Query).
		Int("results", len(papers)).
		Int("total", resp.Total).
		Dur("duration", time.Since(start)).
		Msg("search completed")

	return &papersources.SearchResult{
		Papers:         papers,
		TotalResults:   resp.Total,
		HasMore:        resp.Next > 0,
		NextOffset:     resp.Next,
		Source:         domain.SourceTypeSemanticScholar,
		SearchDuration: time.Since(start),
	}, nil
}

// SearchBulk queries the /paper/search/bulk endpoint, following continuation
// tokens until maxResults papers have been collected or the result set is
// exhausted.
func (c *Client) SearchBulk(ctx context.Context, query string, maxResults int) ([]*domain.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &domain.ValidationError{Field: "query", Message: "query must not be empty"}
	}
	if maxResults <= 0 {
		maxResults = maxPageSize
	}

	papers := make([]*domain.Paper, 0, maxResults)
	token := ""
	for len(papers) < maxResults {
		q := url.Values{}
		q.Set("query", query)
		q.Set("fields", searchFields)
		if token != "" {
			q.Set("token", token)
		}

		var resp BulkSearchResponse
		if err := c.get(ctx, "/paper/search/bulk", q, &resp); err != nil {
			return nil, err
		}
		for i := range resp.Data {
			papers = append(papers, c.toPaper(&resp.Data[i]))
			if len(papers) >= maxResults {
				break
			}
		}
		if resp.Token == "" || len(resp.Data) == 0 {
			break
		}
		token = resp.Token
	}
	return papers, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	reqURL := fmt.Sprintf("%s%s?%s", c.config.BaseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.ExternalAPIError{
			Source:  "semantic_scholar",
			Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.ExternalAPIError{
			Source:  "semantic_scholar",
			Message: fmt.Sprintf("reading response: %v", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr ErrorResponse
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &apiErr) == nil {
			if apiErr.Error != "" {
				msg = apiErr.Error
			} else if apiErr.Message != "" {
				msg = apiErr.Message
			}
		}
		return &domain.ExternalAPIError{
			Source:     "semantic_scholar",
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &domain.ExternalAPIError{
			Source:  "semantic_scholar",
			Message: fmt.Sprintf("decoding response: %v", err),
		}
	}
	return nil
}

func (c *Client) toPaper(r *PaperResult) *domain.Paper {
	authors := make([]domain.Author, 0, len(r.Authors))
	for _, a := range r.Authors {
		authors = append(authors, domain.Author{ID: a.AuthorID, Name: a.Name})
	}

	paper := &domain.Paper{
		ID:            r.PaperID,
		Title:         r.Title,
		Abstract:      r.Abstract,
		Authors:       authors,
		URL:           r.URL,
		Year:          r.Year,
		CitationCount: r.CitationCount,
		OpenAccess:    r.IsOpenAccess,
		Source:        domain.SourceTypeSemanticScholar,
	}
	if r.PublicationDate != "" {
		if t, err := time.Parse("2006-01-02", r.PublicationDate); err == nil {
			paper.PublicationDate = &t
		}
	}
	return paper
}
