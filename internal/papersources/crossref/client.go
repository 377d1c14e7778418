package crossref

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
	defaultBaseURL = "https://api.crossref.org"

	// maxRows caps the rows parameter; CrossRef allows up to 1000 but
	// citation suggestions never need more than a handful.
	maxRows = 50
)

// Config holds the CrossRef client configuration.
type Config struct {
	// BaseURL is the API base URL. Defaults to the public API.
	BaseURL string

	// MailTo is the contact address sent with every request for polite-pool
	// routing. Strongly recommended by CrossRef.
	MailTo string

	// RequestsPerSecond limits the request rate.
	RequestsPerSecond float64

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Enabled controls whether citation suggestions are available.
	Enabled bool
}

// Client is a CrossRef REST API client.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
	logger     zerolog.Logger
}

// NewClient creates a CrossRef client with the given configuration.
func NewClient(config Config, logger zerolog.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 2.0
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: papersources.NewHTTPClient(papersources.HTTPClientConfig{
			Timeout:   config.Timeout,
			RateLimit: config.RequestsPerSecond,
			BurstSize: 2,
		}),
		logger: logger.With().Str("source", "crossref").Logger(),
	}
}

// IsEnabled reports whether this client is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// QueryWorks searches /works by free text and returns up to rows citations
// in CrossRef relevance order.
func (c *Client) QueryWorks(ctx context.Context, query string, rows int) ([]domain.Citation, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &domain.ValidationError{Field: "query", Message: "query must not be empty"}
	}
	if rows <= 0 || rows > maxRows {
		rows = maxRows
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("rows", strconv.Itoa(rows))
	q.Set("select", "DOI,title,container-title,author,published,is-referenced-by-count,URL")
	if c.config.MailTo != "" {
		q.Set("mailto", c.config.MailTo)
	}

	reqURL := fmt.Sprintf("%s/works?%s", c.config.BaseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ExternalAPIError{
			Source:  "crossref",
			Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ExternalAPIError{
			Source:  "crossref",
			Message: fmt.Sprintf("reading response: %v", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ExternalAPIError{
			Source:     "crossref",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var works WorksResponse
	if err := json.Unmarshal(body, &works); err != nil {
		return nil, &domain.ExternalAPIError{
			Source:  "crossref",
			Message: fmt.Sprintf("decoding response: %v", err),
		}
	}

	citations := make([]domain.Citation, 0, len(works.Message.Items))
	for i := range works.Message.Items {
		citations = append(citations, toCitation(&works.Message.Items[i]))
	}

	c.logger.Debug().
		Str("query", query).
		Int("results", len(citations)).
		Dur("duration", time.Since(start)).
		Msg("works query completed")

	return citations, nil
}

func toCitation(w *Work) domain.Citation {
	citation := domain.Citation{
		DOI:          w.DOI,
		Year:         w.Published.Year(),
		CitedByCount: w.IsReferencedByCount,
		URL:          w.URL,
	}
	if len(w.Title) > 0 {
		citation.Title = w.Title[0]
	}
	if len(w.ContainerTitle) > 0 {
		citation.Venue = w.ContainerTitle[0]
	}
	for _, a := range w.Author {
		citation.Authors = append(citation.Authors, domain.Author{Name: authorName(a)})
	}
	return citation
}

func authorName(a WorkAuthor) string {
	if a.Name != "" {
		return a.Name
	}
	return strings.TrimSpace(a.Given + " " + a.Family)
}
