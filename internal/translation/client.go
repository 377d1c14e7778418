// Package translation localizes the display fields of scored results.
// Scores and orderings are computed on the original text and never change
// here; only what the user reads is rewritten.
package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arsp/ranking-service/internal/domain"
)

// Provider translates a single text between two languages.
type Provider interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Config holds the translation provider client configuration.
type Config struct {
	// BaseURL is the provider endpoint, e.g. a LibreTranslate instance.
	BaseURL string

	// APIKey is an optional provider API key.
	APIKey string

	// Timeout is the per-request timeout.
	Timeout time.Duration
}

// Client calls an HTTP translation provider.
type Client struct {
	config     Config
	httpClient *http.Client
}

var _ Provider = (*Client)(nil)

// NewClient creates a translation provider client.
func NewClient(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate sends one text to the provider. Any transport or provider
// failure wraps domain.ErrUnavailable so callers can fall back to the
// original text.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	if text == "" || source == target {
		return text, nil
	}

	payload, err := json.Marshal(translateRequest{
		Q:      text,
		Source: source,
		Target: target,
		Format: "text",
		APIKey: c.config.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/translate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.ExternalAPIError{
			Source:  "translation",
			Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.ExternalAPIError{
			Source:  "translation",
			Message: fmt.Sprintf("reading response: %v", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &domain.ExternalAPIError{
			Source:     "translation",
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	var decoded translateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &domain.ExternalAPIError{
			Source:  "translation",
			Message: fmt.Sprintf("decoding response: %v", err),
		}
	}
	return decoded.TranslatedText, nil
}
