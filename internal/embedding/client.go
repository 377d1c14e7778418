// Package embedding provides the text vectorizer used by the ranking engine.
//
// The Client talks to a hosted sentence-embedding inference endpoint
// (Hugging Face style: POST {"inputs": [...]} returning an array of float
// arrays). Provider failures surface as errors wrapping domain.ErrUnavailable
// so the ranking engine can detect them with errors.Is and fall back to
// lexical scoring instead of failing the request.
package embedding

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

const (
	// DefaultBaseURL is the default inference API base URL.
	DefaultBaseURL = "https://api-inference.huggingface.co/models"

	// DefaultModel is the default sentence-embedding model.
	DefaultModel = "sentence-transformers/all-mpnet-base-v2"

	// DefaultTimeout is the default request timeout. Embedding batches can be
	// slow on cold model starts, so this is deliberately generous.
	DefaultTimeout = 60 * time.Second

	// maxResponseBytes bounds the response body read to prevent resource
	// exhaustion from a misbehaving provider.
	maxResponseBytes = 32 << 20

	// sourceName identifies this provider in errors and logs.
	sourceName = "embedding"
)

// Config contains configuration options for the embedding client.
type Config struct {
	// BaseURL is the inference API base URL. Defaults to DefaultBaseURL.
	BaseURL string

	// Model is the embedding model identifier. Defaults to DefaultModel.
	Model string

	// APIKey is the optional bearer token for authenticated requests.
	APIKey string

	// Timeout is the HTTP request timeout. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Embedder turns one or more strings into embedding vectors.
type Embedder interface {
	// Embed returns one vector per input text, in input order, all with the
	// same dimension. An empty input returns an empty result without a
	// network call. Provider failures return an error wrapping
	// domain.ErrUnavailable.
	Embed(ctx context.Context, texts []string) ([]Vector, error)
}

// Client implements Embedder against a hosted inference endpoint.
type Client struct {
	httpClient *http.Client
	config     Config
}

// Compile-time check that Client implements Embedder.
var _ Embedder = (*Client)(nil)

// NewClient creates a new embedding client with the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
	}
}

// embedRequest is the inference API request body.
type embedRequest struct {
	Inputs []string `json:"inputs"`
}

// Embed sends one batched request for all texts and returns the vectors in
// input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([]Vector, error) {
	if len(texts) == 0 {
		return []Vector{}, nil
	}

	body, err := json.Marshal(embedRequest{Inputs: texts})
	if err != nil {
		return nil, fmt.Errorf("encoding embed request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.config.BaseURL, c.config.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: executing embed request: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &domain.ExternalAPIError{
			Source:     sourceName,
			StatusCode: resp.StatusCode,
			Message:    "embedding request rejected",
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading embed response: %v", domain.ErrUnavailable, err)
	}

	vectors, err := decodeVectors(raw, len(texts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	return vectors, nil
}

// decodeVectors parses the provider response tolerantly. The API returns a
// nested array of floats for batched input, but a single input may come back
// as one flat float array; both shapes are accepted. Any other shape, a
// count mismatch, or inconsistent dimensions is treated as malformed.
func decodeVectors(raw []byte, want int) ([]Vector, error) {
	var nested [][]float64
	if err := json.Unmarshal(raw, &nested); err == nil {
		return validateVectors(nested, want)
	}

	var flat []float64
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		return validateVectors([][]float64{flat}, want)
	}

	return nil, fmt.Errorf("malformed embedding payload")
}

func validateVectors(nested [][]float64, want int) ([]Vector, error) {
	if len(nested) != want {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d inputs", len(nested), want)
	}

	vectors := make([]Vector, len(nested))
	for i, values := range nested {
		if len(values) == 0 {
			return nil, fmt.Errorf("empty embedding at index %d", i)
		}
		if len(values) != len(nested[0]) {
			return nil, fmt.Errorf("inconsistent embedding dimensions: %d vs %d", len(values), len(nested[0]))
		}
		vectors[i] = Vector(values)
	}
	return vectors, nil
}
