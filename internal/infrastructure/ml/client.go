// Package ml is the client for the self-hosted embedding service used when
// the OpenAI embedding endpoint is not wanted.
package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"HeadlineScreener/internal/ports"
)

const (
	embedPath    = "/embed"
	errBodyLimit = 512
)

// Client requests sentence embeddings from the inference service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

var _ ports.Embedder = (*Client)(nil)

type embedRequest struct {
	Text string `json:"text"`
}

// embedResponse accepts the service's flat shape and the OpenAI-style
// data array some model servers return.
type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Data      []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (r embedResponse) vector() []float32 {
	if len(r.Embedding) > 0 {
		return r.Embedding
	}
	if len(r.Data) > 0 {
		return r.Data[0].Embedding
	}
	return nil
}

// NewClient points the client at baseURL; apiKey may be empty.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Embed returns the embedding vector of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("embedding service url is not configured")
	}

	body, err := json.Marshal(embedRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+embedPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		return nil, fmt.Errorf("embedding service: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}

	vec := decoded.vector()
	if len(vec) == 0 {
		return nil, fmt.Errorf("embedding service returned an empty vector")
	}
	return vec, nil
}
