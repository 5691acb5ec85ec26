// Package embedclient implements the retriever's Embedder collaborator
// against an OpenAI-compatible HTTP embeddings endpoint.
package embedclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shevchenkoxx/lore-mcp/internal/errs"
)

// Config holds the HTTP embeddings endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls an OpenAI-compatible /embeddings endpoint. It satisfies
// retriever.Embedder and engine.Embedder.
type Client struct {
	config Config
	http   *http.Client
}

// New builds a Client. A zero Timeout defaults to 10 seconds.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{config: cfg, http: &http.Client{Timeout: timeout}}
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed posts text to the configured embeddings endpoint and returns the
// first returned vector.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if c.config.BaseURL == "" {
		return nil, errs.Dependency("embedding client not configured", nil)
	}
	body, err := json.Marshal(embeddingRequest{Model: c.config.Model, Input: text})
	if err != nil {
		return nil, errs.Internal("marshal embedding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, errs.Internal("build embedding request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Dependency("embedding request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, errs.Dependency(fmt.Sprintf("embedding endpoint returned %d: %s", resp.StatusCode, raw), nil)
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errs.Dependency("decode embedding response", err)
	}
	if len(parsed.Data) == 0 {
		return nil, errs.Dependency("embedding endpoint returned no vectors", nil)
	}
	return parsed.Data[0].Embedding, nil
}
