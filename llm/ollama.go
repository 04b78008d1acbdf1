package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/abhijit1892/ragdemo/core"
)

type OllamaTagsResponse struct {
	Models []OllamaModelInfo `json:"models"`
}

type OllamaModelInfo struct {
	Name string `json:"name"`
}

type DiscoveredModel struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Model string `json:"model"`
}

var nonSlug = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func ollamaHost(baseURL string) string {
	host := strings.TrimSuffix(baseURL, "/")
	return strings.TrimSuffix(host, "/v1")
}

// DiscoverOllamaModels queries an Ollama instance for available models.
func DiscoverOllamaModels(ctx context.Context, baseURL string) ([]DiscoveredModel, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ollamaHost(baseURL)+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama discovery failed: %w", core.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ollama returned status %d", core.ErrServiceUnavailable, resp.StatusCode)
	}

	var tags OllamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("%w: ollama tags: %v", core.ErrMalformedResponse, err)
	}

	models := make([]DiscoveredModel, len(tags.Models))
	for i, m := range tags.Models {
		models[i] = DiscoveredModel{
			ID:    "ollama-" + strings.ToLower(nonSlug.ReplaceAllString(m.Name, "-")),
			Name:  formatDisplayName(m.Name),
			Model: m.Name,
		}
	}
	return models, nil
}

// "llama3.2:latest" -> "Llama3.2 (Ollama)"
func formatDisplayName(name string) string {
	base, _, _ := strings.Cut(name, ":")
	if len(base) > 0 {
		base = strings.ToUpper(base[:1]) + base[1:]
	}
	return base + " (Ollama)"
}

// OllamaEmbedClient handles Ollama's native embedding API.
type OllamaEmbedClient struct {
	baseURL string
	client  *http.Client
}

func NewOllamaEmbedClient(baseURL string) *OllamaEmbedClient {
	host := ollamaHost(baseURL)
	if host == "" {
		host = "http://localhost:11434"
	}
	return &OllamaEmbedClient{
		baseURL: host,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *OllamaEmbedClient) Embed(ctx context.Context, model, input string) (*EmbeddingResponse, error) {
	results, err := c.EmbedBatch(ctx, model, []string{input})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// EmbedBatch sends all inputs in one /api/embed call.
func (c *OllamaEmbedClient) EmbedBatch(ctx context.Context, model string, inputs []string) ([]EmbeddingResponse, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	raw, err := postJSON(ctx, c.client, c.baseURL+"/api/embed", nil, map[string]any{
		"model": model,
		"input": inputs,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings: %w", err)
	}

	var result ollamaEmbedResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: ollama embeddings: %v", core.ErrMalformedResponse, err)
	}
	if len(result.Embeddings) != len(inputs) {
		return nil, fmt.Errorf("%w: ollama embeddings: got %d vectors for %d inputs",
			core.ErrMalformedResponse, len(result.Embeddings), len(inputs))
	}

	results := make([]EmbeddingResponse, len(inputs))
	for i, e := range result.Embeddings {
		results[i] = EmbeddingResponse{Embedding: e}
	}
	return results, nil
}

type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}
