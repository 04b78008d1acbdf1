package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/abhijit1892/ragdemo/core"
)

const (
	OpenAIBaseURL = "https://api.openai.com/v1"
	GroqBaseURL   = "https://api.groq.com/openai/v1"
)

// OpenAIClient speaks the OpenAI chat completions protocol. Groq and the
// Ollama /v1 endpoint use the same wire format.
type OpenAIClient struct {
	name    string
	apiKey  string
	baseURL string
	strict  bool
	client  *http.Client
	log     *slog.Logger
}

func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	cfg := DefaultClientConfig()
	cfg.APIKey = apiKey
	return NewOpenAIClientWithConfig(cfg)
}

// NewGroqClient returns a client for Groq's OpenAI-compatible endpoint.
func NewGroqClient(cfg ClientConfig) (*OpenAIClient, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = GroqBaseURL
	}
	c, err := NewOpenAIClientWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	c.name = "groq"
	return c, nil
}

// NewOllamaChatClient returns a keyless client for Ollama's /v1 endpoint.
func NewOllamaChatClient(cfg ClientConfig) (*OpenAIClient, error) {
	host := strings.TrimSuffix(strings.TrimSuffix(cfg.BaseURL, "/"), "/v1")
	if host == "" {
		host = "http://localhost:11434"
	}
	cfg.BaseURL = host + "/v1"
	cfg.KeyOptional = true
	c, err := NewOpenAIClientWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	c.name = "ollama"
	return c, nil
}

func NewOpenAIClientWithConfig(cfg ClientConfig) (*OpenAIClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" && !cfg.KeyOptional {
		return nil, core.ErrMissingCredential
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = OpenAIBaseURL
	}
	return &OpenAIClient{
		name:    "openai",
		apiKey:  apiKey,
		baseURL: baseURL,
		strict:  cfg.Strict,
		client:  &http.Client{Timeout: cfg.timeout()},
		log:     cfg.logger(),
	}, nil
}

func (c *OpenAIClient) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}

func (c *OpenAIClient) Complete(ctx context.Context, model core.ModelConfig, msgs []core.Message) (*Completion, error) {
	if err := ValidateRequest(model, msgs); err != nil {
		return nil, err
	}

	reqBody := map[string]any{
		"model":       model.Name,
		"messages":    c.buildMessages(msgs),
		"temperature": model.Temperature,
		"max_tokens":  model.MaxTokens,
	}
	if model.TopP > 0 {
		reqBody["top_p"] = model.TopP
	}

	raw, err := postJSON(ctx, c.client, c.baseURL+"/chat/completions", c.headers(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s chat: %w", c.name, err)
	}
	return c.parseResponse(raw)
}

func (c *OpenAIClient) buildMessages(msgs []core.Message) []map[string]any {
	messages := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		messages = append(messages, map[string]any{
			"role":    string(m.Role),
			"content": m.Content,
		})
	}
	return messages
}

func (c *OpenAIClient) parseResponse(raw []byte) (*Completion, error) {
	var resp openAIResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return degraded(raw, c.strict, c.log, c.name, "undecodable body")
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return degraded(raw, c.strict, c.log, c.name, "missing message content")
	}

	choice := resp.Choices[0]
	content := strings.TrimSpace(*choice.Message.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: %s returned no text (finish_reason=%q)", core.ErrEmptyGeneration, c.name, choice.FinishReason)
	}

	return &Completion{
		Content:      content,
		FinishReason: choice.FinishReason,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type openAIChoice struct {
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAIMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

// Embed generates an embedding through the /embeddings endpoint.
func (c *OpenAIClient) Embed(ctx context.Context, model, input string) (*EmbeddingResponse, error) {
	results, err := c.EmbedBatch(ctx, model, []string{input})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

func (c *OpenAIClient) EmbedBatch(ctx context.Context, model string, inputs []string) ([]EmbeddingResponse, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	raw, err := postJSON(ctx, c.client, c.baseURL+"/embeddings", c.headers(), map[string]any{
		"model": model,
		"input": inputs,
	})
	if err != nil {
		return nil, fmt.Errorf("%s embeddings: %w", c.name, err)
	}

	var resp openAIEmbeddingResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %s embeddings: %v", core.ErrMalformedResponse, c.name, err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("%w: %s embeddings: got %d vectors for %d inputs",
			core.ErrMalformedResponse, c.name, len(resp.Data), len(inputs))
	}

	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	perInput := resp.Usage.PromptTokens / len(inputs)
	results := make([]EmbeddingResponse, len(resp.Data))
	for i, d := range resp.Data {
		results[i] = EmbeddingResponse{Embedding: d.Embedding, TokenCount: perInput}
	}
	return results, nil
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
	} `json:"usage"`
}
