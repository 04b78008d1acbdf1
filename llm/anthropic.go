package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/abhijit1892/ragdemo/core"
)

const AnthropicBaseURL = "https://api.anthropic.com/v1"

type AnthropicClient struct {
	apiKey  string
	baseURL string
	version string
	strict  bool
	client  *http.Client
	log     *slog.Logger
}

func NewAnthropicClient(apiKey string) (*AnthropicClient, error) {
	cfg := DefaultClientConfig()
	cfg.APIKey = apiKey
	return NewAnthropicClientWithConfig(cfg)
}

func NewAnthropicClientWithConfig(cfg ClientConfig) (*AnthropicClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, core.ErrMissingCredential
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = AnthropicBaseURL
	}
	return &AnthropicClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		version: "2023-06-01",
		strict:  cfg.Strict,
		client:  &http.Client{Timeout: cfg.timeout()},
		log:     cfg.logger(),
	}, nil
}

func (c *AnthropicClient) Complete(ctx context.Context, model core.ModelConfig, msgs []core.Message) (*Completion, error) {
	if err := ValidateRequest(model, msgs); err != nil {
		return nil, err
	}

	system, turns := splitSystem(msgs)
	reqBody := map[string]any{
		"model":       model.Name,
		"max_tokens":  model.MaxTokens,
		"temperature": model.Temperature,
		"messages":    turns,
	}
	if system != "" {
		reqBody["system"] = system
	}
	if model.TopP > 0 {
		reqBody["top_p"] = model.TopP
	}

	raw, err := postJSON(ctx, c.client, c.baseURL+"/messages", map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": c.version,
	}, reqBody)
	if err != nil {
		return nil, fmt.Errorf("anthropic chat: %w", err)
	}
	return c.parseResponse(raw)
}

// splitSystem lifts system messages into the top-level system field.
func splitSystem(msgs []core.Message) (string, []map[string]any) {
	var system []string
	turns := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == core.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, map[string]any{
			"role":    string(m.Role),
			"content": m.Content,
		})
	}
	return strings.Join(system, "\n\n"), turns
}

func (c *AnthropicClient) parseResponse(raw []byte) (*Completion, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return degraded(raw, c.strict, c.log, "anthropic", "undecodable body")
	}

	var sb strings.Builder
	sawText := false
	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		sawText = true
		sb.WriteString(block.Text)
	}
	if !sawText {
		return degraded(raw, c.strict, c.log, "anthropic", "no text block")
	}

	content := strings.TrimSpace(sb.String())
	if content == "" {
		return nil, fmt.Errorf("%w: anthropic returned no text (stop_reason=%q)", core.ErrEmptyGeneration, resp.StopReason)
	}

	return &Completion{
		Content:      content,
		FinishReason: resp.StopReason,
		Usage: Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}, nil
}

type anthropicResponse struct {
	Content    []anthropicBlock `json:"content"`
	StopReason string           `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}
