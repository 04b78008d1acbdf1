package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhijit1892/ragdemo/core"
)

// UnifiedClient routes each call to a provider chosen by model-name prefix.
type UnifiedClient struct {
	groq        *OpenAIClient
	openai      *OpenAIClient
	anthropic   *AnthropicClient
	ollama      *OpenAIClient
	ollamaEmbed *OllamaEmbedClient
}

type UnifiedConfig struct {
	GroqKey      string
	OpenAIKey    string
	AnthropicKey string
	OllamaURL    string

	// Optional base URL overrides for the hosted providers.
	GroqURL      string
	OpenAIURL    string
	AnthropicURL string

	Timeout int
	Strict  bool
	Logger  *slog.Logger
}

// NewUnifiedClient builds a client for every provider that has credentials.
// It fails when none is configured or when any configured provider fails
// to construct.
func NewUnifiedClient(cfg UnifiedConfig) (*UnifiedClient, error) {
	u := &UnifiedClient{}
	base := ClientConfig{Timeout: cfg.Timeout, Strict: cfg.Strict, Logger: cfg.Logger}
	var err error

	if cfg.GroqKey != "" {
		c := base
		c.APIKey, c.BaseURL = cfg.GroqKey, cfg.GroqURL
		if u.groq, err = NewGroqClient(c); err != nil {
			return nil, fmt.Errorf("groq client: %w", err)
		}
	}
	if cfg.OpenAIKey != "" {
		c := base
		c.APIKey, c.BaseURL = cfg.OpenAIKey, cfg.OpenAIURL
		if u.openai, err = NewOpenAIClientWithConfig(c); err != nil {
			return nil, fmt.Errorf("openai client: %w", err)
		}
	}
	if cfg.AnthropicKey != "" {
		c := base
		c.APIKey, c.BaseURL = cfg.AnthropicKey, cfg.AnthropicURL
		if u.anthropic, err = NewAnthropicClientWithConfig(c); err != nil {
			return nil, fmt.Errorf("anthropic client: %w", err)
		}
	}
	if cfg.OllamaURL != "" {
		c := base
		c.BaseURL = cfg.OllamaURL
		if u.ollama, err = NewOllamaChatClient(c); err != nil {
			return nil, fmt.Errorf("ollama client: %w", err)
		}
		u.ollamaEmbed = NewOllamaEmbedClient(cfg.OllamaURL)
	}

	if u.defaultClient() == nil {
		return nil, fmt.Errorf("%w: no provider configured", core.ErrMissingCredential)
	}
	return u, nil
}

func (u *UnifiedClient) Complete(ctx context.Context, model core.ModelConfig, msgs []core.Message) (*Completion, error) {
	client, resolved := u.resolveClient(model.Name)
	return client.Complete(ctx, model.WithName(resolved), msgs)
}

func (u *UnifiedClient) resolveClient(model string) (ChatClient, string) {
	prefixes := []struct {
		prefix string
		client ChatClient
		strip  bool
	}{
		{"claude-", chatOrNil(u.anthropic), false},
		{"gpt-", chatOrNil(u.openai), false},
		{"o1-", chatOrNil(u.openai), false},
		{"ollama/", chatOrNil(u.ollama), true},
		{"groq/", chatOrNil(u.groq), true},
	}

	for _, p := range prefixes {
		if strings.HasPrefix(model, p.prefix) && p.client != nil {
			resolved := model
			if p.strip {
				resolved = strings.TrimPrefix(model, p.prefix)
			}
			return p.client, resolved
		}
	}
	return u.defaultClient(), model
}

// chatOrNil avoids storing a typed nil pointer in the interface.
func chatOrNil[T ChatClient](c T) ChatClient {
	var zero T
	if any(c) == any(zero) {
		return nil
	}
	return c
}

func (u *UnifiedClient) defaultClient() ChatClient {
	for _, c := range []ChatClient{chatOrNil(u.groq), chatOrNil(u.openai), chatOrNil(u.anthropic), chatOrNil(u.ollama)} {
		if c != nil {
			return c
		}
	}
	return nil
}

func (u *UnifiedClient) HasGroq() bool      { return u.groq != nil }
func (u *UnifiedClient) HasOpenAI() bool    { return u.openai != nil }
func (u *UnifiedClient) HasAnthropic() bool { return u.anthropic != nil }
func (u *UnifiedClient) HasOllama() bool    { return u.ollama != nil }

func (u *UnifiedClient) Embed(ctx context.Context, model, input string) (*EmbeddingResponse, error) {
	client, resolved := u.resolveEmbeddingClient(model)
	if client == nil {
		return nil, fmt.Errorf("%w: no embedding client for model %s", core.ErrInvalidRequest, model)
	}
	return client.Embed(ctx, resolved, input)
}

func (u *UnifiedClient) EmbedBatch(ctx context.Context, model string, inputs []string) ([]EmbeddingResponse, error) {
	client, resolved := u.resolveEmbeddingClient(model)
	if client == nil {
		return nil, fmt.Errorf("%w: no embedding client for model %s", core.ErrInvalidRequest, model)
	}
	return client.EmbedBatch(ctx, resolved, inputs)
}

func (u *UnifiedClient) resolveEmbeddingClient(model string) (EmbeddingClient, string) {
	if strings.HasPrefix(model, "ollama/") {
		if u.ollamaEmbed == nil {
			return nil, model
		}
		return u.ollamaEmbed, strings.TrimPrefix(model, "ollama/")
	}
	if u.openai != nil {
		return u.openai, model
	}
	if u.ollamaEmbed != nil {
		return u.ollamaEmbed, model
	}
	return nil, model
}
