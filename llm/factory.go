package llm

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhijit1892/ragdemo/core"
)

// ProviderConfig describes one chat provider. Timeout is in seconds.
type ProviderConfig struct {
	Provider string
	BaseURL  string
	APIKey   string
	Timeout  int
	Strict   bool
	Logger   *slog.Logger

	// Per-provider credentials for the "auto" provider, which routes each
	// request by model-name prefix.
	GroqKey      string
	OpenAIKey    string
	AnthropicKey string
	OllamaURL    string
}

// NewClient returns the chat client for cfg.Provider. Hosted providers
// without an API key fail with ErrMissingCredential.
func NewClient(cfg ProviderConfig) (ChatClient, error) {
	cc := ClientConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Strict:  cfg.Strict,
		Logger:  cfg.Logger,
	}
	var (
		client ChatClient
		err    error
	)
	switch strings.ToLower(cfg.Provider) {
	case "", "groq":
		client, err = asChat(NewGroqClient(cc))
	case "openai":
		client, err = asChat(NewOpenAIClientWithConfig(cc))
	case "anthropic":
		client, err = asChat(NewAnthropicClientWithConfig(cc))
	case "ollama":
		client, err = asChat(NewOllamaChatClient(cc))
	case "auto":
		client, err = asChat(NewUnifiedClient(UnifiedConfig{
			GroqKey:      cfg.GroqKey,
			OpenAIKey:    cfg.OpenAIKey,
			AnthropicKey: cfg.AnthropicKey,
			OllamaURL:    cfg.OllamaURL,
			Timeout:      cfg.Timeout,
			Strict:       cfg.Strict,
			Logger:       cfg.Logger,
		}))
	default:
		err = fmt.Errorf("%w: unknown provider %q", core.ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%s client: %w", cfg.Provider, err)
	}
	return client, nil
}

func asChat[T ChatClient](c T, err error) (ChatClient, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewEmbeddingClient returns the embedding client for a remote embedder type.
func NewEmbeddingClient(kind, baseURL, apiKey string) (EmbeddingClient, error) {
	switch kind {
	case "openai":
		c, err := NewOpenAIClientWithConfig(ClientConfig{APIKey: apiKey, BaseURL: baseURL, Timeout: 60})
		if err != nil {
			return nil, err
		}
		return c, nil
	case "ollama":
		return NewOllamaEmbedClient(baseURL), nil
	default:
		return nil, fmt.Errorf("%w: no remote embedder %q", core.ErrInvalidConfig, kind)
	}
}
