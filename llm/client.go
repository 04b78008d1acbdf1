package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhijit1892/ragdemo/core"
)

// ChatClient turns an ordered message list into a single completion.
// Implementations are safe for concurrent use and keep no per-call state.
type ChatClient interface {
	Complete(ctx context.Context, model core.ModelConfig, msgs []core.Message) (*Completion, error)
}

type EmbeddingClient interface {
	Embed(ctx context.Context, model, input string) (*EmbeddingResponse, error)
	EmbedBatch(ctx context.Context, model string, inputs []string) ([]EmbeddingResponse, error)
}

type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout int
	// Strict turns an unparseable provider response into ErrMalformedResponse
	// instead of a degraded completion carrying the raw body.
	Strict bool
	// KeyOptional allows an empty APIKey, for local servers such as Ollama.
	KeyOptional bool
	Logger      *slog.Logger
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout: 60,
	}
}

func (c ClientConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

func (c ClientConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// ValidateRequest rejects requests no provider should be asked to serve.
func ValidateRequest(model core.ModelConfig, msgs []core.Message) error {
	if err := core.ValidateMessages(msgs); err != nil {
		return err
	}
	return model.Validate()
}
