package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhijit1892/ragdemo/core"
)

const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	// ProviderAuto routes each request by model-name prefix across every
	// provider that has credentials.
	ProviderAuto      = "auto"

	DefaultModel       = "llama-3.3-70b-versatile"
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
)

// providerKeyEnvs names the variable holding each hosted provider's key.
var providerKeyEnvs = map[string]string{
	ProviderGroq:      "GROQ_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// LLMConfig selects the chat provider used by the generate stage.
type LLMConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url,omitempty"`
	APIKeyEnv   string `yaml:"api_key_env,omitempty"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	Strict      bool   `yaml:"strict"`
}

// EmbedderConfig selects the embedder used to build and query the index.
type EmbedderConfig struct {
	Type      string `yaml:"type"`
	Model     string `yaml:"model,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

type RetrievalConfig struct {
	TopK        int     `yaml:"top_k"`
	MinScore    float64 `yaml:"min_score"`
	Concurrency int     `yaml:"concurrency"`
}

// ChunkerConfig sizes chunks in characters. A nil Overlap takes the
// default; an explicit 0 disables overlap.
type ChunkerConfig struct {
	Size    int  `yaml:"size"`
	Overlap *int `yaml:"overlap,omitempty"`
}

func (c ChunkerConfig) OverlapChars() int {
	if c.Overlap == nil {
		return 0
	}
	return *c.Overlap
}

// SourcesConfig lists the corpus inputs. Paths may be globs.
type SourcesConfig struct {
	Paths []string `yaml:"paths"`
	URLs  []string `yaml:"urls,omitempty"`
}

type VectorStoreConfig struct {
	Type      string `yaml:"type"`
	DSN       string `yaml:"dsn,omitempty"`
	Dimension int    `yaml:"dimension,omitempty"`
}

type HistoryConfig struct {
	DSN string `yaml:"dsn"`
}

type ServerConfig struct {
	Addr               string `yaml:"addr"`
	RequestTimeoutSecs int    `yaml:"request_timeout_secs"`
}

// AppConfig is the root application configuration.
type AppConfig struct {
	LLM         LLMConfig         `yaml:"llm"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Sources     SourcesConfig     `yaml:"sources"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	History     HistoryConfig     `yaml:"history"`
	Server      ServerConfig      `yaml:"server"`
}

// Load reads a config from path. A missing file yields defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrInvalidConfig, path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func DefaultConfig() *AppConfig {
	cfg := &AppConfig{
		LLM:         LLMConfig{Provider: ProviderGroq},
		Embedder:    EmbedderConfig{Type: "tfidf"},
		Sources:     SourcesConfig{Paths: []string{"data/*.txt", "data/*.md", "data/*.pdf"}},
		VectorStore: VectorStoreConfig{Type: "memory"},
		History:     HistoryConfig{DSN: "ragdemo.db"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderGroq
	}
	switch cfg.LLM.Provider {
	case ProviderGroq:
		defaultString(&cfg.LLM.Model, DefaultModel)
		defaultString(&cfg.LLM.BaseURL, DefaultGroqBaseURL)
		defaultString(&cfg.LLM.APIKeyEnv, "GROQ_API_KEY")
	case ProviderOpenAI:
		defaultString(&cfg.LLM.Model, "gpt-4o-mini")
		defaultString(&cfg.LLM.BaseURL, "https://api.openai.com/v1")
		defaultString(&cfg.LLM.APIKeyEnv, "OPENAI_API_KEY")
	case ProviderAnthropic:
		defaultString(&cfg.LLM.Model, "claude-3-5-haiku-latest")
		defaultString(&cfg.LLM.BaseURL, "https://api.anthropic.com/v1")
		defaultString(&cfg.LLM.APIKeyEnv, "ANTHROPIC_API_KEY")
	case ProviderOllama:
		defaultString(&cfg.LLM.Model, "llama3.2")
		defaultString(&cfg.LLM.BaseURL, "http://localhost:11434")
	case ProviderAuto:
		defaultString(&cfg.LLM.Model, DefaultModel)
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}

	defaultString(&cfg.Embedder.Type, "tfidf")
	switch cfg.Embedder.Type {
	case "openai":
		defaultString(&cfg.Embedder.Model, "text-embedding-3-small")
		defaultString(&cfg.Embedder.BaseURL, "https://api.openai.com/v1")
		defaultString(&cfg.Embedder.APIKeyEnv, "OPENAI_API_KEY")
	case "ollama":
		defaultString(&cfg.Embedder.Model, "nomic-embed-text")
		defaultString(&cfg.Embedder.BaseURL, "http://localhost:11434")
	}

	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 4
	}
	if cfg.Retrieval.Concurrency == 0 {
		cfg.Retrieval.Concurrency = 4
	}
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = 800
	}
	if cfg.Chunker.Overlap == nil {
		overlap := 100
		cfg.Chunker.Overlap = &overlap
	}
	defaultString(&cfg.VectorStore.Type, "memory")
	if cfg.VectorStore.Type == "pgvector" && cfg.VectorStore.Dimension == 0 {
		cfg.VectorStore.Dimension = 1536
	}
	defaultString(&cfg.Server.Addr, ":8000")
	if cfg.Server.RequestTimeoutSecs == 0 {
		cfg.Server.RequestTimeoutSecs = 120
	}
}

func defaultString(dst *string, val string) {
	if *dst == "" {
		*dst = val
	}
}

// ApplyEnv overlays RAGDEMO_* environment variables onto cfg.
func (c *AppConfig) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("RAGDEMO_PROVIDER"); v != "" {
		c.LLM.Provider = v
		c.LLM.BaseURL, c.LLM.APIKeyEnv, c.LLM.Model = "", "", ""
	}
	if v := getenv("RAGDEMO_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := getenv("RAGDEMO_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := getenv("RAGDEMO_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retrieval.TopK = n
		}
	}
	if v := getenv("RAGDEMO_HISTORY_DSN"); v != "" {
		c.History.DSN = v
	}
	if v := getenv("RAGDEMO_VECTOR_DSN"); v != "" {
		c.VectorStore.DSN = v
	}
	if v := getenv("RAGDEMO_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := getenv("RAGDEMO_SOURCES"); v != "" {
		c.Sources.Paths = strings.Split(v, ",")
	}
	applyConfigDefaults(c)
}

// APIKey resolves the chat provider key from the configured variable.
func (c *AppConfig) APIKey(getenv func(string) string) string {
	if c.LLM.APIKeyEnv == "" {
		return ""
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	return strings.TrimSpace(getenv(c.LLM.APIKeyEnv))
}

// ProviderKey resolves the key of a hosted provider from its standard
// variable, for the auto provider.
func (c *AppConfig) ProviderKey(provider string, getenv func(string) string) string {
	name, ok := providerKeyEnvs[provider]
	if !ok {
		return ""
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	return strings.TrimSpace(getenv(name))
}

// OllamaURL is the local Ollama server the auto provider may route to.
func (c *AppConfig) OllamaURL() string {
	if c.LLM.Provider == ProviderAuto {
		return c.LLM.BaseURL
	}
	return ""
}

func (c *AppConfig) Timeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSecs) * time.Second
}

func (c *AppConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSecs) * time.Second
}

// Validate checks the static configuration and that a hosted provider has a key.
func (c *AppConfig) Validate(getenv func(string) string) error {
	switch c.LLM.Provider {
	case ProviderGroq, ProviderOpenAI, ProviderAnthropic:
		if c.APIKey(getenv) == "" {
			return fmt.Errorf("%w: set %s for provider %s", core.ErrMissingCredential, c.LLM.APIKeyEnv, c.LLM.Provider)
		}
	case ProviderOllama:
	case ProviderAuto:
		if c.OllamaURL() == "" &&
			c.ProviderKey(ProviderGroq, getenv) == "" &&
			c.ProviderKey(ProviderOpenAI, getenv) == "" &&
			c.ProviderKey(ProviderAnthropic, getenv) == "" {
			return fmt.Errorf("%w: provider auto needs GROQ_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY or an ollama base_url",
				core.ErrMissingCredential)
		}
	default:
		return fmt.Errorf("%w: unknown llm provider %q", core.ErrInvalidConfig, c.LLM.Provider)
	}
	switch c.Embedder.Type {
	case "tfidf", "openai", "ollama":
	default:
		return fmt.Errorf("%w: unknown embedder %q", core.ErrInvalidConfig, c.Embedder.Type)
	}
	switch c.VectorStore.Type {
	case "memory":
	case "pgvector":
		if c.VectorStore.DSN == "" {
			return fmt.Errorf("%w: pgvector store needs a dsn", core.ErrInvalidConfig)
		}
		if c.Embedder.Type == "tfidf" {
			return fmt.Errorf("%w: pgvector needs a fixed-dimension embedder, not tfidf", core.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown vector store %q", core.ErrInvalidConfig, c.VectorStore.Type)
	}
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("%w: top_k must be at least 1", core.ErrInvalidConfig)
	}
	if overlap := c.Chunker.OverlapChars(); overlap < 0 || overlap >= c.Chunker.Size {
		return fmt.Errorf("%w: chunk overlap %d must be in [0, size %d)",
			core.ErrInvalidConfig, overlap, c.Chunker.Size)
	}
	return nil
}
