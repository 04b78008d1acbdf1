package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhijit1892/ragdemo/config"
	"github.com/abhijit1892/ragdemo/core"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, config.ProviderGroq, cfg.LLM.Provider)
	assert.Equal(t, config.DefaultModel, cfg.LLM.Model)
	assert.Equal(t, config.DefaultGroqBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, "GROQ_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
	assert.Equal(t, 800, cfg.Chunker.Size)
	assert.Equal(t, 100, cfg.Chunker.OverlapChars())
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: ollama\nretrieval:\n  top_k: 7\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", cfg.LLM.Model)
	assert.Equal(t, 7, cfg.Retrieval.TopK)
	assert.NoError(t, cfg.Validate(envMap(nil)))
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0o644))

	_, err := config.Load(path)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := config.DefaultConfig()
	cfg.Retrieval.MinScore = 0.05
	require.NoError(t, config.Save(path, cfg))

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidateMissingCredential(t *testing.T) {
	cfg := config.DefaultConfig()

	err := cfg.Validate(envMap(nil))
	assert.ErrorIs(t, err, core.ErrMissingCredential)
	assert.ErrorIs(t, err, core.ErrAuthentication)

	assert.NoError(t, cfg.Validate(envMap(map[string]string{"GROQ_API_KEY": "gsk_test"})))
}

func TestValidateRejectsBadStores(t *testing.T) {
	env := envMap(map[string]string{"GROQ_API_KEY": "k"})

	cfg := config.DefaultConfig()
	cfg.VectorStore.Type = "pgvector"
	cfg.VectorStore.DSN = "postgres://localhost/rag"
	assert.ErrorIs(t, cfg.Validate(env), core.ErrInvalidConfig)

	cfg = config.DefaultConfig()
	size := cfg.Chunker.Size
	cfg.Chunker.Overlap = &size
	assert.ErrorIs(t, cfg.Validate(env), core.ErrInvalidConfig)
}

func TestLoadKeepsExplicitZeroOverlap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunker:\n  size: 400\n  overlap: 0\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Chunker.Overlap)
	assert.Equal(t, 0, cfg.Chunker.OverlapChars())
	assert.Equal(t, 400, cfg.Chunker.Size)

	require.NoError(t, config.Save(path, cfg))
	again, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Chunker.OverlapChars())
}

func TestValidateAutoProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.Provider = config.ProviderAuto
	cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.APIKeyEnv = "", "", ""
	cfg.ApplyEnv(envMap(nil))
	assert.Equal(t, config.DefaultModel, cfg.LLM.Model)

	err := cfg.Validate(envMap(nil))
	assert.ErrorIs(t, err, core.ErrMissingCredential)

	env := envMap(map[string]string{"ANTHROPIC_API_KEY": "sk-ant"})
	assert.NoError(t, cfg.Validate(env))
	assert.Equal(t, "sk-ant", cfg.ProviderKey(config.ProviderAnthropic, env))
	assert.Empty(t, cfg.ProviderKey(config.ProviderOllama, env))

	cfg.LLM.BaseURL = "http://localhost:11434"
	assert.NoError(t, cfg.Validate(envMap(nil)))
	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL())
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ApplyEnv(envMap(map[string]string{
		"RAGDEMO_PROVIDER": "openai",
		"RAGDEMO_TOP_K":    "2",
		"RAGDEMO_SOURCES":  "a.txt,b.md",
	}))

	assert.Equal(t, config.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "OPENAI_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 2, cfg.Retrieval.TopK)
	assert.Equal(t, []string{"a.txt", "b.md"}, cfg.Sources.Paths)
}

func linear() *config.PipelineConfig {
	return config.NewPipeline("p", "P").
		Node("retrieve", config.NodeRetrieve).Done().
		Node("generate", config.NodeGenerate).Model("m").Done().
		Edge("retrieve", "generate").
		EntryNode("retrieve").
		Build()
}

func TestPipelineValidate(t *testing.T) {
	require.NoError(t, linear().Validate())

	tests := []struct {
		name   string
		mutate func(p *config.PipelineConfig)
		want   error
	}{
		{"empty", func(p *config.PipelineConfig) { p.Nodes = nil }, core.ErrInvalidGraph},
		{"duplicate", func(p *config.PipelineConfig) { p.AddNode(config.NewNodeConfig("retrieve", config.NodeRetrieve)) }, core.ErrInvalidGraph},
		{"cycle", func(p *config.PipelineConfig) { p.AddEdge("generate", "retrieve") }, core.ErrInvalidGraph},
		{"fan out", func(p *config.PipelineConfig) {
			p.AddNode(config.NewNodeConfig("extra", config.NodeGenerate))
			p.AddEdge("retrieve", "extra")
		}, core.ErrInvalidGraph},
		{"unreachable", func(p *config.PipelineConfig) { p.AddNode(config.NewNodeConfig("orphan", config.NodeGenerate)) }, core.ErrInvalidGraph},
		{"dangling edge", func(p *config.PipelineConfig) { p.AddEdge("generate", "ghost") }, core.ErrNodeNotFound},
		{"missing entry", func(p *config.PipelineConfig) { p.EntryNode = "ghost" }, core.ErrNodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := linear()
			tt.mutate(p)
			assert.ErrorIs(t, p.Validate(), tt.want)
		})
	}
}

func TestGenerateNodeDefaults(t *testing.T) {
	n := linear().GetNode("generate")
	require.NotNil(t, n)
	assert.Equal(t, "m", n.Model.Name)
	assert.Equal(t, 0.2, n.Model.Temperature)
	assert.Equal(t, 1500, n.Model.MaxTokens)
}

func TestPipelineJSONUsesTypeNames(t *testing.T) {
	p := linear()
	data, err := p.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type": "retrieve"`)

	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, p.Save(path))
	loaded, err := config.LoadPipeline(path)
	require.NoError(t, err)
	assert.Equal(t, config.NodeGenerate, loaded.GetNode("generate").Type)
	require.NoError(t, loaded.Validate())

	var bad config.PipelineConfig
	assert.Error(t, json.Unmarshal([]byte(`{"nodes":[{"id":"x","type":"router"}]}`), &bad))
}
