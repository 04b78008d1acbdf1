package ragdemo_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhijit1892/ragdemo"
	"github.com/abhijit1892/ragdemo/config"
	"github.com/abhijit1892/ragdemo/core"
	"github.com/abhijit1892/ragdemo/engine"
	"github.com/abhijit1892/ragdemo/llm"
	"github.com/abhijit1892/ragdemo/logging"
	"github.com/abhijit1892/ragdemo/pipelines"
	"github.com/abhijit1892/ragdemo/server/store"
)

type echoChat struct{}

func (echoChat) Complete(_ context.Context, _ core.ModelConfig, msgs []core.Message) (*llm.Completion, error) {
	user := msgs[len(msgs)-1].Content
	if strings.Contains(user, engine.EmptyContext) {
		return &llm.Completion{Content: engine.Disclaimer}, nil
	}
	return &llm.Completion{Content: "Article 15 prohibits discrimination [1]."}, nil
}

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.LLM.Provider = config.ProviderOllama
	cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.APIKeyEnv = "", "", ""
	cfg.History.DSN = "memory"
	cfg.ApplyEnv(func(string) string { return "" })
	return cfg
}

func newApp(t *testing.T, cfg *config.AppConfig) *ragdemo.App {
	t.Helper()
	app, err := ragdemo.New(context.Background(), cfg, ragdemo.Options{
		Getenv: func(string) string { return "" },
		Logger: logging.NewNop(),
		Chat:   echoChat{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func TestAppAskBeforeIndex(t *testing.T) {
	app := newApp(t, testConfig(t))
	assert.False(t, app.Index.Ready())

	rec, err := app.Ask(context.Background(), "What does Article 15 say?")
	require.ErrorIs(t, err, core.ErrIndexNotReady)
	assert.Equal(t, store.StatusError, rec.Status)

	runs, err := app.History.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, rec.ID, runs[0].ID)
}

func TestAppBuildIndexFromSources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "constitution.txt"), []byte(
		"Article 14. Equality before law. The State shall not deny to any person equality before the law.\n\n"+
			"Article 15. Prohibition of discrimination on grounds of religion, race, caste, sex or place of birth.",
	), 0o644))

	cfg := testConfig(t)
	cfg.Sources.Paths = []string{dir}
	overlap := 20
	cfg.Chunker.Size, cfg.Chunker.Overlap = 120, &overlap
	app := newApp(t, cfg)

	ctx := context.Background()
	require.NoError(t, app.BuildIndex(ctx))
	require.True(t, app.Index.Ready())
	assert.Positive(t, app.Index.Index().Size())

	rec, err := app.Ask(ctx, "What does Article 15 say about discrimination?")
	require.NoError(t, err)
	assert.Equal(t, "Article 15 prohibits discrimination [1].", rec.Answer)
	require.NotEmpty(t, rec.Passages)
	assert.Contains(t, rec.Passages[0].Text, "discrimination")
	assert.True(t, strings.HasPrefix(rec.Passages[0].SourceLabel, filepath.Join(dir, "constitution.txt")))

	stats := app.Metrics.Flush()
	assert.Contains(t, stats.Nodes, "generate")

	n, err := testutil.GatherAndCount(app.Registry, "ragdemo_node_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAppEmptyCorpusAnswersWithDisclaimer(t *testing.T) {
	app := newApp(t, testConfig(t))
	ctx := context.Background()
	require.NoError(t, app.BuildIndexFrom(ctx, nil))

	rec, err := app.Ask(ctx, "What does Article 370 say?")
	require.NoError(t, err)
	assert.Equal(t, engine.Disclaimer, rec.Answer)
	assert.Empty(t, rec.Passages)
}

func TestAppRejectsMissingCredential(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.History.DSN = "memory"
	_, err := ragdemo.New(context.Background(), cfg, ragdemo.Options{
		Getenv: func(string) string { return "" },
		Logger: logging.NewNop(),
	})
	require.ErrorIs(t, err, core.ErrMissingCredential)
	assert.ErrorIs(t, err, core.ErrAuthentication)
}

var articles = []core.Document{
	{ID: "c#0", Text: "Article 14. Equality before law.", Source: "constitution.txt"},
	{ID: "c#1", Text: "Article 15. Prohibition of discrimination on grounds of religion, race, caste, sex or place of birth.", Source: "constitution.txt"},
}

func TestAppRebuildLeavesServedIndexIntact(t *testing.T) {
	app := newApp(t, testConfig(t))
	ctx := context.Background()
	require.NoError(t, app.BuildIndexFrom(ctx, articles))

	served := app.Index.Index()
	before, err := served.Search(ctx, "discrimination religion")
	require.NoError(t, err)
	require.NotEmpty(t, before)

	require.NoError(t, app.BuildIndexFrom(ctx, []core.Document{
		{ID: "d#0", Text: "Article 21. Protection of life and personal liberty.", Source: "amendments.txt"},
		{ID: "d#1", Text: "Article 32. Remedies for enforcement of fundamental rights.", Source: "amendments.txt"},
	}))
	require.NotSame(t, served, app.Index.Index())

	after, err := served.Search(ctx, "discrimination religion")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

type recordingChat struct {
	models []core.ModelConfig
}

func (c *recordingChat) Complete(_ context.Context, model core.ModelConfig, _ []core.Message) (*llm.Completion, error) {
	c.models = append(c.models, model)
	return &llm.Completion{Content: "Article 15 prohibits discrimination [1]."}, nil
}

func TestAppModelOverride(t *testing.T) {
	chat := &recordingChat{}
	app, err := ragdemo.New(context.Background(), testConfig(t), ragdemo.Options{
		Getenv: func(string) string { return "" },
		Logger: logging.NewNop(),
		Chat:   chat,
		Model:  "claude-3-5-haiku-latest",
	})
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	ctx := context.Background()
	require.NoError(t, app.BuildIndexFrom(ctx, articles))
	_, err = app.Ask(ctx, "What does Article 15 say?")
	require.NoError(t, err)

	require.Len(t, chat.models, 1)
	assert.Equal(t, "claude-3-5-haiku-latest", chat.models[0].Name)
	assert.Equal(t, engine.GenerateTemperature, chat.models[0].Temperature)
	assert.Equal(t, engine.GenerateMaxTokens, chat.models[0].MaxTokens)
}

func TestAppPreviewSkipsGeneration(t *testing.T) {
	chat := &recordingChat{}
	app, err := ragdemo.New(context.Background(), testConfig(t), ragdemo.Options{
		Getenv: func(string) string { return "" },
		Logger: logging.NewNop(),
		Chat:   chat,
	})
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	ctx := context.Background()
	_, err = app.Preview(ctx, "discrimination")
	require.ErrorIs(t, err, core.ErrIndexNotReady)
	var perr *core.PipelineError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, pipelines.RetrieveID, perr.Node)

	require.NoError(t, app.BuildIndexFrom(ctx, articles))
	passages, err := app.Preview(ctx, "discrimination religion")
	require.NoError(t, err)
	require.NotEmpty(t, passages)
	assert.Contains(t, passages[0].Text, "Article 15")

	assert.Empty(t, chat.models)
	runs, err := app.History.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestAppAutoProviderRoutesByModelPrefix(t *testing.T) {
	var models []string
	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		models = append(models, body.Model)
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"Equality before law [1]."}}]}`)
	}))
	defer ollama.Close()

	cfg := testConfig(t)
	cfg.LLM.Provider = config.ProviderAuto
	cfg.LLM.Model = ""
	cfg.ApplyEnv(func(string) string { return "" })
	cfg.LLM.BaseURL = ollama.URL

	app, err := ragdemo.New(context.Background(), cfg, ragdemo.Options{
		Getenv: func(string) string { return "" },
		Logger: logging.NewNop(),
		Model:  "ollama/llama3.2",
	})
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	ctx := context.Background()
	require.NoError(t, app.BuildIndexFrom(ctx, articles))
	rec, err := app.Ask(ctx, "What does Article 14 say?")
	require.NoError(t, err)
	assert.Equal(t, "Equality before law [1].", rec.Answer)
	assert.Equal(t, []string{"llama3.2"}, models)
}

func TestAppAutoProviderNeedsSomeProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.Provider = config.ProviderAuto
	cfg.LLM.BaseURL = ""
	_, err := ragdemo.New(context.Background(), cfg, ragdemo.Options{
		Getenv: func(string) string { return "" },
		Logger: logging.NewNop(),
	})
	assert.ErrorIs(t, err, core.ErrMissingCredential)
}
