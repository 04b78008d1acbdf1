package ragdemo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/abhijit1892/ragdemo/config"
	"github.com/abhijit1892/ragdemo/core"
	"github.com/abhijit1892/ragdemo/embedding"
	"github.com/abhijit1892/ragdemo/engine"
	"github.com/abhijit1892/ragdemo/ingest"
	"github.com/abhijit1892/ragdemo/llm"
	"github.com/abhijit1892/ragdemo/logging"
	"github.com/abhijit1892/ragdemo/monitor"
	"github.com/abhijit1892/ragdemo/pipelines"
	"github.com/abhijit1892/ragdemo/retrieval"
	"github.com/abhijit1892/ragdemo/server"
	"github.com/abhijit1892/ragdemo/server/store"
	"github.com/abhijit1892/ragdemo/vector"
)

// Options overrides parts of the wiring New would otherwise build from
// the configuration.
type Options struct {
	Getenv   func(string) string
	Registry *prometheus.Registry
	Logger   *slog.Logger
	Chat     llm.ChatClient
	History  store.HistoryStore
	// Model, when set, overrides the model of the generate node.
	Model    string
}

// App is a fully wired question-answering application.
type App struct {
	Config   *config.AppConfig
	Engine   *engine.Engine
	Index    *retrieval.Deferred
	History  store.HistoryStore
	Metrics  *monitor.InMemoryCollector
	Registry *prometheus.Registry

	preview     *engine.Engine
	loader      *ingest.Loader
	newEmbedder func() (embedding.Embedder, error)
	log         *slog.Logger
}

// New validates cfg and wires the chat client, history store, metrics and
// engine. The corpus index is built separately by BuildIndex.
func New(ctx context.Context, cfg *config.AppConfig, opts Options) (*App, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.New("app")
	}
	if err := cfg.Validate(getenv); err != nil {
		return nil, err
	}

	chat := opts.Chat
	if chat == nil {
		c, err := llm.NewClient(llm.ProviderConfig{
			Provider:     cfg.LLM.Provider,
			BaseURL:      cfg.LLM.BaseURL,
			APIKey:       cfg.APIKey(getenv),
			Timeout:      cfg.LLM.TimeoutSecs,
			Strict:       cfg.LLM.Strict,
			Logger:       logger.With("component", "llm"),
			GroqKey:      cfg.ProviderKey(config.ProviderGroq, getenv),
			OpenAIKey:    cfg.ProviderKey(config.ProviderOpenAI, getenv),
			AnthropicKey: cfg.ProviderKey(config.ProviderAnthropic, getenv),
			OllamaURL:    cfg.OllamaURL(),
		})
		if err != nil {
			return nil, err
		}
		chat = c
	}

	// Each build gets its own embedder so preparing a new index never
	// touches the one being served.
	newEmb := func() (embedding.Embedder, error) { return newEmbedder(cfg, getenv) }
	if _, err := newEmb(); err != nil {
		return nil, err
	}

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	prom, err := monitor.NewPrometheusCollector(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	mem := monitor.NewInMemoryCollector(pipelines.LegalRAGID)

	index := retrieval.NewDeferred()
	pipeline := pipelines.NewLegalRAGPipeline(cfg.LLM.Model)
	resolver := engine.NewModelResolver(core.DefaultModelConfig(cfg.LLM.Model))
	if opts.Model != "" {
		m := pipeline.GetNode(pipelines.GenerateID).Model
		resolver.SetOverride(pipelines.GenerateID, m.WithName(opts.Model))
	}
	eng, err := engine.NewEngine(pipeline, engine.EngineConfig{
		Retriever: index,
		Chat:      chat,
		Resolver:  resolver,
		Collector: monitor.Multi{mem, prom},
		Logger:    logger.With("component", "engine"),
	})
	if err != nil {
		return nil, err
	}
	preview, err := engine.NewEngine(pipelines.NewRetrieveOnlyPipeline(), engine.EngineConfig{
		Retriever: index,
		Logger:    logger.With("component", "preview"),
	})
	if err != nil {
		return nil, err
	}

	history := opts.History
	if history == nil {
		history, err = store.NewStore(ctx, cfg.History.DSN)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
	}

	loader := ingest.NewLoader(
		ingest.NewChunker(cfg.Chunker.Size, cfg.Chunker.OverlapChars()),
		ingest.NewFetcher(cfg.Timeout()),
		logger.With("component", "ingest"),
	)

	return &App{
		Config:      cfg,
		Engine:      eng,
		Index:       index,
		History:     history,
		Metrics:     mem,
		Registry:    reg,
		preview:     preview,
		loader:      loader,
		newEmbedder: newEmb,
		log:         logger,
	}, nil
}

func newEmbedder(cfg *config.AppConfig, getenv func(string) string) (embedding.Embedder, error) {
	if cfg.Embedder.Type == "tfidf" {
		return embedding.NewTFIDF(), nil
	}
	var key string
	if cfg.Embedder.APIKeyEnv != "" {
		key = getenv(cfg.Embedder.APIKeyEnv)
	}
	client, err := llm.NewEmbeddingClient(cfg.Embedder.Type, cfg.Embedder.BaseURL, key)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}
	return embedding.NewRemote(client, cfg.Embedder.Model), nil
}

func (a *App) newVectorStore(ctx context.Context) (vector.Store, error) {
	if a.Config.VectorStore.Type != "pgvector" {
		return vector.NewMemoryStore(), nil
	}
	return vector.NewPgVectorStore(ctx, a.Config.VectorStore.DSN, a.Config.VectorStore.Dimension)
}

// BuildIndex loads the configured sources, embeds them and installs the
// index. Until it returns, searches fail with ErrIndexNotReady.
func (a *App) BuildIndex(ctx context.Context) error {
	docs, err := a.loader.Load(ctx, a.Config.Sources.Paths, a.Config.Sources.URLs)
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}
	return a.BuildIndexFrom(ctx, docs)
}

// BuildIndexFrom indexes docs directly, replacing any installed index.
func (a *App) BuildIndexFrom(ctx context.Context, docs []core.Document) error {
	emb, err := a.newEmbedder()
	if err != nil {
		return err
	}
	vs, err := a.newVectorStore(ctx)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	idx, err := retrieval.BuildIndex(ctx, docs,
		retrieval.WithEmbedder(emb),
		retrieval.WithStore(vs),
		retrieval.WithTopK(a.Config.Retrieval.TopK),
		retrieval.WithMinScore(a.Config.Retrieval.MinScore),
		retrieval.WithConcurrency(a.Config.Retrieval.Concurrency),
		retrieval.WithLogger(a.log.With("component", "retrieval")),
	)
	if err != nil {
		vs.Close()
		return err
	}
	if old := a.Index.Index(); old != nil {
		defer old.Close()
	}
	a.Index.Set(idx)
	return nil
}

// Ask runs the pipeline once and appends the outcome to the history. The
// returned record is populated even when err is non-nil.
func (a *App) Ask(ctx context.Context, question string) (store.RunRecord, error) {
	rec := store.NewRunRecord(question)
	start := time.Now()
	state, err := a.Engine.Run(ctx, question)
	rec.ElapsedMs = time.Since(start).Milliseconds()

	if err != nil {
		rec.Status = store.StatusError
		rec.Error = err.Error()
	} else {
		rec.Answer = state.Answer
		rec.Passages = core.ClonePassages(state.RetrievedPassages)
	}

	if herr := a.History.Add(context.WithoutCancel(ctx), rec); herr != nil {
		a.log.Error("history add failed", "id", rec.ID, "error", herr)
	}
	return rec, err
}

// Preview runs retrieval alone and returns the passages the generate
// stage would see for question. Nothing is recorded in the history.
func (a *App) Preview(ctx context.Context, question string) ([]core.Passage, error) {
	state, err := a.preview.Run(ctx, question)
	if err != nil {
		return nil, err
	}
	return state.RetrievedPassages, nil
}

// Server returns an HTTP server over this App.
func (a *App) Server(models []server.ModelInfo) *server.Server {
	return server.New(server.Config{
		Runner:         a.Engine,
		Readiness:      a.Index,
		History:        a.History,
		Gatherer:       a.Registry,
		Models:         models,
		RequestTimeout: a.Config.RequestTimeout(),
		Logger:         a.log.With("component", "server"),
	})
}

// Close releases the index and the history store.
func (a *App) Close() error {
	var errs []error
	if idx := a.Index.Index(); idx != nil {
		errs = append(errs, idx.Close())
	}
	errs = append(errs, a.History.Close())
	return errors.Join(errs...)
}
