package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhijit1892/ragdemo/config"
	"github.com/abhijit1892/ragdemo/core"
	"github.com/abhijit1892/ragdemo/llm"
	"github.com/abhijit1892/ragdemo/retrieval"
)

type handlerFunc func(context.Context, *config.NodeConfig, core.State) (core.State, nodeResult, error)

// Executor runs single stages. It holds exactly one retriever and one chat
// client and no per-run state.
type Executor struct {
	retriever retrieval.Retriever
	chat      llm.ChatClient
	resolver  *ModelResolver
	log       *slog.Logger
	handlers  map[config.NodeType]handlerFunc
}

func NewExecutor(retriever retrieval.Retriever, chat llm.ChatClient, resolver *ModelResolver, logger *slog.Logger) *Executor {
	if resolver == nil {
		resolver = NewModelResolver(core.DefaultModelConfig(config.DefaultModel))
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Executor{
		retriever: retriever,
		chat:      chat,
		resolver:  resolver,
		log:       logger,
	}
	e.handlers = map[config.NodeType]handlerFunc{
		config.NodeRetrieve: e.executeRetrieve,
		config.NodeGenerate: e.executeGenerate,
	}
	return e
}

func (e *Executor) Execute(ctx context.Context, node *config.NodeConfig, state core.State) (core.State, nodeResult, error) {
	handler, ok := e.handlers[node.Type]
	if !ok {
		return core.State{}, nodeResult{}, fmt.Errorf("%w: unknown node type %s", core.ErrInvalidGraph, node.Type)
	}
	return handler(ctx, node, state)
}

// Retrieve fills the state's passages from the retriever and clears any
// answer. Retriever errors are returned unchanged.
func (e *Executor) Retrieve(ctx context.Context, state core.State) (core.State, error) {
	next, _, err := e.executeRetrieve(ctx, nil, state)
	return next, err
}

// Generate answers the state's question from its passages using the
// default model settings and system prompt.
func (e *Executor) Generate(ctx context.Context, state core.State) (core.State, error) {
	next, _, err := e.executeGenerate(ctx, nil, state)
	return next, err
}

func (e *Executor) executeRetrieve(ctx context.Context, _ *config.NodeConfig, state core.State) (core.State, nodeResult, error) {
	passages, err := e.retriever.Search(ctx, state.Question)
	if err != nil {
		return core.State{}, nodeResult{}, err
	}
	return state.WithPassages(passages).WithAnswer(""), nodeResult{}, nil
}

func (e *Executor) executeGenerate(ctx context.Context, node *config.NodeConfig, state core.State) (core.State, nodeResult, error) {
	model := e.resolver.Resolve(node)
	system := ""
	if node != nil {
		system = node.Prompt
	}

	resp, err := e.chat.Complete(ctx, model, BuildMessages(state.Question, state.RetrievedPassages, system))
	if err != nil {
		return core.State{}, nodeResult{}, err
	}
	if resp.Degraded {
		e.log.Warn("using degraded completion as answer", "model", model.Name, "chars", len(resp.Content))
	}

	answer := resp.Content
	if strings.TrimSpace(answer) == "" {
		answer = NoAnswer
	}
	return state.WithAnswer(answer), nodeResult{
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
		Degraded:  resp.Degraded,
	}, nil
}
