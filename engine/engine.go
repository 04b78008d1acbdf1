package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhijit1892/ragdemo/config"
	"github.com/abhijit1892/ragdemo/core"
	"github.com/abhijit1892/ragdemo/llm"
	"github.com/abhijit1892/ragdemo/monitor"
	"github.com/abhijit1892/ragdemo/retrieval"
)

// Engine walks a linear pipeline from its entry node to its terminal node.
// It holds only configuration and injected capabilities, so one Engine may
// serve concurrent runs.
type Engine struct {
	pipeline  *config.PipelineConfig
	executor  *Executor
	collector monitor.MetricsCollector
	order     []*config.NodeConfig
	log       *slog.Logger
}

type EngineConfig struct {
	Retriever retrieval.Retriever
	Chat      llm.ChatClient
	Resolver  *ModelResolver
	Collector monitor.MetricsCollector
	Logger    *slog.Logger
}

// NewEngine validates the graph and checks that every node's capability
// was supplied.
func NewEngine(pipeline *config.PipelineConfig, cfg EngineConfig) (*Engine, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("%w: nil pipeline", core.ErrInvalidGraph)
	}
	if err := pipeline.Validate(); err != nil {
		return nil, err
	}

	var order []*config.NodeConfig
	for id, ok := pipeline.Entry(), true; ok; id, ok = pipeline.Next(id) {
		node := pipeline.GetNode(id)
		if node.Type.RequiresRetriever() && cfg.Retriever == nil {
			return nil, fmt.Errorf("%w: node %q needs a retriever", core.ErrInvalidConfig, id)
		}
		if node.Type.RequiresLLM() && cfg.Chat == nil {
			return nil, fmt.Errorf("%w: node %q needs a chat client", core.ErrInvalidConfig, id)
		}
		order = append(order, node)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := cfg.Collector
	if collector == nil {
		collector = monitor.NewNoOpCollector()
	}

	return &Engine{
		pipeline:  pipeline,
		executor:  NewExecutor(cfg.Retriever, cfg.Chat, cfg.Resolver, logger),
		collector: collector,
		order:     order,
		log:       logger.With("pipeline", pipeline.ID),
	}, nil
}

// Executor exposes the stage runner for callers that drive stages directly.
func (e *Engine) Executor() *Executor {
	return e.executor
}

// Run answers question and returns only the final state.
func (e *Engine) Run(ctx context.Context, question string) (core.State, error) {
	out, err := e.RunWithTrace(ctx, question)
	if err != nil {
		return core.State{}, err
	}
	return out.State, nil
}

// RunWithTrace answers question and reports each stage. On failure it
// returns no state, and the error names the failing node.
func (e *Engine) RunWithTrace(ctx context.Context, question string) (*EngineOutput, error) {
	start := time.Now()
	state := core.NewState(question)
	spans := make([]Span, 0, len(e.order))

	e.log.Debug("run started", "question_chars", len(question))

	for step, node := range e.order {
		nodeStart := time.Now()
		next, res, err := e.executor.Execute(ctx, node, state)
		nodeEnd := time.Now()

		e.recordMetrics(node, res, nodeEnd.Sub(nodeStart), next, err)
		if err != nil {
			e.log.Error("node failed", "node", node.ID, "type", node.Type.String(), "elapsed", nodeEnd.Sub(nodeStart), "error", err)
			return nil, core.NewPipelineError("engine.run", node.ID, err)
		}

		spans = append(spans, Span{
			SpanID:       fmt.Sprintf("span_%d", step+1),
			NodeID:       node.ID,
			NodeType:     node.Type.String(),
			StartTime:    nodeStart.UnixMilli(),
			EndTime:      nodeEnd.UnixMilli(),
			Duration:     nodeEnd.Sub(nodeStart),
			Passages:     len(next.RetrievedPassages),
			AnswerChars:  len(next.Answer),
			InputTokens:  res.TokensIn,
			OutputTokens: res.TokensOut,
			Degraded:     res.Degraded,
		})
		e.log.Debug("node completed", "node", node.ID, "passages", len(next.RetrievedPassages), "elapsed", nodeEnd.Sub(nodeStart))
		state = next
	}

	elapsed := time.Since(start)
	e.log.Info("run completed", "passages", len(state.RetrievedPassages), "answer_chars", len(state.Answer), "elapsed", elapsed.Round(time.Millisecond))
	return &EngineOutput{State: state, Spans: spans, Duration: elapsed}, nil
}

func (e *Engine) recordMetrics(node *config.NodeConfig, res nodeResult, d time.Duration, next core.State, err error) {
	m := monitor.NodeMetrics{
		NodeID:    node.ID,
		NodeType:  node.Type.String(),
		TokensIn:  res.TokensIn,
		TokensOut: res.TokensOut,
		Duration:  d,
		Passages:  len(next.RetrievedPassages),
		Degraded:  res.Degraded,
		Success:   err == nil,
	}
	if err != nil {
		m.Error = err.Error()
	}
	e.collector.Record(m)
}
