// Package ragdemo answers questions about a legal corpus with a two-stage
// retrieve then generate pipeline.
//
// Example usage:
//
//	cfg, _ := config.Load("ragdemo.yaml")
//	cfg.ApplyEnv(os.Getenv)
//	app, err := ragdemo.New(ctx, cfg, ragdemo.Options{})
//	if err != nil {
//	    return err
//	}
//	defer app.Close()
//	if err := app.BuildIndex(ctx); err != nil {
//	    return err
//	}
//	run, err := app.Ask(ctx, "What does Article 15 say about discrimination?")
package ragdemo

import (
	"github.com/abhijit1892/ragdemo/config"
	"github.com/abhijit1892/ragdemo/core"
	"github.com/abhijit1892/ragdemo/engine"
	"github.com/abhijit1892/ragdemo/pipelines"
	"github.com/abhijit1892/ragdemo/server/store"
)

// Core type aliases
type (
	State     = core.State
	Passage   = core.Passage
	Document  = core.Document
	RunRecord = store.RunRecord
)

// Pipeline aliases
type (
	PipelineConfig = config.PipelineConfig
	Engine         = engine.Engine
	EngineConfig   = engine.EngineConfig
	EngineOutput   = engine.EngineOutput
)

// NewLegalRAGPipeline returns the retrieve -> generate graph.
func NewLegalRAGPipeline(model string) *PipelineConfig {
	return pipelines.NewLegalRAGPipeline(model)
}

// NewEngine creates a pipeline execution engine.
func NewEngine(pipeline *PipelineConfig, cfg EngineConfig) (*Engine, error) {
	return engine.NewEngine(pipeline, cfg)
}
