// Package pipelines provides the pre-built pipeline graphs.
package pipelines

import (
	"github.com/abhijit1892/ragdemo/config"
	"github.com/abhijit1892/ragdemo/core"
	"github.com/abhijit1892/ragdemo/engine"
)

const (
	LegalRAGID = "legal-rag"
	RetrieveID = "retrieve"
	GenerateID = "generate"
)

// NewLegalRAGPipeline returns the fixed retrieve -> generate graph. An
// empty model name defers to the engine's default model.
func NewLegalRAGPipeline(model string) *config.PipelineConfig {
	return config.NewPipeline(LegalRAGID, "Legal corpus question answering").
		Description("Retrieve constitutional passages, then answer with citations.").
		Node(RetrieveID, config.NodeRetrieve).
		Done().
		Node(GenerateID, config.NodeGenerate).
		Prompt(engine.DefaultSystemPrompt).
		ModelConfig(core.ModelConfig{
			Name:        model,
			Temperature: engine.GenerateTemperature,
			MaxTokens:   engine.GenerateMaxTokens,
		}).
		Done().
		Edge(RetrieveID, GenerateID).
		EntryNode(RetrieveID).
		Build()
}

// NewRetrieveOnlyPipeline runs retrieval alone, for inspecting what the
// index returns for a question.
func NewRetrieveOnlyPipeline() *config.PipelineConfig {
	return config.NewPipeline("retrieve-only", "Retrieval preview").
		Node(RetrieveID, config.NodeRetrieve).
		Done().
		EntryNode(RetrieveID).
		Build()
}
