package pipelines_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhijit1892/ragdemo/config"
	"github.com/abhijit1892/ragdemo/engine"
	"github.com/abhijit1892/ragdemo/pipelines"
)

func TestLegalRAGPipelineShape(t *testing.T) {
	p := pipelines.NewLegalRAGPipeline("llama-3.3-70b-versatile")
	require.NoError(t, p.Validate())

	assert.Equal(t, pipelines.RetrieveID, p.Entry())
	next, ok := p.Next(pipelines.RetrieveID)
	require.True(t, ok)
	assert.Equal(t, pipelines.GenerateID, next)
	_, ok = p.Next(pipelines.GenerateID)
	assert.False(t, ok)

	gen := p.GetNode(pipelines.GenerateID)
	assert.Equal(t, config.NodeGenerate, gen.Type)
	assert.Equal(t, engine.DefaultSystemPrompt, gen.Prompt)
	assert.Equal(t, 1500, gen.Model.MaxTokens)
	assert.Equal(t, 0.2, gen.Model.Temperature)
}

func TestRetrieveOnlyPipeline(t *testing.T) {
	require.NoError(t, pipelines.NewRetrieveOnlyPipeline().Validate())
}
