package engine

import (
	"github.com/abhijit1892/ragdemo/config"
	"github.com/abhijit1892/ragdemo/core"
)

// ModelResolver decides which model settings a generate node runs with:
// a per-node override, then the node's own model, then the default.
type ModelResolver struct {
	defaultModel core.ModelConfig
	overrides    map[string]core.ModelConfig
}

func NewModelResolver(defaultModel core.ModelConfig) *ModelResolver {
	return &ModelResolver{
		defaultModel: defaultModel,
		overrides:    make(map[string]core.ModelConfig),
	}
}

// SetOverride must be called before the resolver is shared with an Engine.
func (r *ModelResolver) SetOverride(nodeID string, model core.ModelConfig) {
	r.overrides[nodeID] = model
}

func (r *ModelResolver) Resolve(node *config.NodeConfig) core.ModelConfig {
	if node == nil {
		return r.defaultModel
	}
	if override, ok := r.overrides[node.ID]; ok {
		return override
	}
	m := node.Model
	if m.Name == "" {
		m.Name = r.defaultModel.Name
		m.Provider = r.defaultModel.Provider
	}
	if m.MaxTokens == 0 {
		m.MaxTokens = r.defaultModel.MaxTokens
		m.Temperature = r.defaultModel.Temperature
	}
	return m
}

func (r *ModelResolver) Default() core.ModelConfig {
	return r.defaultModel
}
