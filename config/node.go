package config

import "github.com/abhijit1892/ragdemo/core"

type EdgeEndpoint struct {
	Node string `json:"node"`
}

type EdgeConfig struct {
	From EdgeEndpoint `json:"from"`
	To   EdgeEndpoint `json:"to"`
	Type EdgeType     `json:"type"`
}

type NodeConfig struct {
	ID       string           `json:"id"`
	Type     NodeType         `json:"type"`
	Prompt   string           `json:"prompt,omitempty"`
	Model    core.ModelConfig `json:"model,omitempty"`
	Metadata map[string]any   `json:"metadata,omitempty"`
}

func NewNodeConfig(id string, nodeType NodeType) *NodeConfig {
	cfg := &NodeConfig{
		ID:   id,
		Type: nodeType,
	}
	if nodeType == NodeGenerate {
		cfg.Model = core.ModelConfig{Temperature: 0.2, MaxTokens: 1500}
	}
	return cfg
}
