package config

import "github.com/abhijit1892/ragdemo/core"

type PipelineBuilder struct {
	config *PipelineConfig
}

type NodeBuilder struct {
	pipeline *PipelineBuilder
	node     *NodeConfig
}

func NewPipeline(id, name string) *PipelineBuilder {
	return &PipelineBuilder{
		config: NewPipelineConfig(id, name),
	}
}

func (b *PipelineBuilder) Description(desc string) *PipelineBuilder {
	b.config.Description = desc
	return b
}

func (b *PipelineBuilder) Node(id string, nodeType NodeType) *NodeBuilder {
	node := NewNodeConfig(id, nodeType)
	return &NodeBuilder{pipeline: b, node: node}
}

func (b *PipelineBuilder) Edge(from, to string) *PipelineBuilder {
	b.config.AddEdge(from, to)
	return b
}

func (b *PipelineBuilder) EntryNode(id string) *PipelineBuilder {
	b.config.EntryNode = id
	return b
}

func (b *PipelineBuilder) Build() *PipelineConfig {
	return b.config
}

func (n *NodeBuilder) Prompt(prompt string) *NodeBuilder {
	n.node.Prompt = prompt
	return n
}

// Model sets the model name and keeps the node's sampling defaults.
func (n *NodeBuilder) Model(name string) *NodeBuilder {
	n.node.Model = n.node.Model.WithName(name)
	return n
}

func (n *NodeBuilder) ModelConfig(cfg core.ModelConfig) *NodeBuilder {
	n.node.Model = cfg
	return n
}

func (n *NodeBuilder) Meta(key string, val any) *NodeBuilder {
	if n.node.Metadata == nil {
		n.node.Metadata = make(map[string]any)
	}
	n.node.Metadata[key] = val
	return n
}

func (n *NodeBuilder) Done() *PipelineBuilder {
	n.pipeline.config.AddNode(n.node)
	return n.pipeline
}
