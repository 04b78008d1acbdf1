package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/abhijit1892/ragdemo/core"
)

type PipelineConfig struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Nodes       []*NodeConfig  `json:"nodes"`
	Edges       []EdgeConfig   `json:"edges"`
	EntryNode   string         `json:"entry_node,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func NewPipelineConfig(id, name string) *PipelineConfig {
	return &PipelineConfig{
		ID:    id,
		Name:  name,
		Nodes: make([]*NodeConfig, 0),
		Edges: make([]EdgeConfig, 0),
	}
}

func (p *PipelineConfig) AddNode(node *NodeConfig) *PipelineConfig {
	p.Nodes = append(p.Nodes, node)
	return p
}

func (p *PipelineConfig) AddEdge(from, to string) *PipelineConfig {
	p.Edges = append(p.Edges, EdgeConfig{
		From: EdgeEndpoint{Node: from},
		To:   EdgeEndpoint{Node: to},
		Type: EdgeDefault,
	})
	return p
}

func (p *PipelineConfig) GetNode(id string) *NodeConfig {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Entry returns the configured entry node, or the first node when unset.
func (p *PipelineConfig) Entry() string {
	if p.EntryNode != "" {
		return p.EntryNode
	}
	if len(p.Nodes) > 0 {
		return p.Nodes[0].ID
	}
	return ""
}

// Next returns the successor of id and whether one exists.
func (p *PipelineConfig) Next(id string) (string, bool) {
	for _, e := range p.Edges {
		if e.From.Node == id {
			return e.To.Node, true
		}
	}
	return "", false
}

// Validate checks that the graph is a single chain: every node is reachable
// from the entry, each node has at most one successor and there are no cycles.
func (p *PipelineConfig) Validate() error {
	if len(p.Nodes) == 0 {
		return fmt.Errorf("%w: pipeline %q has no nodes", core.ErrInvalidGraph, p.ID)
	}

	ids := make(map[string]bool, len(p.Nodes))
	for _, n := range p.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node with empty id", core.ErrInvalidGraph)
		}
		if ids[n.ID] {
			return fmt.Errorf("%w: duplicate node %q", core.ErrInvalidGraph, n.ID)
		}
		if _, ok := nodeTypeNames[n.Type]; !ok {
			return fmt.Errorf("%w: node %q has unknown type %d", core.ErrInvalidGraph, n.ID, int(n.Type))
		}
		ids[n.ID] = true
	}

	outgoing := make(map[string]int, len(p.Edges))
	for _, e := range p.Edges {
		if e.Type != EdgeDefault {
			return fmt.Errorf("%w: edge %s->%s has unsupported type %s",
				core.ErrInvalidGraph, e.From.Node, e.To.Node, e.Type)
		}
		if !ids[e.From.Node] || !ids[e.To.Node] {
			return fmt.Errorf("%w: edge %s->%s references unknown node",
				core.ErrNodeNotFound, e.From.Node, e.To.Node)
		}
		outgoing[e.From.Node]++
		if outgoing[e.From.Node] > 1 {
			return fmt.Errorf("%w: node %q has more than one successor", core.ErrInvalidGraph, e.From.Node)
		}
	}

	entry := p.Entry()
	if !ids[entry] {
		return fmt.Errorf("%w: entry node %q", core.ErrNodeNotFound, entry)
	}

	visited := make(map[string]bool, len(ids))
	for cur, ok := entry, true; ok; cur, ok = p.Next(cur) {
		if visited[cur] {
			return fmt.Errorf("%w: cycle at node %q", core.ErrInvalidGraph, cur)
		}
		visited[cur] = true
	}
	if len(visited) != len(ids) {
		return fmt.Errorf("%w: %d of %d nodes unreachable from %q",
			core.ErrInvalidGraph, len(ids)-len(visited), len(ids), entry)
	}
	return nil
}

func (p *PipelineConfig) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

func LoadPipeline(path string) (*PipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg PipelineConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (p *PipelineConfig) Save(path string) error {
	data, err := p.ToJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
