package config

import "fmt"

type NodeType int

const (
	NodeRetrieve NodeType = iota
	NodeGenerate
)

var nodeTypeNames = map[NodeType]string{
	NodeRetrieve: "retrieve",
	NodeGenerate: "generate",
}

var nodeTypeValues = map[string]NodeType{
	"retrieve": NodeRetrieve,
	"generate": NodeGenerate,
}

func (n NodeType) String() string {
	if name, ok := nodeTypeNames[n]; ok {
		return name
	}
	return "unknown"
}

func ParseNodeType(s string) (NodeType, bool) {
	nt, ok := nodeTypeValues[s]
	return nt, ok
}

// RequiresLLM reports whether nodes of this type need a chat client.
func (n NodeType) RequiresLLM() bool {
	return n == NodeGenerate
}

// RequiresRetriever reports whether nodes of this type need a retriever.
func (n NodeType) RequiresRetriever() bool {
	return n == NodeRetrieve
}

func (n NodeType) MarshalText() ([]byte, error) {
	name, ok := nodeTypeNames[n]
	if !ok {
		return nil, fmt.Errorf("unknown node type %d", int(n))
	}
	return []byte(name), nil
}

func (n *NodeType) UnmarshalText(b []byte) error {
	nt, ok := ParseNodeType(string(b))
	if !ok {
		return fmt.Errorf("unknown node type %q", string(b))
	}
	*n = nt
	return nil
}

// EdgeType is kept for the serialized graph format. Pipelines here are
// linear, so only EdgeDefault is accepted by Validate.
type EdgeType int

const (
	EdgeDefault EdgeType = iota
)

func (e EdgeType) String() string {
	if e == EdgeDefault {
		return "default"
	}
	return "unknown"
}
