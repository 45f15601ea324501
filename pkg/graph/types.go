package graph

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/matzehuels/orgtower/pkg/dag"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Layout modes.
const (
	ModeGraph = "graph"
	ModeTree  = "tree"
)

// metaRoot is the graph metadata key holding the root node ID.
const metaRoot = "root"

// =============================================================================
// Graph - Governance Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for governance graphs.
// Used for API responses, caching, and files.
//
// Nodes and edges keep graph insertion order, so a round trip reproduces
// the same tree reduction and the same force layout.
type Graph struct {
	Root  string `json:"root,omitempty"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// =============================================================================
// Node - Unified Node Type
// =============================================================================

// Node is the serialized form of a governance group.
type Node struct {
	ID         string         `json:"id"`
	Label      string         `json:"label,omitempty"` // Display name (defaults to ID)
	Kind       string         `json:"kind,omitempty"`
	ExternalID string         `json:"external_id,omitempty"`
	Status     string         `json:"status,omitempty"`
	Chair      *Leader        `json:"chair,omitempty"`
	ViceChair  *Leader        `json:"vice_chair,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Leader is a chair or vice-chair.
type Leader struct {
	Name        string `json:"name,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
	Email       string `json:"email,omitempty"`
}

// =============================================================================
// Edge - Directed Governance Link
// =============================================================================

// Edge points from a parent group to a child group.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// =============================================================================
// DAG ↔ Graph Conversion
// =============================================================================

// FromDAG converts a DAG to its serialization format.
func FromDAG(g *dag.DAG) Graph {
	nodes := g.Nodes()
	edges := g.Edges()
	out := Graph{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
	}
	if root, ok := g.Meta()[metaRoot].(string); ok {
		out.Root = root
	}
	for i, n := range nodes {
		out.Nodes[i] = NodeFromDAG(n)
	}
	for i, e := range edges {
		out.Edges[i] = Edge{From: e.From, To: e.To}
	}
	return out
}

// ToDAG converts a Graph to a DAG.
// Returns an error if a node or edge violates DAG constraints. Cycles are
// not rejected here; call Validate on the result when they matter.
func ToDAG(gj Graph) (*dag.DAG, error) {
	var meta dag.Metadata
	if gj.Root != "" {
		meta = dag.Metadata{metaRoot: gj.Root}
	}
	d := dag.New(meta)

	for _, nj := range gj.Nodes {
		kind := dag.KindUnknown
		if nj.Kind != "" {
			k, err := dag.ParseKind(nj.Kind)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", nj.ID, err)
			}
			kind = k
		}
		n := dag.Node{
			ID:         nj.ID,
			Name:       nj.Label,
			Kind:       kind,
			ExternalID: nj.ExternalID,
			Status:     nj.Status,
			Chair:      leaderToDAG(nj.Chair),
			ViceChair:  leaderToDAG(nj.ViceChair),
			Meta:       maps.Clone(nj.Meta),
		}
		if err := d.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nj.ID, err)
		}
	}

	for _, ej := range gj.Edges {
		if _, err := d.AddEdge(dag.Edge{From: ej.From, To: ej.To}); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", ej.From, ej.To, err)
		}
	}
	return d, nil
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// NodeFromDAG converts a dag.Node to a serialization Node.
// This is the single point of conversion for all DAG→Node operations.
func NodeFromDAG(n *dag.Node) Node {
	node := Node{
		ID:         n.ID,
		Label:      n.Name,
		ExternalID: n.ExternalID,
		Status:     n.Status,
		Chair:      leaderFromDAG(n.Chair),
		ViceChair:  leaderFromDAG(n.ViceChair),
	}
	if n.Kind != dag.KindUnknown {
		node.Kind = n.Kind.String()
	}
	if len(n.Meta) > 0 {
		node.Meta = maps.Clone(n.Meta)
	}
	return node
}

func leaderFromDAG(l dag.Leader) *Leader {
	if l.IsZero() {
		return nil
	}
	return &Leader{Name: l.Name, Affiliation: l.Affiliation, Email: l.Email}
}

func leaderToDAG(l *Leader) dag.Leader {
	if l == nil {
		return dag.Leader{}
	}
	return dag.Leader{Name: l.Name, Affiliation: l.Affiliation, Email: l.Email}
}

// =============================================================================
// Tree - Nested Hierarchy
// =============================================================================

// TreeNode is the nested serialization of a reduced tree.
type TreeNode struct {
	Node
	Children []TreeNode `json:"children,omitempty"`
}

// FromTree converts a reduced tree to its nested form. A nil tree yields
// the zero TreeNode.
func FromTree(t *dag.Tree) TreeNode {
	if t == nil || t.Root == nil {
		return TreeNode{}
	}
	return treeNodeFrom(t.Root)
}

func treeNodeFrom(tn *dag.TreeNode) TreeNode {
	out := TreeNode{Node: NodeFromDAG(tn.Node)}
	for _, c := range tn.Children {
		out.Children = append(out.Children, treeNodeFrom(c))
	}
	return out
}
