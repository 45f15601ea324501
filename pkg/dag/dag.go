package dag

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] and [DAG.UpsertNode] when
	// the node ID is empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph. Use [DAG.UpsertNode] to merge.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrSelfLoop is returned by [DAG.AddEdge] when From and To are the same node.
	ErrSelfLoop = errors.New("edge must connect two distinct nodes")

	// ErrInvalidEdgeEndpoint is returned by [DAG.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	// Governance data can declare committees as each other's parents; the
	// tree reducer tolerates this, but other consumers may not.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph,
// such as charter links, mailing lists or activity levels. Metadata maps are
// never nil after a node has been added.
type Metadata map[string]any

// Leader is a chair or vice-chair of a governance group.
type Leader struct {
	Name        string
	Affiliation string
	Email       string
}

// IsZero reports whether no leader field is set.
func (l Leader) IsZero() bool {
	return l.Name == "" && l.Affiliation == "" && l.Email == ""
}

// fill copies fields of other into the empty fields of l.
func (l *Leader) fill(other Leader) {
	if l.Name == "" {
		l.Name = other.Name
	}
	if l.Affiliation == "" {
		l.Affiliation = other.Affiliation
	}
	if l.Email == "" {
		l.Email = other.Email
	}
}

// Node is one governance group in the hierarchy.
//
// The zero value is not usable; ID must be set before adding to a DAG.
type Node struct {
	ID         string // Unique identifier
	Name       string // Display name; falls back to ID when empty
	Kind       Kind
	ExternalID string // Identifier in the source system (e.g. a ticket key)
	Status     string
	Chair      Leader
	ViceChair  Leader
	Meta       Metadata
}

// Label returns the display name, or the ID if no name is set.
func (n Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// merge fills the empty attributes of n from other. Kind is only taken
// from other when n has none of its own.
func (n *Node) merge(other Node) {
	if n.Name == "" {
		n.Name = other.Name
	}
	if n.Kind == KindUnknown {
		n.Kind = other.Kind
	}
	if n.ExternalID == "" {
		n.ExternalID = other.ExternalID
	}
	if n.Status == "" {
		n.Status = other.Status
	}
	n.Chair.fill(other.Chair)
	n.ViceChair.fill(other.ViceChair)
	for k, v := range other.Meta {
		if _, ok := n.Meta[k]; !ok {
			n.Meta[k] = v
		}
	}
}

// Edge is a directed parent→child relationship.
type Edge struct {
	From string // Parent node ID
	To   string // Child node ID
}

// DAG is the directed graph of governance groups. Despite the name it can
// carry cycles when the input data declares them; [DAG.Validate] reports
// them and the tree reducer breaks them.
//
// Nodes and edges keep their insertion order, which makes every derived
// structure deterministic for a given input.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	edgeSet  map[Edge]struct{}
	outgoing map[string][]string // nodeID -> children IDs
	incoming map[string][]string // nodeID -> parent IDs
	meta     Metadata
}

// New creates an empty DAG with optional graph-level metadata.
// The metadata parameter can be nil, in which case an empty map is created.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		edgeSet:  make(map[Edge]struct{}),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
// The returned map is never nil and can be safely modified.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	d.insert(n)
	return nil
}

// UpsertNode adds n, or merges it into the existing node with the same ID.
// Merging only fills empty fields of the stored node; the first value
// written for any attribute wins. The returned pointer refers to the
// stored node.
func (d *DAG) UpsertNode(n Node) (*Node, error) {
	if n.ID == "" {
		return nil, ErrInvalidNodeID
	}
	if existing, ok := d.nodes[n.ID]; ok {
		existing.merge(n)
		return existing, nil
	}
	return d.insert(n), nil
}

func (d *DAG) insert(n Node) *Node {
	meta := make(Metadata, len(n.Meta))
	for k, v := range n.Meta {
		meta[k] = v
	}
	n.Meta = meta
	node := &n
	d.nodes[node.ID] = node
	d.order = append(d.order, node.ID)
	return node
}

// AddEdge adds a directed edge between two existing nodes.
// The edge set has set semantics over the (From, To) pair: adding an edge
// that already exists is a no-op and reports false.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode if an endpoint is
// missing, and ErrSelfLoop if both endpoints are the same node.
func (d *DAG) AddEdge(e Edge) (bool, error) {
	if _, ok := d.nodes[e.From]; !ok {
		return false, ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return false, ErrUnknownTargetNode
	}
	if e.From == e.To {
		return false, ErrSelfLoop
	}
	if _, exists := d.edgeSet[e]; exists {
		return false, nil
	}
	d.edgeSet[e] = struct{}{}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return true, nil
}

// HasEdge reports whether the edge from→to exists.
func (d *DAG) HasEdge(from, to string) bool {
	_, ok := d.edgeSet[Edge{From: from, To: to}]
	return ok
}

// RemoveEdge removes the edge from→to if it exists.
func (d *DAG) RemoveEdge(from, to string) {
	e := Edge{From: from, To: to}
	if _, ok := d.edgeSet[e]; !ok {
		return
	}
	delete(d.edgeSet, e)
	d.edges = slices.DeleteFunc(d.edges, func(x Edge) bool { return x == e })
	d.outgoing[from] = slices.DeleteFunc(d.outgoing[from], func(s string) bool { return s == to })
	d.incoming[to] = slices.DeleteFunc(d.incoming[to], func(s string) bool { return s == from })
}

// Nodes returns all nodes in insertion order. The returned slice contains
// pointers to the actual node structs, so modifications affect the graph.
func (d *DAG) Nodes() []*Node {
	nodes := make([]*Node, 0, len(d.order))
	for _, id := range d.order {
		nodes = append(nodes, d.nodes[id])
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the IDs of the node's children in edge insertion order.
// The returned slice should not be modified.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the IDs of the node's parents in edge insertion order.
// The returned slice should not be modified.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Degree returns the total number of edges touching the node.
func (d *DAG) Degree(id string) int { return len(d.outgoing[id]) + len(d.incoming[id]) }

// Node returns the node with the given ID and true, or nil and false if not found.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Sources returns nodes with no incoming edges, in insertion order.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			sources = append(sources, d.nodes[id])
		}
	}
	return sources
}

// Isolated returns nodes that have no edges at all, in insertion order.
func (d *DAG) Isolated() []*Node {
	var out []*Node
	for _, id := range d.order {
		if d.Degree(id) == 0 {
			out = append(out, d.nodes[id])
		}
	}
	return out
}

// Validate checks graph integrity and returns nil if valid.
// Returns ErrInvalidEdgeEndpoint if an edge references a missing node, or
// ErrGraphHasCycle if a directed cycle exists.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		_, okS := d.nodes[e.From]
		_, okD := d.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
	}
	return d.detectCycles()
}

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, id := range d.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
