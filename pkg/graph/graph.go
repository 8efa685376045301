package graph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID
	// is empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with
	// the same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From
	// node does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To
	// node does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrUnknownParentNode is returned by [Graph.AddNode] when the node
	// names a Parent that has not been added yet. Containers must be
	// added before their members.
	ErrUnknownParentNode = errors.New("unknown parent node")

	// ErrUnknownRootNode is returned by [AssignRanks] when the root ID
	// does not exist in the graph.
	ErrUnknownRootNode = errors.New("unknown root node")
)

// NodeKind distinguishes the entity behind a node. Renderers choose
// shapes and style classes by kind.
type NodeKind int

const (
	// KindComponent is a lifecycle component.
	KindComponent NodeKind = iota
	// KindControl is a mitigation.
	KindControl
	// KindRisk is a threat.
	KindRisk
	// KindCategory is a container node grouping the components of one
	// category. Edges may target it directly after category collapse.
	KindCategory
	// KindCluster is a synthetic container for components that share
	// the same set of controls.
	KindCluster
)

// String returns the lowercase kind name used as a style class.
func (k NodeKind) String() string {
	switch k {
	case KindControl:
		return "control"
	case KindRisk:
		return "risk"
	case KindCategory:
		return "category"
	case KindCluster:
		return "cluster"
	default:
		return "component"
	}
}

// Container reports whether nodes of this kind enclose other nodes.
func (k NodeKind) Container() bool {
	return k == KindCategory || k == KindCluster
}

// StyleDefault marks an edge drawn with the renderer's default stroke.
// Non-negative values index the alternating style palette.
const StyleDefault = -1

// Node is a vertex in a view graph. Parent, when set, names the
// category or cluster node enclosing it. Rank is the layout layer
// assigned by [AssignRanks]; 0 means unranked.
//
// The zero value is not usable - ID must be set before adding to a Graph.
type Node struct {
	ID     string
	Label  string
	Kind   NodeKind
	Parent string
	Rank   int
}

// Edge is a directed connection between two nodes. Style is a palette
// index assigned by the presentation optimizer, or StyleDefault.
type Edge struct {
	From  string
	To    string
	Style int
}

// Graph is a directed graph for diagram views. Unlike a strict DAG it
// tolerates cycles: feedback loops (an application feeding model output
// back into its own input) are legitimate content, and rank assignment
// is bounded rather than order-dependent.
//
// Node iteration order is insertion order everywhere, which makes every
// downstream emission deterministic.
//
// The zero value is not usable - use New to create a Graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	outgoing map[string][]string // nodeID -> successor IDs
	incoming map[string][]string // nodeID -> predecessor IDs
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node to the graph. Returns ErrInvalidNodeID if the
// node ID is empty, ErrDuplicateNodeID if a node with the same ID
// already exists, or ErrUnknownParentNode if the node names a parent
// that has not been added yet.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Parent != "" {
		if _, ok := g.nodes[n.Parent]; !ok {
			return ErrUnknownParentNode
		}
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode if the From node doesn't exist, or
// ErrUnknownTargetNode if the To node doesn't exist. Container nodes
// are valid endpoints; collapsed mappings point at categories.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// Node returns the node with the given ID and true, or nil and false if
// not found. The pointer refers to the actual node in the graph.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order. The returned slice
// contains pointers to the actual node structs.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Successors returns the IDs this node has edges to, in edge insertion
// order. The returned slice is a read-only view.
func (g *Graph) Successors(id string) []string { return g.outgoing[id] }

// Predecessors returns the IDs that have edges to this node, in edge
// insertion order. The returned slice is a read-only view.
func (g *Graph) Predecessors(id string) []string { return g.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Members returns the nodes directly enclosed by the given container,
// in insertion order.
func (g *Graph) Members(parent string) []*Node {
	var out []*Node
	for _, id := range g.order {
		if g.nodes[id].Parent == parent {
			out = append(out, g.nodes[id])
		}
	}
	return out
}

// TopLevel returns the nodes without a parent, in insertion order.
func (g *Graph) TopLevel() []*Node { return g.Members("") }

// Roots returns non-container nodes with no incoming edges, in
// insertion order.
func (g *Graph) Roots() []*Node {
	var roots []*Node
	for _, id := range g.order {
		n := g.nodes[id]
		if n.Kind.Container() {
			continue
		}
		if len(g.incoming[id]) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

// HasCycle reports whether the graph contains a directed cycle.
// Detection runs in O(N+E) time using depth-first search. Cycles are
// not an error in view graphs; callers use this to log that rank
// assignment ran in bounded mode.
func (g *Graph) HasCycle() bool {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var found bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, succ := range g.outgoing[id] {
			switch color[succ] {
			case white:
				dfs(succ)
			case gray:
				found = true
				return
			}
			if found {
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
			if found {
				return true
			}
		}
	}
	return false
}

// NodeIDs extracts the ID from each node in a slice, preserving order.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
