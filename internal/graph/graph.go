package graph

// Graph indexes the nodes of one resolution by name. Parsing a manifest
// registers its node before reading the body, so every later reference to
// the same path, including from nested manifests, lands on that node.
//
// A Graph is not safe for concurrent use.
type Graph struct {
	Nodes map[string]*Node

	// names keeps insertion order for deterministic iteration.
	names []string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[string]*Node),
	}
}

// Node returns the node registered under name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.Nodes[name]
	return n, ok
}

// GetOrAdd returns the node registered under name, creating it when absent.
// The boolean reports whether the node was created.
func (g *Graph) GetOrAdd(name string) (*Node, bool) {
	if n, ok := g.Nodes[name]; ok {
		return n, false
	}
	n := NewNode(name)
	g.Nodes[name] = n
	g.names = append(g.names, name)
	return n, true
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.Nodes)
}

// All returns the nodes in registration order.
func (g *Graph) All() []*Node {
	out := make([]*Node, 0, len(g.names))
	for _, name := range g.names {
		out = append(out, g.Nodes[name])
	}
	return out
}
