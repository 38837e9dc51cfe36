package graph

import "slices"

// TagsKey is the parameter under which the '@' labels of a node are stored.
const TagsKey = "TAGS"

// Node is one file, manifest or rule of a source tree.
type Node struct {
	// Name is the canonical path of a file or manifest, or a rule name.
	Name string
	// Edges are the direct dependencies in declaration order.
	Edges []*Node
	// Params holds the node parameters. "=" replaces a list, "+=" extends it.
	Params map[string][]string
}

// NewNode creates a node without edges nor parameters.
func NewNode(name string) *Node {
	return &Node{Name: name, Params: make(map[string][]string)}
}

// AddEdge makes dep a dependency of n. A dependency already present under
// the same name is replaced in place, so declaring it again neither
// duplicates it nor changes its position.
func (n *Node) AddEdge(dep *Node) {
	for i, e := range n.Edges {
		if e.Name == dep.Name {
			n.Edges[i] = dep
			return
		}
	}
	n.Edges = append(n.Edges, dep)
}

// Edge returns the dependency called name.
func (n *Node) Edge(name string) (*Node, bool) {
	for _, e := range n.Edges {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// SetParam overwrites the values of a parameter.
func (n *Node) SetParam(name string, values ...string) {
	n.Params[name] = append([]string{}, values...)
}

// AppendParam extends a parameter, creating it when absent.
func (n *Node) AppendParam(name string, values ...string) {
	n.Params[name] = append(n.Params[name], values...)
}

// Param returns the values of a parameter.
func (n *Node) Param(name string) []string {
	return n.Params[name]
}

// Tags returns the '@' labels of the node.
func (n *Node) Tags() []string {
	return n.Params[TagsKey]
}

// Clone copies the node under a new name. Edges are shared, parameters are
// copied.
func (n *Node) Clone(name string) *Node {
	c := &Node{Name: name, Edges: slices.Clone(n.Edges), Params: make(map[string][]string, len(n.Params))}
	for k, v := range n.Params {
		c.Params[k] = slices.Clone(v)
	}
	return c
}
