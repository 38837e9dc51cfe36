package graph

import (
	"fmt"
	"strings"
)

// CircularReferenceError reports the edge closing a dependency cycle.
type CircularReferenceError struct {
	From string
	To   string
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("circular reference detected: %s -> %s", e.From, e.To)
}

// Resolve orders the dependencies of root depth first. Every node comes
// after all of its dependencies and root comes last. A cycle aborts the
// resolution with a *CircularReferenceError.
//
// An edge naming the node itself, or a trailing part of its path, refers
// to the node and is not followed.
func Resolve(root *Node) ([]*Node, error) {
	r := &resolver{
		resolved:   make(map[*Node]bool),
		unresolved: make(map[*Node]bool),
	}
	if err := r.visit(root); err != nil {
		return nil, err
	}
	return r.order, nil
}

type resolver struct {
	order      []*Node
	resolved   map[*Node]bool
	unresolved map[*Node]bool
}

func (r *resolver) visit(n *Node) error {
	r.unresolved[n] = true
	for _, edge := range n.Edges {
		if r.resolved[edge] || isSelf(n, edge) {
			continue
		}
		if r.unresolved[edge] {
			return &CircularReferenceError{From: n.Name, To: edge.Name}
		}
		if err := r.visit(edge); err != nil {
			return err
		}
	}
	r.resolved[n] = true
	delete(r.unresolved, n)
	r.order = append(r.order, n)
	return nil
}

func isSelf(n, edge *Node) bool {
	if n == edge || n.Name == edge.Name {
		return true
	}
	name := strings.ReplaceAll(n.Name, "\\", "/")
	alias := strings.TrimPrefix(strings.ReplaceAll(edge.Name, "\\", "/"), "./")
	return alias != "" && strings.HasSuffix(name, "/"+alias)
}
