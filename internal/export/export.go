// Package export renders a resolved source tree for humans: an indented
// tree, a Mermaid flowchart or a Graphviz DOT graph.
package export

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	graphlib "github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"reflow/internal/graph"
)

// Tree writes root and its dependencies, one block per node having edges:
//
//	/p/Sources.list:
//	----------------
//	- /p/a.v
//	  /p/sub/Sources.list:
//	  ...
//
// A node already described is listed again without its dependencies.
func Tree(w io.Writer, root *graph.Node) error {
	t := &treeWriter{w: w, seen: make(map[*graph.Node]bool)}
	t.describe(root, 0)
	return t.err
}

type treeWriter struct {
	w    io.Writer
	seen map[*graph.Node]bool
	err  error
}

func (t *treeWriter) printf(depth int, format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, strings.Repeat("  ", depth)+format+"\n", args...)
}

func (t *treeWriter) describe(n *graph.Node, depth int) {
	t.seen[n] = true
	t.printf(depth, "%s:", n.Name)
	t.printf(depth, "%s", strings.Repeat("-", len(n.Name)+1))
	for _, e := range n.Edges {
		if e == n || len(e.Edges) == 0 || t.seen[e] {
			t.printf(depth, "- %s", e.Name)
			continue
		}
		t.describe(e, depth+1)
	}
}

// edges lists the edges between nodes of order, skipping self references.
func edges(order []*graph.Node) [][2]*graph.Node {
	in := make(map[*graph.Node]bool, len(order))
	for _, n := range order {
		in[n] = true
	}
	var out [][2]*graph.Node
	for _, n := range order {
		for _, e := range n.Edges {
			if e != n && in[e] {
				out = append(out, [2]*graph.Node{n, e})
			}
		}
	}
	return out
}

// Mermaid writes order as a Mermaid flowchart, dependents pointing to their
// dependencies.
func Mermaid(w io.Writer, order []*graph.Node) error {
	ids := make(map[*graph.Node]string, len(order))
	var sb strings.Builder
	sb.WriteString("```mermaid\ngraph TD\n")
	for i, n := range order {
		ids[n] = fmt.Sprintf("n%d", i)
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", ids[n], label(n)))
	}
	for _, e := range edges(order) {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", ids[e[0]], ids[e[1]]))
	}
	sb.WriteString("```\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// DOT writes order as a Graphviz digraph.
func DOT(w io.Writer, order []*graph.Node) error {
	g := graphlib.New(graphlib.StringHash, graphlib.Directed())
	for _, n := range order {
		err := g.AddVertex(n.Name,
			graphlib.VertexAttribute("label", label(n)),
			graphlib.VertexAttribute("tooltip", n.Name),
		)
		if err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
			return fmt.Errorf("failed to add %s: %w", n.Name, err)
		}
	}
	for _, e := range edges(order) {
		if err := g.AddEdge(e[0].Name, e[1].Name); err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
			return fmt.Errorf("failed to add edge %s -> %s: %w", e[0].Name, e[1].Name, err)
		}
	}
	return draw.DOT(g, w)
}

// label is the last two path elements of a node, enough to tell manifests
// apart, followed by its tags.
func label(n *graph.Node) string {
	name := filepath.ToSlash(n.Name)
	if i := strings.LastIndex(name, "/"); i > 0 {
		if j := strings.LastIndex(name[:i], "/"); j >= 0 {
			name = name[j+1:]
		}
	}
	if tags := n.Tags(); len(tags) > 0 {
		name += "@" + strings.Join(tags, "@")
	}
	return strings.ReplaceAll(name, `"`, "'")
}
