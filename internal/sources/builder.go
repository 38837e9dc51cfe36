package sources

import (
	"context"
	"errors"
	"path/filepath"
	"slices"

	"reflow/internal/ctxlog"
	"reflow/internal/graph"
	"reflow/internal/manifest"
	"reflow/internal/paths"
)

// block is an open "path:" or "path@tag" statement whose indented lines
// belong to its node.
type block interface {
	owner() *graph.Node
	level() int
	kind() string
}

type dependencyBlock struct {
	node   *graph.Node
	indent int
}

func (b dependencyBlock) owner() *graph.Node { return b.node }
func (b dependencyBlock) level() int         { return b.indent }
func (b dependencyBlock) kind() string       { return "dependency" }

type taggedBlock struct {
	node   *graph.Node
	indent int
}

func (b taggedBlock) owner() *graph.Node { return b.node }
func (b taggedBlock) level() int         { return b.indent }
func (b taggedBlock) kind() string       { return "tagged" }

// builder applies the statements of one manifest to the graph.
type builder struct {
	reader   *Reader
	ctx      context.Context
	st       *state
	manifest *graph.Node
	dir      string
	depth    int
	open     []block
}

// target is the node receiving references and parameters.
func (b *builder) target() *graph.Node {
	if len(b.open) == 0 {
		return b.manifest
	}
	return b.open[len(b.open)-1].owner()
}

func (b *builder) apply(stmt manifest.Statement) error {
	for len(b.open) > 0 && stmt.Indent <= b.open[len(b.open)-1].level() {
		b.open = b.open[:len(b.open)-1]
	}
	target := b.target()

	switch stmt.Kind {
	case manifest.Assign:
		target.SetParam(stmt.Name, stmt.Values...)
		return nil
	case manifest.Append:
		target.AppendParam(stmt.Name, stmt.Values...)
		return nil
	}

	var (
		node *graph.Node
		err  error
	)
	if stmt.Opens() {
		node, err = b.symbol(stmt.Target, stmt.Line)
	} else {
		node, err = b.reference(stmt.Target, stmt.Line)
	}
	if err != nil || node == nil {
		return err
	}
	target.AddEdge(node)

	for _, tag := range stmt.Tags {
		if !slices.Contains(node.Tags(), tag) {
			node.AppendParam(graph.TagsKey, tag)
		}
	}
	for _, raw := range stmt.Deps {
		dep, err := b.reference(raw, stmt.Line)
		if err != nil {
			return err
		}
		if dep != nil {
			node.AddEdge(dep)
		}
	}

	var blk block
	switch {
	case stmt.Kind == manifest.Block:
		blk = dependencyBlock{node: node, indent: stmt.Indent}
	case stmt.Opens():
		blk = taggedBlock{node: node, indent: stmt.Indent}
	default:
		return nil
	}
	ctxlog.FromContext(b.ctx).Debug("Opening block", "kind", blk.kind(), "node", node.Name, "line", stmt.Line)
	b.open = append(b.open, blk)
	return nil
}

// reference resolves a file, a directory with its own manifest, or a node
// already known under raw, such as a rule. A directory without manifest
// resolves to nil.
func (b *builder) reference(raw string, line int) (*graph.Node, error) {
	r := b.reader
	path := paths.Resolve(raw, b.dir, r.platform)

	switch {
	case isDir(path):
		if !isFile(filepath.Join(path, r.sourcesFile)) {
			ctxlog.FromContext(b.ctx).Warn("Skipping directory without manifest",
				"file", b.manifest.Name, "line", line, "dir", path)
			return nil, nil
		}
		return r.read(b.ctx, b.st, path, b.depth+1)
	case isFile(path):
		n, _ := b.st.graph.GetOrAdd(path)
		return n, nil
	}
	if n, ok := b.st.graph.Node(raw); ok {
		return n, nil
	}
	return nil, &NotFoundError{Path: path, Manifest: b.manifest.Name, Line: line}
}

// symbol resolves the target of a block, which may also name a rule or a
// directory without manifest; both become graph-only nodes so the block
// keeps its children.
func (b *builder) symbol(raw string, line int) (*graph.Node, error) {
	n, err := b.reference(raw, line)
	var notFound *NotFoundError
	if (err == nil && n == nil) ||
		(errors.As(err, &notFound) && notFound.Manifest == b.manifest.Name && notFound.Line == line) {
		n, _ = b.st.graph.GetOrAdd(raw)
		return n, nil
	}
	return n, err
}
