// Package sources builds the dependency graph of a Sources.list manifest and
// turns it into the ordered file list consumed by simulation and synthesis
// flows.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"reflow/internal/ctxlog"
	"reflow/internal/graph"
	"reflow/internal/manifest"
	"reflow/internal/paths"
	"reflow/internal/rules"
	"reflow/internal/verilog"
)

// DefaultSourcesFile is the manifest name looked up in directories.
const DefaultSourcesFile = "Sources.list"

type Option func(*Reader)

// WithPlatform sets the platform root name used to resolve absolute
// references.
func WithPlatform(platform string) Option {
	return func(r *Reader) { r.platform = platform }
}

// WithSourcesFile changes the manifest name looked up in directories.
func WithSourcesFile(name string) Option {
	return func(r *Reader) { r.sourcesFile = name }
}

func WithTabWidth(width int) Option {
	return func(r *Reader) { r.tabWidth = width }
}

// WithStrict turns malformed statements into errors.
func WithStrict(strict bool) Option {
	return func(r *Reader) { r.strict = strict }
}

// WithRules sets the observers applied to the resolved nodes.
func WithRules(reg *rules.Registry) Option {
	return func(r *Reader) { r.rules = reg }
}

// WithScanner shares a timescale scanner, and its cache, between readers.
func WithScanner(s *verilog.Scanner) Option {
	return func(r *Reader) { r.scanner = s }
}

// WithLoggerInclude prepends path to the file list of every output.
func WithLoggerInclude(path string) Option {
	return func(r *Reader) { r.loggerInclude = path }
}

// Reader resolves manifests. It may be reused; every Read works on its own
// graph.
type Reader struct {
	platform      string
	sourcesFile   string
	tabWidth      int
	strict        bool
	rules         *rules.Registry
	scanner       *verilog.Scanner
	loggerInclude string
}

func NewReader(opts ...Option) (*Reader, error) {
	r := &Reader{
		platform:    paths.DefaultPlatform,
		sourcesFile: DefaultSourcesFile,
		tabWidth:    manifest.DefaultTabWidth,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.scanner == nil {
		s, err := verilog.NewScanner(0)
		if err != nil {
			return nil, err
		}
		r.scanner = s
	}
	if r.rules == nil {
		r.rules = rules.NewRegistry()
	}
	return r, nil
}

// Resolution is the outcome of reading a manifest tree.
type Resolution struct {
	// Root is the node of the top-level manifest.
	Root *graph.Node
	// Order lists the nodes dependencies first; Root comes last unless a
	// rule replaced it.
	Order []*graph.Node
	Graph *graph.Graph
	// Diagnostics are the malformed statements that were skipped.
	Diagnostics []*manifest.Diagnostic

	manifests     map[*graph.Node]bool
	scanner       *verilog.Scanner
	loggerInclude string
}

type state struct {
	graph     *graph.Graph
	diags     []*manifest.Diagnostic
	manifests map[*graph.Node]bool
}

// Read builds the graph of the manifest at path, which is either a manifest
// or a directory holding one, and resolves it.
func (r *Reader) Read(ctx context.Context, path string) (*Resolution, error) {
	st := &state{graph: graph.NewGraph(), manifests: make(map[*graph.Node]bool)}

	root, err := r.read(ctx, st, path, 0)
	if err != nil {
		return nil, err
	}

	order, err := graph.Resolve(root)
	if err != nil {
		return nil, err
	}
	order, err = r.rules.Apply(ctx, order)
	if err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Debug("Resolved manifest", "path", root.Name, "nodes", len(order))
	return &Resolution{
		Root:          root,
		Order:         order,
		Graph:         st.graph,
		Diagnostics:   st.diags,
		manifests:     st.manifests,
		scanner:       r.scanner,
		loggerInclude: r.loggerInclude,
	}, nil
}

func (r *Reader) read(ctx context.Context, st *state, path string, depth int) (*graph.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path = paths.Canonical(path)
	if isDir(path) {
		path = filepath.Join(path, r.sourcesFile)
	}
	if n, ok := st.graph.Node(path); ok {
		return n, nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	// registered before parsing so that a reference back to it is found
	// in the graph and reported as a cycle during resolution
	node, _ := st.graph.GetOrAdd(path)
	st.manifests[node] = true
	ctxlog.FromContext(ctx).Debug("Reading manifest", "path", path, "depth", depth)

	b := &builder{
		reader:   r,
		ctx:      ctx,
		st:       st,
		manifest: node,
		dir:      filepath.Dir(path),
		depth:    depth,
	}
	for stmt, diag := range manifest.Statements(manifest.Scan(string(src), manifest.WithTabWidth(r.tabWidth))) {
		if diag != nil {
			diag.File = path
			if r.strict {
				return nil, &SyntaxError{Diagnostic: diag}
			}
			ctxlog.FromContext(ctx).Warn("Skipping malformed statement", "file", path, "line", diag.Line, "reason", diag.Message)
			st.diags = append(st.diags, diag)
			continue
		}
		if err := b.apply(stmt); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
