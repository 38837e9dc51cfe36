package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflow/internal/graph"
)

func rename(suffix string) Observer {
	return func(_ context.Context, n *graph.Node) ([]*graph.Node, error) {
		return []*graph.Node{n.Clone(n.Name + suffix)}, nil
	}
}

func nodeNames(nodes []*graph.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestRegistry_MatchesBaseName(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("*.sv|*.svh", rename(".x")))

	assert.Len(t, r.Observers("/p/rtl/top.sv"), 1)
	assert.Len(t, r.Observers("/p/rtl/pkg.svh"), 1)
	assert.Empty(t, r.Observers("/p/rtl/top.v"))
}

func TestRegistry_PatternWithSlashMatchesFullName(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("/p/**/gen/*.v", rename(".x")))

	assert.Len(t, r.Observers("/p/a/b/gen/x.v"), 1)
	assert.Empty(t, r.Observers("/p/a/b/x.v"))
}

func TestRegistry_NilObserver(t *testing.T) {
	assert.Error(t, NewRegistry().Register("*.v", nil))
}

func TestRegistry_Apply(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("*.xlsx", func(_ context.Context, n *graph.Node) ([]*graph.Node, error) {
		return []*graph.Node{n.Clone("/p/a.v"), n.Clone("/p/b.v")}, nil
	}))
	require.NoError(t, r.Register("*.v", func(context.Context, *graph.Node) ([]*graph.Node, error) {
		return nil, nil
	}))

	in := []*graph.Node{graph.NewNode("/p/top.v"), graph.NewNode("/p/regs.xlsx"), graph.NewNode("/p/Sources.list")}
	out, err := r.Apply(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"/p/top.v", "/p/a.v", "/p/b.v", "/p/Sources.list"}, nodeNames(out))
}

func TestRegistry_ApplyChainsObserversOfAllMatchingPatterns(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("*.v", rename(".a")))
	require.NoError(t, r.Register("top.*", rename(".b")))

	out, err := r.Apply(context.Background(), []*graph.Node{graph.NewNode("top.v")})
	require.NoError(t, err)
	assert.Equal(t, []string{"top.v.a", "top.v.b"}, nodeNames(out))
}

func TestRegistry_ApplyError(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry()
	require.NoError(t, r.Register("*.v", func(context.Context, *graph.Node) ([]*graph.Node, error) {
		return nil, boom
	}))

	_, err := r.Apply(context.Background(), []*graph.Node{graph.NewNode("/p/top.v")})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "/p/top.v")
}

func TestRegistry_NilIsEmpty(t *testing.T) {
	var r *Registry
	assert.Empty(t, r.Observers("x.v"))
}
