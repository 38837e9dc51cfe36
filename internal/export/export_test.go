package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflow/internal/graph"
)

func sample() (*graph.Node, []*graph.Node) {
	root := graph.NewNode("/p/Sources.list")
	sub := graph.NewNode("/p/sub/Sources.list")
	a := graph.NewNode("/p/sub/a.v")
	b := graph.NewNode("/p/b.v")
	b.AppendParam(graph.TagsKey, "Top")
	sub.AddEdge(a)
	root.AddEdge(sub)
	root.AddEdge(b)
	root.AddEdge(root)
	return root, []*graph.Node{a, sub, b, root}
}

func TestTree(t *testing.T) {
	root, _ := sample()
	var buf bytes.Buffer
	require.NoError(t, Tree(&buf, root))

	want := "/p/Sources.list:\n" +
		"----------------\n" +
		"  /p/sub/Sources.list:\n" +
		"  --------------------\n" +
		"  - /p/sub/a.v\n" +
		"- /p/b.v\n" +
		"- /p/Sources.list\n"
	assert.Equal(t, want, buf.String())
}

func TestMermaid(t *testing.T) {
	_, order := sample()
	var buf bytes.Buffer
	require.NoError(t, Mermaid(&buf, order))

	want := "```mermaid\ngraph TD\n" +
		"    n0[\"sub/a.v\"]\n" +
		"    n1[\"sub/Sources.list\"]\n" +
		"    n2[\"p/b.v@Top\"]\n" +
		"    n3[\"p/Sources.list\"]\n" +
		"    n1 --> n0\n" +
		"    n3 --> n1\n" +
		"    n3 --> n2\n" +
		"```\n"
	assert.Equal(t, want, buf.String())
}

func TestDOT(t *testing.T) {
	_, order := sample()
	var buf bytes.Buffer
	require.NoError(t, DOT(&buf, order))

	out := buf.String()
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, `"/p/Sources.list" -> "/p/sub/Sources.list"`)
	assert.Contains(t, out, `"/p/sub/Sources.list" -> "/p/sub/a.v"`)
	assert.NotContains(t, out, `"/p/Sources.list" -> "/p/Sources.list"`)
	assert.Contains(t, out, `p/b.v@Top`)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "rtl/top.v", label(graph.NewNode("/p/rtl/top.v")))
	assert.Equal(t, "top.v", label(graph.NewNode("top.v")))
	assert.Equal(t, "/top.v", label(graph.NewNode("/top.v")))
}
