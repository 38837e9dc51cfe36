package rules

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflow/internal/graph"
	"reflow/internal/paths"
)

func TestCommandFiles(t *testing.T) {
	dir := paths.Canonical(t.TempDir())
	t.Setenv("IP_ROOT", filepath.Join(dir, "ip"))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ip"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ip", "ip.f"), []byte("uart.v\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "top.f"), []byte(
		"// project sources\n"+
			"+incdir+inc+common\n"+
			"+define+SIM +define+WIDTH=8\n"+
			"-sv +libext+.v\n"+
			"top.v // the top\n"+
			"-f $IP_ROOT/ip.f\n"+
			"-f top.f\n"), 0o644))

	n := graph.NewNode(filepath.Join(dir, "top.f"))
	n.SetParam("FOO", "1")

	out, err := CommandFiles(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "top.v"),
		filepath.Join(dir, "ip", "uart.v"),
	}, nodeNames(out))

	assert.Equal(t, []string{filepath.Join(dir, "inc"), filepath.Join(dir, "common")}, out[0].Param(IncludeDirsKey))
	assert.Equal(t, []string{"SIM", "WIDTH=8"}, out[0].Param(DefinesKey))
	assert.Equal(t, []string{"1"}, out[1].Param("FOO"))
}

func TestCommandFiles_Missing(t *testing.T) {
	_, err := CommandFiles(context.Background(), graph.NewNode(filepath.Join(t.TempDir(), "none.f")))
	assert.Error(t, err)
}
