package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflow/internal/filetype"
	"reflow/internal/sources"
	"reflow/internal/storage"
)

func TestAnalyzer_AnalyzeImpact(t *testing.T) {
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	save := func(manifests []string, files ...string) {
		out := &sources.Output{
			Manifest:  manifests[len(manifests)-1],
			Manifests: manifests,
			Params:    map[string][]string{},
		}
		for _, f := range files {
			out.Files = append(out.Files, sources.SourceFile{Path: f, Mime: filetype.ByExtension(f)})
		}
		require.NoError(t, store.SaveOutput(ctx, out))
	}
	save([]string{"/p/ip/Sources.list", "/p/top/Sources.list"}, "/p/ip/uart.v", "/p/top/top.v")
	save([]string{"/p/ip/Sources.list"}, "/p/ip/uart.v")
	save([]string{"/p/tb/Sources.list"}, "/p/tb/tb.sv")

	report, err := NewAnalyzer(store).AnalyzeImpact(ctx, []string{
		"/p/ip/uart.v",
		"/p/tb/Sources.list",
		"/p/doc/readme.md",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"/p/ip/Sources.list", "/p/tb/Sources.list", "/p/top/Sources.list"}, report.Affected)
	assert.Equal(t, []string{"/p/ip/Sources.list", "/p/top/Sources.list"}, report.ByFile["/p/ip/uart.v"])
	assert.Equal(t, []string{"/p/tb/Sources.list"}, report.ByFile["/p/tb/Sources.list"])
	assert.Equal(t, []string{"/p/doc/readme.md"}, report.Untracked)
}

func TestAnalyzer_AnalyzeImpact_NestedManifest(t *testing.T) {
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Sources.list"), []byte("sub\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "Sources.list"), []byte("a.v\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "a.v"), nil, 0o644))

	reader, err := sources.NewReader()
	require.NoError(t, err)
	res, err := reader.Read(ctx, filepath.Join(root, "Sources.list"))
	require.NoError(t, err)
	out, err := res.Output()
	require.NoError(t, err)
	require.NoError(t, store.SaveOutput(ctx, out))

	// Relative change paths resolve against the working directory.
	t.Chdir(root)
	report, err := NewAnalyzer(store).AnalyzeImpact(ctx, []string{filepath.Join("sub", "Sources.list")})
	require.NoError(t, err)

	assert.Equal(t, []string{out.Manifest}, report.Affected)
	assert.Empty(t, report.Untracked)
}
