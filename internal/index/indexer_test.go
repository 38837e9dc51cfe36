package index

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflow/internal/crawler"
	"reflow/internal/paths"
	"reflow/internal/sources"
	"reflow/internal/storage"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := paths.Canonical(t.TempDir())
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestIndexer_IndexProject(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Sources.list":        "ip\ntop.v\n",
		"top.v":               "",
		"ip/Sources.list":     "uart.v\n",
		"ip/uart.v":           "",
		"broken/Sources.list": "ghost.v\n",
	})

	reader, err := sources.NewReader()
	require.NoError(t, err)
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	idx := NewIndexer(crawler.NewCrawler(sources.DefaultSourcesFile), reader, store)
	report, err := idx.IndexProject(ctx, root)
	require.NoError(t, err)

	require.Len(t, report.Outputs, 2)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, filepath.Join(root, "broken", "Sources.list"), report.Failures[0].Manifest)
	assert.Contains(t, report.Failures[0].Err, "ghost.v")

	manifests, err := store.ListManifests(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "Sources.list"),
		filepath.Join(root, "ip", "Sources.list"),
	}, manifests)

	manifests, err = store.FindManifestsByFile(ctx, filepath.Join(root, "ip", "uart.v"))
	require.NoError(t, err)
	assert.Len(t, manifests, 2)

	out := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, idx.SaveReport(report, out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded.Outputs, 2)
}

func TestIndexer_WithoutStore(t *testing.T) {
	root := writeTree(t, map[string]string{"Sources.list": "a.v\n", "a.v": ""})

	reader, err := sources.NewReader()
	require.NoError(t, err)
	report, err := NewIndexer(crawler.NewCrawler(sources.DefaultSourcesFile), reader, nil).IndexProject(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, report.Outputs, 1)
	assert.Equal(t, filepath.Join(root, "a.v"), report.Outputs[0].Files[0].Path)
}

func TestIndexer_SaveReportRejectsInvalidReport(t *testing.T) {
	idx := NewIndexer(crawler.NewCrawler(sources.DefaultSourcesFile), nil, nil)
	report := &Report{Outputs: []*sources.Output{{
		Manifest:  "/p/Sources.list",
		Params:    map[string][]string{},
		Timescale: "not a timescale",
	}}}

	path := filepath.Join(t.TempDir(), "report.json")
	err := idx.SaveReport(report, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report.schema.json")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
