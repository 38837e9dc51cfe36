package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"reflow/internal/crawler"
	"reflow/internal/ctxlog"
	"reflow/internal/schema"
	"reflow/internal/sources"
	"reflow/internal/storage"
)

// Failure records a manifest that could not be resolved.
type Failure struct {
	Manifest string `json:"manifest"`
	Err      string `json:"error"`
}

// Report is the outcome of indexing a project.
type Report struct {
	Outputs  []*sources.Output `json:"outputs"`
	Failures []Failure         `json:"failures,omitempty"`
}

// Indexer resolves every manifest of a project and keeps the snapshots.
type Indexer struct {
	crawler *crawler.Crawler
	reader  *sources.Reader
	store   storage.SnapshotStore
}

// NewIndexer creates a new indexer. store may be nil when snapshots are not
// persisted.
func NewIndexer(c *crawler.Crawler, r *sources.Reader, store storage.SnapshotStore) *Indexer {
	return &Indexer{
		crawler: c,
		reader:  r,
		store:   store,
	}
}

// IndexProject scans root and resolves each manifest found. A manifest that
// fails is reported and does not stop the scan; storage errors do.
func (i *Indexer) IndexProject(ctx context.Context, root string) (*Report, error) {
	var manifests []string
	if err := i.crawler.ScanProject(root, func(path string) {
		manifests = append(manifests, path)
	}); err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	logger := ctxlog.FromContext(ctx)
	report := &Report{}
	for _, path := range manifests {
		out, err := i.resolve(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Failed to resolve manifest", "path", path, "error", err)
			report.Failures = append(report.Failures, Failure{Manifest: path, Err: err.Error()})
			continue
		}
		if i.store != nil {
			if err := i.store.SaveOutput(ctx, out); err != nil {
				return nil, fmt.Errorf("failed to store %s: %w", path, err)
			}
		}
		report.Outputs = append(report.Outputs, out)
	}

	logger.Info("Indexed project", "root", root, "resolved", len(report.Outputs), "failed", len(report.Failures))
	return report, nil
}

func (i *Indexer) resolve(ctx context.Context, path string) (*sources.Output, error) {
	res, err := i.reader.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return res.Output()
}

// SaveReport checks the report against its schema and persists it to a
// JSON file.
func (i *Indexer) SaveReport(report *Report, path string) error {
	if err := schema.Validate(schema.Report, report); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
