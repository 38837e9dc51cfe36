package analysis

import (
	"context"
	"fmt"
	"slices"

	"reflow/internal/paths"
	"reflow/internal/storage"
)

// ImpactReport lists the manifests to rebuild after some files changed.
type ImpactReport struct {
	// Affected are the manifests whose resolved file list or manifest
	// tree contains a changed file.
	Affected []string
	// ByFile maps each changed file to the manifests using it.
	ByFile map[string][]string
	// Untracked are changed files no snapshot refers to.
	Untracked []string
}

// Analyzer performs impact analysis on stored snapshots.
type Analyzer struct {
	store storage.SnapshotStore
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(store storage.SnapshotStore) *Analyzer {
	return &Analyzer{store: store}
}

// AnalyzeImpact identifies which manifests are affected by the given changes.
func (a *Analyzer) AnalyzeImpact(ctx context.Context, changes []string) (*ImpactReport, error) {
	report := &ImpactReport{ByFile: make(map[string][]string)}

	seen := make(map[string]bool)
	for _, change := range changes {
		path := paths.Canonical(change)
		manifests, err := a.store.FindManifestsByFile(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s: %w", path, err)
		}
		if len(manifests) == 0 {
			report.Untracked = append(report.Untracked, path)
			continue
		}

		report.ByFile[path] = manifests
		for _, m := range manifests {
			if !seen[m] {
				seen[m] = true
				report.Affected = append(report.Affected, m)
			}
		}
	}

	slices.Sort(report.Affected)
	return report, nil
}
